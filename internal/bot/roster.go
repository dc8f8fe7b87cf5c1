package bot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// RosterFile is the YAML form of a tournament:
//
//	name: office-party
//	pool: 100
//	games: 28
//	seed: 42
//	shuffle: true
//	entrants:
//	  - strategy: rational
//	  - strategy: greedy
//	    count: 2
type RosterFile struct {
	Name         string        `yaml:"name"`
	Pool         *int          `yaml:"pool"`
	Games        int           `yaml:"games"`
	Seed         int64         `yaml:"seed"`
	Shuffle      bool          `yaml:"shuffle"`
	PollDirector bool          `yaml:"poll_director"`
	Entrants     []RosterEntry `yaml:"entrants"`
}

// RosterEntry is one strategy and how many seats it takes.
type RosterEntry struct {
	Strategy string `yaml:"strategy"`
	Count    int    `yaml:"count"`
}

// ParseRoster decodes a roster. Unknown keys and unknown strategies are
// errors. A missing pool defaults to DefaultPool.
func ParseRoster(data []byte) (TournamentConfig, error) {
	return ParseRosterOver(data, TournamentConfig{Pool: DefaultPool})
}

// ParseRosterOver decodes a roster whose pool, games and seed fall back to
// those of base when the document leaves them out.
func ParseRosterOver(data []byte, base TournamentConfig) (TournamentConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return TournamentConfig{}, fmt.Errorf("roster: empty document")
	}
	var rf RosterFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		return TournamentConfig{}, fmt.Errorf("roster: decode: %w", err)
	}
	return rf.ConfigOver(base)
}

// LoadRosterReader reads a roster from r, layered over base.
func LoadRosterReader(r io.Reader, base TournamentConfig) (TournamentConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return TournamentConfig{}, fmt.Errorf("roster: read: %w", err)
	}
	return ParseRosterOver(data, base)
}

// LoadRosterFile reads a roster from path, layered over base.
func LoadRosterFile(path string, base TournamentConfig) (TournamentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TournamentConfig{}, fmt.Errorf("roster: read %s: %w", path, err)
	}
	cfg, err := ParseRosterOver(data, base)
	if err != nil {
		return TournamentConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Config expands the roster into a TournamentConfig. A missing pool
// defaults to DefaultPool.
func (rf RosterFile) Config() (TournamentConfig, error) {
	return rf.ConfigOver(TournamentConfig{Pool: DefaultPool})
}

// ConfigOver expands the roster, taking pool, games and seed from base
// when the roster does not set them. Everything else comes from the roster.
func (rf RosterFile) ConfigOver(base TournamentConfig) (TournamentConfig, error) {
	cfg := TournamentConfig{
		Name:         rf.Name,
		Pool:         base.Pool,
		Games:        base.Games,
		Seed:         base.Seed,
		Shuffle:      rf.Shuffle,
		PollDirector: rf.PollDirector,
	}
	if rf.Pool != nil {
		cfg.Pool = *rf.Pool
	}
	if rf.Games != 0 {
		cfg.Games = rf.Games
	}
	if rf.Seed != 0 {
		cfg.Seed = rf.Seed
	}
	for i, e := range rf.Entrants {
		count := e.Count
		if count == 0 {
			count = 1
		}
		if count < 0 {
			return TournamentConfig{}, fmt.Errorf("%w: entrant %d has negative count", ErrInvalidTournament, i)
		}
		name := normalizeName(e.Strategy)
		if _, err := StrategyForName(name, nil); err != nil {
			return TournamentConfig{}, fmt.Errorf("entrant %d: %w", i, err)
		}
		for k := 0; k < count; k++ {
			cfg.Entrants = append(cfg.Entrants, name)
		}
	}
	if len(cfg.Entrants) == 0 {
		return TournamentConfig{}, fmt.Errorf("%w: no entrants", ErrInvalidTournament)
	}
	return cfg, nil
}
