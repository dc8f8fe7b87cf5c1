package bot

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleRoster = `
name: office-party
pool: 60
games: 6
seed: 42
shuffle: true
entrants:
  - strategy: rational
  - strategy: Greedy
    count: 2
`

func TestParseRoster(t *testing.T) {
	cfg, err := ParseRoster([]byte(sampleRoster))
	if err != nil {
		t.Fatalf("ParseRoster failed: %v", err)
	}
	want := TournamentConfig{
		Name:     "office-party",
		Entrants: []string{"rational", "greedy", "greedy"},
		Pool:     60,
		Games:    6,
		Seed:     42,
		Shuffle:  true,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("expected %+v, got %+v", want, cfg)
	}
}

func TestParseRosterDefaults(t *testing.T) {
	cfg, err := ParseRoster([]byte("entrants:\n  - strategy: fair\n"))
	if err != nil {
		t.Fatalf("ParseRoster failed: %v", err)
	}
	if cfg.Pool != DefaultPool {
		t.Errorf("expected default pool %d, got %d", DefaultPool, cfg.Pool)
	}

	cfg, err = ParseRoster([]byte("pool: 0\nentrants:\n  - strategy: fair\n"))
	if err != nil {
		t.Fatalf("ParseRoster failed: %v", err)
	}
	if cfg.Pool != 0 {
		t.Errorf("explicit zero pool should be kept, got %d", cfg.Pool)
	}
}

func TestParseRosterErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"empty", "   \n", nil},
		{"unknown key", "entrants:\n  - strategy: fair\ncolour: red\n", nil},
		{"unknown strategy", "entrants:\n  - strategy: blackbeard\n", ErrUnknownStrategy},
		{"negative count", "entrants:\n  - strategy: fair\n    count: -1\n", ErrInvalidTournament},
		{"no entrants", "name: lonely\n", ErrInvalidTournament},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoster([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadRosterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte(sampleRoster), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadRosterFile(path, TournamentConfig{})
	if err != nil {
		t.Fatalf("LoadRosterFile failed: %v", err)
	}
	if len(cfg.Entrants) != 3 {
		t.Errorf("expected 3 entrants, got %v", cfg.Entrants)
	}

	_, err = LoadRosterFile(filepath.Join(t.TempDir(), "missing.yaml"), TournamentConfig{})
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("expected error naming the file, got %v", err)
	}
}

func TestLoadRosterReader(t *testing.T) {
	cfg, err := LoadRosterReader(strings.NewReader(sampleRoster), TournamentConfig{})
	if err != nil {
		t.Fatalf("LoadRosterReader failed: %v", err)
	}
	if cfg.Name != "office-party" {
		t.Errorf("expected office-party, got %s", cfg.Name)
	}
}

func TestParseRosterOverBase(t *testing.T) {
	base := TournamentConfig{Pool: 7, Games: 3, Seed: 11}

	cfg, err := ParseRosterOver([]byte("entrants:\n  - strategy: fair\n    count: 2\n"), base)
	if err != nil {
		t.Fatalf("ParseRosterOver failed: %v", err)
	}
	if cfg.Pool != 7 || cfg.Games != 3 || cfg.Seed != 11 {
		t.Errorf("unset roster keys should come from base, got %+v", cfg)
	}

	cfg, err = ParseRosterOver([]byte("pool: 0\ngames: 5\nentrants:\n  - strategy: fair\n"), base)
	if err != nil {
		t.Fatalf("ParseRosterOver failed: %v", err)
	}
	if cfg.Pool != 0 || cfg.Games != 5 || cfg.Seed != 11 {
		t.Errorf("roster keys should win over base, got %+v", cfg)
	}
}
