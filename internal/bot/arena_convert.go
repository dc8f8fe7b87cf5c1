package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTournament is returned for malformed tournament settings.
var ErrInvalidTournament = errors.New("invalid tournament")

// ParseEntrants parses a comma-separated entrant list such as
// "rational,greedy*2,random". A "*k" suffix repeats the strategy k times.
// Every name must be registered.
func ParseEntrants(s string) ([]string, error) {
	var out []string
	for _, part := range splitConfig(s) {
		name, count := part, 1
		if idx := strings.IndexByte(part, '*'); idx >= 0 {
			n, err := strconv.Atoi(strings.TrimSpace(part[idx+1:]))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: bad repeat count in %q", ErrInvalidTournament, part)
			}
			name, count = part[:idx], n
		}
		name = normalizeName(name)
		if _, err := StrategyForName(name, nil); err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no entrants in %q", ErrInvalidTournament, s)
	}
	return out, nil
}

// SeatIdentities names each entrant after its strategy. Strategies entered
// more than once are numbered in entry order: "greedy#1", "greedy#2".
func SeatIdentities(entrants []string) []string {
	counts := make(map[string]int, len(entrants))
	for _, e := range entrants {
		counts[normalizeName(e)]++
	}
	seen := make(map[string]int, len(entrants))
	ids := make([]string, len(entrants))
	for i, e := range entrants {
		name := normalizeName(e)
		if counts[name] == 1 {
			ids[i] = name
			continue
		}
		seen[name]++
		ids[i] = fmt.Sprintf("%s#%d", name, seen[name])
	}
	return ids
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func splitConfig(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
