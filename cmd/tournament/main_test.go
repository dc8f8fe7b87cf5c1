package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freeeve/regifting/internal/auth"
	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/client"
	"github.com/freeeve/regifting/internal/handler"
	"github.com/freeeve/regifting/internal/report"
	"github.com/freeeve/regifting/internal/service"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"REGIFTING_DATABASE_DIALECT", "REGIFTING_DATABASE_URL", "REGIFTING_REDIS_URL", "REDIS_URL", "DATABASE_URL", "REGIFTING_TOKEN"} {
		t.Setenv(k, "")
	}
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStrategiesCommand(t *testing.T) {
	out, err := execute(t, "strategies")
	if err != nil {
		t.Fatalf("strategies: %v", err)
	}
	for _, name := range bot.Names() {
		if !strings.Contains(out, name) {
			t.Errorf("missing %s in output", name)
		}
	}
}

func TestPlayJSON(t *testing.T) {
	out, err := execute(t, "play", "greedy", "vengeful", "rational", "--pool", "10", "--json")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	var res bot.TournamentResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(res.Games) != 1 {
		t.Fatalf("expected one game, got %d", len(res.Games))
	}
	g := res.Games[0]
	if g.Seating[0] != "greedy" || g.Resolution != "accepted" {
		t.Errorf("unexpected game: %+v", g)
	}
	if len(g.Accepted) != 3 || g.Accepted[0] != 8 {
		t.Errorf("expected greedy to keep 8, got %v", g.Accepted)
	}
}

func TestRunConsole(t *testing.T) {
	out, err := execute(t, "run", "--strategies", "rational,greedy,fair", "--pool", "30", "--seed", "3", "--quiet")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Standings", "Strategy statistics", "Game 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "proposes") {
		t.Error("quiet mode should not print proposals")
	}
}

func TestRunArchivesToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.sqlite")
	out, err := execute(t, "run", "-s", "greedy*2", "--pool", "10", "--quiet", "--archive", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "archived as ") {
		t.Errorf("expected archive id in output:\n%s", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected archive file: %v", err)
	}
}

func TestRunRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "office.yaml")
	doc := "name: office\npool: 12\ngames: 2\nseed: 4\nentrants:\n  - strategy: fair\n    count: 2\n  - strategy: greedy\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "run", "--roster", path, "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var res bot.TournamentResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Name != "office" || res.Pool != 12 || len(res.Games) != 2 || len(res.Totals) != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRunRosterOverConfigFile(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "regifting.yaml")
	if err := os.WriteFile(conf, []byte("tournament:\n  pool: 7\n  games: 3\n  seed: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	roster := filepath.Join(dir, "roster.yaml")
	if err := os.WriteFile(roster, []byte("entrants:\n  - strategy: fair\n  - strategy: greedy\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		extra    []string
		wantPool int
	}{
		{"config fills unset roster keys", nil, 7},
		{"flag wins over both", []string{"--pool", "11"}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--config", conf, "--roster", roster, "--json"}, tt.extra...)
			out, err := execute(t, args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			var res bot.TournamentResult
			if err := json.Unmarshal([]byte(out), &res); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if res.Pool != tt.wantPool || res.Seed != 5 || len(res.Games) != 3 {
				t.Errorf("pool=%d seed=%d games=%d, want pool=%d seed=5 games=3", res.Pool, res.Seed, len(res.Games), tt.wantPool)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no entrants", []string{"run"}},
		{"unknown strategy", []string{"run", "-s", "scrooge"}},
		{"both sources", []string{"run", "-s", "greedy", "--roster", "x.yaml"}},
		{"negative pool", []string{"run", "-s", "greedy", "--pool=-1"}},
		{"play without seats", []string{"play"}},
		{"leaderboard without redis", []string{"leaderboard"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestArchiveDialect(t *testing.T) {
	tests := []struct {
		dsn, explicit, want string
	}{
		{"results.sqlite", "", "sqlite"},
		{"postgres://u@h/db", "", "postgres"},
		{"postgresql://u@h/db", "", "postgres"},
		{"host=x dbname=y", "postgres", "postgres"},
	}
	for _, tt := range tests {
		if got := archiveDialect(tt.dsn, tt.explicit); got != tt.want {
			t.Errorf("archiveDialect(%q, %q) = %q, want %q", tt.dsn, tt.explicit, got, tt.want)
		}
	}
}

func newRemoteServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := handler.NewHub()
	svc := service.NewTournamentService(nil, nil, hub, service.Defaults{Pool: 10}, 2)
	t.Cleanup(svc.Close)
	srv := httptest.NewServer(handler.NewRouter(handler.RouterConfig{
		Service:  svc,
		Hub:      hub,
		JWT:      auth.NewJWTManager("test-secret"),
		DevLogin: true,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteCommand(t *testing.T) {
	srv := newRemoteServer(t)
	for _, watch := range []bool{false, true} {
		args := []string{"remote", "--server", srv.URL, "-s", "rational,greedy,fair", "--pool", "30"}
		if watch {
			args = append(args, "--watch")
		}
		out, err := execute(t, args...)
		if err != nil {
			t.Fatalf("remote watch=%v: %v", watch, err)
		}
		if !strings.Contains(out, "Standings") || !strings.Contains(out, "Strategy statistics") {
			t.Errorf("watch=%v: missing final tables:\n%s", watch, out)
		}
	}
}

func TestFollowTournamentFailure(t *testing.T) {
	events := make(chan client.Event, 3)
	events <- client.Event{Type: service.EventGameStarted, TournamentID: "other", Data: json.RawMessage(`{}`)}
	events <- client.Event{Type: service.EventTournamentFailed, TournamentID: "t-1", Data: json.RawMessage(`{"error":"archive down"}`)}
	var buf bytes.Buffer
	err := followTournament(context.Background(), events, "t-1", report.NewConsole(&buf, false))
	if err == nil || !strings.Contains(err.Error(), "archive down") {
		t.Fatalf("expected failure, got %v", err)
	}

	close(events)
	if err := followTournament(context.Background(), events, "t-1", report.NewConsole(&buf, false)); err == nil {
		t.Error("expected error on closed stream")
	}
}

func TestRunRosterFromStdin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("pool: 9\nentrants:\n  - strategy: rational\n  - strategy: greedy\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--roster", "-", "--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}
	var res bot.TournamentResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Pool != 9 || len(res.Games) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
}
