package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/internal/repository"
)

type mockArchive struct {
	mu          sync.Mutex
	tournaments map[string]*model.Tournament
}

func newMockArchive() *mockArchive {
	return &mockArchive{tournaments: make(map[string]*model.Tournament)}
}

func (m *mockArchive) CreateTournament(_ context.Context, t *model.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tournaments[t.ID] = &cp
	return nil
}

func (m *mockArchive) SaveGame(_ context.Context, rec model.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[rec.TournamentID]
	if !ok {
		return repository.ErrNotFound
	}
	t.Games = append(t.Games, rec)
	return nil
}

func (m *mockArchive) FinishTournament(_ context.Context, id string, standings []model.Standing, stats []model.StrategyStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = model.StatusFinished
	t.Standings = standings
	t.Stats = stats
	return nil
}

func (m *mockArchive) FindTournament(_ context.Context, id string) (*model.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockArchive) ListTournaments(_ context.Context, limit int) ([]model.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Tournament
	for _, t := range m.tournaments {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockBoard struct {
	mu    sync.Mutex
	units map[string]int64
	live  map[string]json.RawMessage
}

func newMockBoard() *mockBoard {
	return &mockBoard{units: make(map[string]int64), live: make(map[string]json.RawMessage)}
}

func (m *mockBoard) AddUnits(_ context.Context, strategy string, units int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[strategy] += int64(units)
	return nil
}

func (m *mockBoard) Top(_ context.Context, n int) ([]model.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LeaderboardEntry
	for s, u := range m.units {
		out = append(out, model.LeaderboardEntry{Strategy: s, Units: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Units > out[j].Units })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *mockBoard) SetLive(_ context.Context, id string, snap json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[id] = snap
	return nil
}

func (m *mockBoard) GetLive(_ context.Context, id string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live[id], nil
}

func (m *mockBoard) ClearLive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, id)
	return nil
}

type sentEvent struct {
	tournamentID string
	eventType    string
	data         any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
	done   chan string
	hold   chan struct{} // when set, tournament_started blocks until closed
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{done: make(chan string, 8)}
}

func (b *recordingBroadcaster) BroadcastTournamentEvent(id, eventType string, data any) {
	b.mu.Lock()
	b.events = append(b.events, sentEvent{id, eventType, data})
	b.mu.Unlock()
	if eventType == EventTournamentStarted && b.hold != nil {
		<-b.hold
	}
	if eventType == EventTournamentFinished || eventType == EventTournamentFailed {
		b.done <- eventType
	}
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.eventType
	}
	return out
}
