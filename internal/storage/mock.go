package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/grand-tour/pkg/leaderboard"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

// MockStorage is an in-memory Storage for tests. Sessions live in a
// map; the leaderboard delegates to the in-memory Register.
type MockStorage struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*state.PlayerState
	register *leaderboard.Register

	// Optional error injection for failure-path tests.
	SaveErr   error
	LoadErr   error
	RecordErr error
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty in-memory storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*state.PlayerState),
		register: leaderboard.NewRegister(leaderboard.DefaultCapacity),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SavePlayerState(ctx context.Context, id uuid.UUID, ps *state.PlayerState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ps
	m.sessions[id] = &cp
	return nil
}

func (m *MockStorage) LoadPlayerState(ctx context.Context, id uuid.UUID) (*state.PlayerState, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ps, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *ps
	return &cp, nil
}

func (m *MockStorage) DeletePlayerState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) RecordScore(ctx context.Context, entry leaderboard.Entry) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.register.Record(entry)
	return nil
}

func (m *MockStorage) TopScores(ctx context.Context, k int) ([]leaderboard.Entry, error) {
	entries, _ := m.register.TopK(k)
	return entries, nil
}
