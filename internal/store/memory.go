package store

import (
	"context"
	"sync"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// Memory is a map-backed Store used when the database file cannot be opened
// and by tests. Contents do not survive the process.
type Memory struct {
	mu       sync.RWMutex
	missions map[string]types.Mission
	lists    types.SuggestionLists
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		missions: make(map[string]types.Mission),
	}
}

// ListMissions retrieves all mission records
func (s *Memory) ListMissions(ctx context.Context) ([]types.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	missions := make([]types.Mission, 0, len(s.missions))
	for _, m := range s.missions {
		missions = append(missions, m)
	}
	return missions, nil
}

// GetMission retrieves one mission by id
func (s *Memory) GetMission(ctx context.Context, id string) (*types.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.missions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

// PutMission inserts or replaces a mission by id
func (s *Memory) PutMission(ctx context.Context, m types.Mission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.missions[m.ID] = m
	return nil
}

// DeleteMission removes a mission by id
func (s *Memory) DeleteMission(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.missions, id)
	return nil
}

// ReplaceMissions clears the mission set and installs the given one.
func (s *Memory) ReplaceMissions(ctx context.Context, missions []types.Mission) error {
	return s.Restore(ctx, missions, nil)
}

// GetLists retrieves the suggestion-list store
func (s *Memory) GetLists(ctx context.Context) (types.SuggestionLists, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lists == nil {
		return types.SuggestionLists{}, nil
	}
	copied := make(types.SuggestionLists, len(s.lists))
	for name, values := range s.lists {
		copied[name] = append([]string(nil), values...)
	}
	return copied, nil
}

// PutLists stores the suggestion-list store
func (s *Memory) PutLists(ctx context.Context, ls types.SuggestionLists) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists = cloneLists(ls)
	return nil
}

// Restore wholesale-replaces the mission set and, when ls is non-nil, the
// suggestion-list store, under one lock.
func (s *Memory) Restore(ctx context.Context, missions []types.Mission, ls types.SuggestionLists) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make(map[string]types.Mission, len(missions))
	for _, m := range missions {
		replacement[m.ID] = m
	}
	s.missions = replacement

	if ls != nil {
		s.lists = cloneLists(ls)
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Memory) Close() error {
	return nil
}

func cloneLists(ls types.SuggestionLists) types.SuggestionLists {
	copied := make(types.SuggestionLists, len(ls))
	for name, values := range ls {
		copied[name] = append([]string(nil), values...)
	}
	return copied
}
