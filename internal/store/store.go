// Package store persists mission records and the suggestion-list store.
// Two logical tables back the tool: missions keyed by id and a small
// settings table keyed by name.
package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// ErrNotFound is returned when a mission id has no stored record.
var ErrNotFound = errors.New("mission not found")

// SettingLists is the settings-table key holding the suggestion-list store.
const SettingLists = "suggestionLists"

// Store is the persistence adapter. Callers await every operation before
// reading a consistent view; there is no caching layer on top.
type Store interface {
	ListMissions(ctx context.Context) ([]types.Mission, error)
	GetMission(ctx context.Context, id string) (*types.Mission, error)
	PutMission(ctx context.Context, m types.Mission) error
	DeleteMission(ctx context.Context, id string) error
	// ReplaceMissions clears the mission table and bulk-inserts the given set.
	ReplaceMissions(ctx context.Context, missions []types.Mission) error

	GetLists(ctx context.Context) (types.SuggestionLists, error)
	PutLists(ctx context.Context, ls types.SuggestionLists) error

	// Restore replaces the mission set and, when lists is non-nil, the
	// suggestion-list store, as a single atomic unit: either all steps
	// apply or none do.
	Restore(ctx context.Context, missions []types.Mission, ls types.SuggestionLists) error

	Close() error
}

// Open opens the SQLite store at path, falling back to an in-memory store
// when the database cannot be opened. The fallback keeps the tool usable in
// the field (records survive the session only) and is logged loudly.
func Open(path string, logger *zap.Logger) Store {
	s, err := OpenSQLite(path)
	if err != nil {
		logger.Warn("falling back to in-memory store, records will not survive restart",
			zap.String("path", path), zap.Error(err))
		return NewMemory()
	}
	return s
}
