// Package storage persists timer definitions and user settings.
package storage

import (
	"sort"

	"gamertimer/internal/core/model"
	"gamertimer/internal/ui/preferences"

	"github.com/pkg/errors"
)

// TimerStore is a closable timer persistence backend.
type TimerStore interface {
	LoadAll() (map[string]model.Timer, error)
	SaveAll(timers map[string]model.Timer) error
	Close() error
}

// OpenTimerStore opens the backend named by settings in dir.
func OpenTimerStore(backend, dir string) (TimerStore, error) {
	switch backend {
	case preferences.StoreLevelDB:
		st, err := OpenLevelDBStore(dir)
		if err != nil {
			return nil, err
		}
		return st, nil
	case preferences.StoreFile:
		return NewFileStore(dir), nil
	default:
		return nil, errors.Errorf("unknown store backend, %q", backend)
	}
}

func sortTimers(timers []model.Timer) {
	sort.Slice(timers, func(i, j int) bool {
		if !timers[i].CreatedAt.Equal(timers[j].CreatedAt) {
			return timers[i].CreatedAt.Before(timers[j].CreatedAt)
		}
		return timers[i].ID < timers[j].ID
	})
}
