package storage

import (
	"path/filepath"
	"sync"
	"time"

	"gamertimer/internal/ui/preferences"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const settingsDebounce = 100 * time.Millisecond

// SettingsWatcher reloads the settings file when it changes on disk.
type SettingsWatcher struct {
	mu       sync.Mutex
	path     string
	watcher  *fsnotify.Watcher
	onChange []func(preferences.Settings)
	log      zerolog.Logger
	debounce *time.Timer
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// WatchSettings starts watching the directory that contains path.
func WatchSettings(path string, log zerolog.Logger) (*SettingsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrap(err, "watch settings directory")
	}

	settingsWatcher := &SettingsWatcher{
		path:    path,
		watcher: watcher,
		log:     log.With().Str("module", "settings-watcher").Logger(),
		done:    make(chan struct{}),
	}
	settingsWatcher.wg.Add(1)
	go settingsWatcher.watchLoop()
	return settingsWatcher, nil
}

// OnChange registers a callback invoked with every successfully reloaded file.
func (w *SettingsWatcher) OnChange(cb func(preferences.Settings)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, cb)
}

// Close stops watching.
func (w *SettingsWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
	})
	return errors.Wrap(err, "close watcher")
}

func (w *SettingsWatcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(settingsDebounce, w.reload)
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("settings watcher error")
		}
	}
}

func (w *SettingsWatcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	settings, err := LoadSettings(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("failed to reload settings")
		return
	}

	w.mu.Lock()
	callbacks := append([]func(preferences.Settings){}, w.onChange...)
	w.mu.Unlock()

	w.log.Debug().Str("path", w.path).Msg("settings reloaded")
	for _, cb := range callbacks {
		cb(settings)
	}
}
