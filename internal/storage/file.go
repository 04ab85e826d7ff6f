package storage

import (
	"os"
	"path/filepath"
	"sync"

	"gamertimer/internal/core/model"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const timersFileName = "timers.yaml"

type timersFile struct {
	Timers []model.Timer `yaml:"timers"`
}

// FileStore keeps every timer in a single YAML document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store writing to timers.yaml in dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, timersFileName)}
}

// Path returns the document location.
func (st *FileStore) Path() string {
	return st.path
}

// LoadAll returns every stored timer keyed by id. A missing file is empty.
func (st *FileStore) LoadAll() (map[string]model.Timer, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rawData, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]model.Timer{}, nil
		}
		return nil, errors.Wrap(err, "read timers file")
	}

	var fileData timersFile
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return nil, errors.Wrap(err, "parse timers yaml")
	}

	timers := make(map[string]model.Timer, len(fileData.Timers))
	for _, timer := range fileData.Timers {
		if timer.ID == "" {
			continue
		}
		timers[timer.ID] = timer
	}
	return timers, nil
}

// SaveAll replaces the document with timers.
func (st *FileStore) SaveAll(timers map[string]model.Timer) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	fileData := timersFile{Timers: make([]model.Timer, 0, len(timers))}
	for id, timer := range timers {
		timer.ID = id
		fileData.Timers = append(fileData.Timers, timer)
	}
	sortTimers(fileData.Timers)

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return errors.Wrap(err, "marshal timers yaml")
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return errors.Wrap(err, "create data directory")
	}
	if err := writeFileAtomic(st.path, serialized); err != nil {
		return errors.Wrap(err, "write timers file")
	}
	return nil
}

// Close is a no-op; the file is written synchronously.
func (st *FileStore) Close() error {
	return nil
}
