package storage

import (
	"path/filepath"
	"strings"

	"gamertimer/internal/core/model"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbOpt "github.com/syndtr/goleveldb/leveldb/opt"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbutil "github.com/syndtr/goleveldb/leveldb/util"
)

const timerKeyPrefix = "timer/"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var levelDBOptions = &leveldbOpt.Options{
	ErrorIfExist:   false,
	ErrorIfMissing: false,
}

// LevelDBStore keeps one record per timer under the "timer/" prefix.
type LevelDBStore struct {
	lst leveldbStorage.Storage
	db  *leveldb.DB
}

// OpenLevelDBStore opens or creates the store in dir.
func OpenLevelDBStore(dir string) (*LevelDBStore, error) {
	lst, err := leveldbStorage.OpenFile(filepath.Clean(dir), false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open leveldb")
	}
	return newLevelDBStore(lst)
}

// NewMemLevelDBStore returns a store backed by memory.
func NewMemLevelDBStore() (*LevelDBStore, error) {
	return newLevelDBStore(leveldbStorage.NewMemStorage())
}

func newLevelDBStore(lst leveldbStorage.Storage) (*LevelDBStore, error) {
	db, err := leveldb.Open(lst, levelDBOptions)
	if err != nil {
		_ = lst.Close()
		return nil, errors.Wrap(err, "failed to open leveldb")
	}
	return &LevelDBStore{lst: lst, db: db}, nil
}

// LoadAll returns every stored timer keyed by id.
func (st *LevelDBStore) LoadAll() (map[string]model.Timer, error) {
	iter := st.db.NewIterator(leveldbutil.BytesPrefix([]byte(timerKeyPrefix)), nil)
	defer iter.Release()

	timers := map[string]model.Timer{}
	for iter.Next() {
		id := strings.TrimPrefix(string(iter.Key()), timerKeyPrefix)

		var timer model.Timer
		if err := json.Unmarshal(iter.Value(), &timer); err != nil {
			return nil, errors.Wrapf(err, "failed to decode timer, %q", id)
		}
		timer.ID = id
		timers[id] = timer
	}

	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate timers")
	}
	return timers, nil
}

// SaveAll replaces the stored set with timers in one batch.
func (st *LevelDBStore) SaveAll(timers map[string]model.Timer) error {
	batch := &leveldb.Batch{}

	iter := st.db.NewIterator(leveldbutil.BytesPrefix([]byte(timerKeyPrefix)), nil)
	for iter.Next() {
		id := strings.TrimPrefix(string(iter.Key()), timerKeyPrefix)
		if _, keep := timers[id]; !keep {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "failed to iterate timers")
	}

	for id, timer := range timers {
		timer.ID = id
		b, err := json.Marshal(timer)
		if err != nil {
			return errors.Wrapf(err, "failed to encode timer, %q", id)
		}
		batch.Put([]byte(timerKeyPrefix+id), b)
	}

	return errors.Wrap(st.db.Write(batch, &leveldbOpt.WriteOptions{Sync: true}), "failed to write timers")
}

// Close releases the database and then its storage, which holds the
// directory lock.
func (st *LevelDBStore) Close() error {
	if err := st.db.Close(); err != nil {
		return errors.Wrap(err, "failed to close leveldb")
	}
	if err := st.lst.Close(); err != nil {
		return errors.Wrap(err, "failed to close leveldb storage")
	}
	return nil
}
