package spinwheel

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by a Store when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is the durable key-value storage of the widget. Values survive
// restarts; a corrupted or missing value is never fatal to the widget, only
// to the single read.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type kvRecord struct {
	Key       string `gorm:"primarykey"`
	Value     []byte
	UpdatedAt time.Time
}

func (kvRecord) TableName() string {
	return "local_store"
}

type localStore struct {
	db *gorm.DB
}

// OpenLocalStore opens (or creates) the widget storage file at path.
func OpenLocalStore(path string) (*localStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, err
	}

	return &localStore{db: db}, nil
}

func (s *localStore) Get(ctx context.Context, key string) ([]byte, error) {
	var record kvRecord
	err := s.db.WithContext(ctx).Take(&record, "key=?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return record.Value, nil
}

func (s *localStore) Set(ctx context.Context, key string, value []byte) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&kvRecord{Key: key, Value: value, UpdatedAt: time.Now()}).Error
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&kvRecord{}, "key=?", key).Error
}

type memoryStore struct {
	mutex  sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore returns a Store backed by a plain map. Nothing survives a
// restart; it serves tests and incognito-like sessions.
func NewMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]byte)}
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}

	return value, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.values, key)
	return nil
}
