package bridge

import (
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// State is what the bridge remembers across page reloads: whether a
// legitimate origin was ever seen and the last identity processed.
type State struct {
	OriginValidated bool
	LastEmail       string
	IsAdmin         bool
}

// StateStore persists bridge state
type StateStore interface {
	Load() (State, error)
	Save(State) error
}

// MemoryStore is a process-local state store
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStore creates an empty in-memory state store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the current state
func (s *MemoryStore) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

// Save replaces the current state
func (s *MemoryStore) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

type stateRow struct {
	ID              int `gorm:"primarykey"`
	OriginValidated bool
	LastEmail       string
	IsAdmin         bool
}

func (stateRow) TableName() string {
	return "bridge_state"
}

// SQLiteStore keeps bridge state in a local SQLite file, so reloads and
// restarts of the embedded client see the previous run's state.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (and migrates) the state database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&stateRow{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: gdb}, nil
}

// Load returns the persisted state, zero when none was saved yet
func (s *SQLiteStore) Load() (State, error) {
	var row stateRow
	err := s.db.First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	return State{
		OriginValidated: row.OriginValidated,
		LastEmail:       row.LastEmail,
		IsAdmin:         row.IsAdmin,
	}, nil
}

// Save upserts the single state row
func (s *SQLiteStore) Save(state State) error {
	row := stateRow{
		ID:              1,
		OriginValidated: state.OriginValidated,
		LastEmail:       state.LastEmail,
		IsAdmin:         state.IsAdmin,
	}
	return s.db.Save(&row).Error
}
