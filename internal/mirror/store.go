package mirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// State is the single persisted row of mirror state.
type State struct {
	ID             uint `gorm:"primarykey"`
	SessionID      string
	SessionTitle   string
	SessionSubject string
	SecondsLeft    int
	Mode           string
	UpdatedAt      time.Time
}

// TableName pins the table name for the single-row state record.
func (State) TableName() string { return "timer_state" }

// Store persists mirror state to a local SQLite database so the counter
// survives restarts.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (creating if needed) the state database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.AutoMigrate(&State{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	return &Store{db: db}, nil
}

// DefaultStatePath returns the per-user location of the state database.
func DefaultStatePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".grindtimer", "state.db"), nil
}

// Load returns the persisted state, or nil when none was saved yet.
func (s *Store) Load() (*State, error) {
	var state State
	err := s.db.First(&state, 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// Save upserts the single state row.
func (s *Store) Save(state State) error {
	state.ID = 1
	state.UpdatedAt = time.Now()
	return s.db.Save(&state).Error
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
