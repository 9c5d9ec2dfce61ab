// ABOUTME: Catalog store backed by gorm and sqlite
// ABOUTME: Adds, lists, updates and deletes recording records keyed by file path
package catalog

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when no record has the given path
var ErrNotFound = errors.New("recording not found")

// Store persists recording records
type Store struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// zapWriter routes gorm's logger output to zap
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Debugf(format, args...)
}

// Open opens (creating if needed) the sqlite catalog at path and migrates the schema
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(zapWriter{log: log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}

	log.Infow("catalog opened", "path", path)
	return &Store{db: db, log: log, now: time.Now}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AddRecord inserts a record; a record with the same path is left untouched
func (s *Store) AddRecord(path, title, description string, durationSeconds float64) error {
	rec := Record{
		Title:       title,
		Path:        path,
		Description: description,
		CreatedAt:   s.now(),
		Duration:    durationSeconds,
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoNothing: true,
	}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("failed to add recording %s: %w", path, result.Error)
	}

	s.log.Debugw("recording added", "path", path, "duration", durationSeconds, "inserted", result.RowsAffected > 0)
	return nil
}

// ListRecords returns all records, newest first
func (s *Store) ListRecords() ([]Record, error) {
	var records []Record
	if err := s.db.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	return records, nil
}

// Get returns the record for path
func (s *Store) Get(path string) (Record, error) {
	var rec Record
	err := s.db.Where("path = ?", path).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load recording %s: %w", path, err)
	}
	return rec, nil
}

// UpdateTitleDescription replaces the title and description of the record for path
func (s *Store) UpdateTitleDescription(path, title, description string) error {
	result := s.db.Model(&Record{}).Where("path = ?", path).Updates(map[string]interface{}{
		"title":       title,
		"description": description,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update recording %s: %w", path, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecord removes the record for path
func (s *Store) DeleteRecord(path string) error {
	result := s.db.Where("path = ?", path).Delete(&Record{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recording %s: %w", path, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
