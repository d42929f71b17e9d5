package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tiliavir/timesheet/internal/model"
)

// ErrNoEntries is returned by Last when the times table is empty.
var ErrNoEntries = errors.New("no entries recorded")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// The schema matches databases created by earlier releases of the tool, so it
// is created with plain DDL instead of AutoMigrate.
var schemaStatements = []string{
	"CREATE TABLE IF NOT EXISTS times (id INTEGER PRIMARY KEY, repo TEXT, branch TEXT, time INTEGER, duration INTEGER)",
	"CREATE INDEX IF NOT EXISTS idx_times_time ON times(time)",
}

// busyTimeoutMs is how long a second process waits for the write lock.
const busyTimeoutMs = 5000

// Store persists time entries in a single SQLite file.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and ensures the
// times table exists.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}
	// One process, one connection: keeps per-connection pragmas and
	// in-memory databases consistent.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMs)).Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("storage error configuring %s: %w", path, err)
	}
	for _, stmt := range schemaStatements {
		if err := db.Exec(stmt).Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("storage error creating schema: %w", err)
		}
	}

	slog.Debug("opened timesheet database", "path", path)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append inserts entries in a single transaction and fills in their IDs.
func (s *Store) Append(ctx context.Context, entries ...*model.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage error appending entries: %w", err)
	}
	slog.Debug("appended entries", "count", len(entries))
	return nil
}

// ErrMissingStart is returned when the most recent entry has no start time.
var ErrMissingStart = errors.New("last entry has no start time")

// lastRow reads the start column as nullable so a NULL start is reported
// instead of silently read as zero.
type lastRow struct {
	ID       int64
	Repo     *string
	Branch   *string
	Time     sql.NullInt64
	Duration int64
}

// Last returns the most recent entry by start time, breaking ties by insertion
// order. It returns ErrNoEntries when the table is empty.
func (s *Store) Last(ctx context.Context) (model.Entry, error) {
	var row lastRow
	err := s.db.WithContext(ctx).
		Model(&model.Entry{}).
		Select("id, repo, branch, time, COALESCE(duration, 0) AS duration").
		Order("time DESC").
		Order("id DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Entry{}, ErrNoEntries
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("storage error reading last entry: %w", err)
	}
	if !row.Time.Valid {
		return model.Entry{}, fmt.Errorf("storage error reading entry %d: %w", row.ID, ErrMissingStart)
	}
	return model.Entry{
		ID:       row.ID,
		Repo:     row.Repo,
		Branch:   row.Branch,
		Start:    row.Time.Int64,
		Duration: row.Duration,
	}, nil
}

// Range returns all entries whose start lies in [from, to), oldest first.
func (s *Store) Range(ctx context.Context, from, to int64) ([]model.Entry, error) {
	var entries []model.Entry
	if err := s.db.WithContext(ctx).
		Select("id, repo, branch, time, COALESCE(duration, 0) AS duration").
		Where("time >= ? AND time < ?", from, to).
		Order("time ASC").
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("storage error reading entries: %w", err)
	}
	return entries, nil
}

// Totals sums durations per (repo, branch) for entries whose start lies in
// [from, to). NULL identities are grouped with empty ones.
func (s *Store) Totals(ctx context.Context, from, to int64) ([]model.Total, error) {
	var totals []model.Total
	if err := s.db.WithContext(ctx).
		Model(&model.Entry{}).
		Select("COALESCE(repo, '') AS repo, COALESCE(branch, '') AS branch, SUM(COALESCE(duration, 0)) AS total").
		Where("time >= ? AND time < ?", from, to).
		Group("COALESCE(repo, ''), COALESCE(branch, '')").
		Order("COALESCE(repo, ''), COALESCE(branch, '')").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("storage error summing durations: %w", err)
	}
	return totals, nil
}
