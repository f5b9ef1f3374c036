package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vget/vget/internal/download"
	"github.com/vget/vget/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dbFile = "history.db"

// Entry is one persisted terminal download.
type Entry struct {
	ID         int64
	URL        string
	Filename   string
	Status     model.Status
	Size       string
	LastError  string
	AddedAt    time.Time
	FinishedAt time.Time
}

// Store writes terminal downloads to SQLite.
type Store struct {
	db *sqlx.DB
}

var _ download.Recorder = (*Store)(nil)

// Open creates or opens the history database under dataDir and applies
// pending migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", filepath.Join(dataDir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db := sqlx.NewDb(sqlDB, "sqlite3")
	// SQLite does not support concurrent writers.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// entryRow maps the SQL table to a Go struct.
type entryRow struct {
	ID         int64  `db:"id"`
	URL        string `db:"url"`
	Filename   string `db:"filename"`
	Status     string `db:"status"`
	Size       string `db:"size"`
	LastError  string `db:"last_error"`
	AddedAt    int64  `db:"added_at"`
	FinishedAt int64  `db:"finished_at"`
}

// Record inserts one terminal download.
func (s *Store) Record(ctx context.Context, dl model.Download) error {
	query := `
		INSERT INTO download_history (url, filename, status, size, last_error, added_at, finished_at)
		VALUES (:url, :filename, :status, :size, :last_error, :added_at, :finished_at)
	`

	_, err := s.db.NamedExecContext(ctx, query, map[string]interface{}{
		"url":         dl.URL,
		"filename":    dl.Filename,
		"status":      dl.Status.String(),
		"size":        dl.Size,
		"last_error":  dl.LastError,
		"added_at":    dl.AddedAt.Unix(),
		"finished_at": dl.FinishedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Recent returns the most recently finished entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var rows []entryRow

	query := `
		SELECT * FROM download_history
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("select history entries: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			ID:         row.ID,
			URL:        row.URL,
			Filename:   row.Filename,
			Status:     model.Status(row.Status),
			Size:       row.Size,
			LastError:  row.LastError,
			AddedAt:    time.Unix(row.AddedAt, 0),
			FinishedAt: time.Unix(row.FinishedAt, 0),
		})
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
