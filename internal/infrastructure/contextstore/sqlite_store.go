package contextstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/pkg/filesystem"
	"github.com/doeshing/k8sllm/internal/ports"
)

// SQLiteStore persists interactions in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	log  ports.Logger
}

// DefaultSQLitePath returns ~/.k8sllm/context.db.
func DefaultSQLitePath() string {
	return filepath.Join(filesystem.AppDir(), "context.db")
}

// NewSQLiteStore creates (or opens) the database at path and ensures the schema.
func NewSQLiteStore(path string, log ports.Logger) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db, path: path, log: log}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS interactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		query TEXT NOT NULL,
		command TEXT NOT NULL,
		result TEXT NOT NULL
	);`)
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load implements ports.ContextStore.
func (s *SQLiteStore) Load(ctx context.Context) []domain.Interaction {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, query, command, result FROM interactions ORDER BY seq ASC`)
	if err != nil {
		s.warn("context load failed, starting empty", err)
		return []domain.Interaction{}
	}
	defer rows.Close()

	records := []domain.Interaction{}
	for rows.Next() {
		var rec domain.Interaction
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.Query, &rec.Command, &rec.Result); err != nil {
			s.warn("context row unreadable, starting empty", err)
			return []domain.Interaction{}
		}
		if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
			rec.Timestamp = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		s.warn("context load failed, starting empty", err)
		return []domain.Interaction{}
	}
	return records
}

// Append implements ports.ContextStore. Insert and trim share one transaction.
func (s *SQLiteStore) Append(ctx context.Context, query, command, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := newInteraction(query, command, result)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO interactions (id, timestamp, query, command, result) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.Format(domain.TimestampFormat), rec.Query, rec.Command, rec.Result,
	); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM interactions WHERE seq NOT IN (SELECT seq FROM interactions ORDER BY seq DESC LIMIT ?)`,
		domain.MaxStoredInteractions,
	); err != nil {
		return fmt.Errorf("trim interactions: %w", err)
	}
	return tx.Commit()
}

// Clear implements ports.ContextStore.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM interactions")
	return err
}

// FormattedContext implements ports.ContextStore.
func (s *SQLiteStore) FormattedContext(ctx context.Context) (string, bool) {
	return Format(s.Load(ctx))
}

func (s *SQLiteStore) warn(msg string, err error) {
	if s.log == nil {
		return
	}
	s.log.Warn(msg, map[string]interface{}{"path": s.path, "error": err.Error()})
}

var _ ports.ContextStore = (*SQLiteStore)(nil)
