package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id        TEXT PRIMARY KEY,
	owner_id  TEXT NOT NULL,
	image_url TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS projects_owner_ts ON projects(owner_id, timestamp DESC);
`

// OpenDB opens the SQLite database at path with WAL journaling, a busy
// timeout and the projects schema applied. ":memory:" opens a private
// in-memory database on a single connection.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("project db: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("project db: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("project db: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("project db: schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("project db: ping: %w", err)
	}
	return db, nil
}

// SQLiteStore is a Gateway on a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	auth   Authenticator
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// StoreOption configures a SQLiteStore.
type StoreOption func(*SQLiteStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *SQLiteStore) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *SQLiteStore) { s.newID = gen }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *SQLiteStore) { s.logger = l }
}

// NewSQLiteStore wraps an open database. The schema must already exist;
// OpenDB creates it.
func NewSQLiteStore(db *sql.DB, a Authenticator, opts ...StoreOption) *SQLiteStore {
	s := &SQLiteStore{
		db:     db,
		auth:   a,
		now:    time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// authorize checks that ownerID is the signed-in user.
func (s *SQLiteStore) authorize(op, ownerID string) error {
	u, ok := s.auth.CurrentUser()
	if !ok {
		return editerr.Validationf(op, "no signed-in user")
	}
	if ownerID != u.ID {
		return editerr.Validationf(op, "owner %q is not the signed-in user", ownerID)
	}
	return nil
}

// Save implements Gateway.
func (s *SQLiteStore) Save(ctx context.Context, ownerID string, id ID, imageURL string) (string, error) {
	if err := s.authorize("project.save", ownerID); err != nil {
		return "", err
	}
	if strings.TrimSpace(imageURL) == "" {
		return "", editerr.Validationf("project.save", "image url is required")
	}
	ts := s.now().UnixMilli()

	existing, ok := id.Get()
	if !ok {
		newID := s.newID()
		_, err := execRetry(ctx, s.db,
			`INSERT INTO projects (id, owner_id, image_url, timestamp) VALUES (?, ?, ?, ?)`,
			newID, ownerID, imageURL, ts)
		if err != nil {
			return "", editerr.IO("project.save", err)
		}
		s.logger.Info("project created", "project_id", newID, "owner_id", ownerID)
		return newID, nil
	}

	res, err := execRetry(ctx, s.db,
		`UPDATE projects SET image_url = ?, timestamp = ? WHERE id = ? AND owner_id = ?`,
		imageURL, ts, existing, ownerID)
	if err != nil {
		return "", editerr.IO("project.save", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", editerr.IO("project.save", err)
	} else if n == 0 {
		return "", editerr.NotFound("project.save", fmt.Errorf("project %s", existing))
	}
	s.logger.Info("project updated", "project_id", existing, "owner_id", ownerID)
	return existing, nil
}

// List implements Gateway.
func (s *SQLiteStore) List(ctx context.Context, ownerID string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if err := s.authorize("project.list", ownerID); err != nil {
			yield(Record{}, err)
			return
		}
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, owner_id, image_url, timestamp FROM projects
			 WHERE owner_id = ? ORDER BY timestamp DESC, id DESC`, ownerID)
		if err != nil {
			yield(Record{}, editerr.IO("project.list", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r Record
			var ts int64
			if err := rows.Scan(&r.ID, &r.OwnerID, &r.ImageURL, &ts); err != nil {
				yield(Record{}, editerr.IO("project.list", err))
				return
			}
			r.Timestamp = time.UnixMilli(ts)
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Record{}, editerr.IO("project.list", err))
		}
	}
}

// Delete implements Gateway.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	u, ok := s.auth.CurrentUser()
	if !ok {
		return editerr.Validationf("project.delete", "no signed-in user")
	}
	return runTx(ctx, s.db, func(tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx, `SELECT owner_id FROM projects WHERE id = ?`, id).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return editerr.NotFound("project.delete", fmt.Errorf("project %s", id))
		}
		if err != nil {
			return editerr.IO("project.delete", err)
		}
		if owner != u.ID {
			return editerr.Validationf("project.delete", "project %s belongs to another user", id)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
			return editerr.IO("project.delete", err)
		}
		s.logger.Info("project deleted", "project_id", id, "owner_id", owner)
		return nil
	})
}

// DeleteAllByOwner implements Gateway.
func (s *SQLiteStore) DeleteAllByOwner(ctx context.Context, ownerID string) (int, error) {
	if err := s.authorize("project.delete_all", ownerID); err != nil {
		return 0, err
	}
	var n int64
	err := runTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE owner_id = ?`, ownerID)
		if err != nil {
			return editerr.IO("project.delete_all", err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return editerr.IO("project.delete_all", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("projects cleared", "owner_id", ownerID, "count", n)
	return int(n), nil
}
