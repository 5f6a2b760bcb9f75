package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/province-map/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
// The parent directory is created when missing.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dsn); dir != "." && dsn != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "sqlite: create dir")
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS provisions (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL,
	status     TEXT NOT NULL,
	bytes      INTEGER NOT NULL DEFAULT 0,
	sha256     TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_provisions_created_at ON provisions(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordProvision inserts p, assigning an ID and timestamp when unset.
func (s *SQLiteStore) RecordProvision(ctx context.Context, p model.Provision) (*model.Provision, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO provisions (id, url, path, status, bytes, sha256, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.URL, p.Path, string(p.Status), p.Bytes, p.SHA256, p.Error, p.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: record provision")
	}
	return &p, nil
}

// ListProvisions returns the most recent provisions first.
func (s *SQLiteStore) ListProvisions(ctx context.Context, limit int) ([]model.Provision, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, path, status, bytes, sha256, error, created_at
		 FROM provisions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list provisions")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Provision
	for rows.Next() {
		var (
			p         model.Provision
			status    string
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.URL, &p.Path, &status, &p.Bytes, &p.SHA256, &p.Error, &createdAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan provision")
		}
		p.Status = model.ProvisionStatus(status)
		p.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: parse created_at")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list provisions iterate")
}
