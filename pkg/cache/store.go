// Package cache persists generated explanations in SQLite.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/saint0x/repoexplain/pkg/log"
	_ "modernc.org/sqlite"
)

// DefaultTTL is how long an explanation stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// ErrNotFound is returned by Get when no unexpired row exists.
var ErrNotFound = errors.New("cache: no entry")

// Entry is one cached explanation.
type Entry struct {
	ID            int64
	Owner         string
	Repo          string
	Explanation   string
	DirectoryHash string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Store wraps the explanation database.
type Store struct {
	conn   *sql.DB
	ttl    time.Duration
	logger *log.Logger
}

const schema = `
	CREATE TABLE IF NOT EXISTS repo_explanations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner TEXT NOT NULL,
		repo_name TEXT NOT NULL,
		explanation TEXT NOT NULL,
		directory_hash TEXT,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_owner_repo ON repo_explanations(owner, repo_name);
	CREATE INDEX IF NOT EXISTS idx_expires_at ON repo_explanations(expires_at);
`

// Open opens or creates the database at path. ":memory:" gives a private
// in-process database.
func Open(path string, ttl time.Duration, logger *log.Logger) (*Store, error) {
	memory := path == ":memory:"
	if !memory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if memory {
		// every new connection would get its own empty database
		conn.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger.Debug("Opened cache database at %s", path)
	return &Store{conn: conn, ttl: ttl, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Get returns the newest explanation for owner/repo that has not expired
// at now.
func (s *Store) Get(ctx context.Context, owner, repo string, now time.Time) (*Entry, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, owner, repo_name, explanation, directory_hash, created_at, expires_at
		FROM repo_explanations
		WHERE owner = ? AND repo_name = ? AND expires_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, owner, repo, now.Unix())

	var (
		e                  Entry
		hash               sql.NullString
		created, expiresAt int64
	)
	err := row.Scan(&e.ID, &e.Owner, &e.Repo, &e.Explanation, &hash, &created, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	e.DirectoryHash = hash.String
	e.CreatedAt = time.Unix(created, 0).UTC()
	e.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &e, nil
}

// Put replaces any stored explanation for owner/repo with a new one that
// expires after the store's TTL.
func (s *Store) Put(ctx context.Context, owner, repo, explanation, directoryHash string, now time.Time) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM repo_explanations WHERE owner = ? AND repo_name = ?`,
		owner, repo,
	); err != nil {
		return fmt.Errorf("failed to clear cache entry: %w", err)
	}

	var hash sql.NullString
	if directoryHash != "" {
		hash = sql.NullString{String: directoryHash, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO repo_explanations (owner, repo_name, explanation, directory_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, owner, repo, explanation, hash, now.Unix(), now.Add(s.ttl).Unix()); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return tx.Commit()
}

// DeleteExpired removes rows that expired at or before now and reports how
// many were removed.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM repo_explanations WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}
	return res.RowsAffected()
}
