// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a record of every served request in a SQLite
// database. Payloads are never stored, only metadata: operation, outcome,
// byte counts, duration, and peer address.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/convertd/pkg/types"
)

// Record is one served request.
type Record struct {
	ID          string
	Op          types.Operation
	Status      types.Status
	Code        types.ErrorCode
	Error       string
	InputBytes  int64
	OutputBytes int64
	Duration    time.Duration
	RemoteAddr  string
	CreatedAt   time.Time
}

// Store manages the request-history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at path, creating parent
// directories and the schema as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS requests (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			op TEXT NOT NULL,
			status TEXT NOT NULL,
			code TEXT,
			error TEXT,
			input_bytes INTEGER NOT NULL,
			output_bytes INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			remote_addr TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_op ON requests(op)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Append inserts one record.
func (s *Store) Append(ctx context.Context, r Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, op, status, code, error, input_bytes, output_bytes, duration_ms, remote_addr, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Op), string(r.Status), string(r.Code), r.Error,
		r.InputBytes, r.OutputBytes, r.Duration.Milliseconds(),
		r.RemoteAddr, r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A zero or negative
// limit defaults to 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, op, status, code, error, input_bytes, output_bytes, duration_ms, remote_addr, created_at
		 FROM requests ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r                Record
			op, status, code string
			durationMS       int64
			createdAt        string
		)
		if err := rows.Scan(&r.ID, &op, &status, &code, &r.Error,
			&r.InputBytes, &r.OutputBytes, &durationMS, &r.RemoteAddr, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		r.Op = types.Operation(op)
		r.Status = types.Status(status)
		r.Code = types.ErrorCode(code)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountByStatus returns the number of stored requests per status.
func (s *Store) CountByStatus(ctx context.Context) (map[types.Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, count(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting history: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[types.Status(status)] = n
	}
	return counts, rows.Err()
}
