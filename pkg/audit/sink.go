package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// LogSink writes entries to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s *LogSink) Write(ctx context.Context, e *LogEntry) error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "audit",
		"sequence", e.Sequence,
		"hash", e.Hash,
		"previous_hash", e.PreviousHash,
		"payload", e.Payload,
	)
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
	sequence      INTEGER NOT NULL,
	timestamp     TEXT    NOT NULL,
	previous_hash TEXT    NOT NULL,
	payload       TEXT    NOT NULL,
	hash          TEXT    PRIMARY KEY
)`

// SQLiteSink appends entries to an audit_log table.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink creates the audit_log table if needed.
func NewSQLiteSink(db *sql.DB) (*SQLiteSink, error) {
	if db == nil {
		return nil, errors.New("audit: nil database")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Write(ctx context.Context, e *LogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (sequence, timestamp, previous_hash, payload, hash) VALUES (?, ?, ?, ?, ?)`,
		e.Sequence, e.Timestamp, e.PreviousHash, e.Payload, e.Hash,
	)
	if err != nil {
		return fmt.Errorf("audit: insert entry %d: %w", e.Sequence, err)
	}
	return nil
}

// Load reads every stored entry in insertion order. Each process run
// starts a new chain at the genesis hash.
func (s *SQLiteSink) Load(ctx context.Context) ([]*LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sequence, timestamp, previous_hash, payload, hash FROM audit_log ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("audit: query entries: %w", err)
	}
	defer rows.Close()

	var out []*LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.PreviousHash, &e.Payload, &e.Hash); err != nil {
			return nil, fmt.Errorf("audit: scan entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSink builds a sink from an AUDIT_SINK value: "" or "log" for the
// structured logger, "sqlite://<path>" for a SQLite file.
func OpenSink(target string, logger *slog.Logger) (Sink, io.Closer, error) {
	switch {
	case target == "" || target == "log":
		return &LogSink{Logger: logger}, nopCloser{}, nil
	case strings.HasPrefix(target, "sqlite://"):
		path := strings.TrimPrefix(target, "sqlite://")
		if path == "" {
			return nil, nil, errors.New("audit: sqlite sink requires a path")
		}
		db, err := sql.Open("sqlite3", path)
		if err != nil {
			return nil, nil, fmt.Errorf("audit: open sqlite: %w", err)
		}
		sink, err := NewSQLiteSink(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return sink, db, nil
	default:
		return nil, nil, fmt.Errorf("audit: unsupported sink %q", target)
	}
}
