package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB holds the split connection pair for the snapshot store. Snapshot writes
// are rare (one per generated report) while the history list reads often, so
// a single writer plus a small reader pool keeps SQLite out of "database is
// locked" territory without further coordination.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// snapshotDSN builds the DSN with the pragmas the store relies on: WAL for
// concurrent reads during a write, a 5s busy timeout, NORMAL sync, foreign
// keys on, and a 64MB page cache.
func snapshotDSN(dbPath string) string {
	return fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		dbPath,
	)
}

// openConn opens and pings one connection pool capped at maxConns.
func openConn(dsn string, maxConns int) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(maxConns)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// NewDB opens the snapshot database at dbPath with a single-connection writer
// and a four-connection reader pool.
func NewDB(dbPath string) (*DB, error) {
	dsn := snapshotDSN(dbPath)

	writer, err := openConn(dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	reader, err := openConn(dsn, 4)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   dbPath,
	}, nil
}

// Close closes both pools, reader first, and returns the first error seen.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}
