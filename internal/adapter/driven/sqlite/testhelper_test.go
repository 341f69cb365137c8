package sqlite

import (
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB builds a migrated in-memory database with the same
// writer/reader split the production store uses. cache=shared makes both
// pools see one database; naming it after the test keeps parallel tests
// isolated from each other.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// The test name goes into a file: URI, so percent-encode it to keep
	// slashes and question marks out of the DSN.
	name := url.PathEscape(t.Name())
	// In-memory databases have no journal, so the WAL pragma is omitted here.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		name,
	)

	writer, err := openConn(dsn, 1)
	if err != nil {
		t.Fatalf("open test db writer: %v", err)
	}

	reader, err := openConn(dsn, 4)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("open test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}
