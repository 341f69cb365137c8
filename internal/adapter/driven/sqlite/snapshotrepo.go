package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/StarkFurry64/polaris/internal/domain/model"
	"github.com/StarkFurry64/polaris/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SnapshotStore = (*SnapshotRepo)(nil)

// SnapshotRepo is the SQLite implementation of the SnapshotStore port.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a new SnapshotRepo backed by the given DB.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save inserts a snapshot and returns its assigned ID. A zero CreatedAt is
// replaced with the current UTC time.
func (r *SnapshotRepo) Save(ctx context.Context, snapshot model.ReportSnapshot) (int64, error) {
	const query = `INSERT INTO report_snapshots (repo, kind, title, markdown, html, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	createdAt := snapshot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		snapshot.Repo,
		string(snapshot.Kind),
		snapshot.Title,
		snapshot.Markdown,
		snapshot.HTML,
		snapshot.Payload,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("save snapshot for %s: %w", snapshot.Repo, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read snapshot id: %w", err)
	}

	return id, nil
}

// Get returns a snapshot by ID. Returns driven.ErrSnapshotNotFound when no
// row matches.
func (r *SnapshotRepo) Get(ctx context.Context, id int64) (*model.ReportSnapshot, error) {
	const query = `SELECT id, repo, kind, title, markdown, html, payload, created_at
		FROM report_snapshots WHERE id = ?`

	snapshot, err := scanSnapshot(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get snapshot %d: %w", id, driven.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %d: %w", id, err)
	}

	return snapshot, nil
}

// List returns the most recent snapshots, newest first, up to limit.
func (r *SnapshotRepo) List(ctx context.Context, limit int) ([]model.ReportSnapshot, error) {
	const query = `SELECT id, repo, kind, title, markdown, html, payload, created_at
		FROM report_snapshots ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []model.ReportSnapshot{}
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*model.ReportSnapshot, error) {
	var snapshot model.ReportSnapshot
	var kind, createdAt string

	err := s.Scan(
		&snapshot.ID,
		&snapshot.Repo,
		&kind,
		&snapshot.Title,
		&snapshot.Markdown,
		&snapshot.HTML,
		&snapshot.Payload,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	snapshot.Kind = model.SnapshotKind(kind)
	snapshot.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &snapshot, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
