package reportrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/report"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS issue_reports (
    id          TEXT PRIMARY KEY,
    lat         REAL NOT NULL,
    lng         REAL NOT NULL,
    type        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    photo_url   TEXT,
    created_at  INTEGER NOT NULL,
    expires_at  INTEGER
);
CREATE INDEX IF NOT EXISTS issue_reports_expires_at_idx ON issue_reports (expires_at);
`

// SQLiteRepository persists reports in a local SQLite file for single node deployments.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable sqlite wal: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Insert implements report.Repository.
func (r *SQLiteRepository) Insert(ctx context.Context, rep report.IssueReport) error {
	var expires sql.NullInt64
	if rep.ExpiresAt != nil {
		expires = sql.NullInt64{Int64: rep.ExpiresAt.UnixNano(), Valid: true}
	}
	var photo sql.NullString
	if rep.PhotoURL != nil {
		photo = sql.NullString{String: *rep.PhotoURL, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO issue_reports (id, lat, lng, type, description, photo_url, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rep.ID.String(), rep.Location.Lat, rep.Location.Lng, string(rep.Type), rep.Description, photo, rep.CreatedAt.UnixNano(), expires)
	return err
}

// Get implements report.Repository.
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (report.IssueReport, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lat, lng, type, description, photo_url, created_at, expires_at
		FROM issue_reports
		WHERE id = ?
	`, id.String())
	rep, err := scanSQLiteReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return report.IssueReport{}, false, nil
	}
	if err != nil {
		return report.IssueReport{}, false, err
	}
	return rep, true, nil
}

// Delete implements report.Repository.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issue_reports WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListActive implements report.Repository.
func (r *SQLiteRepository) ListActive(ctx context.Context, now time.Time) ([]report.IssueReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lat, lng, type, description, photo_url, created_at, expires_at
		FROM issue_reports
		WHERE expires_at IS NULL OR expires_at > ?
		ORDER BY created_at DESC, id
	`, now.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]report.IssueReport, 0)
	for rows.Next() {
		rep, err := scanSQLiteReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func scanSQLiteReport(row rowScanner) (report.IssueReport, error) {
	var (
		rawID     string
		lat, lng  float64
		issueType string
		desc      string
		photo     sql.NullString
		created   int64
		expires   sql.NullInt64
	)
	if err := row.Scan(&rawID, &lat, &lng, &issueType, &desc, &photo, &created, &expires); err != nil {
		return report.IssueReport{}, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return report.IssueReport{}, fmt.Errorf("parse report id %q: %w", rawID, err)
	}
	rep := report.IssueReport{
		ID:          id,
		Location:    geo.Point{Lat: lat, Lng: lng},
		Type:        report.IssueType(issueType),
		Description: desc,
		CreatedAt:   time.Unix(0, created).UTC(),
	}
	if photo.Valid {
		url := photo.String
		rep.PhotoURL = &url
	}
	if expires.Valid {
		ts := time.Unix(0, expires.Int64).UTC()
		rep.ExpiresAt = &ts
	}
	return rep, nil
}

var _ report.Repository = (*SQLiteRepository)(nil)
