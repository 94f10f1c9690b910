package reportrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/report"
)

// PostgresRepository implements report.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert implements report.Repository.
func (r *PostgresRepository) Insert(ctx context.Context, rep report.IssueReport) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO issue_reports (id, lat, lng, type, description, photo_url, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rep.ID, rep.Location.Lat, rep.Location.Lng, string(rep.Type), rep.Description, rep.PhotoURL, rep.CreatedAt, rep.ExpiresAt)
	return err
}

// Get implements report.Repository.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (report.IssueReport, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, lat, lng, type, description, photo_url, created_at, expires_at
		FROM issue_reports
		WHERE id = $1
	`, id)
	rep, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return report.IssueReport{}, false, nil
	}
	if err != nil {
		return report.IssueReport{}, false, err
	}
	return rep, true, nil
}

// Delete implements report.Repository.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM issue_reports WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListActive implements report.Repository.
func (r *PostgresRepository) ListActive(ctx context.Context, now time.Time) ([]report.IssueReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lat, lng, type, description, photo_url, created_at, expires_at
		FROM issue_reports
		WHERE expires_at IS NULL OR expires_at > $1
		ORDER BY created_at DESC, id
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]report.IssueReport, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (report.IssueReport, error) {
	var (
		rep       report.IssueReport
		issueType string
		photo     *string
		expires   *time.Time
		lat, lng  float64
	)
	if err := row.Scan(&rep.ID, &lat, &lng, &issueType, &rep.Description, &photo, &rep.CreatedAt, &expires); err != nil {
		return report.IssueReport{}, err
	}
	rep.Location = geo.Point{Lat: lat, Lng: lng}
	rep.Type = report.IssueType(issueType)
	rep.PhotoURL = photo
	if expires != nil {
		utc := expires.UTC()
		rep.ExpiresAt = &utc
	}
	rep.CreatedAt = rep.CreatedAt.UTC()
	return rep, nil
}

var _ report.Repository = (*PostgresRepository)(nil)
