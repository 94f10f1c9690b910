package reportrepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/report"
)

func TestMemoryRepositoryContract(t *testing.T) {
	runRepositoryContract(t, NewMemoryRepository())
}

func TestSQLiteRepositoryContract(t *testing.T) {
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	runRepositoryContract(t, repo)
}

func TestSQLiteRepositoryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	ctx := context.Background()

	repo, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	rep := newReport(time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC), 0)
	require.NoError(t, repo.Insert(ctx, rep))
	require.NoError(t, repo.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	got, ok, err := reopened.Get(ctx, rep.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rep, got)
}

func runRepositoryContract(t *testing.T, repo report.Repository) {
	t.Helper()
	ctx := context.Background()
	t0 := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	expiring := newReport(t0, 48*time.Hour)
	photo := "https://cdn.example.com/reports/x.jpg"
	expiring.PhotoURL = &photo
	permanent := newReport(t0.Add(time.Minute), 0)

	require.NoError(t, repo.Insert(ctx, expiring))
	require.NoError(t, repo.Insert(ctx, permanent))

	got, ok, err := repo.Get(ctx, expiring.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, expiring, got)

	_, ok, err = repo.Get(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, ok)

	active, err := repo.ListActive(ctx, t0.Add(47*time.Hour))
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, permanent.ID, active[0].ID)

	active, err = repo.ListActive(ctx, t0.Add(49*time.Hour))
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, permanent.ID, active[0].ID)

	deleted, err := repo.Delete(ctx, permanent.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.Delete(ctx, permanent.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func newReport(created time.Time, ttl time.Duration) report.IssueReport {
	rep := report.IssueReport{
		ID:          uuid.New(),
		Location:    geo.Point{Lat: 27.6197, Lng: 85.5386},
		Type:        report.IssueBrokenRamp,
		Description: "ramp cracked",
		CreatedAt:   created,
	}
	if ttl > 0 {
		expires := created.Add(ttl)
		rep.ExpiresAt = &expires
	}
	return rep
}
