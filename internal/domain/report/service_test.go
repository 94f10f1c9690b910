package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/accessroute/internal/domain/geo"
	apperrors "github.com/yanqian/accessroute/pkg/errors"
)

func TestServiceCreateAssignsIDAndExpiry(t *testing.T) {
	created := mustParse("2024-07-01T10:00:00Z")
	svc := newTestService(newStubRepo(), Config{TTL: 48 * time.Hour}, created)

	out, err := svc.Create(context.Background(), CreateRequest{
		Location:    geo.Point{Lat: 27.6197, Lng: 85.5386},
		Type:        IssueBrokenRamp,
		Description: "  ramp cracked  ",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, out.Report.ID)
	require.Equal(t, "ramp cracked", out.Report.Description)
	require.Equal(t, created, out.Report.CreatedAt)
	require.NotNil(t, out.Report.ExpiresAt)
	require.Equal(t, created.Add(48*time.Hour), *out.Report.ExpiresAt)
	require.Nil(t, out.Report.PhotoURL)
	require.Empty(t, out.Capability)
}

func TestServiceCreateWithoutTTLNeverExpires(t *testing.T) {
	svc := newTestService(newStubRepo(), Config{}, mustParse("2024-07-01T10:00:00Z"))

	out, err := svc.Create(context.Background(), CreateRequest{
		Location: geo.Point{Lat: 1, Lng: 1},
		Type:     IssueOther,
		PhotoURL: "https://cdn.example.com/reports/a.jpg",
	})
	require.NoError(t, err)
	require.Nil(t, out.Report.ExpiresAt)
	require.NotNil(t, out.Report.PhotoURL)
	require.Equal(t, "https://cdn.example.com/reports/a.jpg", *out.Report.PhotoURL)
}

func TestServiceCreateStoresNothingWhenGrantFails(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, Config{}, mustParse("2024-07-01T10:00:00Z"))
	svc.policy = failingPolicy{err: errors.New("signing key unavailable")}

	_, err := svc.Create(context.Background(), CreateRequest{Location: geo.Point{Lat: 1, Lng: 1}, Type: IssuePothole})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorageUnavailable))
	require.Empty(t, repo.reports)
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService(newStubRepo(), Config{MaxDescriptionLen: 10}, time.Now())

	cases := map[string]CreateRequest{
		"latitude":    {Location: geo.Point{Lat: 91, Lng: 0}, Type: IssuePothole},
		"longitude":   {Location: geo.Point{Lat: 0, Lng: -181}, Type: IssuePothole},
		"type":        {Location: geo.Point{Lat: 0, Lng: 0}, Type: "lava"},
		"description": {Location: geo.Point{Lat: 0, Lng: 0}, Type: IssuePothole, Description: strings.Repeat("x", 11)},
		"photo":       {Location: geo.Point{Lat: 0, Lng: 0}, Type: IssuePothole, PhotoURL: "ftp://example.com/a.jpg"},
	}
	for name, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err, name)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), name)
	}
}

func TestServiceCreateStorageFailure(t *testing.T) {
	repo := newStubRepo()
	repo.insertErr = errors.New("disk full")
	svc := newTestService(repo, Config{}, time.Now())

	_, err := svc.Create(context.Background(), CreateRequest{Location: geo.Point{}, Type: IssueWetFloor})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorageUnavailable))
}

func TestServiceListFiltersExpired(t *testing.T) {
	t0 := mustParse("2024-07-01T10:00:00Z")
	repo := newStubRepo()
	svc := newTestService(repo, Config{TTL: 48 * time.Hour}, t0)

	_, err := svc.Create(context.Background(), CreateRequest{Location: geo.Point{Lat: 1, Lng: 1}, Type: IssuePothole})
	require.NoError(t, err)

	active, err := svc.Active(context.Background(), t0.Add(47*time.Hour))
	require.NoError(t, err)
	require.Len(t, active, 1)

	active, err = svc.Active(context.Background(), t0.Add(49*time.Hour))
	require.NoError(t, err)
	require.Empty(t, active)

	svc.now = func() time.Time { return t0.Add(49 * time.Hour) }
	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestServiceListFailsClosed(t *testing.T) {
	repo := newStubRepo()
	repo.listErr = errors.New("connection refused")
	svc := newTestService(repo, Config{}, time.Now())

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, listed)
	require.Empty(t, listed)

	_, err = svc.Active(context.Background(), time.Now())
	require.Error(t, err)
}

func TestServiceDelete(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, Config{}, time.Now())

	out, err := svc.Create(context.Background(), CreateRequest{Location: geo.Point{}, Type: IssueNoElevator})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), out.Report.ID, ""))

	err = svc.Delete(context.Background(), out.Report.ID, "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestServiceDeleteWithTokenPolicy(t *testing.T) {
	now := mustParse("2024-07-01T10:00:00Z")
	policy, err := NewTokenPolicy("test-secret", func() time.Time { return now })
	require.NoError(t, err)

	repo := newStubRepo()
	svc := newTestService(repo, Config{TTL: time.Hour}, now)
	svc.policy = policy

	first, err := svc.Create(context.Background(), CreateRequest{Location: geo.Point{}, Type: IssuePothole})
	require.NoError(t, err)
	require.NotEmpty(t, first.Capability)
	second, err := svc.Create(context.Background(), CreateRequest{Location: geo.Point{}, Type: IssuePothole})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), first.Report.ID, "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	err = svc.Delete(context.Background(), first.Report.ID, second.Capability)
	require.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	require.NoError(t, svc.Delete(context.Background(), first.Report.ID, first.Capability))
}

func TestServicePhotoUpload(t *testing.T) {
	svc := newTestService(newStubRepo(), Config{}, time.Now())

	_, err := svc.PhotoUpload(context.Background(), "image/png")
	require.True(t, apperrors.IsCode(err, apperrors.CodePhotoStorageDisabled))

	signer := &stubSigner{}
	svc.photos = signer
	upload, err := svc.PhotoUpload(context.Background(), "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(signer.lastKey, "reports/"))
	require.True(t, strings.HasSuffix(signer.lastKey, ".png"))
	require.Equal(t, "https://cdn.example.com/"+signer.lastKey, upload.PhotoURL)

	_, err = svc.PhotoUpload(context.Background(), "application/pdf")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func newTestService(repo Repository, cfg Config, now time.Time) *service {
	svc := NewService(cfg, repo, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

type stubRepo struct {
	mu        sync.Mutex
	reports   map[uuid.UUID]IssueReport
	insertErr error
	listErr   error
}

func newStubRepo() *stubRepo {
	return &stubRepo{reports: make(map[uuid.UUID]IssueReport)}
}

func (r *stubRepo) Insert(_ context.Context, report IssueReport) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.ID] = report
	return nil
}

func (r *stubRepo) Get(_ context.Context, id uuid.UUID) (IssueReport, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	return report, ok, nil
}

func (r *stubRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[id]; !ok {
		return false, nil
	}
	delete(r.reports, id)
	return true, nil
}

func (r *stubRepo) ListActive(_ context.Context, now time.Time) ([]IssueReport, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]IssueReport, 0, len(r.reports))
	for _, report := range r.reports {
		if report.ActiveAt(now) {
			out = append(out, report)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type stubSigner struct {
	lastKey string
}

func (s *stubSigner) PresignUpload(_ context.Context, key, _ string) (PhotoUpload, error) {
	s.lastKey = key
	return PhotoUpload{
		UploadURL: "https://upload.example.com/" + key + "?sig=abc",
		PhotoURL:  "https://cdn.example.com/" + key,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func mustParse(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return ts
}

type failingPolicy struct {
	OpenPolicy
	err error
}

func (p failingPolicy) Grant(IssueReport) (string, error) {
	return "", p.err
}
