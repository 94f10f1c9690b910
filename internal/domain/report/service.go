package report

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/accessroute/pkg/errors"
	"github.com/yanqian/accessroute/pkg/metrics"
)

const defaultMaxDescriptionLen = 500

// Service exposes the issue report store.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (Created, error)
	Delete(ctx context.Context, id uuid.UUID, capability string) error
	List(ctx context.Context) ([]IssueReport, error)
	Active(ctx context.Context, now time.Time) ([]IssueReport, error)
	PhotoUpload(ctx context.Context, contentType string) (PhotoUpload, error)
}

type service struct {
	cfg     Config
	repo    Repository
	policy  DeletePolicy
	photos  PhotoSigner
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the report domain. photos may be nil when uploads are not configured.
func NewService(cfg Config, repo Repository, policy DeletePolicy, photos PhotoSigner, m *metrics.Metrics, logger *slog.Logger) Service {
	if cfg.MaxDescriptionLen <= 0 {
		cfg.MaxDescriptionLen = defaultMaxDescriptionLen
	}
	if policy == nil {
		policy = OpenPolicy{}
	}
	return &service{
		cfg:     cfg,
		repo:    repo,
		policy:  policy,
		photos:  photos,
		metrics: m,
		logger:  logger.With("component", "report.service"),
		now:     time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (Created, error) {
	report, err := s.build(req)
	if err != nil {
		return Created{}, err
	}
	capability, err := s.policy.Grant(report)
	if err != nil {
		return Created{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "failed to issue report capability", err)
	}
	if err := s.repo.Insert(ctx, report); err != nil {
		s.logger.Warn("report insert failed, dropping write", "id", report.ID, "error", err)
		return Created{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "report storage unavailable", err)
	}
	s.metrics.ReportMutation("create")
	s.logger.Info("report created", "id", report.ID, "type", report.Type)
	return Created{Report: report, Capability: capability}, nil
}

func (s *service) build(req CreateRequest) (IssueReport, error) {
	if !req.Location.Valid() {
		return IssueReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "latitude must be within [-90,90] and longitude within [-180,180]", nil)
	}
	if !req.Type.Valid() {
		return IssueReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown issue type "+string(req.Type), nil)
	}
	description := strings.TrimSpace(req.Description)
	if len([]rune(description)) > s.cfg.MaxDescriptionLen {
		return IssueReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "description is too long", nil)
	}

	var photo *string
	if raw := strings.TrimSpace(req.PhotoURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return IssueReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "photoUrl must be an absolute http(s) URL", err)
		}
		photo = &raw
	}

	created := s.now().UTC()
	report := IssueReport{
		ID:          uuid.New(),
		Location:    req.Location,
		Type:        req.Type,
		Description: description,
		PhotoURL:    photo,
		CreatedAt:   created,
	}
	if s.cfg.TTL > 0 {
		expires := created.Add(s.cfg.TTL)
		report.ExpiresAt = &expires
	}
	return report, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, capability string) error {
	report, found, err := s.repo.Get(ctx, id)
	if err != nil {
		s.logger.Warn("report lookup failed", "id", id, "error", err)
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "report storage unavailable", err)
	}
	if !found {
		return apperrors.Wrap(apperrors.CodeNotFound, "report not found", nil)
	}
	if err := s.policy.Authorize(report, capability); err != nil {
		if errors.Is(err, ErrNotAuthorized) {
			return apperrors.Wrap(apperrors.CodeForbidden, "capability does not allow deleting this report", err)
		}
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Warn("report delete failed", "id", id, "error", err)
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "report storage unavailable", err)
	}
	if !deleted {
		return apperrors.Wrap(apperrors.CodeNotFound, "report not found", nil)
	}
	s.metrics.ReportMutation("delete")
	s.logger.Info("report deleted", "id", id)
	return nil
}

// List never fails: storage errors degrade to an empty set.
func (s *service) List(ctx context.Context) ([]IssueReport, error) {
	reports, err := s.repo.ListActive(ctx, s.now().UTC())
	if err != nil {
		s.logger.Warn("report list failed, returning empty set", "error", err)
		return []IssueReport{}, nil
	}
	return reports, nil
}

func (s *service) Active(ctx context.Context, now time.Time) ([]IssueReport, error) {
	return s.repo.ListActive(ctx, now)
}

func (s *service) PhotoUpload(ctx context.Context, contentType string) (PhotoUpload, error) {
	if s.photos == nil {
		return PhotoUpload{}, apperrors.Wrap(apperrors.CodePhotoStorageDisabled, "photo uploads are not configured", nil)
	}
	ext, ok := photoExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return PhotoUpload{}, apperrors.Wrap(apperrors.CodeInvalidInput, "photo content type must be image/jpeg, image/png or image/webp", nil)
	}
	key := "reports/" + uuid.NewString() + ext
	upload, err := s.photos.PresignUpload(ctx, key, contentType)
	if err != nil {
		return PhotoUpload{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "failed to presign photo upload", err)
	}
	return upload, nil
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}
