package photostore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/accessroute/internal/domain/report"
)

// Config locates the S3-compatible bucket that receives report photos.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	PublicBaseURL string
	PresignTTL    time.Duration
}

// R2Presigner issues presigned PUT URLs against Cloudflare R2 (or any S3 API).
type R2Presigner struct {
	client     *minio.Client
	bucket     string
	publicBase string
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewR2Presigner constructs the presigner. Region defaults to "auto" so signing needs no
// bucket location lookup.
func NewR2Presigner(cfg Config, logger *slog.Logger) (*R2Presigner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("photo bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &R2Presigner{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		ttl:        ttl,
		now:        time.Now,
		logger:     logger.With("component", "photostore.r2"),
	}, nil
}

// PresignUpload implements report.PhotoSigner.
func (p *R2Presigner) PresignUpload(ctx context.Context, key, contentType string) (report.PhotoUpload, error) {
	u, err := p.client.PresignedPutObject(ctx, p.bucket, key, p.ttl)
	if err != nil {
		return report.PhotoUpload{}, fmt.Errorf("presign %s: %w", key, err)
	}
	p.logger.Debug("presigned photo upload", "key", key, "content_type", contentType)
	return report.PhotoUpload{
		UploadURL: u.String(),
		PhotoURL:  p.publicURL(key),
		ExpiresAt: p.now().UTC().Add(p.ttl),
	}, nil
}

func (p *R2Presigner) publicURL(key string) string {
	if p.publicBase == "" {
		return "/" + p.bucket + "/" + key
	}
	return p.publicBase + "/" + key
}

var _ report.PhotoSigner = (*R2Presigner)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
