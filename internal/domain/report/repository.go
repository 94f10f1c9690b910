package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository abstracts report persistence. Implementations only need read-your-writes
// consistency within a process.
type Repository interface {
	Insert(ctx context.Context, report IssueReport) error
	Get(ctx context.Context, id uuid.UUID) (IssueReport, bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListActive(ctx context.Context, now time.Time) ([]IssueReport, error)
}

// PhotoSigner hands out presigned upload URLs for report photos.
type PhotoSigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (PhotoUpload, error)
}
