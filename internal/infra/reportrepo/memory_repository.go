package reportrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/accessroute/internal/domain/report"
)

// MemoryRepository keeps reports in process memory; used for tests/dev and as the
// fallback when no database is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]report.IssueReport
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{reports: make(map[uuid.UUID]report.IssueReport)}
}

// Insert implements report.Repository.
func (r *MemoryRepository) Insert(_ context.Context, rep report.IssueReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[rep.ID] = rep
	return nil
}

// Get implements report.Repository.
func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (report.IssueReport, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[id]
	return rep, ok, nil
}

// Delete implements report.Repository.
func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[id]; !ok {
		return false, nil
	}
	delete(r.reports, id)
	return true, nil
}

// ListActive implements report.Repository. Expired entries are pruned as a side effect.
func (r *MemoryRepository) ListActive(_ context.Context, now time.Time) ([]report.IssueReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]report.IssueReport, 0, len(r.reports))
	for id, rep := range r.reports {
		if !rep.ActiveAt(now) {
			delete(r.reports, id)
			continue
		}
		out = append(out, rep)
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(reports []report.IssueReport) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID.String() < reports[j].ID.String()
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}

var _ report.Repository = (*MemoryRepository)(nil)
