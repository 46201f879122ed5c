// Package memory holds in-process repositories for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

type AnalysisRepository struct {
	mu      sync.RWMutex
	nextID  int64
	records []*domain.Record
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{}
}

func (r *AnalysisRepository) Create(ctx context.Context, rec *domain.Record) (domain.RecordID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c := clone(rec)
	c.ID = domain.RecordID(r.nextID)
	for i := range c.Files {
		c.Files[i].ID = int64(i + 1)
	}
	for i := range c.Indicators {
		c.Indicators[i].ID = int64(i + 1)
	}
	for i := range c.Recommendations {
		c.Recommendations[i].ID = int64(i + 1)
	}
	for i := range c.Regulations {
		c.Regulations[i].ID = int64(i + 1)
	}
	r.records = append(r.records, c)
	return c.ID, nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return clone(rec), nil
		}
	}
	return nil, fmt.Errorf("analysis %d: %w", id, domain.ErrNotFound)
}

func (r *AnalysisRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Record, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Record
	for _, rec := range r.records {
		if f.InstitutionID != nil && rec.InstitutionID != *f.InstitutionID {
			continue
		}
		if f.UserID != nil && rec.UserID != *f.UserID {
			continue
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []*domain.Record{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]*domain.Record, 0, end-f.Offset)
	for _, rec := range matched[f.Offset:end] {
		out = append(out, clone(rec))
	}
	return out, total, nil
}

// FailureRepository keeps failures in a slice.
type FailureRepository struct {
	mu       sync.Mutex
	Failures []domain.Failure
}

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *f
	c.ID = int64(len(r.Failures) + 1)
	r.Failures = append(r.Failures, c)
	return nil
}

func (r *FailureRepository) All() []domain.Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Failure(nil), r.Failures...)
}

func clone(rec *domain.Record) *domain.Record {
	c := *rec
	c.Files = append([]domain.File{}, rec.Files...)
	c.Indicators = append([]domain.Indicator{}, rec.Indicators...)
	c.Regulations = append([]domain.Regulation{}, rec.Regulations...)
	c.Recommendations = make([]domain.Recommendation, len(rec.Recommendations))
	for i, r := range rec.Recommendations {
		r.Steps = append([]string{}, r.Steps...)
		c.Recommendations[i] = r
	}
	return &c
}
