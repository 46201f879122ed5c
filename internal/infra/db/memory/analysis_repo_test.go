package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

func TestAnalysisRepository_CreateIsolatesCaller(t *testing.T) {
	repo := NewAnalysisRepository()
	rec := &domain.Record{
		InstitutionID: 7,
		Title:         "a",
		CreatedAt:     time.Now(),
		Indicators:    []domain.Indicator{{Index: 1, Name: "Kepatuhan Prosedural"}},
	}

	id, err := repo.Create(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordID(1), id)
	assert.Zero(t, rec.ID)

	rec.Indicators[0].Name = "diubah"
	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Kepatuhan Prosedural", got.Indicators[0].Name)
	assert.Equal(t, int64(1), got.Indicators[0].ID)

	got.Title = "lokal"
	again, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Title)
}

func TestAnalysisRepository_ListFilters(t *testing.T) {
	repo := NewAnalysisRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, inst := range []int64{7, 7, 8} {
		_, err := repo.Create(context.Background(), &domain.Record{
			InstitutionID: inst,
			UserID:        int64(i + 1),
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	inst := int64(7)
	recs, total, err := repo.List(context.Background(), domain.ListFilter{InstitutionID: &inst, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.RecordID(2), recs[0].ID)

	user := int64(1)
	_, total, err = repo.List(context.Background(), domain.ListFilter{InstitutionID: &inst, UserID: &user, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	recs, total, err = repo.List(context.Background(), domain.ListFilter{Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, recs)

	_, err = repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFailureRepository_Save(t *testing.T) {
	repo := &FailureRepository{}
	require.NoError(t, repo.Save(context.Background(), &domain.Failure{Phase: domain.PhaseEngine}))
	require.NoError(t, repo.Save(context.Background(), &domain.Failure{Phase: domain.PhaseNormalize}))

	all := repo.All()
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, domain.PhaseNormalize, all[1].Phase)
}
