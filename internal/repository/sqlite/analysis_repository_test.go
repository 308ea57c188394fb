package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/sharpness-inspector-go/internal/repository"
)

func newTestRepository(t *testing.T) *AnalysisRepository {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	repo := NewAnalysisRepository(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAnalysisRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	threshold := 40.0
	blurry := true
	rec := &repository.AnalysisRecord{
		Source:    "upload:card.jpg",
		Workflow:  repository.WorkflowClassified,
		Overall:   31.25,
		PerMethod: map[string]float64{"laplacian": 12.5, "edge_density": 80},
		Threshold: &threshold,
		IsBlurry:  &blurry,
		Width:     1024,
		Height:    768,
	}

	id, err := repo.Save(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec.Source, got.Source)
	assert.Equal(t, repository.WorkflowClassified, got.Workflow)
	assert.Equal(t, rec.PerMethod, got.PerMethod)
	require.NotNil(t, got.Threshold)
	assert.Equal(t, 40.0, *got.Threshold)
	require.NotNil(t, got.IsBlurry)
	assert.True(t, *got.IsBlurry)
	assert.Equal(t, 1024, got.Width)
}

func TestAnalysisRepository_MultiWorkflowHasNoThreshold(t *testing.T) {
	repo := newTestRepository(t)

	id, err := repo.Save(context.Background(), &repository.AnalysisRecord{
		Source:    "upload:a.png",
		Workflow:  repository.WorkflowMulti,
		Overall:   70,
		PerMethod: map[string]float64{"sobel": 70},
		Width:     10,
		Height:    10,
	})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got.Threshold)
	assert.Nil(t, got.IsBlurry)
}

func TestAnalysisRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrAnalysisNotFound)
}

func TestAnalysisRepository_RecentNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.Save(ctx, &repository.AnalysisRecord{
			Source:    "url",
			Workflow:  repository.WorkflowMulti,
			Overall:   float64(i),
			PerMethod: map[string]float64{},
			Width:     1,
			Height:    1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []float64{4, 3, 2}, []float64{recent[0].Overall, recent[1].Overall, recent[2].Overall})
}
