package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataprobe/dataprobe/pkg/errors"
	"github.com/dataprobe/dataprobe/pkg/models"
)

func session(id string, createdAt time.Time) *models.CheckSession {
	return &models.CheckSession{
		ID:        id,
		Filename:  id + ".csv",
		CreatedAt: createdAt,
		Issues: []models.Issue{
			models.NewDatasetIssue("duplicates", "Found 1 duplicate rows (10.0% of dataset)", models.SeverityMedium),
		},
		Summary: models.NewSummary(nil, 10, 2),
	}
}

func TestSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	original := session("s1", time.Now())
	require.NoError(t, store.Save(ctx, original))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session("s1", time.Now())))

	first, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	first.Issues[0].Description = "mutated"
	first.Summary.TotalIssues = 99

	second, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second.Issues[0].Description)
	assert.NotEqual(t, 99, second.Summary.TotalIssues)
}

func TestGetMissing(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestSaveRequiresID(t *testing.T) {
	store := NewStore()
	err := store.Save(context.Background(), &models.CheckSession{})
	assert.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, session(
			fmt.Sprintf("s%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := store.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "s4", all[0].ID)
	assert.Equal(t, "s0", all[4].ID)

	page, err := store.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "s3", page[0].ID)
	assert.Equal(t, "s2", page[1].ID)

	empty, err := store.List(ctx, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDelete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session("s1", time.Now())))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, errors.ErrSessionNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "s1"), errors.ErrSessionNotFound)
}
