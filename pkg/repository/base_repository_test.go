package repository_test

import (
	"context"
	"testing"

	"github.com/RigelNana/edumarket/pkg/database/dbtest"
	"github.com/RigelNana/edumarket/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type note struct {
	repository.Base
	Body  string
	Likes int
}

func setup(t *testing.T) *repository.BaseRepositoryImpl[note] {
	t.Helper()
	return repository.NewBaseRepository[note](dbtest.New(t, &note{}))
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	repo := setup(t)

	n := &note{Body: "hello"}
	require.NoError(t, repo.Create(ctx, n))
	assert.NotEqual(t, uuid.Nil, n.ID)

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)

	got.Body = "changed"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.FindOne(ctx, "body = ?", "changed")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.Delete(ctx, n.ID))
	_, err = repo.GetByID(ctx, n.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, n.ID), repository.ErrNotFound)
}

func TestUpdateColumn(t *testing.T) {
	ctx := context.Background()
	repo := setup(t)

	n := &note{Body: "hello"}
	require.NoError(t, repo.Create(ctx, n))

	require.NoError(t, repo.UpdateColumn(ctx, n.ID, "likes", gorm.Expr("likes + ?", 1)))
	require.NoError(t, repo.UpdateColumn(ctx, n.ID, "likes", gorm.Expr("likes + ?", 1)))
	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Likes)

	assert.ErrorIs(t, repo.UpdateColumn(ctx, uuid.New(), "body", "x"), repository.ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	repo := setup(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &note{Body: "n"}))
	}

	page, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = repo.List(ctx, 10, 4)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
