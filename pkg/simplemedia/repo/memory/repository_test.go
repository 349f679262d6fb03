package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/repo/memory"
)

var _ simplemedia.Repository = (*memory.Repository)(nil)

func newMedia(mediaContext, name string, createdAt time.Time) *simplemedia.Media {
	return &simplemedia.Media{
		ID:             uuid.New(),
		Context:        mediaContext,
		Name:           name,
		Enabled:        true,
		ProviderName:   simplemedia.DefaultProviderName,
		ProviderStatus: simplemedia.ProviderStatusOK,
		ContentType:    "text/plain",
		Size:           42,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func TestMemoryRepository_MediaOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		media := newMedia("news", "photo.txt", time.Now())
		media.BinaryContent = simplemedia.PathContent("/tmp/photo.txt")
		require.NoError(t, repo.CreateMedia(ctx, media))

		retrieved, err := repo.GetMedia(ctx, media.ID)
		require.NoError(t, err)
		assert.Equal(t, media.Name, retrieved.Name)
		assert.Equal(t, media.Size, retrieved.Size)
		assert.Nil(t, retrieved.BinaryContent)
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		media := newMedia("news", "dup.txt", time.Now())
		require.NoError(t, repo.CreateMedia(ctx, media))
		assert.ErrorIs(t, repo.CreateMedia(ctx, media), simplemedia.ErrMediaExists)
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		media := newMedia("news", "copy.txt", time.Now())
		require.NoError(t, repo.CreateMedia(ctx, media))

		media.Name = "changed"
		retrieved, err := repo.GetMedia(ctx, media.ID)
		require.NoError(t, err)
		assert.Equal(t, "copy.txt", retrieved.Name)

		retrieved.Name = "changed again"
		again, err := repo.GetMedia(ctx, media.ID)
		require.NoError(t, err)
		assert.Equal(t, "copy.txt", again.Name)
	})

	t.Run("Update", func(t *testing.T) {
		media := newMedia("news", "before.txt", time.Now())
		require.NoError(t, repo.CreateMedia(ctx, media))

		media.Name = "after.txt"
		media.ProviderReference = "abc.txt"
		require.NoError(t, repo.UpdateMedia(ctx, media))

		retrieved, err := repo.GetMedia(ctx, media.ID)
		require.NoError(t, err)
		assert.Equal(t, "after.txt", retrieved.Name)
		assert.Equal(t, "abc.txt", retrieved.ProviderReference)

		missing := newMedia("news", "missing.txt", time.Now())
		assert.ErrorIs(t, repo.UpdateMedia(ctx, missing), simplemedia.ErrMediaNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		media := newMedia("news", "gone.txt", time.Now())
		require.NoError(t, repo.CreateMedia(ctx, media))
		require.NoError(t, repo.DeleteMedia(ctx, media.ID))

		_, err := repo.GetMedia(ctx, media.ID)
		assert.ErrorIs(t, err, simplemedia.ErrMediaNotFound)
		assert.ErrorIs(t, repo.DeleteMedia(ctx, media.ID), simplemedia.ErrMediaNotFound)
	})
}

func TestMemoryRepository_ListMedia(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	now := time.Now()

	older := newMedia("gallery", "older.png", now.Add(-time.Hour))
	newer := newMedia("gallery", "newer.png", now)
	other := newMedia("news", "other.txt", now)
	for _, m := range []*simplemedia.Media{older, newer, other} {
		require.NoError(t, repo.CreateMedia(ctx, m))
	}

	list, err := repo.ListMedia(ctx, "gallery")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	all, err := repo.ListMedia(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := repo.ListMedia(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
