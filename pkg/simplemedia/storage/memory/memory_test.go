package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
	memorystorage "github.com/tendant/simple-media/pkg/simplemedia/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "default/ab/cd/0123.txt"
	testData := "Hello, World! This is test data."

	t.Run("Write", func(t *testing.T) {
		err := backend.Write(ctx, testKey, strings.NewReader(testData), "text/plain")
		assert.NoError(t, err)
	})

	t.Run("Stat", func(t *testing.T) {
		meta, err := backend.Stat(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, testKey, meta.Key)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.Equal(t, "text/plain", meta.ContentType)
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("Read", func(t *testing.T) {
		reader, err := backend.Read(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, testData, string(data))
	})

	t.Run("Overwrite", func(t *testing.T) {
		err := backend.Write(ctx, testKey, strings.NewReader("replaced"), "")
		require.NoError(t, err)

		meta, err := backend.Stat(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, int64(len("replaced")), meta.Size)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
		assert.Len(t, backend.Keys(), 1)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))

		exists, err := backend.Exists(ctx, testKey)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = backend.Read(ctx, testKey)
		assert.ErrorIs(t, err, simplemedia.ErrObjectNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, testKey), simplemedia.ErrObjectNotFound)
	})
}
