package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// Backend is an in-memory implementation of the simplemedia.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

type object struct {
	data      []byte
	mimeType  string
	updatedAt time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// Write stores a copy of the reader's bytes, replacing any previous blob
func (b *Backend) Write(ctx context.Context, path string, reader io.Reader, mimeType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[path] = object{data: data, mimeType: mimeType, updatedAt: time.Now().UTC()}
	return nil
}

// Read returns the blob stored at path
func (b *Backend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[path]
	if !exists {
		return nil, simplemedia.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.objects[path]
	return exists, nil
}

// Stat retrieves metadata for a blob in memory
func (b *Backend) Stat(ctx context.Context, path string) (*simplemedia.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[path]
	if !exists {
		return nil, simplemedia.ErrObjectNotFound
	}

	return &simplemedia.ObjectMeta{
		Key:         path,
		Size:        int64(len(obj.data)),
		ContentType: obj.mimeType,
		UpdatedAt:   obj.updatedAt,
		Metadata:    map[string]string{"mime_type": obj.mimeType},
	}, nil
}

func (b *Backend) Delete(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[path]; !exists {
		return simplemedia.ErrObjectNotFound
	}

	delete(b.objects, path)
	return nil
}

// Keys returns the paths of all stored blobs
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	return keys
}
