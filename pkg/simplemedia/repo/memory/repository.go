package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

// Repository implements simplemedia.Repository using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	media map[uuid.UUID]*simplemedia.Media
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		media: make(map[uuid.UUID]*simplemedia.Media),
	}
}

// stored copies m without its transient upload
func stored(m *simplemedia.Media) *simplemedia.Media {
	c := *m
	c.BinaryContent = nil
	return &c
}

func (r *Repository) CreateMedia(ctx context.Context, media *simplemedia.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.media[media.ID]; exists {
		return simplemedia.ErrMediaExists
	}
	r.media[media.ID] = stored(media)
	return nil
}

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*simplemedia.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.media[id]
	if !exists {
		return nil, simplemedia.ErrMediaNotFound
	}
	return stored(m), nil
}

func (r *Repository) UpdateMedia(ctx context.Context, media *simplemedia.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.media[media.ID]; !exists {
		return simplemedia.ErrMediaNotFound
	}
	r.media[media.ID] = stored(media)
	return nil
}

func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.media[id]; !exists {
		return simplemedia.ErrMediaNotFound
	}
	delete(r.media, id)
	return nil
}

// ListMedia returns the records of mediaContext, newest first. An empty
// context lists every record.
func (r *Repository) ListMedia(ctx context.Context, mediaContext string) ([]*simplemedia.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplemedia.Media
	for _, m := range r.media {
		if mediaContext == "" || m.Context == mediaContext {
			result = append(result, stored(m))
		}
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
