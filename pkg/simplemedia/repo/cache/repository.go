// Package cache keeps recently read media records in an expiring LRU in front
// of another repository.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

const (
	DefaultSize = 1024
	DefaultTTL  = 5 * time.Minute
)

// Repository caches GetMedia results. Writes go to the underlying repository
// first and then invalidate the cached entry.
type Repository struct {
	next  simplemedia.Repository
	cache *expirable.LRU[uuid.UUID, simplemedia.Media]
}

// New wraps next. Non-positive size or ttl fall back to the defaults.
func New(next simplemedia.Repository, size int, ttl time.Duration) *Repository {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repository{
		next:  next,
		cache: expirable.NewLRU[uuid.UUID, simplemedia.Media](size, nil, ttl),
	}
}

func (r *Repository) CreateMedia(ctx context.Context, media *simplemedia.Media) error {
	if err := r.next.CreateMedia(ctx, media); err != nil {
		return err
	}
	r.cache.Remove(media.ID)
	return nil
}

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*simplemedia.Media, error) {
	if m, ok := r.cache.Get(id); ok {
		return &m, nil
	}

	media, err := r.next.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	cached := *media
	cached.BinaryContent = nil
	r.cache.Add(id, cached)
	return media, nil
}

func (r *Repository) UpdateMedia(ctx context.Context, media *simplemedia.Media) error {
	r.cache.Remove(media.ID)
	if err := r.next.UpdateMedia(ctx, media); err != nil {
		return err
	}
	r.cache.Remove(media.ID)
	return nil
}

func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	r.cache.Remove(id)
	return r.next.DeleteMedia(ctx, id)
}

// ListMedia is never cached
func (r *Repository) ListMedia(ctx context.Context, mediaContext string) ([]*simplemedia.Media, error) {
	return r.next.ListMedia(ctx, mediaContext)
}

// Len returns the number of cached records
func (r *Repository) Len() int {
	return r.cache.Len()
}
