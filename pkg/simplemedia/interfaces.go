package simplemedia

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Write creates or replaces the blob at path. Readers never observe a
	// partially written blob.
	Write(ctx context.Context, path string, reader io.Reader, mimeType string) error

	// Read opens the blob at path
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a blob is stored at path
	Exists(ctx context.Context, path string) (bool, error)

	// Stat retrieves metadata for the blob at path
	Stat(ctx context.Context, path string) (*ObjectMeta, error)

	// Delete removes the blob at path
	Delete(ctx context.Context, path string) error
}

// PathBuilder derives the directory of a media record's files. It must be
// deterministic and must not depend on the record's binary content.
type PathBuilder interface {
	BuildPath(media Media) string
}

// CDN resolves relative paths to public URLs and invalidates cached entries
type CDN interface {
	// Path returns the public URL of a relative path
	Path(relativePath string) string

	// Flush invalidates the cached entries for paths
	Flush(ctx context.Context, paths []string) error
}

// ThumbnailSource is the view of a provider that thumbnail generators need
type ThumbnailSource interface {
	Name() string
	RequiresThumbnails() bool
	BuildPath(media Media) string
	ReferenceImage(media Media) string
	BlobStore() BlobStore
}

// Thumbnailer generates derived renditions once a file has been written
type Thumbnailer interface {
	Generate(ctx context.Context, source ThumbnailSource, media Media) error
}

// Clock is the source of record timestamps
type Clock interface {
	Now() time.Time
}

// SystemClock returns the current UTC time
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Metrics receives provider events. See the metrics subpackage for a
// Prometheus implementation.
type Metrics interface {
	ContentWritten(provider string, bytes int64, duration time.Duration)
	WriteFailed(provider string)
	ReferenceGenerated(provider string)
	InvalidContent(provider string)
	ThumbnailTriggered(provider string, err error)
}

// Repository defines the interface for media record persistence
type Repository interface {
	CreateMedia(ctx context.Context, media *Media) error
	GetMedia(ctx context.Context, id uuid.UUID) (*Media, error)
	UpdateMedia(ctx context.Context, media *Media) error
	DeleteMedia(ctx context.Context, id uuid.UUID) error
	ListMedia(ctx context.Context, mediaContext string) ([]*Media, error)
}
