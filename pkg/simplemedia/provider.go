package simplemedia

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultProviderName is the name stamped on records handled by a FileProvider
const DefaultProviderName = "simplemedia.provider.file"

// Provider is the contract between a media provider and the code that drives
// its lifecycle. Pre hooks return a Patch that must be applied to the record
// before the matching post hook runs.
type Provider interface {
	ThumbnailSource

	PreCreate(ctx context.Context, media Media) (Patch, error)
	PostCreate(ctx context.Context, media Media) error
	PreUpdate(ctx context.Context, media Media) (Patch, error)
	PostUpdate(ctx context.Context, media Media) (Patch, error)
	PreRemove(ctx context.Context, media Media) error

	AbsolutePath(media Media) string
	PublicURL(media Media, format string) string
	PrivateURL(media Media, format string) (string, error)
	HelperProperties(media Media, format string, options map[string]any) map[string]any
	CDN() CDN
}

// FileProvider stores one arbitrary file per media record
type FileProvider struct {
	name        string
	backendName string
	blobStore   BlobStore
	pathBuilder PathBuilder
	cdn         CDN
	thumbnailer Thumbnailer
	references  ReferenceGenerator
	clock       Clock
	metrics     Metrics
	logger      *slog.Logger
}

// ProviderOption represents a functional option for configuring a FileProvider
type ProviderOption func(*FileProvider)

// WithName overrides the provider name stamped on records
func WithName(name string) ProviderOption {
	return func(p *FileProvider) {
		p.name = name
	}
}

// WithBlobStore sets the storage backend and the name used in errors and logs
func WithBlobStore(name string, store BlobStore) ProviderOption {
	return func(p *FileProvider) {
		p.backendName = name
		p.blobStore = store
	}
}

// WithPathBuilder sets the path generation policy
func WithPathBuilder(builder PathBuilder) ProviderOption {
	return func(p *FileProvider) {
		p.pathBuilder = builder
	}
}

// WithCDN sets the CDN used for public URLs
func WithCDN(cdn CDN) ProviderOption {
	return func(p *FileProvider) {
		p.cdn = cdn
	}
}

// WithThumbnailer sets the thumbnail generator triggered after writes
func WithThumbnailer(thumbnailer Thumbnailer) ProviderOption {
	return func(p *FileProvider) {
		p.thumbnailer = thumbnailer
	}
}

// WithReferenceGenerator sets the storage reference generator
func WithReferenceGenerator(gen ReferenceGenerator) ProviderOption {
	return func(p *FileProvider) {
		p.references = gen
	}
}

// WithClock sets the timestamp source
func WithClock(clock Clock) ProviderOption {
	return func(p *FileProvider) {
		p.clock = clock
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(metrics Metrics) ProviderOption {
	return func(p *FileProvider) {
		p.metrics = metrics
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *FileProvider) {
		p.logger = logger
	}
}

// NewFileProvider creates a file provider. A blob store and a path builder are required.
func NewFileProvider(options ...ProviderOption) (*FileProvider, error) {
	p := &FileProvider{
		name:        DefaultProviderName,
		cdn:         NoopCDN{},
		thumbnailer: NewNoopThumbnailer(),
		clock:       SystemClock{},
		metrics:     NoopMetrics{},
	}

	for _, option := range options {
		option(p)
	}

	if p.blobStore == nil {
		return nil, errors.New("blob store is required")
	}
	if p.pathBuilder == nil {
		return nil, errors.New("path builder is required")
	}
	if p.references == nil {
		p.references = NewHashReferenceGenerator(nil)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p, nil
}

// PreCreate prepares a new record: it resolves the pending content and
// derives the name, reference, content type, size and timestamps from it.
func (p *FileProvider) PreCreate(ctx context.Context, media Media) (Patch, error) {
	file, patch, err := p.fixBinaryContent(media)
	if err != nil {
		return Patch{}, err
	}

	name, status := p.name, ProviderStatusOK
	patch.ProviderName = &name
	patch.ProviderStatus = &status

	if file == nil {
		return patch, nil
	}

	if media.Name == "" {
		name := file.Name()
		patch.Name = &name
	}

	// reference generation happens here and in the PreUpdate guard only
	if media.ProviderReference == "" {
		ref := p.references.Generate(file.Name())
		patch.ProviderReference = &ref
		p.metrics.ReferenceGenerated(p.name)
	}

	contentType := file.MimeType()
	size := file.Size()
	now := p.clock.Now()
	patch.ContentType = &contentType
	patch.Size = &size
	patch.CreatedAt = &now
	patch.UpdatedAt = &now

	return patch, nil
}

// PostCreate writes the content of a record prepared by PreCreate and
// triggers thumbnail generation.
func (p *FileProvider) PostCreate(ctx context.Context, media Media) error {
	file, err := p.normalize(media)
	if err != nil {
		return err
	}
	if file == nil {
		return nil
	}

	if err := p.writeContent(ctx, media, file); err != nil {
		return err
	}

	p.generateThumbnails(ctx, media)
	return nil
}

// PreUpdate refreshes content type, size and update time when a new file is
// pending. Updates without content leave the record untouched.
func (p *FileProvider) PreUpdate(ctx context.Context, media Media) (Patch, error) {
	file, patch, err := p.fixBinaryContent(media)
	if err != nil {
		return Patch{}, err
	}
	if file == nil {
		return patch, nil
	}

	if media.ProviderReference == "" {
		ref := p.references.Generate(file.Name())
		patch.ProviderReference = &ref
		p.metrics.ReferenceGenerated(p.name)
	}

	contentType := file.MimeType()
	size := file.Size()
	now := p.clock.Now()
	patch.ContentType = &contentType
	patch.Size = &size
	patch.UpdatedAt = &now

	return patch, nil
}

// PostUpdate overwrites the stored file with the pending content and
// triggers thumbnail generation. The content is normalized again in case the
// PreUpdate patch did not carry it over.
func (p *FileProvider) PostUpdate(ctx context.Context, media Media) (Patch, error) {
	file, patch, err := p.fixBinaryContent(media)
	if err != nil {
		return Patch{}, err
	}
	if file == nil {
		return patch, nil
	}

	if err := p.writeContent(ctx, media, file); err != nil {
		return Patch{}, err
	}

	p.generateThumbnails(ctx, media)
	return patch, nil
}

// PreRemove does nothing for files; blob cleanup belongs to the caller.
func (p *FileProvider) PreRemove(ctx context.Context, media Media) error {
	return nil
}

// fixBinaryContent normalizes the pending content. The returned patch carries
// the canonical handle when the input was a path.
func (p *FileProvider) fixBinaryContent(media Media) (FileHandle, Patch, error) {
	file, err := p.normalize(media)
	if err != nil {
		return nil, Patch{}, err
	}

	var patch Patch
	if _, isPath := media.BinaryContent.(PathContent); isPath && file != nil {
		patch.BinaryContent = HandleContent{File: file}
	}
	return file, patch, nil
}

func (p *FileProvider) normalize(media Media) (FileHandle, error) {
	file, err := NormalizeContent(media.BinaryContent)
	if err != nil {
		p.metrics.InvalidContent(p.name)
		p.logger.Warn("Invalid binary content", "media_id", media.ID, "error", err)
		return nil, err
	}
	return file, nil
}

func (p *FileProvider) writeContent(ctx context.Context, media Media, file FileHandle) error {
	if media.ProviderReference == "" {
		return &MediaError{MediaID: media.ID, Op: "write", Err: ErrMissingReference}
	}

	key := p.ReferenceImage(media)
	start := time.Now()

	reader, err := file.Open()
	if err != nil {
		p.metrics.WriteFailed(p.name)
		return &StorageError{Backend: p.backendName, Key: key, Op: "write", Err: err}
	}
	defer reader.Close()

	if err := p.blobStore.Write(ctx, key, reader, file.MimeType()); err != nil {
		p.metrics.WriteFailed(p.name)
		p.logger.Error("Failed to write media content", "media_id", media.ID, "key", key, "backend", p.backendName, "error", err)
		return &StorageError{Backend: p.backendName, Key: key, Op: "write", Err: err}
	}

	p.metrics.ContentWritten(p.name, file.Size(), time.Since(start))
	p.logger.Debug("Media content written", "media_id", media.ID, "key", key, "size", file.Size())
	return nil
}

// generateThumbnails triggers the thumbnailer without propagating its result
func (p *FileProvider) generateThumbnails(ctx context.Context, media Media) {
	err := p.thumbnailer.Generate(ctx, p, media)
	if err != nil {
		p.logger.Warn("Thumbnail generation failed", "media_id", media.ID, "error", err)
	}
	p.metrics.ThumbnailTriggered(p.name, err)
}
