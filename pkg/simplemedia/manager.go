package simplemedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Manager drives complete create, update and remove cycles: it runs the
// provider hooks in order, applies their patches and persists the record.
type Manager struct {
	repository Repository
	provider   Provider
	hooks      *Hooks
	clock      Clock
	logger     *slog.Logger
}

// Option represents a functional option for configuring the manager
type Option func(*Manager)

// WithRepository sets the repository for the manager
func WithRepository(repo Repository) Option {
	return func(m *Manager) {
		m.repository = repo
	}
}

// WithProvider sets the media provider
func WithProvider(provider Provider) Option {
	return func(m *Manager) {
		m.provider = provider
	}
}

// WithHooks registers lifecycle hooks; it may be given several times
func WithHooks(hooks *Hooks) Option {
	return func(m *Manager) {
		m.hooks.Merge(hooks)
	}
}

// WithManagerClock sets the clock used to stamp records created without content
func WithManagerClock(clock Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithManagerLogger sets the manager's logger
func WithManagerLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new manager instance with the given options
func NewManager(options ...Option) (*Manager, error) {
	m := &Manager{
		hooks:  &Hooks{},
		clock:  SystemClock{},
		logger: slog.Default(),
	}

	for _, option := range options {
		option(m)
	}

	if m.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if m.provider == nil {
		return nil, fmt.Errorf("provider is required")
	}

	return m, nil
}

// Provider returns the provider handling the manager's records
func (m *Manager) Provider() Provider {
	return m.provider
}

// Create attaches the pending content of media, stores it and persists the
// record. Content errors are returned unchanged and nothing is written. A
// caller supplied ID that is already stored fails with ErrMediaExists before
// any file is touched.
func (m *Manager) Create(ctx context.Context, media *Media) error {
	if media.ID == uuid.Nil {
		media.ID = uuid.New()
	} else if _, err := m.repository.GetMedia(ctx, media.ID); err == nil {
		return m.fail(ctx, "create", &MediaError{MediaID: media.ID, Op: "create", Err: ErrMediaExists})
	} else if !errors.Is(err, ErrMediaNotFound) {
		return m.fail(ctx, "create", &MediaError{MediaID: media.ID, Op: "create", Err: err})
	}
	if media.Context == "" {
		media.Context = DefaultContext
	}

	if err := runMediaHooks(ctx, m.hooks.BeforeMediaCreate, media); err != nil {
		return m.fail(ctx, "before_create", err)
	}

	patch, err := m.provider.PreCreate(ctx, *media)
	if err != nil {
		return m.fail(ctx, "pre_create", err)
	}
	patch.Apply(media)

	// records without content get no timestamps from the provider
	if media.CreatedAt.IsZero() {
		media.CreatedAt = m.clock.Now()
	}
	if media.UpdatedAt.IsZero() {
		media.UpdatedAt = media.CreatedAt
	}

	if err := m.provider.PostCreate(ctx, *media); err != nil {
		return m.fail(ctx, "post_create", err)
	}

	if err := m.repository.CreateMedia(ctx, media); err != nil {
		// the record does not exist, so its file must not either. On
		// ErrMediaExists the file belongs to the stored record.
		if media.HasContent() && !errors.Is(err, ErrMediaExists) {
			if delErr := m.provider.BlobStore().Delete(ctx, m.provider.AbsolutePath(*media)); delErr != nil {
				m.logger.Warn("Failed to remove orphaned file", "media_id", media.ID, "error", delErr)
			}
		}
		return m.fail(ctx, "create", &MediaError{MediaID: media.ID, Op: "create", Err: err})
	}

	m.flush(ctx, media)
	media.BinaryContent = nil

	if err := runMediaHooks(ctx, m.hooks.AfterMediaCreate, media); err != nil {
		m.hooks.executeOnError(ctx, "after_create", err)
	}
	return nil
}

// Get returns a media record by ID
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Media, error) {
	return m.repository.GetMedia(ctx, id)
}

// List returns the media records of a context
func (m *Manager) List(ctx context.Context, mediaContext string) ([]*Media, error) {
	return m.repository.ListMedia(ctx, mediaContext)
}

// Update persists changes to media. When content is pending the stored file
// is overwritten under the existing reference; otherwise only the record's
// own fields are saved.
func (m *Manager) Update(ctx context.Context, media *Media) error {
	if err := runMediaHooks(ctx, m.hooks.BeforeMediaUpdate, media); err != nil {
		return m.fail(ctx, "before_update", err)
	}

	patch, err := m.provider.PreUpdate(ctx, *media)
	if err != nil {
		return m.fail(ctx, "pre_update", err)
	}
	patch.Apply(media)

	patch, err = m.provider.PostUpdate(ctx, *media)
	if err != nil {
		return m.fail(ctx, "post_update", err)
	}
	patch.Apply(media)

	if err := m.repository.UpdateMedia(ctx, media); err != nil {
		return m.fail(ctx, "update", &MediaError{MediaID: media.ID, Op: "update", Err: err})
	}

	m.flush(ctx, media)
	media.BinaryContent = nil

	if err := runMediaHooks(ctx, m.hooks.AfterMediaUpdate, media); err != nil {
		m.hooks.executeOnError(ctx, "after_update", err)
	}
	return nil
}

// Delete removes a media record. Stored files are left in place unless a
// hook such as BlobCleanupHooks removes them.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	media, err := m.repository.GetMedia(ctx, id)
	if err != nil {
		return m.fail(ctx, "delete", err)
	}

	if err := runMediaHooks(ctx, m.hooks.BeforeMediaRemove, media); err != nil {
		return m.fail(ctx, "before_remove", err)
	}

	if err := m.provider.PreRemove(ctx, *media); err != nil {
		return m.fail(ctx, "pre_remove", err)
	}

	if err := m.repository.DeleteMedia(ctx, id); err != nil {
		return m.fail(ctx, "delete", &MediaError{MediaID: id, Op: "delete", Err: err})
	}

	if err := runMediaHooks(ctx, m.hooks.AfterMediaRemove, media); err != nil {
		m.hooks.executeOnError(ctx, "after_remove", err)
	}
	return nil
}

// Download opens the stored file of a media record
func (m *Manager) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Media, error) {
	media, err := m.repository.GetMedia(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if media.ProviderReference == "" {
		return nil, nil, ErrObjectNotFound
	}

	reader, err := m.provider.BlobStore().Read(ctx, m.provider.AbsolutePath(*media))
	if err != nil {
		return nil, nil, err
	}
	return reader, media, nil
}

// flush asks the CDN to drop the record's file when the record allows it
func (m *Manager) flush(ctx context.Context, media *Media) {
	if !media.CDNIsFlushable || !media.HasContent() {
		return
	}
	path := m.provider.AbsolutePath(*media)
	if err := m.provider.CDN().Flush(ctx, []string{path}); err != nil {
		m.logger.Warn("CDN flush failed", "media_id", media.ID, "path", path, "error", err)
	}
}

func (m *Manager) fail(ctx context.Context, operation string, err error) error {
	m.hooks.executeOnError(ctx, operation, err)
	if !errors.Is(err, ErrInvalidContent) {
		m.logger.Error("Media operation failed", "operation", operation, "error", err)
	}
	return err
}
