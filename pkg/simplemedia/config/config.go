package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/cdn"
	"github.com/tendant/simple-media/pkg/simplemedia/pathgen"
	"github.com/tendant/simple-media/pkg/simplemedia/repo/cache"
	"github.com/tendant/simple-media/pkg/simplemedia/repo/memory"
	repopg "github.com/tendant/simple-media/pkg/simplemedia/repo/postgres"
	fsstorage "github.com/tendant/simple-media/pkg/simplemedia/storage/fs"
	memorystorage "github.com/tendant/simple-media/pkg/simplemedia/storage/memory"
	s3storage "github.com/tendant/simple-media/pkg/simplemedia/storage/s3"
	"github.com/tendant/simple-media/pkg/simplemedia/thumbnail"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:                "8080",
		Environment:         "development",
		DatabaseType:        "memory",
		DBSchema:            repopg.DefaultSchema,
		Storage:             StorageConfig{Type: "memory"},
		PathStrategy:        "sharded",
		CacheTTL:            cache.DefaultTTL,
		AsyncThumbnails:     true,
		DeleteFilesOnRemove: true,
	}
}

// ServerConfig represents server configuration for the simple-media service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string
	AutoMigrate  bool

	// Record cache in front of the database; disabled when CacheSize is 0
	CacheSize int
	CacheTTL  time.Duration

	Storage StorageConfig

	// Path layout
	PathStrategy string // "sharded", "flat"
	PathPrefix   string

	// CDN
	CDNBaseURL    string
	CDNPurgeURL   string
	CDNPurgeToken string

	// Thumbnails
	ThumbnailFormats []thumbnail.Format
	AsyncThumbnails  bool

	DeleteFilesOnRemove bool
	APIKeySHA256        string
}

// StorageConfig selects and configures the blob store
type StorageConfig struct {
	Type    string // "memory", "fs", "s3"
	BaseDir string
	S3      s3storage.Config
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("filesystem storage requires a base directory")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("s3 storage requires a bucket")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if _, err := pathgen.New(c.PathStrategy); err != nil {
		return err
	}

	if c.CDNPurgeURL != "" && c.CDNBaseURL == "" {
		return errors.New("cdn_base_url is required when a purge url is set")
	}

	return nil
}

// Runtime holds the components built from a ServerConfig
type Runtime struct {
	Manager  *simplemedia.Manager
	Provider *simplemedia.FileProvider

	closers []func()
}

// Close waits for background work and releases connections
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// Build creates the provider and manager described by the configuration.
// A nil metrics records nothing; a nil logger uses slog.Default.
func (c *ServerConfig) Build(ctx context.Context, metrics simplemedia.Metrics, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = simplemedia.NoopMetrics{}
	}
	rt := &Runtime{}

	store, err := c.buildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}

	builder, err := pathgen.New(c.PathStrategy)
	if err != nil {
		return nil, err
	}
	if c.PathPrefix != "" {
		builder = pathgen.NewPrefixGenerator(c.PathPrefix, builder)
	}

	options := []simplemedia.ProviderOption{
		simplemedia.WithBlobStore(c.Storage.Type, store),
		simplemedia.WithPathBuilder(builder),
		simplemedia.WithCDN(c.buildCDN()),
		simplemedia.WithMetrics(metrics),
		simplemedia.WithLogger(logger),
	}

	if len(c.ThumbnailFormats) > 0 {
		var thumbs simplemedia.Thumbnailer = thumbnail.NewImageThumbnailer(c.ThumbnailFormats...)
		if c.AsyncThumbnails {
			async := thumbnail.NewAsync(thumbs, logger)
			rt.closers = append(rt.closers, async.Wait)
			thumbs = async
		}
		options = append(options, simplemedia.WithThumbnailer(thumbs))
	}

	provider, err := simplemedia.NewFileProvider(options...)
	if err != nil {
		return nil, err
	}

	repo, err := c.buildRepository(ctx, rt, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	managerOptions := []simplemedia.Option{
		simplemedia.WithRepository(repo),
		simplemedia.WithProvider(provider),
		simplemedia.WithHooks(simplemedia.LoggingHooks(logger)),
		simplemedia.WithManagerLogger(logger),
	}
	if c.DeleteFilesOnRemove {
		managerOptions = append(managerOptions, simplemedia.WithHooks(simplemedia.BlobCleanupHooks(provider)))
	}

	manager, err := simplemedia.NewManager(managerOptions...)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Manager = manager
	rt.Provider = provider
	return rt, nil
}

func (c *ServerConfig) buildBlobStore() (simplemedia.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.BaseDir})
	case "s3":
		return s3storage.New(c.Storage.S3)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

func (c *ServerConfig) buildCDN() simplemedia.CDN {
	if c.CDNBaseURL == "" {
		return simplemedia.NoopCDN{}
	}
	if c.CDNPurgeURL == "" {
		return cdn.NewServer(c.CDNBaseURL)
	}
	// purge failures must reach the manager, so there is no fallback here
	return cdn.NewEdge(c.CDNBaseURL, cdn.NewHTTPPurger(c.CDNPurgeURL, c.CDNPurgeToken))
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context, rt *Runtime, logger *slog.Logger) (simplemedia.Repository, error) {
	var repo simplemedia.Repository
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.AutoMigrate {
			if err := repopg.Migrate(ctx, c.DatabaseURL, c.DBSchema, logger); err != nil {
				return nil, err
			}
		}
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		repo = repopg.NewWithSchema(pool, c.DBSchema)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.CacheSize > 0 {
		repo = cache.New(repo, c.CacheSize, c.CacheTTL)
	}
	return repo, nil
}
