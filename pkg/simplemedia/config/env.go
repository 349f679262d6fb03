package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	s3storage "github.com/tendant/simple-media/pkg/simplemedia/storage/s3"
	"github.com/tendant/simple-media/pkg/simplemedia/thumbnail"
)

// EnvConfig is the environment read by WithEnv.
//
// DATABASE_URL: "memory" (default) or "postgres://..."
// STORAGE_URL: "memory://" (default), "file:///path/to/data" or
// "s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true&prefix=media"
type EnvConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseURL string        `env:"DATABASE_URL" env-default:"memory"`
	DBSchema    string        `env:"DB_SCHEMA" env-default:"media"`
	AutoMigrate bool          `env:"DB_AUTO_MIGRATE" env-default:"false"`
	CacheSize   int           `env:"MEDIA_CACHE_SIZE" env-default:"0"`
	CacheTTL    time.Duration `env:"MEDIA_CACHE_TTL" env-default:"5m"`

	StorageURL         string `env:"STORAGE_URL" env-default:"memory://"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION"`

	PathStrategy string `env:"PATH_STRATEGY" env-default:"sharded"`
	PathPrefix   string `env:"PATH_PREFIX"`

	CDNBaseURL    string `env:"CDN_BASE_URL"`
	CDNPurgeURL   string `env:"CDN_PURGE_URL"`
	CDNPurgeToken string `env:"CDN_PURGE_TOKEN"`

	ThumbnailFormats string `env:"THUMBNAIL_FORMATS"`
	AsyncThumbnails  bool   `env:"THUMBNAIL_ASYNC" env-default:"true"`

	DeleteFilesOnRemove bool   `env:"DELETE_FILES_ON_REMOVE" env-default:"true"`
	APIKeySHA256        string `env:"API_KEY_SHA256"`
}

// WithEnv reads EnvConfig from the environment and applies it. Every variable
// has a default, so options that must win over the environment go after it.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env EnvConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return env.apply(c)
	}
}

func (e EnvConfig) apply(c *ServerConfig) error {
	c.Port = e.Port
	c.Environment = e.Environment
	c.DBSchema = e.DBSchema
	c.AutoMigrate = e.AutoMigrate
	c.CacheSize = e.CacheSize
	c.CacheTTL = e.CacheTTL
	c.PathStrategy = e.PathStrategy
	c.PathPrefix = e.PathPrefix
	c.CDNBaseURL = e.CDNBaseURL
	c.CDNPurgeURL = e.CDNPurgeURL
	c.CDNPurgeToken = e.CDNPurgeToken
	c.AsyncThumbnails = e.AsyncThumbnails
	c.DeleteFilesOnRemove = e.DeleteFilesOnRemove
	c.APIKeySHA256 = e.APIKeySHA256

	formats, err := thumbnail.ParseFormats(e.ThumbnailFormats)
	if err != nil {
		return fmt.Errorf("invalid THUMBNAIL_FORMATS: %w", err)
	}
	c.ThumbnailFormats = formats

	if err := applyDatabaseURL(e.DatabaseURL, c); err != nil {
		return err
	}
	return e.applyStorageURL(c)
}

func applyDatabaseURL(dbURL string, c *ServerConfig) error {
	if dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}

	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

func (e EnvConfig) applyStorageURL(c *ServerConfig) error {
	storageURL := e.StorageURL
	switch {
	case storageURL == "" || storageURL == "memory" || storageURL == "memory://":
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	case strings.HasPrefix(storageURL, "file://"):
		path := strings.TrimPrefix(storageURL, "file://")
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: path}
		return nil
	case strings.HasPrefix(storageURL, "s3://"):
		cfg, err := parseS3URL(storageURL)
		if err != nil {
			return err
		}
		cfg.AccessKeyID = e.AWSAccessKeyID
		cfg.SecretAccessKey = e.AWSSecretAccessKey
		if e.AWSRegion != "" && cfg.Region == "" {
			cfg.Region = e.AWSRegion
		}
		c.Storage = StorageConfig{Type: "s3", S3: cfg}
		return nil
	}

	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

// parseS3URL reads s3://bucket?region=..&endpoint=..&path_style=..&prefix=..&create_bucket=..
func parseS3URL(raw string) (s3storage.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return s3storage.Config{}, fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return s3storage.Config{}, fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	q := u.Query()
	cfg := s3storage.Config{
		Bucket:    u.Host,
		Region:    q.Get("region"),
		Endpoint:  q.Get("endpoint"),
		KeyPrefix: q.Get("prefix"),
	}
	for key, target := range map[string]*bool{
		"path_style":    &cfg.UsePathStyle,
		"create_bucket": &cfg.CreateBucketIfNotExist,
	} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return s3storage.Config{}, fmt.Errorf("invalid boolean for %s in STORAGE_URL: %w", key, err)
		}
		*target = parsed
	}
	if sse := q.Get("sse"); sse != "" {
		cfg.EnableSSE = true
		cfg.SSEAlgorithm = sse
		cfg.SSEKMSKeyID = q.Get("kms_key_id")
	}
	return cfg, nil
}
