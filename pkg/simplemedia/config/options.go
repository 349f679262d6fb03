package config

import (
	"fmt"
	"time"

	s3storage "github.com/tendant/simple-media/pkg/simplemedia/storage/s3"
	"github.com/tendant/simple-media/pkg/simplemedia/thumbnail"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate applies the embedded migrations when the repository is built
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithCache puts an expiring LRU of size records in front of the database
func WithCache(size int, ttl time.Duration) Option {
	return func(c *ServerConfig) error {
		if size < 0 {
			return fmt.Errorf("cache size cannot be negative, got: %d", size)
		}
		c.CacheSize = size
		c.CacheTTL = ttl
		return nil
	}
}

// WithMemoryStorage stores files in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	}
}

// WithFilesystemStorage stores files under baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: baseDir}
		return nil
	}
}

// WithS3Storage stores files in an S3 bucket
func WithS3Storage(cfg s3storage.Config) Option {
	return func(c *ServerConfig) error {
		if cfg.Bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		c.Storage = StorageConfig{Type: "s3", S3: cfg}
		return nil
	}
}

// WithPathStrategy selects the path generator and an optional key prefix
func WithPathStrategy(strategy, prefix string) Option {
	return func(c *ServerConfig) error {
		c.PathStrategy = strategy
		c.PathPrefix = prefix
		return nil
	}
}

// WithCDN resolves public URLs against baseURL. A non-empty purgeURL enables
// cache invalidation for flushable records.
func WithCDN(baseURL, purgeURL, purgeToken string) Option {
	return func(c *ServerConfig) error {
		c.CDNBaseURL = baseURL
		c.CDNPurgeURL = purgeURL
		c.CDNPurgeToken = purgeToken
		return nil
	}
}

// WithThumbnailFormats parses formats such as "small:100x70,big:500x0"
func WithThumbnailFormats(formats string) Option {
	return func(c *ServerConfig) error {
		parsed, err := thumbnail.ParseFormats(formats)
		if err != nil {
			return err
		}
		c.ThumbnailFormats = parsed
		return nil
	}
}

// WithAsyncThumbnails renders thumbnails in the background
func WithAsyncThumbnails(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AsyncThumbnails = enabled
		return nil
	}
}

// WithDeleteFilesOnRemove removes stored files together with their records
func WithDeleteFilesOnRemove(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.DeleteFilesOnRemove = enabled
		return nil
	}
}

// WithAPIKeySHA256 sets the hashed API key accepted by the HTTP server
func WithAPIKeySHA256(hash string) Option {
	return func(c *ServerConfig) error {
		c.APIKeySHA256 = hash
		return nil
	}
}
