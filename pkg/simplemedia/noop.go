package simplemedia

import (
	"context"
	"time"
)

// NoopThumbnailer never generates anything
type NoopThumbnailer struct{}

// NewNoopThumbnailer creates a new no-operation thumbnailer
func NewNoopThumbnailer() Thumbnailer {
	return &NoopThumbnailer{}
}

// Generate does nothing and returns nil
func (n *NoopThumbnailer) Generate(ctx context.Context, source ThumbnailSource, media Media) error {
	return nil
}

// NoopCDN resolves paths relative to a fixed prefix and ignores flushes
type NoopCDN struct {
	Prefix string
}

func (c NoopCDN) Path(relativePath string) string {
	if c.Prefix == "" {
		return relativePath
	}
	return c.Prefix + "/" + relativePath
}

func (c NoopCDN) Flush(ctx context.Context, paths []string) error {
	return nil
}

// NoopMetrics discards all provider events
type NoopMetrics struct{}

func (NoopMetrics) ContentWritten(provider string, bytes int64, duration time.Duration) {}
func (NoopMetrics) WriteFailed(provider string)                                         {}
func (NoopMetrics) ReferenceGenerated(provider string)                                  {}
func (NoopMetrics) InvalidContent(provider string)                                      {}
func (NoopMetrics) ThumbnailTriggered(provider string, err error)                       {}
