package cdn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Server serves files straight from a base URL; there is no cache to flush
type Server struct {
	BaseURL string // e.g., "https://cdn.example.com/uploads" or "/uploads"
}

// NewServer creates a new Server CDN
func NewServer(baseURL string) *Server {
	return &Server{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Path joins relativePath onto the base URL
func (s *Server) Path(relativePath string) string {
	relativePath = strings.TrimPrefix(relativePath, "/")
	if s.BaseURL == "" {
		return "/" + relativePath
	}
	return fmt.Sprintf("%s/%s", s.BaseURL, relativePath)
}

// Flush is a no-op for plain servers
func (s *Server) Flush(ctx context.Context, paths []string) error {
	return nil
}

// Flusher invalidates cached paths on an edge cache
type Flusher interface {
	Flush(ctx context.Context, paths []string) error
}

// FlushFunc adapts a function to Flusher
type FlushFunc func(ctx context.Context, paths []string) error

func (f FlushFunc) Flush(ctx context.Context, paths []string) error {
	return f(ctx, paths)
}

// Fallback resolves paths through a primary CDN. Flushes go to the primary
// and, when that fails, to the fallback.
type Fallback struct {
	Primary   Resolver
	Secondary Resolver
	Logger    *slog.Logger
}

// Resolver is the CDN behaviour Fallback composes
type Resolver interface {
	Path(relativePath string) string
	Flush(ctx context.Context, paths []string) error
}

// NewFallback creates a Fallback CDN
func NewFallback(primary, secondary Resolver) *Fallback {
	return &Fallback{
		Primary:   primary,
		Secondary: secondary,
		Logger:    slog.Default(),
	}
}

func (f *Fallback) Path(relativePath string) string {
	return f.Primary.Path(relativePath)
}

func (f *Fallback) Flush(ctx context.Context, paths []string) error {
	err := f.Primary.Flush(ctx, paths)
	if err == nil {
		return nil
	}
	f.Logger.Warn("Primary CDN flush failed, using fallback", "paths", paths, "error", err)
	if fallbackErr := f.Secondary.Flush(ctx, paths); fallbackErr != nil {
		return errors.Join(err, fallbackErr)
	}
	return nil
}

// Edge is a CDN whose cache is invalidated through a Flusher, e.g. an HTTP
// purge endpoint or a cloud invalidation API
type Edge struct {
	*Server
	flusher Flusher
}

// NewEdge creates an Edge CDN serving from baseURL
func NewEdge(baseURL string, flusher Flusher) *Edge {
	return &Edge{
		Server:  NewServer(baseURL),
		flusher: flusher,
	}
}

func (e *Edge) Flush(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = e.Path(p)
	}
	return e.flusher.Flush(ctx, urls)
}
