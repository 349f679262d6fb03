package simplemedia_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/pathgen"
	memorystorage "github.com/tendant/simple-media/pkg/simplemedia/storage/memory"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// countingStore counts writes on top of the memory backend
type countingStore struct {
	*memorystorage.Backend
	mu     sync.Mutex
	writes int
}

func (s *countingStore) Write(ctx context.Context, path string, reader io.Reader, mimeType string) error {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.Backend.Write(ctx, path, reader, mimeType)
}

func (s *countingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type failingStore struct {
	*memorystorage.Backend
}

var errDiskFull = errors.New("disk full")

func (failingStore) Write(ctx context.Context, path string, reader io.Reader, mimeType string) error {
	return errDiskFull
}

type recordingCDN struct {
	simplemedia.NoopCDN
	flushed []string
}

func (c *recordingCDN) Flush(ctx context.Context, paths []string) error {
	c.flushed = append(c.flushed, paths...)
	return nil
}

// countingReferences returns a generator that counts its calls
func countingReferences(calls *int) simplemedia.ReferenceGenerator {
	inner := simplemedia.NewHashReferenceGenerator(nil)
	return simplemedia.ReferenceFunc(func(fileName string) string {
		*calls++
		return inner.Generate(fileName)
	})
}

type fixture struct {
	provider *simplemedia.FileProvider
	store    *countingStore
	clock    *fixedClock
	refCalls int
}

func newFixture(t *testing.T, opts ...simplemedia.ProviderOption) *fixture {
	t.Helper()
	f := &fixture{
		store: &countingStore{Backend: memorystorage.New()},
		clock: &fixedClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	base := []simplemedia.ProviderOption{
		simplemedia.WithBlobStore("memory", f.store),
		simplemedia.WithPathBuilder(pathgen.NewRecommendedGenerator()),
		simplemedia.WithClock(f.clock),
		simplemedia.WithReferenceGenerator(countingReferences(&f.refCalls)),
	}
	provider, err := simplemedia.NewFileProvider(append(base, opts...)...)
	require.NoError(t, err)
	f.provider = provider
	return f
}

// writeTempFile creates name under a fresh temp dir with content
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readBlob(t *testing.T, store simplemedia.BlobStore, key string) string {
	t.Helper()
	reader, err := store.Read(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return string(data)
}

var fortyTwoBytes = strings.Repeat("x", 41) + "\n"
