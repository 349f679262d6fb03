package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// Backend is a filesystem implementation of the simplemedia.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir: filepath.Clean(config.BaseDir),
	}, nil
}

// resolve maps a storage path to a file below baseDir
func (b *Backend) resolve(path string) (string, error) {
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(path))
	if filePath != b.baseDir && !strings.HasPrefix(filePath, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes base directory", path)
	}
	return filePath, nil
}

// Write stores the reader's bytes at path. Data goes to a temporary file in
// the target directory first and is renamed into place, so readers see
// either the old or the new file.
func (b *Backend) Write(ctx context.Context, path string, reader io.Reader, mimeType string) error {
	filePath, err := b.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Read opens the file stored at path
func (b *Backend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	filePath, err := b.resolve(path)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, simplemedia.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	filePath, err := b.resolve(path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to get file info: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Stat retrieves metadata for a file in the filesystem
func (b *Backend) Stat(ctx context.Context, path string) (*simplemedia.ObjectMeta, error) {
	filePath, err := b.resolve(path)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, simplemedia.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
		if file, err := os.Open(filePath); err == nil {
			defer file.Close()
			buffer := make([]byte, 512)
			if n, err := file.Read(buffer); err == nil {
				contentType = http.DetectContentType(buffer[:n])
			}
		}
	}

	return &simplemedia.ObjectMeta{
		Key:         path,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
		Metadata:    map[string]string{"content_type": contentType},
	}, nil
}

// Delete deletes a file and prunes the directories it leaves empty
func (b *Backend) Delete(ctx context.Context, path string) error {
	filePath, err := b.resolve(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return simplemedia.ErrObjectNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir || !strings.HasPrefix(dir, b.baseDir) {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
