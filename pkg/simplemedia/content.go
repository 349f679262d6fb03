package simplemedia

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// ContentInput is the pending binary content of a media record. It is one of
// HandleContent or PathContent; a nil ContentInput means no upload.
type ContentInput interface {
	contentInput()
}

// HandleContent wraps an already opened file handle
type HandleContent struct {
	File FileHandle
}

func (HandleContent) contentInput() {}

// PathContent is a filesystem path that still has to be resolved into a handle
type PathContent string

func (PathContent) contentInput() {}

// FileHandle is the canonical form of an upload
type FileHandle interface {
	// Name returns the original file name
	Name() string
	// Extension returns the file name extension including the dot
	Extension() string
	MimeType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// LocalFile is a FileHandle backed by a regular file on disk
type LocalFile struct {
	path     string
	size     int64
	mimeType string
}

// OpenLocalFile builds a LocalFile for path. The path must reference an
// existing regular file.
func OpenLocalFile(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	mimeType := mimeTypeByExtension(path)
	if mimeType == "" {
		mimeType, err = sniffFile(path)
		if err != nil {
			return nil, err
		}
	}

	return &LocalFile{
		path:     path,
		size:     info.Size(),
		mimeType: mimeType,
	}, nil
}

func (f *LocalFile) Name() string      { return filepath.Base(f.path) }
func (f *LocalFile) Extension() string { return filepath.Ext(f.path) }
func (f *LocalFile) MimeType() string  { return f.mimeType }
func (f *LocalFile) Size() int64       { return f.size }

// Path returns the location of the file on disk
func (f *LocalFile) Path() string { return f.path }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// MemoryFile is a FileHandle holding its bytes in memory
type MemoryFile struct {
	name     string
	data     []byte
	mimeType string
}

// NewMemoryFile creates an in-memory file handle. The MIME type is derived
// from the name, falling back to content sniffing.
func NewMemoryFile(name string, data []byte) *MemoryFile {
	mimeType := mimeTypeByExtension(name)
	if mimeType == "" {
		mimeType = detectContentType(data)
	}
	return &MemoryFile{name: name, data: data, mimeType: mimeType}
}

// NewMemoryFileWithType creates an in-memory file handle with an explicit MIME type
func NewMemoryFileWithType(name string, data []byte, mimeType string) *MemoryFile {
	return &MemoryFile{name: name, data: data, mimeType: mimeType}
}

func (f *MemoryFile) Name() string      { return filepath.Base(f.name) }
func (f *MemoryFile) Extension() string { return filepath.Ext(f.name) }
func (f *MemoryFile) MimeType() string  { return f.mimeType }
func (f *MemoryFile) Size() int64       { return int64(len(f.data)) }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func mimeTypeByExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return stripParams(mime.TypeByExtension(ext))
}

func sniffFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	return detectContentType(buffer[:n]), nil
}

func detectContentType(data []byte) string {
	return stripParams(http.DetectContentType(data))
}

// stripParams drops parameters such as "; charset=utf-8"
func stripParams(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mediaType
}
