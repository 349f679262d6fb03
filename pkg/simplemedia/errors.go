package simplemedia

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrInvalidContent indicates the binary content is neither a file handle nor an existing file path
	ErrInvalidContent = errors.New("invalid binary content")

	// ErrStorageWrite indicates the blob store failed to write a file
	ErrStorageWrite = errors.New("storage write failed")

	// ErrMediaNotFound indicates a media record was not found
	ErrMediaNotFound = errors.New("media not found")

	// ErrMediaExists indicates a media record with the same ID is already stored
	ErrMediaExists = errors.New("media already exists")

	// ErrObjectNotFound indicates a blob was not found in storage
	ErrObjectNotFound = errors.New("object not found")

	// ErrPrivateURLUnsupported is returned by providers that cannot deliver private URLs
	ErrPrivateURLUnsupported = errors.New("private url not supported")

	// ErrMissingReference indicates a file write was attempted before a provider reference was assigned
	ErrMissingReference = errors.New("media has no provider reference")
)

// InvalidContentError reports a binary content path that does not reference a regular file
type InvalidContentError struct {
	Path string
	Err  error
}

func (e *InvalidContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("the file does not exist: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("the file does not exist: %s", e.Path)
}

func (e *InvalidContentError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidContent}
	}
	return []error{ErrInvalidContent, e.Err}
}

// MediaError represents an error related to media operations
type MediaError struct {
	MediaID uuid.UUID
	Op      string
	Err     error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media operation %s failed for media %s: %v", e.Op, e.MediaID, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() []error {
	var errs []error
	if e.Op == "write" {
		errs = append(errs, ErrStorageWrite)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
