package simplemedia

import (
	"time"

	"github.com/google/uuid"
)

// ProviderStatus represents the state of a media record's attached file
type ProviderStatus string

const (
	ProviderStatusOK       ProviderStatus = "ok"
	ProviderStatusSending  ProviderStatus = "sending"
	ProviderStatusPending  ProviderStatus = "pending"
	ProviderStatusError    ProviderStatus = "error"
	ProviderStatusEncoding ProviderStatus = "encoding"
)

// DefaultContext is used when a media record does not name a context
const DefaultContext = "default"

// Media is a media record carrying at most one attached file.
//
// BinaryContent is transient: it describes the upload pending for the current
// create or update cycle and is never persisted.
type Media struct {
	ID          uuid.UUID `json:"id"`
	Context     string    `json:"context"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	AuthorName  string    `json:"author_name,omitempty"`
	Copyright   string    `json:"copyright,omitempty"`

	// CDNIsFlushable asks the manager to flush the CDN entry after a write
	CDNIsFlushable bool `json:"cdn_is_flushable"`

	ProviderName      string         `json:"provider_name"`
	ProviderStatus    ProviderStatus `json:"provider_status"`
	ProviderReference string         `json:"provider_reference"`
	ContentType       string         `json:"content_type"`
	Size              int64          `json:"size"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BinaryContent ContentInput `json:"-"`
}

// HasContent reports whether an upload is pending on the record
func (m *Media) HasContent() bool {
	return m.BinaryContent != nil
}

// Patch is the set of field updates produced by a lifecycle hook. Nil fields
// are left untouched by Apply.
type Patch struct {
	Name              *string
	ProviderName      *string
	ProviderStatus    *ProviderStatus
	ProviderReference *string
	ContentType       *string
	Size              *int64
	CreatedAt         *time.Time
	UpdatedAt         *time.Time

	// BinaryContent is set when normalization replaced the pending input
	BinaryContent ContentInput
}

// Apply writes the patch onto m
func (p Patch) Apply(m *Media) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.ProviderName != nil {
		m.ProviderName = *p.ProviderName
	}
	if p.ProviderStatus != nil {
		m.ProviderStatus = *p.ProviderStatus
	}
	if p.ProviderReference != nil {
		m.ProviderReference = *p.ProviderReference
	}
	if p.ContentType != nil {
		m.ContentType = *p.ContentType
	}
	if p.Size != nil {
		m.Size = *p.Size
	}
	if p.CreatedAt != nil {
		m.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		m.UpdatedAt = *p.UpdatedAt
	}
	if p.BinaryContent != nil {
		m.BinaryContent = p.BinaryContent
	}
}

// IsEmpty reports whether applying the patch would change nothing
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.ProviderName == nil && p.ProviderStatus == nil &&
		p.ProviderReference == nil && p.ContentType == nil && p.Size == nil &&
		p.CreatedAt == nil && p.UpdatedAt == nil && p.BinaryContent == nil
}

// ObjectMeta contains metadata about a blob in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}
