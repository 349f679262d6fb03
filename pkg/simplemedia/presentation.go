package simplemedia

import "fmt"

// Name returns the provider name stamped on records
func (p *FileProvider) Name() string {
	return p.name
}

// BlobStore returns the storage backend the provider writes to
func (p *FileProvider) BlobStore() BlobStore {
	return p.blobStore
}

// CDN returns the CDN used for public URLs
func (p *FileProvider) CDN() CDN {
	return p.cdn
}

// BuildPath returns the directory holding the record's files
func (p *FileProvider) BuildPath(media Media) string {
	return p.pathBuilder.BuildPath(media)
}

// ReferenceImage returns the storage key of the record's file
func (p *FileProvider) ReferenceImage(media Media) string {
	return fmt.Sprintf("%s/%s", p.BuildPath(media), media.ProviderReference)
}

// AbsolutePath is the same key as ReferenceImage for files
func (p *FileProvider) AbsolutePath(media Media) string {
	return p.ReferenceImage(media)
}

// RequiresThumbnails is false: arbitrary files have no rendered preview
func (p *FileProvider) RequiresThumbnails() bool {
	return false
}

// PublicURL returns the generic file icon for format, resolved through the CDN
func (p *FileProvider) PublicURL(media Media, format string) string {
	return p.cdn.Path(fmt.Sprintf("media_bundle/images/files/%s/file.png", format))
}

// PrivateURL always fails with ErrPrivateURLUnsupported
func (p *FileProvider) PrivateURL(media Media, format string) (string, error) {
	return "", ErrPrivateURLUnsupported
}

// HelperProperties returns the values presentation layers need to render a
// link to the file. Entries in options override the derived ones.
func (p *FileProvider) HelperProperties(media Media, format string, options map[string]any) map[string]any {
	props := map[string]any{
		"title":     media.Name,
		"thumbnail": p.ReferenceImage(media),
		"file":      p.ReferenceImage(media),
	}
	for k, v := range options {
		props[k] = v
	}
	return props
}
