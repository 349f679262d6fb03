// Package simplemedia provides a file media provider: it attaches a single
// uploaded binary to a media record, stores the bytes in a pluggable blob
// store and keeps the record's derived metadata in sync with what was stored.
//
// The provider is driven through lifecycle hooks (PreCreate, PostCreate,
// PreUpdate, PostUpdate, PreRemove). Each hook receives a snapshot of the
// record and returns a Patch that the caller applies, so the order of
// mutations stays explicit. Manager wraps the hooks with a Repository for
// callers that want the whole create/update/delete cycle in one call.
//
// Storage Keys
//
// A record's blob lives at PathBuilder.BuildPath(media) + "/" +
// media.ProviderReference. The reference is generated once, on the first
// successful attach, and never regenerated afterwards; later uploads
// overwrite the same key.
//
// Blob stores (memory, filesystem, S3), path builders, CDN resolvers,
// thumbnailers and repositories are provided under subpackages.
package simplemedia
