package domain

import (
	"context"
	"io"
	"time"
)

// BlobWriter stores immutable payloads (raw provider responses, archive
// files) in object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// BlobInfo is metadata for one stored object.
type BlobInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// BlobReader retrieves and enumerates stored payloads (archive files,
// snapshot history).
type BlobReader interface {
	// Get returns ErrNotFound when the object does not exist. The caller
	// closes the returned reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// Archiver ships aged opportunity history out of the primary store into
// object storage. Deletion from the primary store is a separate, explicit
// step once the archive upload has succeeded.
type Archiver interface {
	ArchiveOpportunities(ctx context.Context, before time.Time) (int64, error)
}
