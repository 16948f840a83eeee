package objectstore

import "context"

// Page is one page of a paged list-versions response.
type Page struct {
	Summaries  []VersionRecord
	Truncated  bool
	NextMarker string // opaque cursor, valid only when Truncated
}

// Store is the object-store surface the restore pipeline consumes.
// A concrete implementation (e.g. objectstore/s3) wraps a specific
// SDK; the pipeline itself never imports that SDK directly.
type Store interface {
	// ListVersionsPage issues one paged list-versions call for bucket/prefix,
	// starting at marker (empty for the first page).
	ListVersionsPage(ctx context.Context, bucket, prefix, marker string) (Page, error)

	// Copy copies srcVersionID of srcKey in srcBucket to destKey in
	// destBucket, preserving content. Copying a specific version id is
	// idempotent: repeating it produces the same destination content.
	Copy(ctx context.Context, srcBucket, srcKey, srcVersionID, destBucket, destKey string) error

	// Delete removes destKey from destBucket. Deleting an already-absent
	// key is treated as success.
	Delete(ctx context.Context, destBucket, destKey string) error
}
