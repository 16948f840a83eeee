// Package storetest provides an in-memory objectstore.Store double for
// exercising the pipeline stages without a live bucket, in the spirit
// of the teacher's internal/backend/mock function-field backend.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
)

// DefaultPageSize is the Store.PageSize New sets, and the one
// ListVersionsPage falls back to when PageSize <= 0. PageSize bounds how
// many summaries ListVersionsPage returns at once, letting tests
// exercise pagination without a real object store.
const DefaultPageSize = 2

// Store is an in-memory objectstore.Store. All exported fields may be
// set before use. Build one with New: Seed and Copy write into maps
// that New allocates and the zero value lacks.
type Store struct {
	PageSize int

	// CopyFn and DeleteFn, when set, override the default in-memory
	// behavior. Used to inject transient/permanent errors in tests.
	CopyFn   func(ctx context.Context, srcBucket, srcKey, srcVersionID, destBucket, destKey string) error
	DeleteFn func(ctx context.Context, destBucket, destKey string) error

	mu       sync.Mutex
	versions map[string][]objectstore.VersionRecord // bucket -> versions, insertion order preserved
	objects  map[string]bool                        // "bucket/key" -> exists (post restore actions)

	Copies  []CopyCall
	Deletes []DeleteCall
}

type CopyCall struct {
	SrcBucket, SrcKey, SrcVersionID, DestBucket, DestKey string
}

type DeleteCall struct {
	DestBucket, DestKey string
}

var _ objectstore.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		PageSize: DefaultPageSize,
		versions: make(map[string][]objectstore.VersionRecord),
		objects:  make(map[string]bool),
	}
}

// Seed appends v to bucket's version listing, in the order a caller
// wants ListVersionsPage to return it (callers control ordering
// explicitly; the store never re-sorts what it was given).
func (s *Store) Seed(bucket string, v objectstore.VersionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.BucketName = bucket
	s.versions[bucket] = append(s.versions[bucket], v)
	if v.HasVersionID() && !v.DeleteMarker {
		s.objects[objectKey(bucket, v.Key)] = true
	}
}

func objectKey(bucket, key string) string { return bucket + "/" + key }

// ListVersionsPage paginates the seeded versions matching prefix,
// PageSize at a time, using the numeric offset packed into marker.
func (s *Store) ListVersionsPage(ctx context.Context, bucket, prefix, marker string) (objectstore.Page, error) {
	if err := ctx.Err(); err != nil {
		return objectstore.Page{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []objectstore.VersionRecord
	for _, v := range s.versions[bucket] {
		if hasPrefix(v.Key, prefix) {
			matched = append(matched, v)
		}
	}

	offset := decodeOffset(marker)
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	end := offset + pageSize
	truncated := end < len(matched)
	if end > len(matched) {
		end = len(matched)
	}
	if offset > len(matched) {
		offset = len(matched)
	}

	page := objectstore.Page{
		Summaries: append([]objectstore.VersionRecord(nil), matched[offset:end]...),
		Truncated: truncated,
	}
	if truncated {
		page.NextMarker = encodeOffset(end)
	}
	return page, nil
}

func hasPrefix(key, prefix string) bool {
	return len(key) >= len(prefix) && key[:len(prefix)] == prefix
}

// Copy performs an in-memory copy, or defers to CopyFn if set.
func (s *Store) Copy(ctx context.Context, srcBucket, srcKey, srcVersionID, destBucket, destKey string) error {
	s.mu.Lock()
	s.Copies = append(s.Copies, CopyCall{srcBucket, srcKey, srcVersionID, destBucket, destKey})
	fn := s.CopyFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, srcBucket, srcKey, srcVersionID, destBucket, destKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, v := range s.versions[srcBucket] {
		if v.Key == srcKey && v.VersionID == srcVersionID {
			found = true
			break
		}
	}
	if !found {
		return errors.Permanentf("storetest: no such version %v@%v", srcKey, srcVersionID)
	}

	s.objects[objectKey(destBucket, destKey)] = true
	return nil
}

// Delete performs an in-memory delete, or defers to DeleteFn if set.
// Deleting an absent key is a no-op, matching a real store's behavior.
func (s *Store) Delete(ctx context.Context, destBucket, destKey string) error {
	s.mu.Lock()
	s.Deletes = append(s.Deletes, DeleteCall{destBucket, destKey})
	fn := s.DeleteFn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, destBucket, destKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey(destBucket, destKey))
	return nil
}

// Exists reports whether destKey exists in destBucket as a result of
// prior Copy/Delete calls, for test assertions.
func (s *Store) Exists(bucket, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[objectKey(bucket, key)]
}

// SortedCopies returns Copies sorted by dest key, for deterministic
// assertions against a set of parallel restore workers.
func (s *Store) SortedCopies() []CopyCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]CopyCall(nil), s.Copies...)
	sort.Slice(out, func(i, j int) bool { return out[i].DestKey < out[j].DestKey })
	return out
}

func encodeOffset(n int) string {
	digits := []byte{}
	if n == 0 {
		return "0"
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func decodeOffset(marker string) int {
	n := 0
	for _, c := range marker {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
