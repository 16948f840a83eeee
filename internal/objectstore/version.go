// Package objectstore defines the version-record data model and the
// client interface the restore pipeline consumes, plus a minio-go
// backed implementation for S3-compatible endpoints.
package objectstore

import (
	"time"

	"github.com/s3ops/s3pitrestore/internal/json"
)

// VersionRecord is an immutable description of one historical version
// of one key.
type VersionRecord struct {
	Key          string
	BucketName   string
	VersionID    string // empty means absent (synthesized tombstone)
	LastModified time.Time
	HasModified  bool // false iff LastModified is absent
	DeleteMarker bool
	IsCurrent    bool // set downstream by the selector
}

// HasVersionID reports whether v carries a real (non-synthesized)
// version identifier.
func (v VersionRecord) HasVersionID() bool {
	return v.VersionID != ""
}

// IsTombstone reports whether v is a synthesized "did not exist at T"
// placeholder rather than a version the store actually returned.
func (v VersionRecord) IsTombstone() bool {
	return v.DeleteMarker && !v.HasVersionID() && !v.HasModified
}

// Equal implements the record-equality the selector uses to compute
// IsCurrent: two records describe the same underlying version iff
// their key, version id, delete-marker flag and modification time
// agree.
func (v VersionRecord) Equal(o VersionRecord) bool {
	return v.Key == o.Key &&
		v.VersionID == o.VersionID &&
		v.DeleteMarker == o.DeleteMarker &&
		v.HasModified == o.HasModified &&
		v.LastModified.Equal(o.LastModified)
}

// Tombstone synthesizes the "did not exist at T" target version for key,
// per spec: version_id and last_modified absent, delete_marker true.
func Tombstone(key, srcBucket string) VersionRecord {
	return VersionRecord{
		Key:          key,
		BucketName:   srcBucket,
		DeleteMarker: true,
	}
}

// jsonView is VersionRecord's wire shape for the "versions" and
// "restored" stage outputs: hyphen-free lower-case keys, UTC ISO-8601
// timestamps, and explicit `null` (not an omitted field) for an absent
// version_id or last_modified.
type jsonView struct {
	Key          string  `json:"key"`
	BucketName   string  `json:"bucket_name"`
	VersionID    *string `json:"version_id"`
	LastModified *string `json:"last_modified"`
	DeleteMarker bool    `json:"delete_marker"`
	IsCurrent    bool    `json:"is_current"`
}

func (v VersionRecord) MarshalJSON() ([]byte, error) {
	view := jsonView{
		Key:          v.Key,
		BucketName:   v.BucketName,
		DeleteMarker: v.DeleteMarker,
		IsCurrent:    v.IsCurrent,
	}
	if v.HasVersionID() {
		id := v.VersionID
		view.VersionID = &id
	}
	if v.HasModified {
		ts := v.LastModified.UTC().Format(time.RFC3339Nano)
		view.LastModified = &ts
	}
	return json.Marshal(view)
}

func (v *VersionRecord) UnmarshalJSON(data []byte) error {
	var view jsonView
	if err := json.Unmarshal(data, &view); err != nil {
		return err
	}

	*v = VersionRecord{
		Key:          view.Key,
		BucketName:   view.BucketName,
		DeleteMarker: view.DeleteMarker,
		IsCurrent:    view.IsCurrent,
	}
	if view.VersionID != nil {
		v.VersionID = *view.VersionID
	}
	if view.LastModified != nil {
		t, err := time.Parse(time.RFC3339Nano, *view.LastModified)
		if err != nil {
			return err
		}
		v.LastModified = t
		v.HasModified = true
	}
	return nil
}
