package objectstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/s3ops/s3pitrestore/internal/json"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
)

func TestVersionRecordJSONRoundTrip(t *testing.T) {
	v := objectstore.VersionRecord{
		Key:          "prefix1/a",
		BucketName:   "BUCKET",
		VersionID:    "v9",
		LastModified: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		HasModified:  true,
		IsCurrent:    true,
	}

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var got objectstore.VersionRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.True(t, v.Equal(got))
	require.Equal(t, v.IsCurrent, got.IsCurrent)
}

func TestTombstoneJSONHasNullFields(t *testing.T) {
	v := objectstore.Tombstone("prefix2/y/z", "BUCKET")

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.Contains(t, string(data), `"version_id":null`)
	require.Contains(t, string(data), `"last_modified":null`)

	var got objectstore.VersionRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.False(t, got.HasVersionID())
	require.False(t, got.HasModified)
}
