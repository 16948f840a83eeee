package selector_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/pipeline/selector"
)

const restoreTime = 25 * int64(time.Second/time.Millisecond)

func at(t int64) time.Time {
	return time.UnixMilli(t * int64(time.Second/time.Millisecond))
}

func real(key string, t int64, versionID string) objectstore.VersionRecord {
	return objectstore.VersionRecord{
		Key:          key,
		BucketName:   "BUCKET",
		VersionID:    versionID,
		LastModified: at(t),
		HasModified:  true,
	}
}

func deleteMarker(key string, t int64, versionID string) objectstore.VersionRecord {
	r := real(key, t, versionID)
	r.DeleteMarker = true
	return r
}

// Scenario 1: point-in-time hit that is also the current version
// (versions 0..9, none after T).
func TestScenario1PointInTimeHitIsCurrent(t *testing.T) {
	var versions []objectstore.VersionRecord
	for i := int64(0); i < 10; i++ {
		versions = append(versions, real("prefix1/a", i, versionIDFor(i)))
	}

	target := selector.SelectTarget(versions, "BUCKET", restoreTime)
	require.Equal(t, versionIDFor(9), target.VersionID)
	require.True(t, target.IsCurrent)
}

// Scenario 2: target strictly before newest (versions 5..199).
func TestScenario2TargetStrictlyBeforeNewest(t *testing.T) {
	var versions []objectstore.VersionRecord
	for i := int64(5); i < 200; i++ {
		versions = append(versions, real("prefix1--x", i, versionIDFor(i)))
	}

	target := selector.SelectTarget(versions, "BUCKET", restoreTime)
	require.Equal(t, versionIDFor(25), target.VersionID)
	require.False(t, target.IsCurrent)
}

// Scenario 3: deleted before T, no later version.
func TestScenario3DeletedBeforeT(t *testing.T) {
	versions := []objectstore.VersionRecord{
		real("prefix1/de/le/ted", 5, "v5"),
		deleteMarker("prefix1/de/le/ted", 10, "v10"),
	}

	target := selector.SelectTarget(versions, "BUCKET", restoreTime)
	require.Equal(t, "v10", target.VersionID)
	require.True(t, target.DeleteMarker)
	require.True(t, target.IsCurrent)
}

// Scenario 4: created after T, no candidate <= T.
func TestScenario4CreatedAfterT(t *testing.T) {
	versions := []objectstore.VersionRecord{
		real("prefix2/y/z", 100, "v100"),
	}

	target := selector.SelectTarget(versions, "BUCKET", restoreTime)
	require.Empty(t, target.VersionID)
	require.True(t, target.DeleteMarker)
	require.False(t, target.IsCurrent)
	require.True(t, target.LastModified.IsZero())
	require.Equal(t, "BUCKET", target.BucketName)
	require.Equal(t, "prefix2/y/z", target.Key)
}

// Scenario 5: unchanged before T, only one version.
func TestScenario5UnchangedBeforeT(t *testing.T) {
	versions := []objectstore.VersionRecord{
		real("prefix2/x", 0, "v0"),
	}

	target := selector.SelectTarget(versions, "BUCKET", restoreTime)
	require.Equal(t, "v0", target.VersionID)
	require.True(t, target.IsCurrent)
}

// Scenario 6 (cross-bucket) is purely a Restorer-level distinction; the
// Selector's output for identical input versions is unaffected by
// dest_bucket, so this scenario is covered in the restorer tests
// instead.

func TestBoundaryOnlyVersionIsDeleteMarkerBeforeT(t *testing.T) {
	versions := []objectstore.VersionRecord{
		deleteMarker("k", 1, "v1"),
	}
	target := selector.SelectTarget(versions, "BUCKET", restoreTime)
	require.Equal(t, "v1", target.VersionID)
	require.True(t, target.DeleteMarker)
	require.True(t, target.IsCurrent)
}

func TestBoundaryExactlyAtRestoreTime(t *testing.T) {
	versions := []objectstore.VersionRecord{
		real("k", 20, "v20"),
		real("k", restoreTime/1000, "vAtT"),
		real("k", 30, "v30"),
	}
	target := selector.SelectTarget(versions, "BUCKET", restoreTime)
	require.Equal(t, "vAtT", target.VersionID)
	require.False(t, target.IsCurrent)
}

func TestTieBreakByVersionID(t *testing.T) {
	tied := at(25)
	versions := []objectstore.VersionRecord{
		{Key: "k", VersionID: "b", LastModified: tied, HasModified: true},
		{Key: "k", VersionID: "a", LastModified: tied, HasModified: true},
	}
	target := selector.SelectTarget(versions, "BUCKET", restoreTime)
	// both tie at T; ascending version_id order makes "b" sort after "a",
	// so "b" is both the last <= T and the current version.
	require.Equal(t, "b", target.VersionID)
	require.True(t, target.IsCurrent)
}

func versionIDFor(t int64) string {
	return "v" + time.UnixMilli(t*int64(time.Second/time.Millisecond)).UTC().Format("150405")
}
