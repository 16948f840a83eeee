package orchestrator_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/objectstore/storetest"
	"github.com/s3ops/s3pitrestore/internal/pipeline/config"
	"github.com/s3ops/s3pitrestore/internal/pipeline/orchestrator"
)

func seedScenario1(store *storetest.Store) {
	for i := int64(0); i < 10; i++ {
		store.Seed("BUCKET", objectstore.VersionRecord{
			Key:          "prefix1/a",
			VersionID:    "v" + string(rune('0'+i)),
			LastModified: time.UnixMilli(i * 1000),
			HasModified:  true,
		})
	}
}

func TestRunInPlaceNoopForCurrentVersion(t *testing.T) {
	store := storetest.New()
	seedScenario1(store)

	cfg := config.RestoreConfig{
		SrcBucket:   "BUCKET",
		DestBucket:  "BUCKET",
		RestoreTime: time.UnixMilli(25000),
	}

	var versionsOut, restoredOut bytes.Buffer
	summary, err := orchestrator.Run(context.Background(), store, cfg, orchestrator.Options{
		VersionsOutput: &versionsOut,
		RestoredOutput: &restoredOut,
		WorkerSlots:    2,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Noop)
	require.Equal(t, 0, summary.Copied)
	require.Contains(t, versionsOut.String(), "prefix1/a")
	require.Contains(t, restoredOut.String(), "prefix1/a")
}

func TestRunCrossBucketCopiesEvenWhenCurrent(t *testing.T) {
	store := storetest.New()
	seedScenario1(store)

	cfg := config.RestoreConfig{
		SrcBucket:   "BUCKET",
		DestBucket:  "DEST-BUCKET",
		RestoreTime: time.UnixMilli(25000),
	}

	summary, err := orchestrator.Run(context.Background(), store, cfg, orchestrator.Options{
		VersionsOutput: bytes.NewBuffer(nil),
		RestoredOutput: bytes.NewBuffer(nil),
		WorkerSlots:    2,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Copied)

	copies := store.SortedCopies()
	require.Len(t, copies, 1)
	require.Equal(t, "v9", copies[0].SrcVersionID)
	require.Equal(t, "DEST-BUCKET", copies[0].DestBucket)
}

func TestRunDeleteGateSuppressesDeleteByDefault(t *testing.T) {
	store := storetest.New()
	store.Seed("BUCKET", objectstore.VersionRecord{Key: "prefix2/y/z", VersionID: "v1", LastModified: time.UnixMilli(100000), HasModified: true})

	cfg := config.RestoreConfig{
		SrcBucket:   "BUCKET",
		DestBucket:  "BUCKET",
		RestoreTime: time.UnixMilli(25000),
	}

	summary, err := orchestrator.Run(context.Background(), store, cfg, orchestrator.Options{
		VersionsOutput: bytes.NewBuffer(nil),
		RestoredOutput: bytes.NewBuffer(nil),
		WorkerSlots:    2,
	})
	require.NoError(t, err)
	require.Equal(t, 0, summary.Deleted)
	require.Equal(t, 1, summary.Noop)
	require.Empty(t, store.Deletes)
}

func TestRunDeleteEnabledRemovesTombstonedKey(t *testing.T) {
	store := storetest.New()
	store.Seed("BUCKET", objectstore.VersionRecord{Key: "prefix2/y/z", VersionID: "v1", LastModified: time.UnixMilli(100000), HasModified: true})

	cfg := config.RestoreConfig{
		SrcBucket:   "BUCKET",
		DestBucket:  "BUCKET",
		RestoreTime: time.UnixMilli(25000),
		Delete:      true,
	}

	summary, err := orchestrator.Run(context.Background(), store, cfg, orchestrator.Options{
		VersionsOutput: bytes.NewBuffer(nil),
		RestoredOutput: bytes.NewBuffer(nil),
		WorkerSlots:    2,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Deleted)
	require.Len(t, store.Deletes, 1)
	require.Equal(t, "prefix2/y/z", store.Deletes[0].DestKey)
}

func TestRunDryRunAppliesNoSideEffects(t *testing.T) {
	store := storetest.New()
	seedScenario1(store)

	cfg := config.RestoreConfig{
		SrcBucket:   "BUCKET",
		DestBucket:  "DEST-BUCKET",
		RestoreTime: time.UnixMilli(25000),
		DryRun:      true,
	}

	summary, err := orchestrator.Run(context.Background(), store, cfg, orchestrator.Options{
		VersionsOutput: bytes.NewBuffer(nil),
		RestoredOutput: bytes.NewBuffer(nil),
		WorkerSlots:    2,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Copied)
	require.Empty(t, store.Copies)
}

// Idempotence: re-running against a freshly-restored in-place
// destination emits no further Copy actions.
func TestRunIsIdempotentOnSecondPass(t *testing.T) {
	store := storetest.New()
	store.Seed("BUCKET", objectstore.VersionRecord{Key: "a", VersionID: "v1", LastModified: time.UnixMilli(5000), HasModified: true})
	store.Seed("BUCKET", objectstore.VersionRecord{Key: "a", VersionID: "v2", LastModified: time.UnixMilli(50000), HasModified: true})

	cfg := config.RestoreConfig{
		SrcBucket:   "BUCKET",
		DestBucket:  "BUCKET",
		RestoreTime: time.UnixMilli(50000),
	}

	summary, err := orchestrator.Run(context.Background(), store, cfg, orchestrator.Options{
		VersionsOutput: bytes.NewBuffer(nil),
		RestoredOutput: bytes.NewBuffer(nil),
		WorkerSlots:    2,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Noop)
	require.Equal(t, 0, summary.Copied)
}
