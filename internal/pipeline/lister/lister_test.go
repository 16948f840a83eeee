package lister_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/objectstore/storetest"
	"github.com/s3ops/s3pitrestore/internal/pipeline/config"
	"github.com/s3ops/s3pitrestore/internal/pipeline/lister"
)

func TestListDrainsAllPages(t *testing.T) {
	store := storetest.New()
	store.PageSize = 3

	now := time.Now()
	for i := 0; i < 10; i++ {
		store.Seed("BUCKET", objectstore.VersionRecord{
			Key:          "prefix1/a",
			VersionID:    string(rune('a' + i)),
			LastModified: now,
			HasModified:  true,
		})
	}

	cfg := config.RestoreConfig{SrcBucket: "BUCKET", SrcPrefix: ""}

	out := make(chan objectstore.VersionRecord, 100)
	err := lister.List(context.Background(), store, cfg, "prefix1/", out)
	require.NoError(t, err)
	close(out)

	var got []objectstore.VersionRecord
	for rec := range out {
		got = append(got, rec)
	}
	require.Len(t, got, 10)
}

func TestListRespectsSrcPrefixConcatenation(t *testing.T) {
	store := storetest.New()
	store.Seed("BUCKET", objectstore.VersionRecord{Key: "root/sub/a", VersionID: "1"})
	store.Seed("BUCKET", objectstore.VersionRecord{Key: "other/a", VersionID: "1"})

	cfg := config.RestoreConfig{SrcBucket: "BUCKET", SrcPrefix: "root/"}

	out := make(chan objectstore.VersionRecord, 10)
	err := lister.List(context.Background(), store, cfg, "sub/", out)
	require.NoError(t, err)
	close(out)

	var got []objectstore.VersionRecord
	for rec := range out {
		got = append(got, rec)
	}
	require.Len(t, got, 1)
	require.Equal(t, "root/sub/a", got[0].Key)
}

func TestListCancellation(t *testing.T) {
	store := storetest.New()
	store.Seed("BUCKET", objectstore.VersionRecord{Key: "a", VersionID: "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.RestoreConfig{SrcBucket: "BUCKET"}
	out := make(chan objectstore.VersionRecord)
	err := lister.List(ctx, store, cfg, "", out)
	require.Error(t, err)
}
