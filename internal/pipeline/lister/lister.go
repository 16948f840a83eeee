// Package lister issues paged list-versions calls for one prefix and
// emits every version record it finds for downstream shuffling into
// the Selector.
package lister

import (
	"context"

	"github.com/s3ops/s3pitrestore/internal/debug"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/pipeline/config"
)

// List drains every version under cfg.SrcBucket / (cfg.SrcPrefix ⊕
// prefix), sending one record at a time on out. List returns once the
// pager is exhausted, ctx is done, or the store reports a fatal error.
// No delimiter is used: the whole key space under the prefix is
// listed, not just its immediate children.
func List(ctx context.Context, store objectstore.Store, cfg config.RestoreConfig, prefix string, out chan<- objectstore.VersionRecord) error {
	fullPrefix := cfg.SrcPrefix + prefix

	debug.Log("lister: listing %v/%v", cfg.SrcBucket, fullPrefix)

	pager := objectstore.NewVersionPager(store, cfg.SrcBucket, fullPrefix)

	count := 0
	for {
		more, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		if !more {
			break
		}

		for _, rec := range pager.Page().Summaries {
			// Insert breakpoint to allow testing behaviour with a key
			// that changes between being listed and being forwarded.
			debug.RunHook("lister.beforeForward", &rec)

			select {
			case out <- rec:
				count++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	debug.Log("lister: %v/%v yielded %d version records", cfg.SrcBucket, fullPrefix, count)
	return nil
}
