// Package restorer turns a (key, target version) pair into at most one
// side-effecting action against the destination, and applies it.
package restorer

import (
	"context"

	"github.com/s3ops/s3pitrestore/internal/limiter"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/pipeline/config"
)

// Decide implements spec.md §4.5's action table. It never touches the
// object store; Apply does that.
func Decide(cfg config.RestoreConfig, target objectstore.VersionRecord) (Action, error) {
	destKey, err := objectstore.SwitchPrefixes(cfg.SrcPrefix, cfg.DestPrefix, target.Key)
	if err != nil {
		return Action{}, err
	}

	if target.DeleteMarker {
		if !cfg.Delete {
			return Action{Kind: Noop, Key: target.Key}, nil
		}
		return Action{
			Kind:       DeleteAction,
			Key:        target.Key,
			DestBucket: cfg.DestBucket,
			DestKey:    destKey,
		}, nil
	}

	if cfg.InPlace() && target.IsCurrent {
		return Action{Kind: Noop, Key: target.Key}, nil
	}

	return Action{
		Kind:         CopyAction,
		Key:          target.Key,
		SrcBucket:    cfg.SrcBucket,
		SrcKey:       target.Key,
		SrcVersionID: target.VersionID,
		DestBucket:   cfg.DestBucket,
		DestKey:      destKey,
	}, nil
}

// Apply performs a's side effect, if any, against store. Copy with a
// specific source version id and Delete of an already-absent key are
// both idempotent under retry, matching spec.md §4.5.
func Apply(ctx context.Context, store objectstore.Store, lim *limiter.OpLimiter, a Action) error {
	switch a.Kind {
	case Noop:
		return nil
	case CopyAction:
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		return store.Copy(ctx, a.SrcBucket, a.SrcKey, a.SrcVersionID, a.DestBucket, a.DestKey)
	case DeleteAction:
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		return store.Delete(ctx, a.DestBucket, a.DestKey)
	default:
		return nil
	}
}
