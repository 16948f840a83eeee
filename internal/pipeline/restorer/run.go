package restorer

import (
	"context"

	"github.com/s3ops/s3pitrestore/internal/debug"
	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/limiter"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/pipeline/config"
	"github.com/s3ops/s3pitrestore/internal/ui"
)

// Result is one key's outcome, in the shape the "restored" stage
// output serializes. Error is empty on success; a non-empty Error never
// holds a Permanent-classified error, since those abort the run
// before a Result is produced for the remaining keys in flight.
type Result struct {
	Key    string     `json:"key"`
	Action ActionKind `json:"action"`
	Error  string     `json:"error,omitempty"`
}

// Run consumes targets from in, decides and (unless cfg.DryRun) applies
// an Action for each, and sends one Result per key on out. Run returns
// a non-nil error only for a Permanent-classified fault, which aborts
// the batch; every other per-key failure is captured into that key's
// Result instead.
func Run(ctx context.Context, store objectstore.Store, lim *limiter.OpLimiter, cfg config.RestoreConfig, in <-chan objectstore.VersionRecord, out chan<- Result) error {
	for {
		select {
		case target, ok := <-in:
			if !ok {
				return nil
			}
			result, err := runOne(ctx, store, lim, cfg, target)
			if err != nil {
				return err
			}
			select {
			case out <- result:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func runOne(ctx context.Context, store objectstore.Store, lim *limiter.OpLimiter, cfg config.RestoreConfig, target objectstore.VersionRecord) (Result, error) {
	action, err := Decide(cfg, target)
	if err != nil {
		if errors.IsPrefixMismatch(err) {
			debug.Log("restorer: prefix mismatch for key %v: %v", ui.Quote(target.Key), err)
			return Result{Key: target.Key, Action: Noop, Error: err.Error()}, nil
		}
		return Result{}, err
	}

	if cfg.DryRun || action.Kind == Noop {
		return Result{Key: target.Key, Action: action.Kind}, nil
	}

	if err := Apply(ctx, store, lim, action); err != nil {
		if errors.IsFatal(err) && errors.GetKind(err) == errors.KindPermanent {
			return Result{}, err
		}
		debug.Log("restorer: key %v failed: %v", ui.Quote(target.Key), err)
		return Result{Key: target.Key, Action: action.Kind, Error: err.Error()}, nil
	}

	return Result{Key: target.Key, Action: action.Kind}, nil
}
