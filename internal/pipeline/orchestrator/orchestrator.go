// Package orchestrator drives the four pipeline stages
// (prefix-shuffle -> list -> key-shuffle -> restore) as a sequence of
// full barriers: each stage runs to completion before the next begins,
// so the Selector always sees every version for its keys.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s3ops/s3pitrestore/internal/debug"
	"github.com/s3ops/s3pitrestore/internal/json"
	"github.com/s3ops/s3pitrestore/internal/limiter"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/pipeline/config"
	"github.com/s3ops/s3pitrestore/internal/pipeline/lister"
	"github.com/s3ops/s3pitrestore/internal/pipeline/prefixsource"
	"github.com/s3ops/s3pitrestore/internal/pipeline/restorer"
	"github.com/s3ops/s3pitrestore/internal/pipeline/selector"
	"github.com/s3ops/s3pitrestore/internal/pipeline/workerpool"
	"github.com/s3ops/s3pitrestore/internal/shuffle"
	"github.com/s3ops/s3pitrestore/internal/ui"
	"github.com/s3ops/s3pitrestore/internal/ui/termstatus"
)

// Options carries everything Run needs beyond the store and the
// RestoreConfig: where to source prefixes, where to mirror the stage
// outputs, an optional rate limit, the worker count and the terminal.
type Options struct {
	PrefixesPath   string
	VersionsOutput io.Writer // "versions" stage output, or io.Discard
	RestoredOutput io.Writer // "restored" stage output, or io.Discard
	MaxOpsPerSec   int
	WorkerSlots    int // 0 means workerpool.WorkerSlots()
	Term           ui.Terminal
}

// Run drives one full restore pass and returns the aggregate Summary.
// The returned error is non-nil iff a fatal fault aborted the run
// (spec.md §7's propagation policy); per-key failures are captured in
// Summary.Failed and in the "restored" stage output instead.
func Run(ctx context.Context, store objectstore.Store, cfg config.RestoreConfig, opts Options) (Summary, error) {
	slots := opts.WorkerSlots
	if slots <= 0 {
		slots = workerpool.WorkerSlots()
	}

	lim := limiter.NewOpLimiter(opts.MaxOpsPerSec)
	term := opts.Term
	if term == nil {
		term = termstatus.New(io.Discard, io.Discard)
	}
	start := time.Now()

	term.Print("Running step: prefix source")
	prefixes, err := prefixsource.Prefixes(ctx, opts.PrefixesPath)
	if err != nil {
		return Summary{}, err
	}
	debug.Log("orchestrator: %d prefixes", len(prefixes))

	term.Print("Running step: list versions")
	versions, err := runListStage(ctx, store, cfg, prefixes, slots)
	if err != nil {
		return Summary{}, err
	}
	debug.Log("orchestrator: %d version records listed", len(versions))

	term.Print("Running step: select target versions")
	targets, err := runSelectStage(ctx, cfg, versions, slots, opts.VersionsOutput)
	if err != nil {
		return Summary{}, err
	}
	debug.Log("orchestrator: %d target versions selected", len(targets))

	term.Print("Running step: restore")
	summary, err := runRestoreStage(ctx, store, lim, cfg, targets, slots, opts.RestoredOutput)
	summary.KeysListed = len(targets)
	if err != nil {
		return summary, err
	}

	term.Print(fmt.Sprintf("Finished in %s", ui.FormatDuration(time.Since(start))))
	return summary, nil
}

// prefixPartitions computes the prefix-shuffle's reducer count: 3.5x
// the worker slot count, per spec.md §4.3.
func prefixPartitions(slots int) int {
	n := int(math.Ceil(3.5 * float64(slots)))
	if n < 1 {
		n = 1
	}
	return n
}

func runListStage(ctx context.Context, store objectstore.Store, cfg config.RestoreConfig, prefixes []string, slots int) ([]objectstore.VersionRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prefixIn := make(chan shuffle.Record)
	go func() {
		defer close(prefixIn)
		for _, p := range prefixes {
			select {
			case prefixIn <- encodePrefix(p):
			case <-ctx.Done():
				return
			}
		}
	}()

	partitions := shuffle.Shuffle(ctx, prefixIn, prefixPartitions(slots))

	out := make(chan objectstore.VersionRecord)
	var collected []objectstore.VersionRecord
	done := make(chan struct{})
	go func() {
		defer close(done)
		for rec := range out {
			collected = append(collected, rec)
		}
	}()

	var next int32
	err := workerpool.RunWorkers(ctx, len(partitions), func(ctx context.Context) error {
		i := atomic.AddInt32(&next, 1) - 1
		return listPartition(ctx, store, cfg, partitions[i:i+1], out)
	}, func() { close(out) })
	<-done

	if err != nil {
		return nil, err
	}
	return collected, nil
}

// listPartition is a single Lister worker: it drains the given
// partitions one after another, listing each prefix it reads before
// reading the next. runListStage hands every worker exactly one
// partition of its own, so each partition always has a reader and the
// shuffle never blocks on an unread channel. Prefixes are listed one at
// a time — matching spec.md §5's "no in-worker concurrency around
// object-store calls".
func listPartition(ctx context.Context, store objectstore.Store, cfg config.RestoreConfig, partitions []<-chan shuffle.Record, out chan<- objectstore.VersionRecord) error {
partitionLoop:
	for _, partition := range partitions {
		for {
			select {
			case rec, ok := <-partition:
				if !ok {
					continue partitionLoop
				}
				prefix := decodePrefix(rec)
				if err := lister.List(ctx, store, cfg, prefix, out); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// runSelectStage repartitions versions by key (1x workerSlots
// reducers, per spec.md §4.3) and runs one Selector.Run per partition.
// Unlike the list stage's workers, a partition here must be consumed
// by exactly one worker for its whole lifetime: Selector.Run's
// internal grouping-by-key would split a key's history across two
// unrelated group maps if two workers raced over the same channel.
func runSelectStage(ctx context.Context, cfg config.RestoreConfig, versions []objectstore.VersionRecord, slots int, versionsOutput io.Writer) ([]objectstore.VersionRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	versionIn := make(chan shuffle.Record)
	go func() {
		defer close(versionIn)
		for _, v := range versions {
			rec, err := encodeVersion(v)
			if err != nil {
				debug.Log("orchestrator: dropping unencodable version record for %v: %v", v.Key, err)
				continue
			}
			select {
			case versionIn <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	partitions := shuffle.Shuffle(ctx, versionIn, slots)

	out := make(chan objectstore.VersionRecord)
	var collected []objectstore.VersionRecord
	done := make(chan struct{})
	go func() {
		defer close(done)
		for target := range out {
			collected = append(collected, target)
			if err := writeVersionsLine(versionsOutput, target); err != nil {
				debug.Log("orchestrator: writing versions output: %v", err)
			}
		}
	}()

	wg, gctx := errgroup.WithContext(ctx)
	for _, partition := range partitions {
		partition := partition
		wg.Go(func() error {
			decoded := make(chan objectstore.VersionRecord)
			decodeDone := make(chan error, 1)
			go func() {
				defer close(decoded)
				for rec := range partition {
					v, err := decodeVersion(rec)
					if err != nil {
						decodeDone <- err
						return
					}
					select {
					case decoded <- v:
					case <-gctx.Done():
						return
					}
				}
				decodeDone <- nil
			}()

			if err := selector.Run(gctx, decoded, cfg, out); err != nil {
				return err
			}
			return <-decodeDone
		})
	}

	err := wg.Wait()
	close(out)
	<-done

	if err != nil {
		return nil, err
	}
	return collected, nil
}

func writeVersionsLine(w io.Writer, v objectstore.VersionRecord) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%s\n", v.Key, data)
	return err
}

// runRestoreStage applies (or, under DryRun, only reports) an Action
// per target version. No shuffle sits in front of this stage: spec.md
// §4.3 names exactly two shuffles (prefix and key), not a third before
// restore.
func runRestoreStage(ctx context.Context, store objectstore.Store, lim *limiter.OpLimiter, cfg config.RestoreConfig, targets []objectstore.VersionRecord, slots int, restoredOutput io.Writer) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan objectstore.VersionRecord)
	go func() {
		defer close(in)
		for _, t := range targets {
			select {
			case in <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(chan restorer.Result)
	var summary Summary
	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range out {
			summary.record(result)
			if err := writeRestoredLine(restoredOutput, result); err != nil {
				debug.Log("orchestrator: writing restored output: %v", err)
			}
		}
	}()

	err := workerpool.RunWorkers(ctx, slots, func(ctx context.Context) error {
		return restorer.Run(ctx, store, lim, cfg, in, out)
	}, func() { close(out) })
	<-done

	if err != nil {
		return summary, err
	}
	return summary, nil
}

func writeRestoredLine(w io.Writer, r restorer.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%s\n", r.Key, data)
	return err
}
