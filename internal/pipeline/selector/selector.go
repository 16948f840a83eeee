// Package selector groups a key's version history and picks the
// single version in effect at the restore time.
package selector

import (
	"context"
	"sort"

	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/pipeline/config"
)

// SelectTarget implements spec.md §4.4 steps 1-6 for one key's
// versions. records need not be pre-sorted; SelectTarget sorts a copy
// in ascending last_modified order (compared at millisecond
// resolution). Records never carry a null last_modified here: only
// Selector output can be a tombstone.
//
// Ties in last_modified across distinct real versions are broken by
// ascending lexicographic version_id, with an absent version_id
// sorting first — an explicit resolution of the tie-break spec.md
// leaves as an implementer's open question. The sort is stable, so the
// store's emission order decides only between records whose
// last_modified and version_id are both equal.
func SelectTarget(records []objectstore.VersionRecord, srcBucket string, restoreTime int64) objectstore.VersionRecord {
	sorted := make([]objectstore.VersionRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].LastModified.UnixMilli(), sorted[j].LastModified.UnixMilli()
		if ti != tj {
			return ti < tj
		}
		return sorted[i].VersionID < sorted[j].VersionID
	})

	current := sorted[len(sorted)-1]

	var candidate *objectstore.VersionRecord
	for i := range sorted {
		if sorted[i].LastModified.UnixMilli() <= restoreTime {
			candidate = &sorted[i]
		}
	}

	var target objectstore.VersionRecord
	if candidate != nil {
		target = *candidate
	} else {
		key := ""
		if len(sorted) > 0 {
			key = sorted[0].Key
		}
		target = objectstore.Tombstone(key, srcBucket)
	}

	target.IsCurrent = target.Equal(current)
	return target
}

// Run groups in by key (a full barrier: every record for a key must
// arrive before that key's target can be computed) and sends one
// target VersionRecord per key on out.
func Run(ctx context.Context, in <-chan objectstore.VersionRecord, cfg config.RestoreConfig, out chan<- objectstore.VersionRecord) error {
	groups := make(map[string][]objectstore.VersionRecord)

	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return emitTargets(ctx, groups, cfg, out)
			}
			groups[rec.Key] = append(groups[rec.Key], rec)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func emitTargets(ctx context.Context, groups map[string][]objectstore.VersionRecord, cfg config.RestoreConfig, out chan<- objectstore.VersionRecord) error {
	restoreTime := cfg.RestoreTime.UnixMilli()
	for _, records := range groups {
		target := SelectTarget(records, cfg.SrcBucket, restoreTime)
		select {
		case out <- target:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
