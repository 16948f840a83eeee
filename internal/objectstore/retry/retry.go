// Package retry wraps an objectstore.Store with bounded exponential
// backoff on transient errors, ported from the teacher's
// internal/backend/retry package.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/s3ops/s3pitrestore/internal/debug"
	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
)

// Store retries operations that fail with a transient error, using
// bounded exponential backoff. Errors marked permanent (errors.Permanent)
// or plain (unclassified, treated as permanent) are returned immediately.
type Store struct {
	objectstore.Store
	MaxElapsedTime time.Duration
	Report         func(op string, err error, wait time.Duration)
}

var _ objectstore.Store = (*Store)(nil)

// New wraps store with retry logic. maxElapsedTime bounds the total time
// spent retrying a single operation; report, if non-nil, is called
// before each retry sleep.
func New(store objectstore.Store, maxElapsedTime time.Duration, report func(string, error, time.Duration)) *Store {
	return &Store{Store: store, MaxElapsedTime: maxElapsedTime, Report: report}
}

func (s *Store) newBackoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.MaxElapsedTime
	return backoff.WithContext(b, ctx)
}

func (s *Store) retry(ctx context.Context, op string, f func() error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	b := s.newBackoff(ctx)

	return backoff.RetryNotify(func() error {
		err := f()
		if err == nil {
			return nil
		}
		if !errors.IsTransient(err) {
			// permanent or unclassified: do not retry
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		debug.Log("retry %v after %v: %v", op, wait, err)
		if s.Report != nil {
			s.Report(op, err, wait)
		}
	})
}

func (s *Store) ListVersionsPage(ctx context.Context, bucket, prefix, marker string) (page objectstore.Page, err error) {
	err = s.retry(ctx, "ListVersionsPage", func() error {
		var innerErr error
		page, innerErr = s.Store.ListVersionsPage(ctx, bucket, prefix, marker)
		return innerErr
	})
	return page, err
}

func (s *Store) Copy(ctx context.Context, srcBucket, srcKey, srcVersionID, destBucket, destKey string) error {
	return s.retry(ctx, "Copy", func() error {
		return s.Store.Copy(ctx, srcBucket, srcKey, srcVersionID, destBucket, destKey)
	})
}

func (s *Store) Delete(ctx context.Context, destBucket, destKey string) error {
	return s.retry(ctx, "Delete", func() error {
		return s.Store.Delete(ctx, destBucket, destKey)
	})
}
