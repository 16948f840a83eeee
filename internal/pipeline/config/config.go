// Package config holds the immutable configuration broadcast to every
// pipeline worker, replacing the mutable job-wide config cell the
// original design smuggled configuration through (spec.md §9).
package config

import (
	"regexp"
	"time"

	"github.com/s3ops/s3pitrestore/internal/errors"
)

// RestoreConfig is built once by the CLI layer and passed by value into
// every worker at task construction. Workers never mutate it.
type RestoreConfig struct {
	SrcBucket, SrcPrefix   string
	DestBucket, DestPrefix string
	RestoreTime            time.Time
	Delete                 bool

	// DryRun computes and reports every Action without calling
	// CopyObject/DeleteObject against the destination.
	DryRun bool
}

// InPlace reports whether the destination equals the source, enabling
// the Restorer's is_current no-op optimization.
func (c RestoreConfig) InPlace() bool {
	return c.SrcBucket == c.DestBucket && c.SrcPrefix == c.DestPrefix
}

var uriPattern = regexp.MustCompile(`^s3n?://([^/]*)(/(.*))?$`)

// ParseURI parses the s3n?://bucket[/prefix] grammar spec.md §6
// requires. An empty prefix group yields "".
func ParseURI(uri string) (bucket, prefix string, err error) {
	m := uriPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", "", errors.Usagef("invalid S3 URI %q, expected s3://bucket[/prefix]", uri)
	}
	return m[1], m[3], nil
}
