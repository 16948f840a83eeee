package orchestrator

import (
	"bytes"
	"time"

	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
	"github.com/s3ops/s3pitrestore/internal/shuffle"
)

// encodePrefix and decodePrefix wrap a prefix string as a shuffle
// Record, keyed by the prefix itself so the prefix shuffle decorrelates
// which worker lists which prefix.
func encodePrefix(p string) shuffle.Record {
	b := []byte(p)
	return shuffle.Record{Key: b, Value: b}
}

func decodePrefix(r shuffle.Record) string {
	return string(r.Value)
}

// encodeVersion and decodeVersion pack a VersionRecord as the opaque
// binary value spec.md §9 calls for: length-delimited fields, the
// timestamp travelling as int64 milliseconds rather than a formatted
// string. Keyed by the record's key so the key shuffle sends every
// version of a given key to the same downstream Selector worker.
func encodeVersion(v objectstore.VersionRecord) (shuffle.Record, error) {
	var millis int64
	if v.HasModified {
		millis = v.LastModified.UTC().UnixMilli()
	}

	flags := byte(0)
	if v.HasModified {
		flags |= 1
	}
	if v.DeleteMarker {
		flags |= 2
	}
	if v.IsCurrent {
		flags |= 4
	}

	var buf bytes.Buffer
	err := shuffle.EncodeFields(&buf,
		[]byte(v.Key),
		[]byte(v.BucketName),
		[]byte(v.VersionID),
		shuffle.PutInt64(millis),
		[]byte{flags},
	)
	if err != nil {
		return shuffle.Record{}, errors.Wrap(err, "encode version record")
	}

	return shuffle.Record{Key: []byte(v.Key), Value: buf.Bytes()}, nil
}

func decodeVersion(r shuffle.Record) (objectstore.VersionRecord, error) {
	fields, err := shuffle.DecodeFields(bytes.NewReader(r.Value), 5)
	if err != nil {
		return objectstore.VersionRecord{}, errors.Wrap(err, "decode version record")
	}

	flags := byte(0)
	if len(fields[4]) > 0 {
		flags = fields[4][0]
	}
	hasModified := flags&1 != 0

	var lastModified time.Time
	if hasModified {
		lastModified = time.UnixMilli(shuffle.Int64(fields[3])).UTC()
	}

	return objectstore.VersionRecord{
		Key:          string(fields[0]),
		BucketName:   string(fields[1]),
		VersionID:    string(fields[2]),
		LastModified: lastModified,
		HasModified:  hasModified,
		DeleteMarker: flags&2 != 0,
		IsCurrent:    flags&4 != 0,
	}, nil
}
