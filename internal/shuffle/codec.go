// Package shuffle repartitions a channel of records by a hash of their
// key, decorrelating which worker ends up handling which object-store
// partition. Records cross the shuffle as opaque length-delimited
// binary tuples, never as JSON: the wire format is internal and must
// not couple to the text-output formatter (internal/json).
package shuffle

import (
	"encoding/binary"
	"io"

	"github.com/s3ops/s3pitrestore/internal/errors"
)

// Record is one (key, value) pair travelling through a shuffle. Key is
// used only to compute the partition hash; both key and value are
// opaque byte strings to the shuffle itself.
type Record struct {
	Key   []byte
	Value []byte
}

// Encode writes r to w as two length-prefixed byte strings: a
// big-endian uint32 length followed by that many bytes, first for Key
// then for Value.
func Encode(w io.Writer, r Record) error {
	if err := writeChunk(w, r.Key); err != nil {
		return errors.Wrap(err, "write key")
	}
	if err := writeChunk(w, r.Value); err != nil {
		return errors.Wrap(err, "write value")
	}
	return nil
}

// Decode reads one Record previously written by Encode.
func Decode(r io.Reader) (Record, error) {
	key, err := readChunk(r)
	if err != nil {
		return Record{}, errors.Wrap(err, "read key")
	}
	value, err := readChunk(r)
	if err != nil {
		return Record{}, errors.Wrap(err, "read value")
	}
	return Record{Key: key, Value: value}, nil
}

func writeChunk(w io.Writer, b []byte) error {
	var lenbuf [4]byte
	binary.BigEndian.PutUint32(lenbuf[:], uint32(len(b)))
	if _, err := w.Write(lenbuf[:]); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}

func readChunk(r io.Reader) ([]byte, error) {
	var lenbuf [4]byte
	if _, err := io.ReadFull(r, lenbuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenbuf[:])
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeFields writes each of fields as its own length-prefixed chunk,
// letting a stage pack several sub-values into one Record's Value
// without reaching for JSON.
func EncodeFields(w io.Writer, fields ...[]byte) error {
	for _, f := range fields {
		if err := writeChunk(w, f); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFields reads exactly n length-prefixed chunks previously
// written by EncodeFields.
func DecodeFields(r io.Reader, n int) ([][]byte, error) {
	fields := make([][]byte, n)
	for i := 0; i < n; i++ {
		f, err := readChunk(r)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

// PutInt64 and Int64 encode/decode the millisecond timestamps that
// travel inside shuffle record values, avoiding any dependency on a
// text timestamp format between stages.
func PutInt64(v int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return buf[:]
}

func Int64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
