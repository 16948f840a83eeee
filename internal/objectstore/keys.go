package objectstore

import (
	"strings"

	"github.com/s3ops/s3pitrestore/internal/errors"
)

// SwitchPrefixes computes the destination key for a key found under
// srcPrefix, rewriting it to live under destPrefix instead. A nil/absent
// prefix is treated as "". If key does not start with srcPrefix, the
// call fails with a prefix-mismatch error (errors.IsPrefixMismatch
// reports true for it).
func SwitchPrefixes(srcPrefix, destPrefix, key string) (string, error) {
	if !strings.HasPrefix(key, srcPrefix) {
		return "", errors.PrefixMismatch(key, srcPrefix)
	}
	return destPrefix + key[len(srcPrefix):], nil
}
