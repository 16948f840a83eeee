package objectstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/objectstore"
)

func TestSwitchPrefixes(t *testing.T) {
	dest, err := objectstore.SwitchPrefixes("src/", "dest/", "src/a/b.txt")
	require.NoError(t, err)
	require.Equal(t, "dest/a/b.txt", dest)
}

func TestSwitchPrefixesEmptyPrefixes(t *testing.T) {
	dest, err := objectstore.SwitchPrefixes("", "", "a/b.txt")
	require.NoError(t, err)
	require.Equal(t, "a/b.txt", dest)
}

func TestSwitchPrefixesMismatch(t *testing.T) {
	_, err := objectstore.SwitchPrefixes("src/", "dest/", "other/a.txt")
	require.Error(t, err)
	require.True(t, errors.IsPrefixMismatch(err))
}

func TestSwitchPrefixesExactKey(t *testing.T) {
	dest, err := objectstore.SwitchPrefixes("src/", "dest/", "src/")
	require.NoError(t, err)
	require.Equal(t, "dest/", dest)
}
