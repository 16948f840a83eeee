// Package prefixsource produces the bounded sequence of prefix strings
// that seeds listing parallelism.
package prefixsource

import (
	"bufio"
	"context"
	"strings"

	"github.com/s3ops/s3pitrestore/internal/errors"
	"github.com/s3ops/s3pitrestore/internal/textfile"
)

// Prefixes returns the prefixes to list. If path is empty, the result
// is a single empty prefix meaning "list the entire source prefix".
// Otherwise each non-empty line of the file at path is yielded in file
// order; empty lines are ignored. An unreadable path fails the whole
// run before any listing begins.
func Prefixes(ctx context.Context, path string) ([]string, error) {
	if path == "" {
		return []string{""}, nil
	}

	data, err := textfile.Read(path)
	if err != nil {
		return nil, errors.Fatalf("reading prefix file %v: %v", path, err)
	}

	var prefixes []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		prefixes = append(prefixes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Fatalf("reading prefix file %v: %v", path, err)
	}

	return prefixes, nil
}
