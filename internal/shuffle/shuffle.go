package shuffle

import (
	"context"

	"github.com/cespare/xxhash/v2"
)

// Shuffle repartitions in into the returned partitions channels by
// xxhash of each record's key, and closes every output channel once in
// is drained or ctx is done. The multiset of records read from in
// equals the multiset written across the outputs (records are neither
// duplicated nor dropped on the non-cancelled path).
func Shuffle(ctx context.Context, in <-chan Record, partitions int) []<-chan Record {
	if partitions < 1 {
		partitions = 1
	}

	outs := make([]chan Record, partitions)
	roOuts := make([]<-chan Record, partitions)
	for i := range outs {
		outs[i] = make(chan Record)
		roOuts[i] = outs[i]
	}

	go func() {
		defer func() {
			for _, out := range outs {
				close(out)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case rec, ok := <-in:
				if !ok {
					return
				}
				p := Partition(rec.Key, partitions)
				select {
				case outs[p] <- rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return roOuts
}

// Partition returns the destination partition for key among n
// partitions.
func Partition(key []byte, n int) int {
	if n <= 1 {
		return 0
	}
	return int(xxhash.Sum64(key) % uint64(n))
}
