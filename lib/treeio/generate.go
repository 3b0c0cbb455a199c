package treeio

import (
	"fmt"
	randv2 "math/rand/v2"

	"github.com/benz9527/xrbt/lib/tree"
)

// Generate inserts size keys drawn uniformly from the closed range
// [from, to]. A nil rng falls back to the global source.
func Generate(t tree.RBTree, from, to int32, size int, rng *randv2.Rand) error {
	if t == nil {
		return ErrTreeIONilTree
	}
	if from > to {
		return fmt.Errorf("%w: [%d, %d]", ErrTreeIOBadRange, from, to)
	}
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrTreeIOBadSize, size)
	}

	span := int64(to) - int64(from) + 1
	int64N := randv2.Int64N
	if rng != nil {
		int64N = rng.Int64N
	}
	for i := 0; i < size; i++ {
		t.Insert(int32(int64(from) + int64N(span)))
	}
	return nil
}
