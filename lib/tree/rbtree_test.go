package tree

import (
	"math"
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type checkData struct {
	color RBColor
	key   int32
}

func requireTreeEquals(t *testing.T, tree RBTree, expected []checkData) {
	t.Helper()
	count := int64(0)
	tree.Foreach(func(idx int64, color RBColor, key int32) bool {
		require.Less(t, idx, int64(len(expected)))
		require.Equal(t, expected[idx].color, color, "color of key %d", key)
		require.Equal(t, expected[idx].key, key)
		count++
		return true
	})
	require.Equal(t, int64(len(expected)), count)
	require.Equal(t, int64(len(expected)), tree.Len())
}

func requireRBTreeRules(t *testing.T, tree RBTree) {
	t.Helper()
	require.NoError(t, RedViolationValidate(tree))
	require.NoError(t, BlackViolationValidate(tree))
	require.NoError(t, tree.Validate())
}

func TestRBColorAndDirectionString(t *testing.T) {
	require.Equal(t, "Black", Black.String())
	require.Equal(t, "Red", Red.String())
	require.Equal(t, "RBColor(unknown)", RBColor(7).String())
	require.Equal(t, "Left", Left.String())
	require.Equal(t, "Root", Root.String())
	require.Equal(t, "Right", Right.String())
	require.Equal(t, "RBDirection(unknown)", RBDirection(9).String())
}

func TestRbtreeLeftAndRightRotate(t *testing.T) {
	type testcase struct {
		name    string
		opts    []RBTreeOpt
		removes [][]checkData
	}
	testcases := []testcase{
		{
			name: "rm by succ",
			removes: [][]checkData{
				{{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52}},
				{{Black, 3}, {Black, 35}, {Black, 52}},
				{{Red, 3}, {Black, 35}},
				{{Black, 35}},
			},
		},
		{
			name: "rm by pred",
			opts: []RBTreeOpt{WithRBTreeRemoveBorrowPred()},
			removes: [][]checkData{
				{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}},
				{{Black, 3}, {Black, 35}, {Black, 52}},
				{{Red, 3}, {Black, 35}},
				{{Black, 35}},
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewRBTree(tc.opts...)

			tree.Insert(52)
			requireTreeEquals(tt, tree, []checkData{{Black, 52}})
			requireRBTreeRules(tt, tree)

			tree.Insert(47)
			requireTreeEquals(tt, tree, []checkData{{Red, 47}, {Black, 52}})
			requireRBTreeRules(tt, tree)

			tree.Insert(3)
			requireTreeEquals(tt, tree, []checkData{{Red, 3}, {Black, 47}, {Red, 52}})
			requireRBTreeRules(tt, tree)

			tree.Insert(35)
			requireTreeEquals(tt, tree, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}})
			requireRBTreeRules(tt, tree)

			tree.Insert(24)
			requireTreeEquals(tt, tree, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})
			requireRBTreeRules(tt, tree)
			require.Equal(tt, int32(47), tree.Root().Key())

			// remove

			for i, key := range []int32{24, 47, 52, 3} {
				require.NoError(tt, tree.Remove(key))
				require.False(tt, tree.Contains(key))
				requireTreeEquals(tt, tree, tc.removes[i])
				requireRBTreeRules(tt, tree)
			}

			require.NoError(tt, tree.Remove(35))
			require.Equal(tt, int64(0), tree.Len())
			require.Nil(tt, tree.Root())
		})
	}
}

func TestRbtree_SuccessorAndPredecessor(t *testing.T) {
	tree := NewRBTree()
	for _, key := range []int32{10, 7, 13, 6, 12, 15, 14} {
		tree.Insert(key)
	}
	require.True(t, tree.IsValid())
	requireTreeEquals(t, tree, []checkData{
		{Red, 6}, {Black, 7}, {Black, 10}, {Black, 12}, {Red, 13}, {Red, 14}, {Black, 15},
	})

	succ := tree.Successor(tree.Search(12))
	require.NotNil(t, succ)
	require.Equal(t, int32(13), succ.Key())

	pred := tree.Predecessor(tree.Search(7))
	require.NotNil(t, pred)
	require.Equal(t, int32(6), pred.Key())

	// Walk up through parents.
	require.Equal(t, int32(10), tree.Successor(tree.Search(7)).Key())
	require.Equal(t, int32(15), tree.Successor(tree.Search(14)).Key())
	require.Equal(t, int32(12), tree.Predecessor(tree.Search(13)).Key())
	require.Equal(t, int32(10), tree.Predecessor(tree.Search(12)).Key())

	require.Nil(t, tree.Successor(tree.Max()))
	require.Nil(t, tree.Predecessor(tree.Min()))
	require.Equal(t, int32(6), tree.Min().Key())
	require.Equal(t, int32(15), tree.Max().Key())

	thirteen := tree.Search(13)
	require.Equal(t, int32(12), tree.Minimum(thirteen).Key())
	require.Equal(t, int32(15), tree.Maximum(thirteen).Key())
	require.Equal(t, tree.Min(), tree.Minimum(tree.Root()))
	require.Equal(t, tree.Max(), tree.Maximum(tree.Root()))

	require.Equal(t, Right, thirteen.Direction())
	require.Equal(t, Left, tree.Search(7).Direction())
	require.Equal(t, Root, tree.Root().Direction())
	require.Equal(t, tree.Root(), thirteen.Parent())
	require.Equal(t, int32(12), thirteen.Left().Key())
	require.Equal(t, int32(15), thirteen.Right().Key())
	require.Nil(t, tree.Search(6).Left())
	require.Nil(t, tree.Root().Parent())
	require.Nil(t, tree.Search(11))

	// In order walk by successors.
	keys := make([]int32, 0, tree.Len())
	for node := tree.Min(); node != nil; node = tree.Successor(node) {
		keys = append(keys, node.Key())
	}
	require.Equal(t, []int32{6, 7, 10, 12, 13, 14, 15}, keys)
	keys = keys[:0]
	for node := tree.Max(); node != nil; node = tree.Predecessor(node) {
		keys = append(keys, node.Key())
	}
	require.Equal(t, []int32{15, 14, 13, 12, 10, 7, 6}, keys)
}

func TestRbtree_AscendingInsertAndRemove(t *testing.T) {
	tree := NewRBTree()
	for i := int32(0); i < 10; i++ {
		tree.Insert(i)
		requireRBTreeRules(t, tree)
	}
	require.LessOrEqual(t, tree.Height(), 8)
	require.LessOrEqual(t, float64(tree.Height()), 2*math.Log2(float64(tree.Len()+1)))
	tree.Foreach(func(idx int64, color RBColor, key int32) bool {
		require.Equal(t, int32(idx), key)
		return true
	})

	for i := int32(0); i < 10; i++ {
		require.NoError(t, tree.Remove(i))
		require.False(t, tree.Contains(i))
		require.True(t, tree.IsValid())
		require.Equal(t, int64(9-i), tree.Len())
	}
	require.Nil(t, tree.Root())
	require.Equal(t, 0, tree.Height())
}

func TestRbtree_EmptyTree(t *testing.T) {
	tree := NewRBTree()
	require.NotPanics(t, func() {
		require.ErrorIs(t, tree.Remove(1), ErrRBTreeEmpty)
	})
	_, err := tree.RemoveMin()
	require.ErrorIs(t, err, ErrRBTreeEmpty)
	_, err = tree.RemoveMax()
	require.ErrorIs(t, err, ErrRBTreeEmpty)

	require.Nil(t, tree.Root())
	require.Nil(t, tree.Min())
	require.Nil(t, tree.Max())
	require.Nil(t, tree.Search(1))
	require.False(t, tree.Contains(1))
	require.Equal(t, 0, tree.Height())
	require.True(t, tree.IsValid())
	tree.Foreach(func(int64, RBColor, int32) bool {
		require.FailNow(t, "empty tree must not be visited")
		return false
	})
}

func TestRbtree_RemoveAbsentKeyIsIdempotent(t *testing.T) {
	tree := NewRBTree()
	for _, key := range []int32{10, 7, 13, 6, 12, 15, 14} {
		tree.Insert(key)
	}
	snapshot := func() []checkData {
		res := make([]checkData, 0, tree.Len())
		tree.Foreach(func(idx int64, color RBColor, key int32) bool {
			res = append(res, checkData{color, key})
			return true
		})
		return res
	}
	before, stats, root := snapshot(), tree.Stats(), tree.Root()

	require.ErrorIs(t, tree.Remove(11), ErrRBTreeKeyNotFound)
	require.ErrorIs(t, tree.Remove(11), ErrRBTreeKeyNotFound)

	require.Equal(t, before, snapshot())
	require.Equal(t, stats, tree.Stats())
	// A failed remove does not invalidate handles.
	require.Equal(t, root, tree.Root())
	require.Equal(t, int32(10), root.Key())
}

func TestRbtree_Duplicates(t *testing.T) {
	tree := NewRBTree()
	for _, key := range []int32{5, 5, 5, 3, 5, 7, 5} {
		tree.Insert(key)
		requireRBTreeRules(t, tree)
	}
	require.Equal(t, int64(7), tree.Len())
	keys := make([]int32, 0, 7)
	tree.Foreach(func(idx int64, color RBColor, key int32) bool {
		keys = append(keys, key)
		return true
	})
	require.Equal(t, []int32{3, 5, 5, 5, 5, 5, 7}, keys)

	for i := 0; i < 5; i++ {
		require.NoError(t, tree.Remove(5))
		requireRBTreeRules(t, tree)
	}
	require.False(t, tree.Contains(5))
	require.ErrorIs(t, tree.Remove(5), ErrRBTreeKeyNotFound)
	require.NoError(t, tree.Remove(3))
	require.NoError(t, tree.Remove(7))
	require.ErrorIs(t, tree.Remove(5), ErrRBTreeEmpty)
}

func TestRbtree_RemoveMinAndMax(t *testing.T) {
	tree := NewRBTree()
	for _, key := range []int32{52, 47, 3, 35, 24} {
		tree.Insert(key)
	}

	key, err := tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, int32(3), key)
	requireTreeEquals(t, tree, []checkData{{Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})
	requireRBTreeRules(t, tree)

	key, err = tree.RemoveMax()
	require.NoError(t, err)
	require.Equal(t, int32(52), key)
	requireRBTreeRules(t, tree)

	for _, expected := range []int32{24, 35, 47} {
		key, err = tree.RemoveMin()
		require.NoError(t, err)
		require.Equal(t, expected, key)
		requireRBTreeRules(t, tree)
	}
	require.Equal(t, int64(0), tree.Len())
}

func TestRbtree_Desc(t *testing.T) {
	tree := NewRBTree(WithRBTreeDesc())
	for i := int32(1); i <= 100; i++ {
		tree.Insert(i)
		requireRBTreeRules(t, tree)
	}
	tree.Foreach(func(idx int64, color RBColor, key int32) bool {
		require.Equal(t, int32(100-idx), key)
		return true
	})
	require.Equal(t, int32(100), tree.Min().Key())
	require.Equal(t, int32(1), tree.Max().Key())
	require.Equal(t, int32(49), tree.Successor(tree.Search(50)).Key())
	require.Equal(t, int32(51), tree.Predecessor(tree.Search(50)).Key())

	key, err := tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, int32(100), key)
	for i := int32(1); i < 100; i += 2 {
		require.NoError(t, tree.Remove(i))
		requireRBTreeRules(t, tree)
	}
	require.Equal(t, int64(49), tree.Len())
}

func TestRbtree_NodeHandles(t *testing.T) {
	tree := NewRBTree()
	for _, key := range []int32{10, 7, 13, 6, 12, 15, 14} {
		tree.Insert(key)
	}

	h := tree.Search(6)
	tree.Insert(5)
	tree.Insert(100)
	require.Equal(t, int32(6), h.Key(), "insert keeps handles valid")
	require.Equal(t, int32(5), tree.Predecessor(h).Key())

	require.NoError(t, tree.Remove(100))
	require.PanicsWithValue(t, "[rbtree] stale node handle, the tree has been changed by remove or clear", func() {
		_ = h.Key()
	})
	require.Panics(t, func() {
		tree.Successor(h)
	})

	other := NewRBTree()
	other.Insert(6)
	require.PanicsWithValue(t, "[rbtree] node handle does not belong to this tree", func() {
		tree.Successor(other.Root())
	})
	require.PanicsWithValue(t, "[rbtree] nil node handle", func() {
		tree.Predecessor(nil)
	})
	require.Panics(t, func() {
		tree.Minimum(nil)
	})
	require.Panics(t, func() {
		_ = rbNodeRef{}.Key()
	})

	h = tree.Search(13)
	tree.Clear()
	require.Panics(t, func() {
		_ = h.Color()
	})
}

func TestRbtree_Clear(t *testing.T) {
	tree := NewRBTree(WithRBTreeCapacity(128))
	for i := int32(0); i < 128; i++ {
		tree.Insert(i)
	}
	inserts := tree.Stats().Inserts

	tree.Clear()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.True(t, tree.IsValid())
	for i := int32(0); i < 128; i++ {
		require.False(t, tree.Contains(i))
	}
	require.Equal(t, inserts, tree.Stats().Inserts)

	tree.Insert(42)
	require.True(t, tree.Contains(42))
	require.True(t, tree.IsValid())
}

func TestRbtree_Stats(t *testing.T) {
	tree := NewRBTree()
	n := uint64(1000)
	for i := uint64(0); i < n; i++ {
		tree.Insert(int32(i))
	}
	stats := tree.Stats()
	require.Equal(t, n, stats.Inserts)
	require.Greater(t, stats.Rotations, uint64(0))
	require.Greater(t, stats.InsertFixups, uint64(0))
	// At most two rotations per insert.
	require.LessOrEqual(t, stats.Rotations, 2*n)

	rotations := stats.Rotations
	for i := uint64(0); i < n; i++ {
		require.NoError(t, tree.Remove(int32(i)))
	}
	stats = tree.Stats()
	require.Equal(t, n, stats.Removes)
	// At most three rotations per remove.
	require.LessOrEqual(t, stats.Rotations-rotations, 3*n)
}

func TestRbtree_DistinctKeysRoundTrip(t *testing.T) {
	n := 2000
	perm := randv2.Perm(n)
	tree := NewRBTree()
	for _, v := range perm {
		key := int32(v) - int32(n/2)
		tree.Insert(key)
		require.True(t, tree.Contains(key))
	}
	require.True(t, tree.IsValid())
	require.LessOrEqual(t, float64(tree.Height()), 2*math.Log2(float64(n+1)))

	randv2.Shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
	for i, v := range perm {
		key := int32(v) - int32(n/2)
		require.NoError(t, tree.Remove(key))
		require.False(t, tree.Contains(key))
		if i%97 == 0 {
			requireRBTreeRules(t, tree)
		}
	}

	fresh := NewRBTree()
	require.Equal(t, fresh.Len(), tree.Len())
	require.Equal(t, fresh.Root(), tree.Root())
	require.Equal(t, fresh.Height(), tree.Height())
	require.True(t, tree.IsValid())
}

func rbtreeRandomInsertAndRemoveRunCore(t *testing.T, total int, keyRange int32, opts ...RBTreeOpt) {
	tree := NewRBTree(opts...)
	expected := make([]int32, 0, total)

	for i := 0; i < total; i++ {
		key := randv2.Int32N(keyRange)
		tree.Insert(key)
		expected = append(expected, key)
		requireRBTreeRules(t, tree)
	}
	sort.Slice(expected, func(i, j int) bool {
		return keyCompareOf(tree)(expected[i], expected[j]) < 0
	})
	tree.Foreach(func(idx int64, color RBColor, key int32) bool {
		require.Equal(t, expected[idx], key)
		return true
	})

	for len(expected) > 0 {
		i := randv2.IntN(len(expected))
		require.NoError(t, tree.Remove(expected[i]))
		expected = append(expected[:i], expected[i+1:]...)
		requireRBTreeRules(t, tree)
		require.Equal(t, int64(len(expected)), tree.Len())
	}
	require.ErrorIs(t, tree.Remove(0), ErrRBTreeEmpty)
}

func TestRbtreeRandomInsertAndRemove(t *testing.T) {
	type testcase struct {
		name     string
		total    int
		keyRange int32
		opts     []RBTreeOpt
	}
	testcases := []testcase{
		{name: "rm by succ distinct-ish", total: 2000, keyRange: math.MaxInt32},
		{name: "rm by pred distinct-ish", total: 2000, keyRange: math.MaxInt32, opts: []RBTreeOpt{WithRBTreeRemoveBorrowPred()}},
		{name: "rm by succ many duplicates", total: 2000, keyRange: 32},
		{name: "rm by pred many duplicates", total: 2000, keyRange: 32, opts: []RBTreeOpt{WithRBTreeRemoveBorrowPred()}},
		{name: "desc many duplicates", total: 1000, keyRange: 64, opts: []RBTreeOpt{WithRBTreeDesc()}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveRunCore(tt, tc.total, tc.keyRange, tc.opts...)
		})
	}
}

// permutations calls fn with every permutation of keys (Heap's algorithm).
func permutations(keys []int32, fn func([]int32)) {
	c := make([]int, len(keys))
	fn(keys)
	for i := 1; i < len(keys); {
		if c[i] < i {
			if i%2 == 0 {
				keys[0], keys[i] = keys[i], keys[0]
			} else {
				keys[c[i]], keys[i] = keys[i], keys[c[i]]
			}
			fn(keys)
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}
}

// Every insertion order of 7 keys, each removed in the same and in the
// reversed order, is checked after every single step.
func TestRbtreeExhaustivePermutations(t *testing.T) {
	keys := []int32{1, 2, 3, 4, 5, 6, 7}
	count := 0
	permutations(keys, func(perm []int32) {
		count++
		for _, reversed := range []bool{false, true} {
			tree := NewRBTree()
			for _, key := range perm {
				tree.Insert(key)
				require.NoError(t, tree.Validate())
			}
			for i := range perm {
				key := perm[i]
				if reversed {
					key = perm[len(perm)-1-i]
				}
				require.NoError(t, tree.Remove(key))
				require.NoError(t, tree.Validate(), "perm %v reversed %v removing %d", perm, reversed, key)
			}
			require.Nil(t, tree.Root())
		}
	})
	require.Equal(t, 5040, count)
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree()

	rngArr := make([]int32, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int32())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	tree := NewRBTree()
	for i := 0; i < b.N; i++ {
		tree.Insert(int32(i))
	}
}
