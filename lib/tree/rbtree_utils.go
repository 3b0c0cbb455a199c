package tree

import (
	"fmt"

	"go.uber.org/multierr"
)

func isBlack(node RBNode) bool {
	return isNilLeaf(node) || node.Color() == Black
}

func isRed(node RBNode) bool {
	return !isNilLeaf(node) && node.Color() == Red
}

func isNilLeaf(node RBNode) bool {
	return node == nil
}

func blackDepthTo(target, to RBNode) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack(aux) {
			depth++
		}
	}
	return depth
}

func ascendingKeyCompare(k1, k2 int32) int64 {
	if k1 == k2 {
		return 0
	} else if k1 < k2 {
		return -1
	}
	return 1
}

func keyCompareOf(tree RBTree) func(k1, k2 int32) int64 {
	if c, ok := tree.(interface{ keyCompare(k1, k2 int32) int64 }); ok {
		return c.keyCompare
	}
	return ascendingKeyCompare
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs
// http://www.cs.princeton.edu/~rs/talks/LLRB/Java/RedBlackBST.java

// OrderViolationValidate walks the tree in order. Keys must never
// decrease in tree order, so every left subtree holds keys <= its root
// and every right subtree keys >= its root. Rotations may move a
// duplicate key to the left of an equal one.
func OrderViolationValidate(tree RBTree) error {
	aux := tree.Root()
	if isNilLeaf(aux) {
		return nil
	}

	keyCompare := keyCompareOf(tree)
	stack := make([]RBNode, 0, rbTreeMaxHeight)
	defer func() {
		clear(stack)
	}()

	for ; !isNilLeaf(aux); aux = aux.Left() {
		stack = append(stack, aux)
	}

	var prev RBNode
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		if prev != nil && keyCompare(prev.Key(), aux.Key()) > 0 {
			return fmt.Errorf("%w: key %d is placed after key %d", ErrRBTreeOrderViolation, aux.Key(), prev.Key())
		}
		prev = aux

		stack = stack[:size-1]
		for aux = aux.Right(); !isNilLeaf(aux); aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// ParentLinkViolationValidate checks that every child points back to
// its parent and that the root has no parent.
func ParentLinkViolationValidate(tree RBTree) error {
	root := tree.Root()
	if isNilLeaf(root) {
		return nil
	}
	if !isNilLeaf(root.Parent()) {
		return fmt.Errorf("%w: root %d has a parent", ErrRBTreeParentViolation, root.Key())
	}

	limit := tree.Len()
	visited := int64(0)
	stack := make([]RBNode, 0, rbTreeMaxHeight)
	stack = append(stack, root)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if visited++; visited > limit {
			return fmt.Errorf("%w: more than %d nodes reachable from the root", ErrRBTreeSizeViolation, limit)
		}
		for _, child := range [2]RBNode{aux.Left(), aux.Right()} {
			if isNilLeaf(child) {
				continue
			}
			if child.Parent() != aux {
				return fmt.Errorf("%w: node %d is not linked back to parent %d", ErrRBTreeParentViolation, child.Key(), aux.Key())
			}
			stack = append(stack, child)
		}
	}
	return nil
}

// RedViolationValidate checks that no red node has a red child.
func RedViolationValidate(tree RBTree) error {
	aux := tree.Root()
	if isNilLeaf(aux) {
		return nil
	}

	stack := make([]RBNode, 0, rbTreeMaxHeight)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)

	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		l, r := aux.Left(), aux.Right()
		if isRed(aux) && (isRed(l) || isRed(r)) {
			return fmt.Errorf("%w: red node %d has a red child", ErrRBTreeRedViolation, aux.Key())
		}
		if !isNilLeaf(l) {
			stack = append(stack, l)
		}
		if !isNilLeaf(r) {
			stack = append(stack, r)
		}
	}
	return nil
}

// BFS traversal to load every node that owns at least one sentinel child.
func bfsLeaves(tree RBTree) []RBNode {
	aux := tree.Root()
	if isNilLeaf(aux) {
		return nil
	}

	leaves := make([]RBNode, 0, tree.Len()>>1+1)
	queue := make([]RBNode, 0, tree.Len()>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* sentinel children, keep one */ isNilLeaf(l) || isNilLeaf(r) {
			leaves = append(leaves, aux)
		}
		if !isNilLeaf(l) {
			queue = append(queue, l)
		}
		if !isNilLeaf(r) {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or the sentinel).

	        [13]
			/  \
		 <8>    <15>
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            <16>

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6] [11]     [14]  <16>-[17]

Each sentinel to root path holds the same number of black nodes.
*/
func BlackViolationValidate(tree RBTree) error {
	leaves := bfsLeaves(tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo(leaves[0], nil)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo(leaves[i], nil); depth != blackDepth {
			return fmt.Errorf("%w: node %d has black depth %d, expected %d",
				ErrRBTreeBlackViolation, leaves[i].Key(), depth, blackDepth)
		}
	}
	return nil
}

// RootColorValidate checks that a non-empty tree has a black root.
func RootColorValidate(tree RBTree) error {
	if root := tree.Root(); !isNilLeaf(root) && root.Color() != Black {
		return fmt.Errorf("%w: root %d is red", ErrRBTreeRootViolation, root.Key())
	}
	return nil
}

func (tree *rbTree) sentinelValidate() error {
	if s := tree.arena.nodes[sentinel]; s != (rbNode{color: Black}) {
		return fmt.Errorf("%w: %+v", ErrRBTreeSentinelViolation, s)
	}
	return nil
}

func (tree *rbTree) sizeValidate() error {
	if used := int64(tree.arena.used()); used != tree.count {
		return fmt.Errorf("%w: %d slots in use, %d keys counted", ErrRBTreeSizeViolation, used, tree.count)
	}
	visited := int64(0)
	tree.Foreach(func(int64, RBColor, int32) bool {
		visited++
		return visited <= tree.count
	})
	if visited != tree.count {
		return fmt.Errorf("%w: %d nodes reachable, %d keys counted", ErrRBTreeSizeViolation, visited, tree.count)
	}
	return nil
}

// Validate runs every structural check and reports all the violations
// found, not only the first one.
func (tree *rbTree) Validate() error {
	if err := tree.sentinelValidate(); err != nil {
		return err
	}
	// The walks below trust the links, a broken parent chain may loop.
	if err := ParentLinkViolationValidate(tree); err != nil {
		return multierr.Append(err, tree.sizeValidate())
	}
	return multierr.Combine(
		tree.sizeValidate(),
		RootColorValidate(tree),
		OrderViolationValidate(tree),
		RedViolationValidate(tree),
		BlackViolationValidate(tree),
	)
}

func (tree *rbTree) IsValid() bool {
	return tree.Validate() == nil
}
