package tree

var _ RBTree = (*rbTree)(nil)

const (
	rbTreeDefaultCapacity = 64
	// 2*log2(n+1) for n < 2^32 nodes.
	rbTreeMaxHeight       = 64
)

type rbTree struct {
	arena          *rbArena
	root           uint32
	count          int64
	epoch          uint64
	stats          RBTreeStats
	isDesc         bool
	isRmBorrowPred bool
}

func (tree *rbTree) keyCompare(k1, k2 int32) int64 {
	if k1 == k2 {
		return 0
	} else if k1 < k2 {
		if !tree.isDesc {
			return -1
		}
		return 1
	} else {
		if !tree.isDesc {
			return 1
		}
		return -1
	}
}

func (tree *rbTree) Len() int64 {
	return tree.count
}

func (tree *rbTree) Root() RBNode {
	return tree.ref(tree.root)
}

func (tree *rbTree) Stats() RBTreeStats {
	return tree.stats
}

func (tree *rbTree) direction(x uint32) RBDirection {
	if x == sentinel {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] sentinel node without direction")
	}
	nodes := tree.arena.nodes
	p := nodes[x].parent
	if p == sentinel {
		return Root
	}
	if x == nodes[p].left {
		return Left
	}
	return Right
}

func (tree *rbTree) minimum(x uint32) uint32 {
	if x == sentinel {
		panic( /* debug assertion */ "[rbtree] minimum of the sentinel")
	}
	nodes := tree.arena.nodes
	for ; nodes[x].left != sentinel; x = nodes[x].left {
	}
	return x
}

func (tree *rbTree) maximum(x uint32) uint32 {
	if x == sentinel {
		panic( /* debug assertion */ "[rbtree] maximum of the sentinel")
	}
	nodes := tree.arena.nodes
	for ; nodes[x].right != sentinel; x = nodes[x].right {
	}
	return x
}

// The succ node of the current node is its next node in tree order.
func (tree *rbTree) succ(x uint32) uint32 {
	nodes := tree.arena.nodes
	if nodes[x].right != sentinel {
		return tree.minimum(nodes[x].right)
	}
	// Backtrack to the first ancestor reached from its left side.
	p := nodes[x].parent
	for p != sentinel && x == nodes[p].right {
		x = p
		p = nodes[p].parent
	}
	return p
}

// The pred node of the current node is its previous node in tree order.
func (tree *rbTree) pred(x uint32) uint32 {
	nodes := tree.arena.nodes
	if nodes[x].left != sentinel {
		return tree.maximum(nodes[x].left)
	}
	p := nodes[x].parent
	for p != sentinel && x == nodes[p].left {
		x = p
		p = nodes[p].parent
	}
	return p
}

func (tree *rbTree) search(key int32) uint32 {
	nodes := tree.arena.nodes
	for x := tree.root; x != sentinel; {
		res := tree.keyCompare(key, nodes[x].key)
		if res == 0 {
			return x
		} else if res < 0 {
			x = nodes[x].left
		} else {
			x = nodes[x].right
		}
	}
	return sentinel
}

func (tree *rbTree) Search(key int32) RBNode {
	return tree.ref(tree.search(key))
}

func (tree *rbTree) Contains(key int32) bool {
	return tree.search(key) != sentinel
}

func (tree *rbTree) Min() RBNode {
	if tree.root == sentinel {
		return nil
	}
	return tree.ref(tree.minimum(tree.root))
}

func (tree *rbTree) Max() RBNode {
	if tree.root == sentinel {
		return nil
	}
	return tree.ref(tree.maximum(tree.root))
}

func (tree *rbTree) Minimum(node RBNode) RBNode {
	return tree.ref(tree.minimum(tree.deref(node)))
}

func (tree *rbTree) Maximum(node RBNode) RBNode {
	return tree.ref(tree.maximum(tree.deref(node)))
}

func (tree *rbTree) Successor(node RBNode) RBNode {
	return tree.ref(tree.succ(tree.deref(node)))
}

func (tree *rbTree) Predecessor(node RBNode) RBNode {
	return tree.ref(tree.pred(tree.deref(node)))
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. The sentinel is black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   sentinels goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// So the longest root to sentinel path is at most twice the shortest one.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree) leftRotate(x uint32) {
	nodes := tree.arena.nodes
	if x == sentinel || nodes[x].right == sentinel {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	y := nodes[x].right
	dir := tree.direction(x)
	p := nodes[x].parent

	nodes[x].right = nodes[y].left
	if nodes[y].left != sentinel {
		nodes[nodes[y].left].parent = x
	}

	switch dir {
	case Root:
		tree.root = y
	case Left:
		nodes[p].left = y
	case Right:
		nodes[p].right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	nodes[y].parent = p
	nodes[y].left = x
	nodes[x].parent = y
	tree.stats.Rotations++
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree) rightRotate(x uint32) {
	nodes := tree.arena.nodes
	if x == sentinel || nodes[x].left == sentinel {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	y := nodes[x].left
	dir := tree.direction(x)
	p := nodes[x].parent

	nodes[x].left = nodes[y].right
	if nodes[y].right != sentinel {
		nodes[nodes[y].right].parent = x
	}

	switch dir {
	case Root:
		tree.root = y
	case Left:
		nodes[p].left = y
	case Right:
		nodes[p].right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	nodes[y].parent = p
	nodes[y].right = x
	nodes[x].parent = y
	tree.stats.Rotations++
}

// Insert links a new red node below the leaf reached by a plain BST
// descent. Equal keys are routed right.
// i1: Empty rbtree, the new node becomes the root and is painted black.
func (tree *rbTree) Insert(key int32) {
	z := tree.arena.malloc(key)
	nodes := tree.arena.nodes

	var x, y uint32 = tree.root, sentinel
	for x != sentinel {
		y = x
		if /* less */ tree.keyCompare(key, nodes[x].key) < 0 {
			x = nodes[x].left
		} else /* greater or equal */ {
			x = nodes[x].right
		}
	}

	nodes[z].parent = y
	tree.count++
	tree.stats.Inserts++
	if /* i1 */ y == sentinel {
		tree.root = z
		nodes[z].color = Black
		return
	}
	if tree.keyCompare(key, nodes[y].key) < 0 {
		nodes[y].left = z
	} else {
		nodes[y].right = z
	}
	tree.insertRebalance(z)
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or the sentinel).

The loop only runs while X's parent P is red, so P is not the root and
the grandpa G exists and is black.

im1: The uncle U is red. (red-violation)
Repaint P and U into black and G into red. G may now be a red child of
a red node, continue from G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im2: The uncle U is black and X is the inner child. (red-violation)
Rotate P away from X so that the old P becomes the outer child, then
handle it by im3.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im3: The uncle U is black and X is the outer child.
Repaint P into black and G into red, rotate G towards U. Done.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree) insertRebalance(x uint32) {
	nodes := tree.arena.nodes
	for x != tree.root && nodes[nodes[x].parent].color == Red {
		tree.stats.InsertFixups++
		p := nodes[x].parent
		gp := nodes[p].parent

		switch tree.direction(p) {
		case Left:
			if /* im1 */ u := nodes[gp].right; nodes[u].color == Red {
				nodes[p].color = Black
				nodes[u].color = Black
				nodes[gp].color = Red
				x = gp
				continue
			}
			if /* im2 */ x == nodes[p].right {
				x = p
				tree.leftRotate(x)
				p = nodes[x].parent
			}
			/* im3 */
			nodes[p].color = Black
			nodes[gp].color = Red
			tree.rightRotate(gp)
		case Right:
			if /* im1 */ u := nodes[gp].left; nodes[u].color == Red {
				nodes[p].color = Black
				nodes[u].color = Black
				nodes[gp].color = Red
				x = gp
				continue
			}
			if /* im2 */ x == nodes[p].left {
				x = p
				tree.rightRotate(x)
				p = nodes[x].parent
			}
			/* im3 */
			nodes[p].color = Black
			nodes[gp].color = Red
			tree.leftRotate(gp)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate, red parent is the root")
		}
		break
	}
	nodes[tree.root].color = Black
}

func (tree *rbTree) Remove(key int32) error {
	if tree.count <= 0 {
		return ErrRBTreeEmpty
	}
	z := tree.search(key)
	if z == sentinel {
		return ErrRBTreeKeyNotFound
	}
	tree.removeNode(z)
	return nil
}

func (tree *rbTree) RemoveMin() (int32, error) {
	if tree.count <= 0 {
		return 0, ErrRBTreeEmpty
	}
	z := tree.minimum(tree.root)
	key := tree.arena.nodes[z].key
	tree.removeNode(z)
	return key, nil
}

func (tree *rbTree) RemoveMax() (int32, error) {
	if tree.count <= 0 {
		return 0, ErrRBTreeEmpty
	}
	z := tree.maximum(tree.root)
	key := tree.arena.nodes[z].key
	tree.removeNode(z)
	return key, nil
}

/*
r1: Node Z has at most one child, Z itself is spliced out.

r2: Node Z has two children. Borrow its succ (or pred), which has at most
one child, copy the borrowed key into Z and splice the borrowed node
out instead.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   copy(Z, S)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                X  ..

The spliced node Y is replaced by its only child X (or the sentinel).
If Y was red, nothing changes on any black path. If Y was black, the
path through X lost a black node (double-black on X), fix it up from X.
*/
func (tree *rbTree) removeNode(z uint32) {
	nodes := tree.arena.nodes

	y := z
	if /* r2 */ nodes[z].left != sentinel && nodes[z].right != sentinel {
		if tree.isRmBorrowPred {
			y = tree.maximum(nodes[z].left)
		} else {
			y = tree.minimum(nodes[z].right)
		}
	}

	x := nodes[y].left
	if x == sentinel {
		x = nodes[y].right
	}
	xp := nodes[y].parent
	if x != sentinel {
		nodes[x].parent = xp
	}

	switch dir := tree.direction(y); dir {
	case Root:
		tree.root = x
	case Left:
		nodes[xp].left = x
	case Right:
		nodes[xp].right = x
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to remove")
	}

	if y != z {
		nodes[z].key = nodes[y].key
	}
	if nodes[y].color == Black {
		tree.removeRebalance(x, xp)
	}

	tree.arena.free(y)
	tree.count--
	tree.epoch++
	tree.stats.Removes++
}

/*
<X> is a RED node.
[X] is a BLACK node (or the sentinel).
{X} is either a RED node or a BLACK node.

X carries an extra black. P is X's parent, which is tracked apart from X
because X may be the sentinel and the sentinel is never written.
Sc is the sibling's child on X's side (near), Sd the other one (far).

rm1: The sibling S is red, so P, Sc and Sd are black.
Repaint S into black and P into red, rotate P towards X. The new sibling
is black, go on with rm2-rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: S, Sc and Sd are black.
Repaint S into red, both paths under P lost a black node, move the extra
black up to P. A red P absorbs it when the loop ends.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, Sc is red and Sd is black.
Repaint Sc into black and S into red, rotate S away from X. The new
sibling has a red far child, enter rm4.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: S is black and Sd is red.
S takes P's color, P and Sd become black, rotate P towards X. The extra
black is gone, done.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree) removeRebalance(x, xp uint32) {
	nodes := tree.arena.nodes
	for x != tree.root && nodes[x].color == Black {
		tree.stats.RemoveFixups++
		if x == nodes[xp].left {
			s := nodes[xp].right
			if /* rm1 */ nodes[s].color == Red {
				nodes[s].color = Black
				nodes[xp].color = Red
				tree.leftRotate(xp)
				s = nodes[xp].right
			}
			if /* rm2 */ nodes[nodes[s].left].color == Black && nodes[nodes[s].right].color == Black {
				nodes[s].color = Red
				x, xp = xp, nodes[xp].parent
				continue
			}
			if /* rm3 */ nodes[nodes[s].right].color == Black {
				nodes[nodes[s].left].color = Black
				nodes[s].color = Red
				tree.rightRotate(s)
				s = nodes[xp].right
			}
			/* rm4 */
			nodes[s].color = nodes[xp].color
			nodes[xp].color = Black
			nodes[nodes[s].right].color = Black
			tree.leftRotate(xp)
		} else {
			s := nodes[xp].left
			if /* rm1 */ nodes[s].color == Red {
				nodes[s].color = Black
				nodes[xp].color = Red
				tree.rightRotate(xp)
				s = nodes[xp].left
			}
			if /* rm2 */ nodes[nodes[s].right].color == Black && nodes[nodes[s].left].color == Black {
				nodes[s].color = Red
				x, xp = xp, nodes[xp].parent
				continue
			}
			if /* rm3 */ nodes[nodes[s].left].color == Black {
				nodes[nodes[s].right].color = Black
				nodes[s].color = Red
				tree.leftRotate(s)
				s = nodes[xp].left
			}
			/* rm4 */
			nodes[s].color = nodes[xp].color
			nodes[xp].color = Black
			nodes[nodes[s].left].color = Black
			tree.rightRotate(xp)
		}
		x = tree.root
	}
	if x != sentinel {
		nodes[x].color = Black
	}
}

// Height counts the nodes on the longest root to sentinel path.
func (tree *rbTree) Height() int {
	if tree.root == sentinel {
		return 0
	}
	nodes := tree.arena.nodes
	level := []uint32{tree.root}
	next := make([]uint32, 0, 2)
	height := 0
	for len(level) > 0 {
		height++
		next = next[:0]
		for _, x := range level {
			if l := nodes[x].left; l != sentinel {
				next = append(next, l)
			}
			if r := nodes[x].right; r != sentinel {
				next = append(next, r)
			}
		}
		level, next = next, level
	}
	return height
}

// Inorder traversal to implement the DFS.
func (tree *rbTree) Foreach(action func(idx int64, color RBColor, key int32) bool) {
	if tree.root == sentinel || action == nil {
		return
	}
	nodes := tree.arena.nodes
	stack := make([]uint32, 0, rbTreeMaxHeight)
	defer func() {
		clear(stack)
	}()

	for aux := tree.root; aux != sentinel; aux = nodes[aux].left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		if !action(idx, nodes[aux].color, nodes[aux].key) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = nodes[aux].right; aux != sentinel; aux = nodes[aux].left {
			stack = append(stack, aux)
		}
	}
}

// Clear releases every node. The arena keeps no reference to the old
// storage, so the released nodes are left to the GC.
func (tree *rbTree) Clear() {
	tree.arena.reset(rbTreeDefaultCapacity)
	tree.root = sentinel
	tree.count = 0
	tree.epoch++
}

type RBTreeOpt func(*rbTree)

func WithRBTreeDesc() RBTreeOpt {
	return func(tree *rbTree) {
		tree.isDesc = true
	}
}

func WithRBTreeRemoveBorrowPred() RBTreeOpt {
	return func(tree *rbTree) {
		tree.isRmBorrowPred = true
	}
}

func WithRBTreeCapacity(capacity int) RBTreeOpt {
	return func(tree *rbTree) {
		tree.arena = newRBArena(capacity)
	}
}

func NewRBTree(opts ...RBTreeOpt) RBTree {
	return newRBTree(opts...)
}

func newRBTree(opts ...RBTreeOpt) *rbTree {
	tree := &rbTree{
		root:           sentinel,
		isDesc:         false,
		isRmBorrowPred: false,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.arena == nil {
		tree.arena = newRBArena(rbTreeDefaultCapacity)
	}
	return tree
}
