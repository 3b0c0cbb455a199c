package tree

var _ RBNode = rbNodeRef{}

// rbNodeRef is the comparable handle behind RBNode. Two handles are
// equal iff they name the same slot of the same tree in the same epoch.
type rbNodeRef struct {
	tree  *rbTree
	idx   uint32
	epoch uint64
}

func (ref rbNodeRef) Key() int32 {
	return ref.tree.nodeOf(ref).key
}

func (ref rbNodeRef) Color() RBColor {
	return ref.tree.nodeOf(ref).color
}

func (ref rbNodeRef) Left() RBNode {
	return ref.tree.ref(ref.tree.nodeOf(ref).left)
}

func (ref rbNodeRef) Right() RBNode {
	return ref.tree.ref(ref.tree.nodeOf(ref).right)
}

func (ref rbNodeRef) Parent() RBNode {
	return ref.tree.ref(ref.tree.nodeOf(ref).parent)
}

func (ref rbNodeRef) Direction() RBDirection {
	return ref.tree.direction(ref.tree.deref(ref))
}

// ref wraps a slot into a handle, the sentinel becomes nil.
func (tree *rbTree) ref(idx uint32) RBNode {
	if idx == sentinel {
		return nil
	}
	return rbNodeRef{
		tree:  tree,
		idx:   idx,
		epoch: tree.epoch,
	}
}

// deref validates a handle and returns its slot.
// A nil, foreign or stale handle is a programming error.
func (tree *rbTree) deref(node RBNode) uint32 {
	if node == nil {
		panic( /* debug assertion */ "[rbtree] nil node handle")
	}
	ref, ok := node.(rbNodeRef)
	if !ok || ref.tree != tree {
		panic( /* debug assertion */ "[rbtree] node handle does not belong to this tree")
	}
	if ref.epoch != tree.epoch {
		panic( /* debug assertion */ "[rbtree] stale node handle, the tree has been changed by remove or clear")
	}
	if !tree.arena.isLive(ref.idx) {
		panic( /* debug assertion */ "[rbtree] node handle points to a released slot")
	}
	return ref.idx
}

func (tree *rbTree) nodeOf(ref rbNodeRef) *rbNode {
	if ref.tree == nil {
		panic( /* debug assertion */ "[rbtree] zero node handle")
	}
	return &tree.arena.nodes[tree.deref(ref)]
}
