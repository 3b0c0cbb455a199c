package tree

import "math"

// Slot 0 of every arena is the sentinel. It is black, all of its links
// point to itself and the tree never writes it.
const sentinel uint32 = 0

const rbArenaMaxSlots = math.MaxUint32

type rbNode struct {
	key    int32
	color  RBColor
	inUse  bool
	left   uint32
	right  uint32
	parent uint32
}

// rbArena owns the node storage of one tree. Freed slots are kept on a
// LIFO stack and handed out again before the storage grows.
type rbArena struct {
	nodes []rbNode
	freed []uint32
}

func newRBArena(capacity int) *rbArena {
	if capacity < 0 {
		capacity = 0
	}
	a := &rbArena{}
	a.reset(capacity)
	return a
}

func (a *rbArena) reset(capacity int) {
	a.nodes = make([]rbNode, 1, capacity+1)
	a.nodes[sentinel] = rbNode{color: Black}
	a.freed = nil
}

// used returns the number of live slots, the sentinel excluded.
func (a *rbArena) used() int {
	return len(a.nodes) - 1 - len(a.freed)
}

// malloc returns a red node with all links on the sentinel.
// Growing the storage may move it, so callers must not keep *rbNode
// across a malloc.
func (a *rbArena) malloc(key int32) uint32 {
	var idx uint32
	if n := len(a.freed); n > 0 {
		idx = a.freed[n-1]
		a.freed = a.freed[:n-1]
	} else {
		if uint64(len(a.nodes)) >= rbArenaMaxSlots {
			panic( /* debug assertion */ "[rbtree] arena reached the uint32 slot limit")
		}
		idx = uint32(len(a.nodes))
		a.nodes = append(a.nodes, rbNode{})
	}
	a.nodes[idx] = rbNode{
		key:    key,
		color:  Red,
		inUse:  true,
		left:   sentinel,
		right:  sentinel,
		parent: sentinel,
	}
	return idx
}

func (a *rbArena) free(idx uint32) {
	if idx == sentinel {
		panic( /* debug assertion */ "[rbtree] sentinel slot cannot be freed")
	}
	if int(idx) >= len(a.nodes) || !a.nodes[idx].inUse {
		panic( /* debug assertion */ "[rbtree] free an unused arena slot")
	}
	a.nodes[idx] = rbNode{}
	a.freed = append(a.freed, idx)
}

func (a *rbArena) isLive(idx uint32) bool {
	return idx != sentinel && int(idx) < len(a.nodes) && a.nodes[idx].inUse
}
