package tree

import "errors"

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(unknown)"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(unknown)"
}

var (
	ErrRBTreeEmpty             = errors.New("[rbtree] empty element to remove")
	ErrRBTreeKeyNotFound       = errors.New("[rbtree] key not found")
	ErrRBTreeOrderViolation    = errors.New("[rbtree] order violation")
	ErrRBTreeParentViolation   = errors.New("[rbtree] parent link violation")
	ErrRBTreeRedViolation      = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation    = errors.New("[rbtree] black violation")
	ErrRBTreeRootViolation     = errors.New("[rbtree] root violation")
	ErrRBTreeSentinelViolation = errors.New("[rbtree] sentinel violation")
	ErrRBTreeSizeViolation     = errors.New("[rbtree] size violation")
)

// RBNode is a handle to a live node of one tree.
//
// A handle stays valid across Insert, but every Remove, RemoveMin,
// RemoveMax and Clear invalidates all handles taken before it: the
// removal may copy a successor key into a surviving slot, so the key
// behind an old handle is not stable. Dereferencing an invalidated or
// foreign handle panics.
//
// Left, Right and Parent return nil for the sentinel.
type RBNode interface {
	Key() int32
	Color() RBColor
	Left() RBNode
	Right() RBNode
	Parent() RBNode
	Direction() RBDirection
}

// RBTreeStats are lifetime counters, Clear does not reset them.
type RBTreeStats struct {
	Inserts      uint64
	Removes      uint64
	Rotations    uint64
	InsertFixups uint64
	RemoveFixups uint64
}

// RBTree is an ordered multiset of int32 keys.
// It is not safe for concurrent use.
type RBTree interface {
	Len() int64
	Height() int
	Root() RBNode
	Insert(key int32)
	Remove(key int32) error
	RemoveMin() (int32, error)
	RemoveMax() (int32, error)
	Contains(key int32) bool
	Search(key int32) RBNode
	Min() RBNode
	Max() RBNode
	Minimum(node RBNode) RBNode
	Maximum(node RBNode) RBNode
	Successor(node RBNode) RBNode
	Predecessor(node RBNode) RBNode
	Foreach(action func(idx int64, color RBColor, key int32) bool)
	Clear()
	IsValid() bool
	Validate() error
	Stats() RBTreeStats
}
