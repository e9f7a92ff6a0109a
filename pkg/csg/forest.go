// Package csg composes primitives into boolean shape trees. Trees live in an
// arena (Forest) and are addressed by NodeID handles.
package csg

import (
	"slices"

	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// Op is the boolean operation of a composite node
type Op int

// Operation codes are persisted in scene descriptions
const (
	Add Op = iota
	Intersect
	Subtract
	Clip
	None
)

// String returns the expression symbol of the operation
func (o Op) String() string {
	switch o {
	case Add:
		return "|"
	case Intersect:
		return "&"
	case Subtract:
		return "-"
	case Clip:
		return "/"
	default:
		return "none"
	}
}

// NodeID addresses a node inside a Forest
type NodeID int

// NoNode marks a missing child or parent
const NoNode NodeID = -1

// Node is one shape of the forest: a primitive leaf or a composite
type Node struct {
	Name    string
	Enabled bool
	// Material overrides the material of every event the node emits
	Material *material.Material

	Op        Op
	Primitive geometry.Primitive // nil for composites
	Left      NodeID
	Right     NodeID
	Parent    NodeID

	removed bool
}

// IsComposite reports whether the node combines children
func (n *Node) IsComposite() bool {
	return n.Primitive == nil
}

// Forest is an arena of shape nodes plus the ordered list of top-level
// shapes. Removed slots are never reused; Clone compacts.
type Forest struct {
	nodes []Node
	roots []NodeID
}

// NewForest creates an empty forest
func NewForest() *Forest {
	return &Forest{}
}

// NewLeaf stores a detached primitive node
func (f *Forest) NewLeaf(name string, prim geometry.Primitive, mat *material.Material) NodeID {
	return f.push(Node{
		Name:      name,
		Enabled:   true,
		Material:  mat,
		Op:        None,
		Primitive: prim,
		Left:      NoNode,
		Right:     NoNode,
		Parent:    NoNode,
	})
}

// NewComposite stores a detached composite node. left and right must be
// detached nodes of this forest or NoNode.
func (f *Forest) NewComposite(name string, op Op, mat *material.Material, left, right NodeID) NodeID {
	id := f.push(Node{
		Name:     name,
		Enabled:  true,
		Material: mat,
		Op:       op,
		Left:     NoNode,
		Right:    NoNode,
		Parent:   NoNode,
	})
	f.SetChild(id, true, left)
	f.SetChild(id, false, right)
	return id
}

func (f *Forest) push(n Node) NodeID {
	f.nodes = append(f.nodes, n)
	return NodeID(len(f.nodes) - 1)
}

// Node returns the node for id, or nil if the handle is invalid or removed
func (f *Forest) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(f.nodes) || f.nodes[id].removed {
		return nil
	}
	return &f.nodes[id]
}

// Valid reports whether id addresses a live node
func (f *Forest) Valid(id NodeID) bool {
	return f.Node(id) != nil
}

// SetChild attaches child to the left or right slot of parent, detaching the
// previous occupant. child may be NoNode to clear the slot.
func (f *Forest) SetChild(parent NodeID, left bool, child NodeID) {
	p := f.Node(parent)
	if p == nil {
		return
	}

	slot := &p.Right
	if left {
		slot = &p.Left
	}
	if old := f.Node(*slot); old != nil {
		old.Parent = NoNode
	}

	*slot = NoNode
	if c := f.Node(child); c != nil {
		f.detach(child)
		c.Parent = parent
		*slot = child
	}
}

// detach unlinks a node from its parent slot or from the root list
func (f *Forest) detach(id NodeID) {
	n := f.Node(id)
	if n == nil {
		return
	}
	if p := f.Node(n.Parent); p != nil {
		if p.Left == id {
			p.Left = NoNode
		}
		if p.Right == id {
			p.Right = NoNode
		}
	}
	n.Parent = NoNode
	f.roots = slices.DeleteFunc(f.roots, func(r NodeID) bool { return r == id })
}

// AppendRoot makes a detached node a top-level shape
func (f *Forest) AppendRoot(id NodeID) {
	if !f.Valid(id) {
		return
	}
	f.detach(id)
	f.roots = append(f.roots, id)
}

// Roots returns the top-level shapes in insertion order
func (f *Forest) Roots() []NodeID {
	return slices.Clone(f.roots)
}

// IsRoot reports whether id is a top-level shape
func (f *Forest) IsRoot(id NodeID) bool {
	return slices.Contains(f.roots, id)
}

// Len returns the number of live nodes
func (f *Forest) Len() int {
	count := 0
	for i := range f.nodes {
		if !f.nodes[i].removed {
			count++
		}
	}
	return count
}

// Children returns the child handles of a composite, skipping empty slots
func (f *Forest) Children(id NodeID) []NodeID {
	n := f.Node(id)
	if n == nil {
		return nil
	}
	var children []NodeID
	if f.Valid(n.Left) {
		children = append(children, n.Left)
	}
	if f.Valid(n.Right) {
		children = append(children, n.Right)
	}
	return children
}

// Walk visits the subtree rooted at id in pre-order. Returning false from
// visit stops the walk.
func (f *Forest) Walk(id NodeID, visit func(NodeID, *Node) bool) bool {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := f.Node(cur)
		if n == nil {
			continue
		}
		if !visit(cur, n) {
			return false
		}
		// Push right first so the left subtree is visited first
		if n.Right != NoNode {
			stack = append(stack, n.Right)
		}
		if n.Left != NoNode {
			stack = append(stack, n.Left)
		}
	}
	return true
}

// WalkAll visits every top-level tree in order
func (f *Forest) WalkAll(visit func(NodeID, *Node) bool) {
	for _, root := range f.roots {
		if !f.Walk(root, visit) {
			return
		}
	}
}

// Find returns the first node named name across all top-level trees
func (f *Forest) Find(name string) (NodeID, bool) {
	found := NoNode
	f.WalkAll(func(id NodeID, n *Node) bool {
		if n.Name == name {
			found = id
			return false
		}
		return true
	})
	return found, found != NoNode
}

// Root returns the top-level ancestor of id
func (f *Forest) Root(id NodeID) NodeID {
	for {
		n := f.Node(id)
		if n == nil || n.Parent == NoNode {
			return id
		}
		id = n.Parent
	}
}

// CopySubtree deep-copies the subtree rooted at id in src into f and returns
// the new detached root. Primitives are cloned; material references are kept.
func (f *Forest) CopySubtree(src *Forest, id NodeID) NodeID {
	n := src.Node(id)
	if n == nil {
		return NoNode
	}

	if !n.IsComposite() {
		leaf := f.NewLeaf(n.Name, n.Primitive.Clone(), n.Material)
		f.nodes[leaf].Enabled = n.Enabled
		return leaf
	}

	// Read the child handles before f may grow (src and f can be the same)
	name, op, mat, enabled := n.Name, n.Op, n.Material, n.Enabled
	srcLeft, srcRight := n.Left, n.Right

	left := f.CopySubtree(src, srcLeft)
	right := f.CopySubtree(src, srcRight)
	copied := f.NewComposite(name, op, mat, left, right)
	f.nodes[copied].Enabled = enabled
	return copied
}

// Clone returns a compacted deep copy of the forest
func (f *Forest) Clone() *Forest {
	clone := NewForest()
	for _, root := range f.roots {
		clone.AppendRoot(clone.CopySubtree(f, root))
	}
	return clone
}
