package csg

import (
	"slices"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// primitives visits every primitive below id
func (f *Forest) primitives(id NodeID, visit func(geometry.Primitive)) {
	f.Walk(id, func(_ NodeID, n *Node) bool {
		if n.Primitive != nil {
			visit(n.Primitive)
		}
		return true
	})
}

// Translate moves every primitive of the subtree
func (f *Forest) Translate(id NodeID, offset core.Vec3) {
	f.primitives(id, func(p geometry.Primitive) { p.Translate(offset) })
}

// Rotate turns every primitive of the subtree around an axis through the origin
func (f *Forest) Rotate(id NodeID, degrees float64, axis core.Vec3) {
	f.primitives(id, func(p geometry.Primitive) { p.Rotate(degrees, axis) })
}

// Scale stretches every primitive of the subtree about the origin
func (f *Forest) Scale(id NodeID, factors core.Vec3) {
	f.primitives(id, func(p geometry.Primitive) { p.Scale(factors) })
}

// SetEnabled sets the enabled flag of the subtree
func (f *Forest) SetEnabled(id NodeID, enabled bool) {
	f.Walk(id, func(_ NodeID, n *Node) bool {
		n.Enabled = enabled
		return true
	})
}

// ReplaceMaterial rewrites every reference to old, on nodes and on mesh
// triangles. A nil replacement clears the references.
func (f *Forest) ReplaceMaterial(old, replacement *material.Material) {
	for i := range f.nodes {
		n := &f.nodes[i]
		if n.removed {
			continue
		}
		if n.Material == old {
			n.Material = replacement
		}
		if holder, ok := n.Primitive.(geometry.MaterialHolder); ok {
			holder.ReplaceMaterial(old, replacement)
		}
	}
}

// RemapMaterials rewrites every material reference through mapping.
// References missing from the mapping are cleared.
func (f *Forest) RemapMaterials(mapping map[*material.Material]*material.Material) {
	for i := range f.nodes {
		n := &f.nodes[i]
		if n.removed {
			continue
		}
		if n.Material != nil {
			n.Material = mapping[n.Material]
		}
		if holder, ok := n.Primitive.(geometry.MaterialHolder); ok {
			holder.RemapMaterials(mapping)
		}
	}
}

// remove tombstones the subtree rooted at id
func (f *Forest) remove(id NodeID) {
	var doomed []NodeID
	f.Walk(id, func(cur NodeID, _ *Node) bool {
		doomed = append(doomed, cur)
		return true
	})
	for _, d := range doomed {
		f.nodes[d].removed = true
		f.nodes[d].Primitive = nil
	}
}

// Replace puts a detached node into the position held by old (a root slot
// or a child slot) and removes old's subtree. It returns false when old is
// not a live node.
func (f *Forest) Replace(old, replacement NodeID) bool {
	n := f.Node(old)
	if n == nil || !f.Valid(replacement) || old == replacement {
		return false
	}
	f.detach(replacement)

	if idx := slices.Index(f.roots, old); idx >= 0 {
		f.roots[idx] = replacement
		f.nodes[replacement].Parent = NoNode
		f.remove(old)
		return true
	}

	parent := n.Parent
	p := f.Node(parent)
	if p == nil {
		return false
	}
	left := p.Left == old
	f.SetChild(parent, left, replacement)
	f.remove(old)
	return true
}

// Erase removes the subtree at id. A top-level shape leaves the root list;
// a child is removed together with its parent, and the sibling is promoted
// into the parent's position.
func (f *Forest) Erase(id NodeID) bool {
	n := f.Node(id)
	if n == nil {
		return false
	}

	if idx := slices.Index(f.roots, id); idx >= 0 {
		f.roots = slices.Delete(f.roots, idx, idx+1)
		f.remove(id)
		return true
	}

	parent := n.Parent
	p := f.Node(parent)
	if p == nil {
		// Detached node
		f.remove(id)
		return true
	}

	sibling := p.Right
	if p.Right == id {
		sibling = p.Left
	}

	f.detach(id)
	f.remove(id)

	if !f.Valid(sibling) {
		// Nothing to promote: the parent becomes empty and goes too
		return f.Erase(parent)
	}

	f.detach(sibling)
	return f.Replace(parent, sibling)
}
