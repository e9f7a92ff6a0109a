package csg

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
)

// Intersections returns the sorted Entry/Exit sequence of the subtree at id.
// A node material overrides the materials of everything the node emits.
func (f *Forest) Intersections(id NodeID, ray core.Ray) []geometry.Intersection {
	n := f.Node(id)
	if n == nil {
		return nil
	}

	if !n.IsComposite() {
		return geometry.WithMaterial(n.Primitive.Intersections(ray), n.Material)
	}

	var seq []geometry.Intersection
	switch n.Op {
	case Add:
		seq = union(f.Intersections(n.Left, ray), f.Intersections(n.Right, ray))
	case Intersect:
		seq = intersection(f.Intersections(n.Left, ray), f.Intersections(n.Right, ray))
	case Subtract:
		seq = difference(f.Intersections(n.Left, ray), f.Intersections(n.Right, ray))
	case Clip:
		seq = f.clip(f.Intersections(n.Left, ray), n, ray)
	}

	return geometry.WithMaterial(seq, n.Material)
}

// Nearest returns the closest hit of the subtree at id. Composites take the
// first event in front of the ray origin.
func (f *Forest) Nearest(id NodeID, ray core.Ray) geometry.Intersection {
	n := f.Node(id)
	if n == nil {
		return geometry.Intersection{}
	}

	if !n.IsComposite() {
		hit := n.Primitive.Intersect(ray)
		if hit.Hit() && n.Material != nil {
			hit.Material = n.Material
		}
		return hit
	}

	for _, event := range f.Intersections(id, ray) {
		if event.T > 0 {
			return event
		}
	}
	return geometry.Intersection{}
}

// ClipsPoint reports whether the solid of the subtree at id contains point
func (f *Forest) ClipsPoint(id NodeID, point core.Vec3) bool {
	n := f.Node(id)
	if n == nil {
		return false
	}

	if !n.IsComposite() {
		return n.Primitive.ClipsPoint(point)
	}

	switch n.Op {
	case Add:
		return f.ClipsPoint(n.Left, point) || f.ClipsPoint(n.Right, point)
	case Intersect:
		return f.ClipsPoint(n.Left, point) && f.ClipsPoint(n.Right, point)
	case Subtract, Clip:
		return f.ClipsPoint(n.Left, point) && !f.ClipsPoint(n.Right, point)
	default:
		return false
	}
}

// NearestInScene returns the closest hit across the enabled top-level shapes
func (f *Forest) NearestInScene(ray core.Ray) geometry.Intersection {
	var nearest geometry.Intersection
	for _, root := range f.roots {
		n := f.Node(root)
		if n == nil || !n.Enabled {
			continue
		}
		hit := f.Nearest(root, ray)
		if hit.Hit() && hit.Material != nil && (!nearest.Hit() || hit.T < nearest.T) {
			nearest = hit
		}
	}
	return nearest
}
