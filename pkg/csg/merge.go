package csg

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
)

// startsInside reports whether a ray begins inside the solid whose sequence
// is seq. A sequence that opens with an Exit started inside.
func startsInside(seq []geometry.Intersection) bool {
	return len(seq) > 0 && seq[0].Kind == geometry.Exit
}

// takeLeft reports whether the merge consumes the left event next
func takeLeft(left, right []geometry.Intersection, li, ri int) bool {
	if ri >= len(right) {
		return true
	}
	return li < len(left) && geometry.Less(left[li], right[ri])
}

// union keeps the crossings of each operand that lie outside the other
func union(left, right []geometry.Intersection) []geometry.Intersection {
	if len(left) == 0 {
		return right
	}
	if len(right) == 0 {
		return left
	}

	var out []geometry.Intersection
	leftIn, rightIn := startsInside(left), startsInside(right)
	li, ri := 0, 0

	for li < len(left) || ri < len(right) {
		if takeLeft(left, right, li, ri) {
			if !rightIn && left[li].Material != nil {
				out = append(out, left[li])
			}
			leftIn = !leftIn
			li++
		} else {
			if !leftIn && right[ri].Material != nil {
				out = append(out, right[ri])
			}
			rightIn = !rightIn
			ri++
		}
	}
	return out
}

// intersection keeps the crossings of each operand that lie inside the other
func intersection(left, right []geometry.Intersection) []geometry.Intersection {
	if len(left) == 0 || len(right) == 0 {
		return nil
	}

	var out []geometry.Intersection
	leftIn, rightIn := startsInside(left), startsInside(right)
	li, ri := 0, 0

	for li < len(left) || ri < len(right) {
		if takeLeft(left, right, li, ri) {
			if rightIn && left[li].Material != nil {
				out = append(out, left[li])
			}
			leftIn = !leftIn
			li++
		} else {
			if leftIn && right[ri].Material != nil {
				out = append(out, right[ri])
			}
			rightIn = !rightIn
			ri++
		}
	}
	return out
}

// difference keeps left crossings outside right and right crossings inside
// left, the latter with their kind flipped. Coincident crossings cancel.
func difference(left, right []geometry.Intersection) []geometry.Intersection {
	if len(left) == 0 || len(right) == 0 {
		return left
	}

	var out []geometry.Intersection
	leftIn, rightIn := startsInside(left), startsInside(right)
	li, ri := 0, 0

	for li < len(left) || ri < len(right) {
		switch {
		case li < len(left) && ri < len(right) && left[li].T == right[ri].T:
			leftIn = !leftIn
			li++
			rightIn = !rightIn
			ri++

		case takeLeft(left, right, li, ri):
			if !rightIn && left[li].Material != nil {
				out = append(out, left[li])
			}
			leftIn = !leftIn
			li++

		default:
			if leftIn && right[ri].Material != nil {
				flipped := right[ri]
				flipped.Kind = flipped.Kind.Flip()
				out = append(out, flipped)
			}
			rightIn = !rightIn
			ri++
		}
	}
	return out
}

// clip removes the left events whose points the clipping node contains. When
// the clip cut some events but kept others, the clipping surface itself is
// added so the cut face is closed.
func (f *Forest) clip(left []geometry.Intersection, n *Node, ray core.Ray) []geometry.Intersection {
	if !f.Valid(n.Right) {
		return left
	}

	out := make([]geometry.Intersection, 0, len(left)+1)
	cut := false
	for _, event := range left {
		if f.ClipsPoint(n.Right, ray.At(event.T)) {
			cut = true
			continue
		}
		out = append(out, event)
	}

	if cut && len(out) > 0 {
		face := f.Nearest(n.Right, ray)
		if n.Material != nil {
			face.Material = n.Material
		}
		if face.Hit() && face.Material != nil {
			out = append(out, face)
		}
	}

	geometry.Sort(out)
	return out
}
