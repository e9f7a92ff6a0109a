package geometry

import (
	"cmp"
	"slices"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// Kind tags a ray/surface crossing
type Kind int

const (
	None  Kind = iota // No intersection
	Entry             // Ray enters the solid
	Exit              // Ray leaves the solid
)

// String returns a readable name for the kind
func (k Kind) String() string {
	switch k {
	case Entry:
		return "Entry"
	case Exit:
		return "Exit"
	default:
		return "None"
	}
}

// Flip swaps Entry and Exit
func (k Kind) Flip() Kind {
	switch k {
	case Entry:
		return Exit
	case Exit:
		return Entry
	default:
		return None
	}
}

// Intersection is a single crossing of a ray with a surface
type Intersection struct {
	Kind   Kind
	T      float64   // Distance along the ray
	Point  core.Vec3 // World-space hit point
	Normal core.Vec3 // Unit normal facing the ray origin
	// Material is borrowed from the scene; nil means the surface is invisible
	Material *material.Material
}

// Hit reports whether the intersection is a real crossing
func (i Intersection) Hit() bool {
	return i.Kind != None
}

// Compare orders intersections by distance; at equal distance Entry comes
// before Exit.
func Compare(a, b Intersection) int {
	if c := cmp.Compare(a.T, b.T); c != 0 {
		return c
	}
	return cmp.Compare(kindRank(a.Kind), kindRank(b.Kind))
}

// Less reports whether a sorts before b
func Less(a, b Intersection) bool {
	return Compare(a, b) < 0
}

// Sort orders a sequence in place
func Sort(intersections []Intersection) {
	slices.SortStableFunc(intersections, Compare)
}

// coincidentEpsilon is the distance below which two crossings of the same
// kind count as one
const coincidentEpsilon = 1e-9

// Dedup collapses runs of same-kind crossings at the same distance in a
// sorted sequence, as produced when a ray passes through an edge or vertex
// shared by several triangles. The first crossing of each run is kept.
func Dedup(intersections []Intersection) []Intersection {
	if len(intersections) < 2 {
		return intersections
	}
	out := intersections[:1]
	for _, hit := range intersections[1:] {
		last := out[len(out)-1]
		if hit.Kind == last.Kind && hit.T-last.T < coincidentEpsilon {
			continue
		}
		out = append(out, hit)
	}
	return out
}

// Nearest returns the first intersection of a sequence, or a miss
func Nearest(intersections []Intersection) Intersection {
	if len(intersections) == 0 {
		return Intersection{}
	}
	return intersections[0]
}

// WithMaterial returns the sequence with every material replaced by m.
// A nil m leaves the sequence unchanged.
func WithMaterial(intersections []Intersection, m *material.Material) []Intersection {
	if m == nil {
		return intersections
	}
	for i := range intersections {
		intersections[i].Material = m
	}
	return intersections
}

func kindRank(k Kind) int {
	if k == Entry {
		return 0
	}
	return 1
}

// newHit builds an intersection whose normal faces against the ray.
// A normal pointing along the ray marks an Exit.
func newHit(ray core.Ray, t float64, outward core.Vec3) Intersection {
	normal := outward.Normalize()
	kind := Entry
	if ray.Direction.Dot(normal) > 0 {
		kind = Exit
		normal = normal.Negate()
	}
	return Intersection{
		Kind:   kind,
		T:      t,
		Point:  ray.At(t),
		Normal: normal,
	}
}

// boundaryPair expands a single surface crossing into the Entry/Exit pair
// used by boolean composition of one-sided surfaces.
func boundaryPair(hit Intersection) []Intersection {
	entry := hit
	entry.Kind = Entry
	exit := hit
	exit.Kind = Exit
	return []Intersection{entry, exit}
}
