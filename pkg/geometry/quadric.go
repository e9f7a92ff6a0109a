package geometry

import (
	"math"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

// Quadric is the implicit second degree surface
//
//	a x² + b y² + c z² + d xy + e xz + f yz + g x + h y + i z + j = 0
//
// Points where the left side is negative are inside the solid.
type Quadric struct {
	A, B, C, D, E, F, G, H, I, J float64
}

// NewQuadric creates a quadric from its ten coefficients
func NewQuadric(a, b, c, d, e, f, g, h, i, j float64) *Quadric {
	return &Quadric{A: a, B: b, C: c, D: d, E: e, F: f, G: g, H: h, I: i, J: j}
}

// NewSphere creates the quadric of a sphere
func NewSphere(center core.Vec3, radius float64) *Quadric {
	q := NewQuadric(1, 1, 1, 0, 0, 0, 0, 0, 0, -radius*radius)
	q.Translate(center)
	return q
}

// NewEllipsoid creates an axis-aligned ellipsoid with the given semi-axes
func NewEllipsoid(center, radii core.Vec3) *Quadric {
	q := NewQuadric(1, 1, 1, 0, 0, 0, 0, 0, 0, -1)
	q.Scale(radii)
	q.Translate(center)
	return q
}

// NewCylinder creates an infinite cylinder of the given radius whose axis is
// parallel to Y and passes through center
func NewCylinder(center core.Vec3, radius float64) *Quadric {
	q := NewQuadric(1, 0, 1, 0, 0, 0, 0, 0, 0, -radius*radius)
	q.Translate(center)
	return q
}

// NewCone creates an infinite double cone along Y with its apex at apex.
// slope is the radius gained per unit of height.
func NewCone(apex core.Vec3, slope float64) *Quadric {
	q := NewQuadric(1, -slope*slope, 1, 0, 0, 0, 0, 0, 0, 0)
	q.Translate(apex)
	return q
}

// Value evaluates the implicit function at a point
func (q *Quadric) Value(p core.Vec3) float64 {
	return q.A*p.X*p.X + q.B*p.Y*p.Y + q.C*p.Z*p.Z +
		q.D*p.X*p.Y + q.E*p.X*p.Z + q.F*p.Y*p.Z +
		q.G*p.X + q.H*p.Y + q.I*p.Z + q.J
}

// Gradient returns the (unnormalized) outward normal at a point
func (q *Quadric) Gradient(p core.Vec3) core.Vec3 {
	return core.Vec3{
		X: 2*q.A*p.X + q.D*p.Y + q.E*p.Z + q.G,
		Y: 2*q.B*p.Y + q.D*p.X + q.F*p.Z + q.H,
		Z: 2*q.C*p.Z + q.E*p.X + q.F*p.Y + q.I,
	}
}

// coefficients returns the quadratic in t obtained by substituting the ray
func (q *Quadric) coefficients(ray core.Ray) (aa, bb, cc float64) {
	o := ray.Origin
	d := ray.Direction

	aa = q.A*d.X*d.X + q.B*d.Y*d.Y + q.C*d.Z*d.Z +
		q.D*d.X*d.Y + q.E*d.X*d.Z + q.F*d.Y*d.Z

	bb = 2*q.A*o.X*d.X + 2*q.B*o.Y*d.Y + 2*q.C*o.Z*d.Z +
		q.D*(o.X*d.Y+o.Y*d.X) +
		q.E*(o.X*d.Z+o.Z*d.X) +
		q.F*(o.Y*d.Z+o.Z*d.Y) +
		q.G*d.X + q.H*d.Y + q.I*d.Z

	cc = q.Value(o)
	return aa, bb, cc
}

// roots returns the positive ray parameters where the ray crosses the
// surface, in ascending order. linear reports the degenerate single root.
func (q *Quadric) roots(ray core.Ray) (ts []float64, linear bool) {
	aa, bb, cc := q.coefficients(ray)

	if aa == 0 {
		if bb == 0 {
			return nil, true
		}
		t := -cc / bb
		if t > 0 {
			return []float64{t}, true
		}
		return nil, true
	}

	discriminant := bb*bb - 4*aa*cc
	if discriminant <= 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)
	t1 := (-bb - sqrtD) / (2 * aa)
	t2 := (-bb + sqrtD) / (2 * aa)
	if t1 > t2 {
		t1, t2 = t2, t1
	}

	if t1 > 0 {
		ts = append(ts, t1)
	}
	if t2 > 0 {
		ts = append(ts, t2)
	}
	return ts, false
}

// Intersect returns the nearest crossing in front of the ray origin
func (q *Quadric) Intersect(ray core.Ray) Intersection {
	ts, _ := q.roots(ray)
	if len(ts) == 0 {
		return Intersection{}
	}
	return newHit(ray, ts[0], q.Gradient(ray.At(ts[0])))
}

// Intersections returns the ordered crossings. The degenerate linear case
// yields an Entry/Exit pair at the same distance.
func (q *Quadric) Intersections(ray core.Ray) []Intersection {
	ts, linear := q.roots(ray)
	if len(ts) == 0 {
		return nil
	}

	if linear {
		return boundaryPair(newHit(ray, ts[0], q.Gradient(ray.At(ts[0]))))
	}

	result := make([]Intersection, 0, len(ts))
	for _, t := range ts {
		result = append(result, newHit(ray, t, q.Gradient(ray.At(t))))
	}
	return result
}

// ClipsPoint reports whether the point is on or inside the surface
func (q *Quadric) ClipsPoint(point core.Vec3) bool {
	return q.Value(point) <= 0
}

// Translate moves the surface by offset
func (q *Quadric) Translate(offset core.Vec3) {
	tx, ty, tz := offset.X, offset.Y, offset.Z

	j := q.A*tx*tx + q.B*ty*ty + q.C*tz*tz +
		q.D*tx*ty + q.E*tx*tz + q.F*ty*tz -
		q.G*tx - q.H*ty - q.I*tz + q.J

	g := -2*q.A*tx - q.D*ty - q.E*tz + q.G
	h := -2*q.B*ty - q.D*tx - q.F*tz + q.H
	i := -2*q.C*tz - q.E*tx - q.F*ty + q.I

	q.G, q.H, q.I, q.J = g, h, i, j
}

// Rotate turns the surface by degrees around axis (through the origin).
// The coefficients are rewritten by substituting the inverse rotation.
func (q *Quadric) Rotate(degrees float64, axis core.Vec3) {
	m := core.NewRotation(-degrees, axis)
	k, l, mm := m[0][0], m[0][1], m[0][2]
	n, o, p := m[1][0], m[1][1], m[1][2]
	qq, r, s := m[2][0], m[2][1], m[2][2]

	a, b, c, d, e, f := q.A, q.B, q.C, q.D, q.E, q.F
	g, h, i := q.G, q.H, q.I

	q.A = a*k*k + b*n*n + c*qq*qq + d*k*n + e*k*qq + f*n*qq
	q.B = a*l*l + b*o*o + c*r*r + d*l*o + e*l*r + f*o*r
	q.C = a*mm*mm + b*p*p + c*s*s + d*mm*p + e*mm*s + f*p*s

	q.D = 2*a*k*l + 2*b*n*o + 2*c*qq*r +
		d*k*o + d*l*n + e*k*r + e*l*qq + f*n*r + f*o*qq
	q.E = 2*a*k*mm + 2*b*n*p + 2*c*qq*s +
		d*k*p + d*mm*n + e*k*s + e*mm*qq + f*n*s + f*p*qq
	q.F = 2*a*l*mm + 2*b*o*p + 2*c*r*s +
		d*l*p + d*mm*o + e*l*s + e*mm*r + f*o*s + f*p*r

	q.G = g*k + h*n + i*qq
	q.H = g*l + h*o + i*r
	q.I = g*mm + h*p + i*s
}

// Scale stretches the surface along each axis (about the origin)
func (q *Quadric) Scale(factors core.Vec3) {
	sx, sy, sz := factors.X, factors.Y, factors.Z
	if sx == 0 || sy == 0 || sz == 0 {
		return
	}

	q.A /= sx * sx
	q.B /= sy * sy
	q.C /= sz * sz
	q.D /= sx * sy
	q.E /= sx * sz
	q.F /= sy * sz
	q.G /= sx
	q.H /= sy
	q.I /= sz
}

// Clone returns a copy of the quadric
func (q *Quadric) Clone() Primitive {
	clone := *q
	return &clone
}

func (q *Quadric) primitive() {}
