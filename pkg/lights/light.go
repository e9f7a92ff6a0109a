package lights

import "github.com/df07/go-csg-raytracer/pkg/core"

// Kind distinguishes the light variants
type Kind int

const (
	KindPoint  Kind = iota // Single shadow ray, hard shadows
	KindSphere             // Jittered shadow rays over a disc, soft shadows
)

// String returns the description label of the kind
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "PointLight"
	case KindSphere:
		return "SphereLight"
	default:
		return "UnknownLight"
	}
}

// Light is a named, positioned and colored light source
type Light struct {
	Name     string
	Kind     Kind
	Position core.Vec3
	Color    core.Color
	Radius   float64 // Sphere lights only
	Enabled  bool
}

// NewPointLight creates an enabled point light
func NewPointLight(name string, position core.Vec3, color core.Color) *Light {
	return &Light{
		Name:     name,
		Kind:     KindPoint,
		Position: position,
		Color:    color,
		Enabled:  true,
	}
}

// NewSphereLight creates an enabled spherical area light
func NewSphereLight(name string, position core.Vec3, color core.Color, radius float64) *Light {
	return &Light{
		Name:     name,
		Kind:     KindSphere,
		Position: position,
		Color:    color,
		Radius:   radius,
		Enabled:  true,
	}
}

// ShadowRay is a ray from a surface point toward a light together with the
// distance to the sampled light position. Occluders closer than Distance
// block the light.
type ShadowRay struct {
	Ray      core.Ray
	Distance float64
}

// ShadowRay returns a ray from point toward the light. When distributed is
// set, sphere lights jitter the target across a disc of their radius facing
// the point; point lights always aim at their center.
func (l *Light) ShadowRay(point core.Vec3, distributed bool, sampler core.Sampler) ShadowRay {
	target := l.Position
	if distributed && l.Kind == KindSphere && l.Radius > 0 {
		target = core.SampleDiscPoint(l.Position, l.Position.Subtract(point), l.Radius, sampler)
	}

	toLight := target.Subtract(point)
	return ShadowRay{
		Ray:      core.NewRay(point, toLight),
		Distance: toLight.Length(),
	}
}

// Clone returns an independent copy of the light
func (l *Light) Clone() *Light {
	clone := *l
	return &clone
}
