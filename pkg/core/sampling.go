package core

import (
	"math"
	"math/rand"
)

// Sampler provides random numbers for distributed ray effects.
// Can be swapped out for deterministic testing.
type Sampler interface {
	Get1D() float64
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// SampleDiscPoint jitters center within a disc of the given radius that is
// perpendicular to axis. The offset length is a whole percentage of the
// radius between 1% and 100%, and the offset angle is uniform.
func SampleDiscPoint(center, axis Vec3, radius float64, sampler Sampler) Vec3 {
	percent := 1 + math.Floor(sampler.Get1D()*100)
	if percent > 100 {
		percent = 100
	}
	offset := percent * 0.01 * radius

	perp := Perpendicular(axis).Normalize()
	angle := sampler.Get1D() * 360
	perp = NewRotation(angle, axis).TransformDirection(perp).Normalize()

	return center.Add(perp.Multiply(offset))
}
