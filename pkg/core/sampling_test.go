package core

import (
	"math"
	"math/rand"
	"testing"
)

// fixedSampler returns a repeating sequence of values
type fixedSampler struct {
	values []float64
	index  int
}

func (f *fixedSampler) Get1D() float64 {
	v := f.values[f.index%len(f.values)]
	f.index++
	return v
}

func TestRay_NewRayNormalizes(t *testing.T) {
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, -10))
	if math.Abs(ray.Direction.Length()-1) > 1e-12 {
		t.Errorf("Expected unit direction, got length %f", ray.Direction.Length())
	}
	p := ray.At(2)
	if p.Subtract(NewVec3(0, 0, -2)).Length() > 1e-12 {
		t.Errorf("Expected (0,0,-2), got %v", p)
	}
}

func TestRay_Reflect(t *testing.T) {
	ray := NewRay(NewVec3(-1, 1, 0), NewVec3(1, -1, 0))
	reflected := ray.Reflect(NewVec3(0, 0, 0), NewVec3(0, 1, 0))

	expected := NewVec3(1, 1, 0).Normalize()
	if reflected.Direction.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected %v, got %v", expected, reflected.Direction)
	}
}

func TestRay_Refract(t *testing.T) {
	tests := []struct {
		name      string
		direction Vec3
		normal    Vec3
		index     float64
		out       bool
		valid     bool
	}{
		{
			name:      "straight through entering glass",
			direction: NewVec3(0, -1, 0),
			normal:    NewVec3(0, 1, 0),
			index:     1.5,
			out:       false,
			valid:     true,
		},
		{
			name:      "oblique entering glass",
			direction: NewVec3(1, -1, 0),
			normal:    NewVec3(0, 1, 0),
			index:     1.5,
			out:       false,
			valid:     true,
		},
		{
			name:      "total internal reflection leaving glass",
			direction: NewVec3(1, -0.2, 0),
			normal:    NewVec3(0, 1, 0),
			index:     1.5,
			out:       true,
			valid:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := NewRay(NewVec3(0, 1, 0), tt.direction)
			refracted := ray.Refract(NewVec3(0, 0, 0), tt.normal, tt.index, tt.out)
			if refracted.IsValid() != tt.valid {
				t.Fatalf("Expected valid=%v, got direction %v", tt.valid, refracted.Direction)
			}
			if !tt.valid {
				return
			}
			// Snell: sin(theta1) = n * sin(theta2) when entering
			sin1 := ray.Direction.Cross(tt.normal).Length()
			sin2 := refracted.Direction.Cross(tt.normal).Length()
			if math.Abs(sin1-tt.index*sin2) > 1e-9 {
				t.Errorf("Snell's law violated: sin1=%f sin2=%f", sin1, sin2)
			}
		})
	}
}

func TestRay_DistributeStaysInCone(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(3)))
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, 1))
	const degrees = 20.0
	limit := math.Cos((degrees/2)*math.Pi/180) - 1e-9

	for i := 0; i < 200; i++ {
		jittered := ray.Distribute(degrees, sampler)
		if jittered.Origin != ray.Origin {
			t.Fatalf("Origin changed: %v", jittered.Origin)
		}
		if cos := jittered.Direction.Dot(ray.Direction); cos < limit {
			t.Fatalf("Direction %v outside cone (cos %f < %f)", jittered.Direction, cos, limit)
		}
	}

	if same := ray.Distribute(0, sampler); same != ray {
		t.Errorf("Zero spread should return the ray unchanged")
	}
}

func TestSampleDiscPoint(t *testing.T) {
	center := NewVec3(1, 2, 3)
	axis := NewVec3(0, 1, 0)

	// 0.999 maps to 100% of the radius
	p := SampleDiscPoint(center, axis, 2, &fixedSampler{values: []float64{0.999, 0.25}})
	offset := p.Subtract(center)
	if math.Abs(offset.Length()-2) > 1e-9 {
		t.Errorf("Expected offset length 2, got %f", offset.Length())
	}
	if math.Abs(offset.Dot(axis)) > 1e-9 {
		t.Errorf("Offset %v not perpendicular to axis", offset)
	}

	// 0.0 maps to 1% of the radius
	p = SampleDiscPoint(center, axis, 2, &fixedSampler{values: []float64{0, 0}})
	if math.Abs(p.Subtract(center).Length()-0.02) > 1e-9 {
		t.Errorf("Expected offset length 0.02, got %f", p.Subtract(center).Length())
	}
}
