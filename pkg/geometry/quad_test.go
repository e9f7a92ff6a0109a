package geometry

import (
	"testing"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

func TestQuad_Intersect_Extent(t *testing.T) {
	// Unit square in the z=0 plane facing +Z
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 0))

	tests := []struct {
		name     string
		x, y     float64
		expected bool
	}{
		{"center", 0.5, 0.5, true},
		{"corner", 0, 0, true},
		{"far corner", 1, 1, true},
		{"left of quad", -0.1, 0.5, false},
		{"above quad", 0.5, 1.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(tt.x, tt.y, 5), core.NewVec3(0, 0, -1))
			if got := quad.Intersect(ray).Hit(); got != tt.expected {
				t.Errorf("Expected hit=%v, got %v", tt.expected, got)
			}
		})
	}
}

func TestQuad_NegativeDimensions(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(-1, -1, 0))

	if !quad.Intersect(core.NewRay(core.NewVec3(-0.5, -0.5, 5), core.NewVec3(0, 0, -1))).Hit() {
		t.Error("Expected hit inside negative extent")
	}
	if quad.Intersect(core.NewRay(core.NewVec3(0.5, 0.5, 5), core.NewVec3(0, 0, -1))).Hit() {
		t.Error("Expected miss outside negative extent")
	}
}

func TestQuad_ZeroDimensionIsUnbounded(t *testing.T) {
	// Strip bounded only along X
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0))

	if !quad.Intersect(core.NewRay(core.NewVec3(0.5, 100, 5), core.NewVec3(0, 0, -1))).Hit() {
		t.Error("Expected hit far along the unbounded axis")
	}
}

func TestQuad_ClipsPoint(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 0))

	tests := []struct {
		point    core.Vec3
		expected bool
	}{
		{core.NewVec3(0.5, 0.5, -1), true},
		{core.NewVec3(0.5, 0.5, 1), false}, // In front
		{core.NewVec3(2, 0.5, -1), false},  // Behind but outside the extent
	}

	for _, tt := range tests {
		if got := quad.ClipsPoint(tt.point); got != tt.expected {
			t.Errorf("ClipsPoint(%v) = %v, expected %v", tt.point, got, tt.expected)
		}
	}
}

func TestQuad_Scale(t *testing.T) {
	quad := NewQuad(core.NewVec3(1, 1, 0), core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 0))
	quad.Scale(core.NewVec3(2, 3, 1))

	if quad.Dimensions.Subtract(core.NewVec3(2, 3, 0)).Length() > 1e-9 {
		t.Errorf("Expected dimensions (2,3,0), got %v", quad.Dimensions)
	}
	if quad.Plane.Origin.Subtract(core.NewVec3(2, 3, 0)).Length() > 1e-9 {
		t.Errorf("Expected origin (2,3,0), got %v", quad.Plane.Origin)
	}
}
