package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

func TestPlane_Intersect_BasicIntersection(t *testing.T) {
	// Create a horizontal plane at y=0
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	// Ray shooting down from above
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	hit := plane.Intersect(ray)
	if !hit.Hit() {
		t.Fatal("Expected hit, but got miss")
	}

	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1, got t=%f", hit.T)
	}
	if hit.Point.Subtract(core.NewVec3(0, 0, 0)).Length() > 1e-9 {
		t.Errorf("Expected hit point at origin, got %v", hit.Point)
	}
	if hit.Kind != Entry {
		t.Errorf("Expected Entry from the front side, got %v", hit.Kind)
	}
}

func TestPlane_Intersect_FromBehind(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	hit := plane.Intersect(core.NewRay(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0)))
	if !hit.Hit() {
		t.Fatal("Expected hit, but got miss")
	}
	if hit.Kind != Exit {
		t.Errorf("Expected Exit from behind, got %v", hit.Kind)
	}
	if hit.Normal.Subtract(core.NewVec3(0, -1, 0)).Length() > 1e-9 {
		t.Errorf("Expected normal facing the ray, got %v", hit.Normal)
	}
}

func TestPlane_Intersect_Miss(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	tests := []struct {
		name      string
		direction core.Vec3
	}{
		{"parallel ray", core.NewVec3(1, 0, 0)},
		{"plane behind ray", core.NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := plane.Intersect(core.NewRay(core.NewVec3(0, 1, 0), tt.direction))
			if hit.Hit() {
				t.Errorf("Expected miss, but got hit at t=%f", hit.T)
			}
		})
	}
}

func TestPlane_Intersections_Pair(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, -2), core.NewVec3(0, 0, 1))

	hits := plane.Intersections(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	if len(hits) != 2 {
		t.Fatalf("Expected 2 intersections, got %d", len(hits))
	}
	if hits[0].Kind != Entry || hits[1].Kind != Exit {
		t.Errorf("Expected Entry then Exit, got %v then %v", hits[0].Kind, hits[1].Kind)
	}
	if hits[0].T != hits[1].T {
		t.Errorf("Expected equal distances, got %f and %f", hits[0].T, hits[1].T)
	}
}

func TestPlane_ClipsPoint(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0))

	tests := []struct {
		point    core.Vec3
		expected bool
	}{
		{core.NewVec3(0, 0, 0), true},
		{core.NewVec3(5, 1, -3), true}, // On the plane
		{core.NewVec3(0, 1.5, 0), false},
	}

	for _, tt := range tests {
		if got := plane.ClipsPoint(tt.point); got != tt.expected {
			t.Errorf("ClipsPoint(%v) = %v, expected %v", tt.point, got, tt.expected)
		}
	}
}

func TestPlane_ProjectPoint(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 2, 0), core.NewVec3(0, 1, 0))

	projected := plane.ProjectPoint(core.NewVec3(3, 7, -1))
	if projected.Subtract(core.NewVec3(3, 2, -1)).Length() > 1e-9 {
		t.Errorf("Expected (3,2,-1), got %v", projected)
	}
	if d := plane.SignedDistance(core.NewVec3(0, -1, 0)); math.Abs(d+3) > 1e-9 {
		t.Errorf("Expected signed distance -3, got %f", d)
	}
}

func TestPlane_Rotate(t *testing.T) {
	plane := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	plane.Rotate(90, core.NewVec3(0, 0, 1))

	if math.Abs(math.Abs(plane.Normal.X)-1) > 1e-9 || math.Abs(plane.Normal.Y) > 1e-9 {
		t.Errorf("Expected normal along X after rotation, got %v", plane.Normal)
	}
}
