package scene

import (
	"math"
	"testing"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/csg"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

func downRay(x, z float64) core.Ray {
	return core.NewRay(core.NewVec3(x, 10, z), core.NewVec3(0, -1, 0))
}

func TestScene_Lights(t *testing.T) {
	s := New()
	key := s.AddLight(lights.NewPointLight("key", core.NewVec3(0, 5, 0), core.White))
	fill := s.AddLight(lights.NewPointLight("fill", core.NewVec3(5, 5, 0), core.White))

	if s.Light("fill") != fill {
		t.Errorf("Light(fill) did not return the stored light")
	}

	rim := s.SetLight(key, lights.NewSphereLight("rim", core.NewVec3(0, 5, -5), core.White, 0.5))
	if rim == nil || s.Lights[0] != rim {
		t.Fatalf("SetLight should replace in position, got %v", s.Lights)
	}
	if s.SetLight(key, rim) != nil {
		t.Errorf("SetLight on a removed light should fail")
	}

	if !s.EraseLight(rim) || len(s.Lights) != 1 || s.Lights[0] != fill {
		t.Errorf("EraseLight left %v", s.Lights)
	}
	if s.EraseLight(rim) {
		t.Errorf("EraseLight should fail the second time")
	}
}

func TestScene_MaterialCascade(t *testing.T) {
	s := New()
	red := s.AddMaterial(material.NewSimple("red", material.DefaultProperties()))
	s.AddPrimitive("ball", geometry.NewSphere(core.NewVec3(0, 0, 0), 1), red)

	hit := s.Nearest(downRay(0, 0))
	if !hit.Hit() || hit.Material != red {
		t.Fatalf("Expected a red hit, got %+v", hit)
	}

	blueProps := material.DefaultProperties()
	blueProps.Diffuse = core.NewColor(0, 0, 1)
	blue := s.SetMaterial(red, material.NewSimple("blue", blueProps))
	if blue == nil || s.Materials[0] != blue {
		t.Fatalf("SetMaterial should replace in position")
	}
	if hit := s.Nearest(downRay(0, 0)); hit.Material != blue {
		t.Errorf("Shape should reference the replacement material, got %v", hit.Material)
	}

	if !s.EraseMaterial(blue) {
		t.Fatalf("EraseMaterial failed")
	}
	if hit := s.Nearest(downRay(0, 0)); hit.Hit() {
		t.Errorf("Shape without material should be invisible, got %+v", hit)
	}
}

func TestScene_AddPrimitiveCopies(t *testing.T) {
	s := New()
	m := s.AddMaterial(material.NewSimple("m", material.DefaultProperties()))
	ball := geometry.NewSphere(core.NewVec3(0, 0, 0), 1)
	s.AddPrimitive("ball", ball, m)

	ball.Translate(core.NewVec3(100, 0, 0))
	if hit := s.Nearest(downRay(0, 0)); !hit.Hit() {
		t.Errorf("Moving the caller's primitive should not move the stored shape")
	}
}

func TestScene_ComposeShape(t *testing.T) {
	s := New()
	m := s.AddMaterial(material.NewSimple("m", material.DefaultProperties()))
	s.AddPrimitive("a", geometry.NewSphere(core.NewVec3(0, 0, 0), 1), m)
	s.AddPrimitive("b", geometry.NewSphere(core.NewVec3(0, -1, 0), 1), m)

	id, err := s.ComposeShape("lens", "a & b", m)
	if err != nil {
		t.Fatalf("ComposeShape failed: %v", err)
	}
	if got := s.Shapes.Expression(id); got != "(a & b)" {
		t.Errorf("Expression() = %q, want %q", got, "(a & b)")
	}
	if len(s.Shapes.Roots()) != 3 {
		t.Errorf("Expected the composite plus both components as roots, got %d", len(s.Shapes.Roots()))
	}

	before := s.Shapes.Len()
	roots := len(s.Shapes.Roots())
	for _, expr := range []string{"a & missing", "a &", "(a | b", "lens2 | a", ""} {
		if _, err := s.ComposeShape("lens2", expr, m); err == nil {
			t.Errorf("ComposeShape(%q) should fail", expr)
		}
	}
	if s.Shapes.Len() != before || len(s.Shapes.Roots()) != roots {
		t.Errorf("Failed compositions should leave the scene untouched")
	}

	// The lens spans y in [-1, 0] below the origin
	s.Shapes.SetEnabled(mustShape(t, s, "a"), false)
	s.Shapes.SetEnabled(mustShape(t, s, "b"), false)
	hit := s.Nearest(downRay(0, 0))
	if !hit.Hit() || math.Abs(hit.T-10) > 1e-9 {
		t.Errorf("Lens top T = %v, want 10", hit.T)
	}
}

func mustShape(t *testing.T, s *Scene, name string) csg.NodeID {
	t.Helper()
	id, ok := s.Shape(name)
	if !ok {
		t.Fatalf("Shape %q not found", name)
	}
	return id
}

func TestScene_SetShapeAndErase(t *testing.T) {
	s := New()
	m := s.AddMaterial(material.NewSimple("m", material.DefaultProperties()))
	s.AddPrimitive("a", geometry.NewSphere(core.NewVec3(0, 0, 0), 1), m)
	s.AddPrimitive("b", geometry.NewSphere(core.NewVec3(3, 0, 0), 1), m)
	union, err := s.ComposeShape("u", "a | b", m)
	if err != nil {
		t.Fatalf("ComposeShape failed: %v", err)
	}
	s.EraseShape(mustShape(t, s, "a"))
	s.EraseShape(mustShape(t, s, "b"))

	// Replace the nested copy of b with a sphere further away
	nested := s.Shapes.Node(union).Right
	src := csg.NewForest()
	far := src.NewLeaf("c", geometry.NewSphere(core.NewVec3(6, 0, 0), 1), m)
	stored := s.SetShape(nested, src, far)
	if stored == csg.NoNode || s.Shapes.Node(union).Right != stored {
		t.Fatalf("SetShape should replace the nested child in place")
	}
	if hit := s.Nearest(downRay(6, 0)); !hit.Hit() {
		t.Errorf("Replacement shape should be visible")
	}
	if hit := s.Nearest(downRay(3, 0)); hit.Hit() {
		t.Errorf("Replaced shape should be gone")
	}

	// Erasing the left child promotes the right one to the top level
	if !s.EraseShape(s.Shapes.Node(union).Left) {
		t.Fatalf("EraseShape failed")
	}
	roots := s.Shapes.Roots()
	if len(roots) != 1 || s.Shapes.Node(roots[0]).Name != "c" {
		t.Errorf("Expected c to be promoted, roots = %v", roots)
	}
	if s.GetPrimitiveCount() != 1 {
		t.Errorf("GetPrimitiveCount() = %d, want 1", s.GetPrimitiveCount())
	}
}

func TestScene_Clone(t *testing.T) {
	s := NewDefaultScene()
	clone := s.Clone()

	owned := make(map[*material.Material]bool)
	for _, m := range clone.Materials {
		owned[m] = true
	}
	clone.Shapes.WalkAll(func(_ csg.NodeID, n *csg.Node) bool {
		if n.Material != nil && !owned[n.Material] {
			t.Errorf("Shape %q references a material the clone does not own", n.Name)
		}
		return true
	})

	clone.Camera.MoveForward()
	clone.Lights[0].Position = core.NewVec3(0, 0, 0)
	clone.Materials[0].Name = "changed"
	if s.Camera.Position == clone.Camera.Position {
		t.Errorf("Camera shared between clones")
	}
	if s.Lights[0].Position.IsZero() || s.Materials[0].Name == "changed" {
		t.Errorf("Lights or materials shared between clones")
	}
}

func TestBuiltinScenes(t *testing.T) {
	for _, id := range BuiltinIDs() {
		t.Run(id, func(t *testing.T) {
			s, ok := Builtin(id)
			if !ok {
				t.Fatalf("Builtin(%q) not found", id)
			}
			if s.Camera == nil || len(s.Lights) == 0 || s.GetPrimitiveCount() == 0 {
				t.Errorf("Scene %q is incomplete", id)
			}
		})
	}

	if _, ok := Builtin("missing"); ok {
		t.Errorf("Builtin(missing) should fail")
	}
}

func TestCSGScene_DrilledBall(t *testing.T) {
	s := NewCSGScene()
	for _, name := range []string{"ball", "holeX", "holeY", "holeZ", "lensFront", "domeCut"} {
		for _, root := range s.Shapes.Roots() {
			if s.Shapes.Node(root).Name == name {
				t.Errorf("Component %q should have been consumed", name)
			}
		}
	}

	tests := []struct {
		name  string
		x, z  float64
		wantT float64
	}{
		// Off the bore the ball surface is hit at y = 1.2 + sqrt(1.44 - 0.64)
		{"ball surface", 0.8, 0, 10 - (1.2 + math.Sqrt(1.44-0.64))},
		// The dome is clipped below y=0.6, so its top is y = 1.8
		{"dome top", 3, 0, 10 - 1.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := s.Nearest(downRay(tt.x, tt.z))
			if !hit.Hit() || math.Abs(hit.T-tt.wantT) > 1e-6 {
				t.Errorf("T = %v, want %v", hit.T, tt.wantT)
			}
		})
	}

	// A ray along the bore axis never crosses the bore wall, so tilt it
	// slightly; it leaves the bore far below the ground.
	ray := core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0.01, -1, 0))
	hit := s.Nearest(ray)
	if want := 10 * math.Sqrt(1.0001); !hit.Hit() || math.Abs(hit.T-want) > 1e-6 {
		t.Errorf("Ray down the bore should reach the ground at %v, got %+v", want, hit)
	}
}
