package camera

import (
	"math"
	"testing"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

const tolerance = 1e-9

func TestCamera_GetRay_Center(t *testing.T) {
	tests := []struct {
		name   string
		camera *Camera
	}{
		{"perspective", NewPerspective()},
		{"ortho", NewOrtho(4, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := tt.camera.GetRay(200, 100, 100, 50)
			if ray.Direction.Subtract(core.NewVec3(0, 0, -1)).Length() > tolerance {
				t.Errorf("Expected center ray along -Z, got %v", ray.Direction)
			}
			if ray.Origin.Subtract(core.NewVec3(0, 0, 10)).Length() > tolerance {
				t.Errorf("Expected origin at camera position, got %v", ray.Origin)
			}
		})
	}
}

func TestCamera_GetRay_PerspectiveCorners(t *testing.T) {
	c := NewPerspective()
	width, height := 200, 100

	topLeft := c.GetRay(width, height, 0, 0)
	if topLeft.Direction.X >= 0 || topLeft.Direction.Y <= 0 {
		t.Errorf("Expected top-left ray pointing left and up, got %v", topLeft.Direction)
	}

	// The vertical half-angle equals half the field of view
	top := c.GetRay(width, height, 100, 0)
	angle := math.Acos(top.Direction.Dot(c.Direction)) * 180 / math.Pi
	if math.Abs(angle-DefaultFOV/2) > 1e-6 {
		t.Errorf("Expected half angle %f, got %f", DefaultFOV/2, angle)
	}
}

func TestCamera_GetRay_OrthoParallel(t *testing.T) {
	c := NewOrtho(4, 2)
	a := c.GetRay(100, 100, 0, 0)
	b := c.GetRay(100, 100, 100, 100)

	if a.Direction.Subtract(b.Direction).Length() > tolerance {
		t.Error("Expected parallel rays")
	}
	// Left edge at -width/2, top edge at +height/2
	if math.Abs(a.Origin.X+2) > tolerance || math.Abs(a.Origin.Y-1) > tolerance {
		t.Errorf("Expected origin (-2,1,10), got %v", a.Origin)
	}
}

func TestCamera_LookAt(t *testing.T) {
	c := NewPerspective()
	c.LookAt(core.NewVec3(10, 0, 0), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	if c.Direction.Subtract(core.NewVec3(-1, 0, 0)).Length() > tolerance {
		t.Errorf("Expected direction -X, got %v", c.Direction)
	}
	if math.Abs(c.Right.Dot(c.Direction)) > tolerance || math.Abs(c.Up.Dot(c.Direction)) > tolerance {
		t.Error("Expected orthonormal frame")
	}
	if c.Up.Subtract(core.NewVec3(0, 1, 0)).Length() > tolerance {
		t.Errorf("Expected up +Y, got %v", c.Up)
	}
}

func TestCamera_Moves(t *testing.T) {
	tests := []struct {
		name     string
		move     func(*Camera)
		expected core.Vec3
	}{
		{"forward", (*Camera).MoveForward, core.NewVec3(0, 0, 8)},
		{"backward", (*Camera).MoveBackward, core.NewVec3(0, 0, 12)},
		{"right", (*Camera).MoveRight, core.NewVec3(2, 0, 10)},
		{"left", (*Camera).MoveLeft, core.NewVec3(-2, 0, 10)},
		{"up", (*Camera).MoveUp, core.NewVec3(0, 2, 10)},
		{"down", (*Camera).MoveDown, core.NewVec3(0, -2, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewPerspective()
			c.StepSize = 2
			tt.move(c)
			if c.Position.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, c.Position)
			}
		})
	}
}

func TestCamera_Rotate(t *testing.T) {
	c := NewPerspective()
	c.RotationCoef = 2
	c.Rotate(45, core.NewVec3(0, 1, 0))

	// 90 degrees around Y turns -Z into -X
	if c.Direction.Subtract(core.NewVec3(-1, 0, 0)).Length() > 1e-9 {
		t.Errorf("Expected direction -X, got %v", c.Direction)
	}
	if c.Up.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-9 {
		t.Errorf("Expected up unchanged, got %v", c.Up)
	}
}

func TestNavigator_SmoothStop(t *testing.T) {
	c := NewPerspective()
	nav := NewNavigator(c, 30)

	nav.Apply(Forward)
	if !nav.Moving() {
		t.Fatal("Expected navigator to move after an impulse")
	}

	start := c.Position.Z
	frames := 0
	for nav.Moving() && frames < 1000 {
		nav.Update()
		frames++
	}

	if nav.Moving() {
		t.Fatal("Expected motion to decay to rest")
	}
	if c.Position.Z >= start {
		t.Errorf("Expected camera to move forward (-Z), got z=%f", c.Position.Z)
	}
	if frames < 2 {
		t.Errorf("Expected motion spread over several frames, got %d", frames)
	}
}

func TestNavigator_Stop(t *testing.T) {
	nav := NewNavigator(NewPerspective(), 30)
	nav.Apply(YawLeft)
	nav.Stop()
	if nav.Moving() {
		t.Error("Expected no motion after Stop")
	}
	if nav.Update() {
		t.Error("Expected Update to report no movement")
	}
}
