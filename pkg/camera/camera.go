// Package camera generates primary rays for perspective and orthographic
// projections and moves the view frame interactively.
package camera

import (
	"math"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

// Kind selects the projection
type Kind int

const (
	Perspective Kind = iota
	Ortho
)

// String returns the description label of the projection
func (k Kind) String() string {
	if k == Ortho {
		return "OrthoCamera"
	}
	return "PerspectiveCamera"
}

// DefaultFOV is the vertical field of view of a new perspective camera
const DefaultFOV = 30.0

// Camera holds an orthonormal view frame and projection parameters
type Camera struct {
	Kind      Kind
	Position  core.Vec3
	Direction core.Vec3
	Right     core.Vec3
	Up        core.Vec3

	FOV         float64 // Vertical field of view in degrees (perspective)
	OrthoWidth  float64 // View width (ortho)
	OrthoHeight float64 // View height (ortho)

	StepSize     float64 // Distance covered by one move
	RotationCoef float64 // Multiplier applied to rotation angles
}

// NewPerspective creates a perspective camera at (0,0,10) looking down -Z
func NewPerspective() *Camera {
	return &Camera{
		Kind:         Perspective,
		Position:     core.NewVec3(0, 0, 10),
		Direction:    core.NewVec3(0, 0, -1),
		Right:        core.NewVec3(1, 0, 0),
		Up:           core.NewVec3(0, 1, 0),
		FOV:          DefaultFOV,
		StepSize:     1,
		RotationCoef: 1,
	}
}

// NewOrtho creates an orthographic camera with the given view size
func NewOrtho(width, height float64) *Camera {
	c := NewPerspective()
	c.Kind = Ortho
	c.FOV = 0
	c.OrthoWidth = width
	c.OrthoHeight = height
	return c
}

// LookAt places the camera at eye facing target. sky orients the frame.
func (c *Camera) LookAt(eye, target, sky core.Vec3) {
	c.Position = eye
	c.Direction = target.Subtract(eye).Normalize()
	c.Right = c.Direction.Cross(sky).Normalize()
	c.Up = c.Right.Cross(c.Direction).Normalize()
}

// GetRay returns the primary ray through screen position (x, y) of a
// width x height image. Fractional positions are used for supersampling.
func (c *Camera) GetRay(width, height int, x, y float64) core.Ray {
	ndcX := x / float64(width)
	ndcY := y / float64(height)

	screenX := 2*ndcX - 1
	screenY := 1 - 2*ndcY
	aspect := float64(width) / float64(height)

	if c.Kind == Ortho {
		camX := screenX * (c.OrthoWidth / 2) * aspect
		camY := screenY * (c.OrthoHeight / 2)
		origin := c.Position.Add(c.Right.Multiply(camX)).Add(c.Up.Multiply(camY))
		return core.NewRay(origin, c.Direction)
	}

	scale := math.Tan(c.FOV * math.Pi / 180 / 2)
	camX := screenX * aspect * scale
	camY := screenY * scale
	direction := c.Direction.Add(c.Right.Multiply(camX)).Add(c.Up.Multiply(camY))
	return core.NewRay(c.Position, direction)
}

// Translate moves the camera position
func (c *Camera) Translate(offset core.Vec3) {
	c.Position = c.Position.Add(offset)
}

func (c *Camera) MoveForward()  { c.Translate(c.Direction.Multiply(c.StepSize)) }
func (c *Camera) MoveBackward() { c.Translate(c.Direction.Multiply(-c.StepSize)) }
func (c *Camera) MoveRight()    { c.Translate(c.Right.Multiply(c.StepSize)) }
func (c *Camera) MoveLeft()     { c.Translate(c.Right.Multiply(-c.StepSize)) }

// MoveUp and MoveDown move along world Y, not the view up vector
func (c *Camera) MoveUp()   { c.Translate(core.NewVec3(0, c.StepSize, 0)) }
func (c *Camera) MoveDown() { c.Translate(core.NewVec3(0, -c.StepSize, 0)) }

// Rotate turns the view frame by degrees (scaled by RotationCoef) around axis
func (c *Camera) Rotate(degrees float64, axis core.Vec3) {
	rotation := core.NewQuaternion(degrees*c.RotationCoef, axis).Matrix()
	c.Direction = rotation.TransformDirection(c.Direction).Normalize()
	c.Right = rotation.TransformDirection(c.Right).Normalize()
	c.Up = rotation.TransformDirection(c.Up).Normalize()
}

// Clone returns a copy of the camera
func (c *Camera) Clone() *Camera {
	clone := *c
	return &clone
}
