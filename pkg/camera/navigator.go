package camera

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

// restVelocity is the speed below which an axis counts as stopped
const restVelocity = 1e-3

// axis tracks the velocity of one degree of freedom. A critically damped
// spring pulls the velocity back to zero after each impulse.
type axis struct {
	Velocity float64
	spring   harmonica.Spring
	accel    float64
}

func newAxis(fps int) axis {
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// step returns the distance covered this frame and decays the velocity
func (a *axis) step() float64 {
	delta := a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	if math.Abs(a.Velocity) < restVelocity && math.Abs(a.accel) < restVelocity {
		a.Velocity, a.accel = 0, 0
	}
	return delta
}

// Action is an interactive camera command
type Action int

const (
	Forward Action = iota
	Backward
	Left
	Right
	Up
	Down
	YawLeft
	YawRight
	PitchUp
	PitchDown
)

// Navigator applies smoothed keyboard motion to a camera. Each action adds an
// impulse of one camera step (or one degree) per frame; Update integrates and
// decays the motion once per frame.
type Navigator struct {
	Camera *Camera

	forward, right, up axis
	yaw, pitch         axis
}

// NewNavigator creates a navigator that updates at fps frames per second
func NewNavigator(c *Camera, fps int) *Navigator {
	return &Navigator{
		Camera:  c,
		forward: newAxis(fps),
		right:   newAxis(fps),
		up:      newAxis(fps),
		yaw:     newAxis(fps),
		pitch:   newAxis(fps),
	}
}

// Apply adds the impulse of an action
func (n *Navigator) Apply(action Action) {
	step := n.Camera.StepSize
	switch action {
	case Forward:
		n.forward.Velocity += step
	case Backward:
		n.forward.Velocity -= step
	case Right:
		n.right.Velocity += step
	case Left:
		n.right.Velocity -= step
	case Up:
		n.up.Velocity += step
	case Down:
		n.up.Velocity -= step
	case YawLeft:
		n.yaw.Velocity++
	case YawRight:
		n.yaw.Velocity--
	case PitchUp:
		n.pitch.Velocity++
	case PitchDown:
		n.pitch.Velocity--
	}
}

// Update advances the camera by one frame and reports whether it moved
func (n *Navigator) Update() bool {
	c := n.Camera
	moved := n.Moving()

	if d := n.forward.step(); d != 0 {
		c.Translate(c.Direction.Multiply(d))
	}
	if d := n.right.step(); d != 0 {
		c.Translate(c.Right.Multiply(d))
	}
	if d := n.up.step(); d != 0 {
		c.Translate(core.NewVec3(0, d, 0))
	}
	if d := n.yaw.step(); d != 0 {
		c.Rotate(d, core.NewVec3(0, 1, 0))
	}
	if d := n.pitch.step(); d != 0 {
		c.Rotate(d, c.Right)
	}
	return moved
}

// Moving reports whether any axis still has velocity
func (n *Navigator) Moving() bool {
	for _, a := range []*axis{&n.forward, &n.right, &n.up, &n.yaw, &n.pitch} {
		if a.Velocity != 0 {
			return true
		}
	}
	return false
}

// Stop cancels all motion
func (n *Navigator) Stop() {
	for _, a := range []*axis{&n.forward, &n.right, &n.up, &n.yaw, &n.pitch} {
		a.Velocity, a.accel = 0, 0
	}
}
