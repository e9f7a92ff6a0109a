package scene

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// NewCornellScene creates a classic Cornell box scene with quad walls, a
// mirror sphere and a glass sphere
func NewCornellScene() *Scene {
	s := New()
	s.Camera.LookAt(core.NewVec3(0, 0, 3.8), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	s.Camera.FOV = 40
	s.SamplingConfig.Width = 300
	s.SamplingConfig.Height = 300

	wall := func(name string, diffuse core.Color) *material.Material {
		props := material.DefaultProperties()
		props.Diffuse = diffuse
		props.Specular = core.NewColor(0.1, 0.1, 0.1)
		props.Ambient = diffuse.Multiply(0.1)
		props.Shininess = 4
		return s.AddMaterial(material.NewSimple(name, props))
	}

	// Create materials
	white := wall("white", core.NewColor(0.73, 0.73, 0.73))
	red := wall("red", core.NewColor(0.65, 0.05, 0.05))
	green := wall("green", core.NewColor(0.12, 0.45, 0.15))

	mirrorProps := material.DefaultProperties()
	mirrorProps.Diffuse = core.NewColor(0.05, 0.05, 0.05)
	mirrorProps.Ambient = core.NewColor(0, 0, 0)
	mirrorProps.Shininess = 128
	mirrorProps.Reflectance = 0.9
	mirror := s.AddMaterial(material.NewSimple("mirror", mirrorProps))

	glassProps := material.DefaultProperties()
	glassProps.Diffuse = core.NewColor(0.02, 0.02, 0.02)
	glassProps.Ambient = core.NewColor(0, 0, 0)
	glassProps.Shininess = 128
	glassProps.Reflectance = 0.08
	glassProps.Transparency = 0.9
	glassProps.RefractionIndex = 1.5
	glass := s.AddMaterial(material.NewSimple("glass", glassProps))

	// The box spans [-1, 1] on every axis and is open toward the camera
	lo := core.NewVec3(-1, -1, -1)
	s.AddPrimitive("floor", geometry.NewQuad(lo, core.NewVec3(0, 1, 0), core.NewVec3(2, 0, 2)), white)
	s.AddPrimitive("ceiling", geometry.NewQuad(core.NewVec3(-1, 1, -1), core.NewVec3(0, -1, 0), core.NewVec3(2, 0, 2)), white)
	s.AddPrimitive("back wall", geometry.NewQuad(lo, core.NewVec3(0, 0, 1), core.NewVec3(2, 2, 0)), white)
	s.AddPrimitive("left wall", geometry.NewQuad(lo, core.NewVec3(1, 0, 0), core.NewVec3(0, 2, 2)), red)
	s.AddPrimitive("right wall", geometry.NewQuad(core.NewVec3(1, -1, -1), core.NewVec3(-1, 0, 0), core.NewVec3(0, 2, 2)), green)

	// Two spheres resting on the floor
	s.AddPrimitive("mirror sphere", geometry.NewSphere(core.NewVec3(-0.4, -0.6, -0.35), 0.4), mirror)
	s.AddPrimitive("glass sphere", geometry.NewSphere(core.NewVec3(0.45, -0.65, 0.3), 0.35), glass)

	// Ceiling light just below the ceiling
	s.AddLight(lights.NewSphereLight("ceiling light", core.NewVec3(0, 0.9, 0), core.NewColor(0.9, 0.9, 0.85), 0.15))

	return s
}
