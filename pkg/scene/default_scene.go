package scene

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// NewDefaultScene creates a default scene with spheres, a checkered floor and
// two lights
func NewDefaultScene() *Scene {
	s := New()
	s.Camera.LookAt(core.NewVec3(0, 1.5, 8), core.NewVec3(0, 0.5, 0), core.NewVec3(0, 1, 0))

	// Create materials
	floor := s.AddMaterial(material.DefaultChecker("floor"))

	redProps := material.DefaultProperties()
	redProps.Diffuse = core.NewColor(0.8, 0.15, 0.1)
	redProps.Ambient = core.NewColor(0.08, 0.015, 0.01)
	red := s.AddMaterial(material.NewSimple("red", redProps))

	mirrorProps := material.DefaultProperties()
	mirrorProps.Diffuse = core.NewColor(0.1, 0.1, 0.1)
	mirrorProps.Ambient = core.NewColor(0, 0, 0)
	mirrorProps.Shininess = 128
	mirrorProps.Reflectance = 0.8
	mirror := s.AddMaterial(material.NewSimple("mirror", mirrorProps))

	glassProps := material.DefaultProperties()
	glassProps.Diffuse = core.NewColor(0.05, 0.05, 0.05)
	glassProps.Ambient = core.NewColor(0, 0, 0)
	glassProps.Shininess = 96
	glassProps.Reflectance = 0.1
	glassProps.Transparency = 0.85
	glassProps.RefractionIndex = 1.5
	glass := s.AddMaterial(material.NewSimple("glass", glassProps))

	// Ground plane at y=0
	s.AddPrimitive("ground", geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), floor)

	// Spheres
	s.AddPrimitive("red ball", geometry.NewSphere(core.NewVec3(-1.6, 0.7, 0), 0.7), red)
	s.AddPrimitive("mirror ball", geometry.NewSphere(core.NewVec3(0, 1, -1), 1), mirror)
	s.AddPrimitive("glass ball", geometry.NewSphere(core.NewVec3(1.5, 0.6, 0.8), 0.6), glass)

	// Lights
	s.AddLight(lights.NewSphereLight("key", core.NewVec3(-4, 6, 5), core.NewColor(0.8, 0.8, 0.8), 0.5))
	s.AddLight(lights.NewPointLight("fill", core.NewVec3(5, 4, 3), core.NewColor(0.3, 0.3, 0.35)))

	return s
}
