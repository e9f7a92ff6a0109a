package scene

import (
	"fmt"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// NewCSGScene creates a scene of boolean solids: a sphere drilled along three
// axes, a lens made from two spheres and a dome cut by a plane
func NewCSGScene() *Scene {
	s := New()
	s.Camera.LookAt(core.NewVec3(2, 3, 9), core.NewVec3(0, 0.8, 0), core.NewVec3(0, 1, 0))

	floor := s.AddMaterial(material.DefaultChecker("floor"))

	blueProps := material.DefaultProperties()
	blueProps.Diffuse = core.NewColor(0.2, 0.35, 0.85)
	blueProps.Ambient = core.NewColor(0.02, 0.035, 0.085)
	blue := s.AddMaterial(material.NewSimple("blue", blueProps))

	goldProps := material.DefaultProperties()
	goldProps.Diffuse = core.NewColor(0.85, 0.65, 0.2)
	goldProps.Ambient = core.NewColor(0.085, 0.065, 0.02)
	goldProps.Reflectance = 0.3
	goldProps.ReflectionDistribution = 4
	gold := s.AddMaterial(material.NewSimple("gold", goldProps))

	greenProps := material.DefaultProperties()
	greenProps.Diffuse = core.NewColor(0.2, 0.7, 0.3)
	greenProps.Ambient = core.NewColor(0.02, 0.07, 0.03)
	green := s.AddMaterial(material.NewSimple("green", greenProps))

	s.AddPrimitive("ground", geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), floor)

	// Drilled ball: a sphere minus three perpendicular cylinders
	center := core.NewVec3(0, 1.2, 0)
	s.AddPrimitive("ball", geometry.NewSphere(center, 1.2), blue)

	holeY := geometry.NewCylinder(core.NewVec3(0, 0, 0), 0.5)
	holeX := holeY.Clone()
	holeX.Rotate(90, core.NewVec3(0, 0, 1))
	holeZ := holeY.Clone()
	holeZ.Rotate(90, core.NewVec3(1, 0, 0))
	holes := []struct {
		name string
		prim geometry.Primitive
	}{
		{"holeX", holeX}, {"holeY", holeY}, {"holeZ", holeZ},
	}
	for _, h := range holes {
		h.prim.Translate(center)
		s.AddPrimitive(h.name, h.prim, blue)
	}
	s.composeAndConsume("drilledBall", "ball - holeX - holeY - holeZ", blue,
		"ball", "holeX", "holeY", "holeZ")

	// Lens: the overlap of two spheres
	s.AddPrimitive("lensFront", geometry.NewSphere(core.NewVec3(-3, 1, 0.6), 1.2), gold)
	s.AddPrimitive("lensBack", geometry.NewSphere(core.NewVec3(-3, 1, -0.6), 1.2), gold)
	s.composeAndConsume("lens", "lensFront & lensBack", gold, "lensFront", "lensBack")

	// Dome: a sphere with everything below y=0.6 clipped away
	s.AddPrimitive("domeBall", geometry.NewSphere(core.NewVec3(3, 0.8, 0), 1), green)
	s.AddPrimitive("domeCut", geometry.NewPlane(core.NewVec3(3, 0.6, 0), core.NewVec3(0, 1, 0)), green)
	s.composeAndConsume("dome", "domeBall / domeCut", green, "domeBall", "domeCut")

	s.AddLight(lights.NewSphereLight("key", core.NewVec3(-3, 7, 6), core.NewColor(0.85, 0.85, 0.85), 0.6))
	s.AddLight(lights.NewPointLight("rim", core.NewVec3(4, 5, -5), core.NewColor(0.25, 0.25, 0.3)))

	return s
}

// composeAndConsume builds a composite from top-level shapes and erases the
// named parts it copied
func (s *Scene) composeAndConsume(name, expression string, mat *material.Material, parts ...string) {
	if _, err := s.ComposeShape(name, expression, mat); err != nil {
		panic(fmt.Sprintf("builtin expression %q: %v", expression, err))
	}
	for _, part := range parts {
		for _, id := range s.Shapes.Roots() {
			if s.Shapes.Node(id).Name == part {
				s.EraseShape(id)
				break
			}
		}
	}
}
