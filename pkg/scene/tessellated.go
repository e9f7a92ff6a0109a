package scene

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// defaultMeshCells is the marching cubes resolution along the longest axis
const defaultMeshCells = 48

// Tessellate converts a signed distance solid into a flat-shaded mesh using
// marching cubes with cells cells along the longest axis
func Tessellate(s sdf.SDF3, cells int) *geometry.Mesh {
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	mesh := make([]geometry.Triangle, 0, len(triangles))
	for _, tri := range triangles {
		n := tri.Normal()
		a := core.NewVec3(tri[0].X, tri[0].Y, tri[0].Z)
		b := core.NewVec3(tri[1].X, tri[1].Y, tri[1].Z)
		c := core.NewVec3(tri[2].X, tri[2].Y, tri[2].Z)

		t := geometry.NewTriangle(a, b, c)
		if t.FaceNormal().IsZero() {
			continue
		}
		// Keep the winding consistent with the outward normal of the solid
		if t.FaceNormal().Dot(core.NewVec3(n.X, n.Y, n.Z)) < 0 {
			t = geometry.NewTriangle(a, c, b)
		}
		mesh = append(mesh, *t)
	}
	return geometry.NewMesh(mesh, false)
}

// roundedBracket builds the procedural solid of the tessellated scene: a
// rounded block with a cylindrical bore and a spherical bulge
func roundedBracket() (sdf.SDF3, error) {
	block, err := sdf.Box3D(v3.Vec{X: 2, Y: 1.2, Z: 1.2}, 0.15)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	bore, err := sdf.Cylinder3D(2, 0.35, 0)
	if err != nil {
		return nil, fmt.Errorf("cylinder: %w", err)
	}
	bulge, err := sdf.Sphere3D(0.55)
	if err != nil {
		return nil, fmt.Errorf("sphere: %w", err)
	}
	bulge = sdf.Transform3D(bulge, sdf.Translate3d(v3.Vec{X: 1, Y: 0, Z: 0}))
	return sdf.Difference3D(sdf.Union3D(block, bulge), bore), nil
}

// NewTessellatedScene creates a scene holding a marching cubes mesh of a
// signed distance solid
func NewTessellatedScene() *Scene {
	s := New()
	s.Camera.LookAt(core.NewVec3(2.5, 2.5, 5), core.NewVec3(0, 0.3, 0), core.NewVec3(0, 1, 0))

	floor := s.AddMaterial(material.DefaultChecker("floor"))

	steelProps := material.DefaultProperties()
	steelProps.Diffuse = core.NewColor(0.55, 0.58, 0.62)
	steelProps.Ambient = core.NewColor(0.05, 0.05, 0.06)
	steelProps.Shininess = 64
	steelProps.Reflectance = 0.2
	steel := s.AddMaterial(material.NewSimple("steel", steelProps))

	s.AddPrimitive("ground", geometry.NewPlane(core.NewVec3(0, -0.6, 0), core.NewVec3(0, 1, 0)), floor)

	solid, err := roundedBracket()
	if err != nil {
		panic(fmt.Sprintf("tessellated scene: %v", err))
	}
	mesh := Tessellate(solid, defaultMeshCells)
	s.AddPrimitive("bracket", geometry.NewModel([]geometry.Mesh{*mesh}), steel)

	s.AddLight(lights.NewSphereLight("key", core.NewVec3(-3, 6, 5), core.NewColor(0.9, 0.9, 0.9), 0.4))
	s.AddLight(lights.NewPointLight("fill", core.NewVec3(4, 3, -2), core.NewColor(0.25, 0.25, 0.3)))

	return s
}
