package scene

import (
	"github.com/samber/lo"

	"github.com/df07/go-csg-raytracer/pkg/camera"
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/csg"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering. Lights and materials
// are owned by the scene; shapes reference materials by pointer.
type Scene struct {
	Camera         *camera.Camera
	Lights         []*lights.Light
	Materials      []*material.Material
	Shapes         *csg.Forest
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration persisted with the scene
type SamplingConfig struct {
	Width                  int        // Image width
	Height                 int        // Image height
	AdaptiveSupersampling  bool       // Refine pixels that differ from their neighbours
	SupersamplingThreshold float64    // Colour distance that triggers refinement
	SubSamplingSize        int        // Block size of preview renders
	RecursionDepth         int        // Maximum reflection/refraction depth
	ShadowDistribution     int        // Shadow rays per sphere light
	ReflectionDistribution int        // Rays per glossy reflection
	RefractionDistribution int        // Rays per glossy refraction
	Background             core.Color // Colour of rays that miss everything
}

// DefaultSamplingConfig returns the settings of a fresh scene
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:                  400,
		Height:                 300,
		AdaptiveSupersampling:  true,
		SupersamplingThreshold: 0.1,
		SubSamplingSize:        20,
		RecursionDepth:         5,
		ShadowDistribution:     1,
		ReflectionDistribution: 1,
		RefractionDistribution: 1,
		Background:             core.Black,
	}
}

// New creates an empty scene with the default perspective camera
func New() *Scene {
	return &Scene{
		Camera:         camera.NewPerspective(),
		Shapes:         csg.NewForest(),
		SamplingConfig: DefaultSamplingConfig(),
	}
}

// SetCamera stores a copy of c
func (s *Scene) SetCamera(c *camera.Camera) *camera.Camera {
	s.Camera = c.Clone()
	return s.Camera
}

// AddLight stores a copy of l and returns the stored light
func (s *Scene) AddLight(l *lights.Light) *lights.Light {
	stored := l.Clone()
	s.Lights = append(s.Lights, stored)
	return stored
}

// SetLight replaces old with a copy of replacement in the same position
func (s *Scene) SetLight(old, replacement *lights.Light) *lights.Light {
	idx := lo.IndexOf(s.Lights, old)
	if idx < 0 {
		return nil
	}
	s.Lights[idx] = replacement.Clone()
	return s.Lights[idx]
}

// EraseLight removes l
func (s *Scene) EraseLight(l *lights.Light) bool {
	idx := lo.IndexOf(s.Lights, l)
	if idx < 0 {
		return false
	}
	s.Lights = append(s.Lights[:idx], s.Lights[idx+1:]...)
	return true
}

// Light returns the first light named name
func (s *Scene) Light(name string) *lights.Light {
	l, _ := lo.Find(s.Lights, func(l *lights.Light) bool { return l.Name == name })
	return l
}

// AddMaterial stores a copy of m and returns the stored material
func (s *Scene) AddMaterial(m *material.Material) *material.Material {
	stored := m.Clone()
	s.Materials = append(s.Materials, stored)
	return stored
}

// SetMaterial replaces old with a copy of replacement in the same position
// and points every shape that used old at the new material.
func (s *Scene) SetMaterial(old, replacement *material.Material) *material.Material {
	idx := lo.IndexOf(s.Materials, old)
	if idx < 0 {
		return nil
	}
	stored := replacement.Clone()
	s.Materials[idx] = stored
	s.Shapes.ReplaceMaterial(old, stored)
	return stored
}

// EraseMaterial removes m and clears every shape reference to it
func (s *Scene) EraseMaterial(m *material.Material) bool {
	idx := lo.IndexOf(s.Materials, m)
	if idx < 0 {
		return false
	}
	s.Materials = append(s.Materials[:idx], s.Materials[idx+1:]...)
	s.Shapes.ReplaceMaterial(m, nil)
	return true
}

// Material returns the first material named name
func (s *Scene) Material(name string) *material.Material {
	m, _ := lo.Find(s.Materials, func(m *material.Material) bool { return m.Name == name })
	return m
}

// AddShape copies the subtree id of src into the scene as a new top-level
// shape and returns the stored root
func (s *Scene) AddShape(src *csg.Forest, id csg.NodeID) csg.NodeID {
	stored := s.Shapes.CopySubtree(src, id)
	s.Shapes.AppendRoot(stored)
	return stored
}

// AddPrimitive stores a copy of prim as a new top-level shape
func (s *Scene) AddPrimitive(name string, prim geometry.Primitive, mat *material.Material) csg.NodeID {
	id := s.Shapes.NewLeaf(name, prim.Clone(), mat)
	s.Shapes.AppendRoot(id)
	return id
}

// SetShape replaces the shape old (top-level or nested) with a copy of the
// subtree id of src. It returns csg.NoNode when old is not in the scene.
func (s *Scene) SetShape(old csg.NodeID, src *csg.Forest, id csg.NodeID) csg.NodeID {
	if !s.Shapes.Valid(old) {
		return csg.NoNode
	}
	stored := s.Shapes.CopySubtree(src, id)
	if !s.Shapes.Replace(old, stored) {
		s.Shapes.Erase(stored)
		return csg.NoNode
	}
	return stored
}

// EraseShape removes a shape. Erasing a child of a composite promotes its
// sibling into the composite's position.
func (s *Scene) EraseShape(id csg.NodeID) bool {
	return s.Shapes.Erase(id)
}

// Shape returns the first shape named name
func (s *Scene) Shape(name string) (csg.NodeID, bool) {
	return s.Shapes.Find(name)
}

// ComposeShape adds a composite named name built from expression over the
// top-level shapes. The referenced shapes are copied, not moved.
func (s *Scene) ComposeShape(name, expression string, mat *material.Material) (csg.NodeID, error) {
	id := s.Shapes.NewComposite(name, csg.None, mat, csg.NoNode, csg.NoNode)
	if err := s.Shapes.FromExpression(id, expression, s.Shapes.Roots()); err != nil {
		s.Shapes.Erase(id)
		return csg.NoNode, err
	}
	s.Shapes.AppendRoot(id)
	return id, nil
}

// Nearest returns the closest visible hit across the enabled shapes
func (s *Scene) Nearest(ray core.Ray) geometry.Intersection {
	return s.Shapes.NearestInScene(ray)
}

// Clear removes all lights, materials and shapes
func (s *Scene) Clear() {
	s.Lights = nil
	s.Materials = nil
	s.Shapes = csg.NewForest()
}

// Clone returns a deep copy. Shapes of the copy reference the copied
// materials.
func (s *Scene) Clone() *Scene {
	clone := &Scene{
		Camera:         s.Camera.Clone(),
		Lights:         lo.Map(s.Lights, func(l *lights.Light, _ int) *lights.Light { return l.Clone() }),
		Materials:      lo.Map(s.Materials, func(m *material.Material, _ int) *material.Material { return m.Clone() }),
		Shapes:         s.Shapes.Clone(),
		SamplingConfig: s.SamplingConfig,
	}

	mapping := make(map[*material.Material]*material.Material, len(s.Materials))
	for i, m := range s.Materials {
		mapping[m] = clone.Materials[i]
	}
	clone.Shapes.RemapMaterials(mapping)
	return clone
}

// GetPrimitiveCount returns the number of primitive leaves in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	s.Shapes.WalkAll(func(_ csg.NodeID, n *csg.Node) bool {
		if !n.IsComposite() {
			count++
		}
		return true
	})
	return count
}
