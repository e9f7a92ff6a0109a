package material

import (
	"math"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

// Properties holds the Phong shading parameters of a surface point
type Properties struct {
	Diffuse   core.Color
	Specular  core.Color
	Ambient   core.Color
	Shininess int // Phong exponent, 0 disables the specular term

	Reflectance            float64 // Weight of the mirrored ray, 0 disables reflection
	ReflectionDistribution float64 // Cone apex angle in degrees for glossy reflection
	Transparency           float64 // Weight of the refracted ray, 0 disables refraction
	RefractionIndex        float64
	RefractionDistribution float64 // Cone apex angle in degrees for blurry refraction
}

// DefaultProperties returns the properties of a freshly created simple material
func DefaultProperties() Properties {
	return Properties{
		Diffuse:         core.NewColor(1, 0.5, 0.3),
		Specular:        core.NewColor(0.5, 0.5, 0.5),
		Ambient:         core.NewColor(0.1, 0.05, 0.03),
		Shininess:       32,
		RefractionIndex: 1,
	}
}

// Kind distinguishes the material variants
type Kind int

const (
	KindSimple  Kind = iota // One property set everywhere
	KindChecker             // 3D checkerboard of two property sets
)

// String returns the description label of the kind
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "SimpleMaterial"
	case KindChecker:
		return "CheckerMaterial"
	default:
		return "UnknownMaterial"
	}
}

// Material is a named set of surface properties. Shapes reference materials
// by pointer; the scene owns them.
type Material struct {
	Name string
	Kind Kind

	// Properties is used by simple materials and by the odd checker tiles
	Properties Properties
	// Alternate is used by the even checker tiles
	Alternate Properties
	// TileSize is the checker tile extent along each axis
	TileSize core.Vec3
}

// NewSimple creates a uniform material
func NewSimple(name string, properties Properties) *Material {
	return &Material{
		Name:       name,
		Kind:       KindSimple,
		Properties: properties,
		TileSize:   core.NewVec3(1, 1, 1),
	}
}

// NewChecker creates a 3D checkerboard material alternating between two
// property sets every tileSize units
func NewChecker(name string, tileSize core.Vec3, odd, even Properties) *Material {
	return &Material{
		Name:       name,
		Kind:       KindChecker,
		Properties: odd,
		Alternate:  even,
		TileSize:   tileSize,
	}
}

// DefaultChecker returns the checker material with its default black and
// white tiles
func DefaultChecker(name string) *Material {
	odd := Properties{
		Diffuse:         core.NewColor(0, 0, 0),
		Specular:        core.NewColor(1, 1, 1),
		Ambient:         core.NewColor(0, 0, 0),
		Shininess:       15,
		RefractionIndex: 1,
	}
	even := Properties{
		Diffuse:         core.NewColor(1, 1, 1),
		Specular:        core.NewColor(1, 1, 1),
		Ambient:         core.NewColor(0.25, 0.25, 0.25),
		Shininess:       15,
		RefractionIndex: 1,
	}
	return NewChecker(name, core.NewVec3(1, 1, 1), odd, even)
}

// PropertiesAt returns the shading properties at a world-space point
func (m *Material) PropertiesAt(point core.Vec3) Properties {
	if m.Kind != KindChecker {
		return m.Properties
	}

	if checkerParity(point, m.TileSize) == 1 {
		return m.Properties
	}
	return m.Alternate
}

// Clone returns an independent copy of the material
func (m *Material) Clone() *Material {
	clone := *m
	return &clone
}

// checkerParity returns the low bit of the XOR of the tile indices
func checkerParity(point, tile core.Vec3) int {
	ix := tileIndex(point.X, tile.X)
	iy := tileIndex(point.Y, tile.Y)
	iz := tileIndex(point.Z, tile.Z)
	return (ix ^ iy ^ iz) & 1
}

func tileIndex(coordinate, size float64) int {
	if size == 0 {
		return 0
	}
	return int(math.Floor(coordinate*(1/size) + 1e-5))
}
