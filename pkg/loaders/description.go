package loaders

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/df07/go-csg-raytracer/pkg/camera"
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/csg"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
	"github.com/df07/go-csg-raytracer/pkg/scene"
)

var (
	// ErrUnknownLabel reports a record whose type label is not recognised
	ErrUnknownLabel = errors.New("unknown description label")
	// ErrFieldCount reports a record whose field count does not match its
	// declared or expected length
	ErrFieldCount = errors.New("description field count mismatch")
)

// Record labels
const (
	LabelRayTracer         = "RayTracer"
	LabelPerspectiveCamera = "PerspectiveCamera"
	LabelOrthoCamera       = "OrthoCamera"
	LabelPointLight        = "PointLight"
	LabelSphereLight       = "SphereLight"
	LabelSimpleMaterial    = "SimpleMaterial"
	LabelCheckerMaterial   = "CheckerMaterial"
	LabelTriangle          = "Triangle"
	LabelQuadric           = "Quadric"
	LabelQuad              = "Quad"
	LabelPlane             = "Plane"
	LabelMesh              = "Mesh"
	LabelModel             = "Model"
	LabelComposite         = "CompositeShape"

	noMaterial = "None"
	nameEscape = `\`
	separator  = ","
)

// Fixed field counts, not including the label and the count itself
const (
	rayTracerFields   = 12
	perspectiveFields = 10
	orthoFields       = 11
	pointLightFields  = 8
	sphereLightFields = 9
	propertiesFields  = 15
	simpleFields      = 1 + propertiesFields
	checkerFields     = 4 + 2*propertiesFields
	triangleFields    = 21
	quadricFields     = 13
	quadFields        = 12
	planeFields       = 9
)

// record accumulates the fields of one description record
type record struct {
	label  string
	fields []string
}

func newRecord(label string) *record {
	return &record{label: label}
}

func (r *record) str(s string) *record {
	r.fields = append(r.fields, strings.ReplaceAll(s, separator, " "))
	return r
}

func (r *record) raw(fields ...string) *record {
	r.fields = append(r.fields, fields...)
	return r
}

func (r *record) float(values ...float64) *record {
	for _, v := range values {
		r.fields = append(r.fields, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return r
}

func (r *record) integer(v int) *record {
	r.fields = append(r.fields, strconv.Itoa(v))
	return r
}

func (r *record) flag(v bool) *record {
	if v {
		return r.raw("1")
	}
	return r.raw("0")
}

func (r *record) vec(v core.Vec3) *record {
	return r.float(v.X, v.Y, v.Z)
}

func (r *record) color(c core.Color) *record {
	return r.float(c.R, c.G, c.B)
}

func (r *record) material(m *material.Material) *record {
	if m == nil {
		return r.raw(noMaterial)
	}
	return r.materialName(m.Name)
}

// materialName writes a material name so it never reads back as the
// no-material sentinel. Names equal to the sentinel, or already starting
// with the escape, get one escape prepended.
func (r *record) materialName(name string) *record {
	name = strings.ReplaceAll(name, separator, " ")
	if name == noMaterial || strings.HasPrefix(name, nameEscape) {
		name = nameEscape + name
	}
	return r.raw(name)
}

// unescapeMaterialName reverses materialName
func unescapeMaterialName(name string) string {
	return strings.TrimPrefix(name, nameEscape)
}

// nested appends another record's fields
func (r *record) nested(other *record) *record {
	return r.raw(other.all()...)
}

// all returns label, count and fields
func (r *record) all() []string {
	return append([]string{r.label, strconv.Itoa(len(r.fields))}, r.fields...)
}

func (r *record) String() string {
	return strings.Join(r.all(), separator)
}

// fieldReader consumes the fields of one record. The first conversion
// error sticks and later reads return zero values.
type fieldReader struct {
	label  string
	fields []string
	pos    int
	err    error
}

// newFieldReader checks the label and declared count of a record and
// returns a reader positioned after the count. want < 0 accepts any count.
func newFieldReader(fields []string, label string, want int) (*fieldReader, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: truncated record %q", ErrFieldCount, strings.Join(fields, separator))
	}
	if fields[0] != label {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, fields[0])
	}
	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%s: invalid field count %q: %w", label, fields[1], err)
	}
	if count != len(fields)-2 || (want >= 0 && count != want) {
		return nil, fmt.Errorf("%w: %s declares %d fields, has %d", ErrFieldCount, label, count, len(fields)-2)
	}
	return &fieldReader{label: label, fields: fields[2:]}, nil
}

func (r *fieldReader) next() string {
	if r.err != nil {
		return ""
	}
	if r.pos >= len(r.fields) {
		r.err = fmt.Errorf("%w: %s ended early", ErrFieldCount, r.label)
		return ""
	}
	s := r.fields[r.pos]
	r.pos++
	return s
}

func (r *fieldReader) float() float64 {
	s := r.next()
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		r.err = fmt.Errorf("%s field %d: %w", r.label, r.pos, err)
	}
	return v
}

func (r *fieldReader) integer() int {
	s := r.next()
	if r.err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		r.err = fmt.Errorf("%s field %d: %w", r.label, r.pos, err)
	}
	return v
}

func (r *fieldReader) flag() bool {
	return r.integer() != 0
}

func (r *fieldReader) vec() core.Vec3 {
	x, y, z := r.float(), r.float(), r.float()
	return core.NewVec3(x, y, z)
}

func (r *fieldReader) color() core.Color {
	red, green, blue := r.float(), r.float(), r.float()
	return core.NewColor(red, green, blue)
}

func (r *fieldReader) material(materials []*material.Material) *material.Material {
	name := r.next()
	if name == noMaterial {
		return nil
	}
	name = unescapeMaterialName(name)
	m, _ := lo.Find(materials, func(m *material.Material) bool { return m.Name == name })
	return m
}

// subrecord returns the fields of the nested record starting at the
// current position and advances past it
func (r *fieldReader) subrecord() []string {
	if r.err != nil {
		return nil
	}
	if r.pos+1 >= len(r.fields) {
		r.err = fmt.Errorf("%w: %s has a truncated nested record", ErrFieldCount, r.label)
		return nil
	}
	count, err := strconv.Atoi(r.fields[r.pos+1])
	if err != nil || count < 0 || r.pos+2+count > len(r.fields) {
		r.err = fmt.Errorf("%w: %s has a nested record with bad count %q", ErrFieldCount, r.label, r.fields[r.pos+1])
		return nil
	}
	sub := r.fields[r.pos : r.pos+2+count]
	r.pos += 2 + count
	return sub
}

// peek returns the next field without consuming it
func (r *fieldReader) peek() string {
	if r.err != nil || r.pos >= len(r.fields) {
		return ""
	}
	return r.fields[r.pos]
}

// done reports the sticky error or leftover fields
func (r *fieldReader) done() error {
	if r.err != nil {
		return r.err
	}
	if r.pos != len(r.fields) {
		return fmt.Errorf("%w: %s has %d unread fields", ErrFieldCount, r.label, len(r.fields)-r.pos)
	}
	return nil
}

func split(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r\n"), separator)
}

// Label returns the type label of a description line
func Label(line string) string {
	label, _, _ := strings.Cut(line, separator)
	return strings.TrimSpace(label)
}

// DescribeSettings encodes render settings as a RayTracer record
func DescribeSettings(cfg scene.SamplingConfig) string {
	return newRecord(LabelRayTracer).
		color(cfg.Background).
		flag(cfg.AdaptiveSupersampling).
		float(cfg.SupersamplingThreshold).
		integer(cfg.SubSamplingSize).
		integer(cfg.RecursionDepth).
		integer(cfg.ShadowDistribution).
		integer(cfg.ReflectionDistribution).
		integer(cfg.RefractionDistribution).
		integer(cfg.Width).
		integer(cfg.Height).
		String()
}

// ParseSettings decodes a RayTracer record
func ParseSettings(line string) (scene.SamplingConfig, error) {
	r, err := newFieldReader(split(line), LabelRayTracer, rayTracerFields)
	if err != nil {
		return scene.SamplingConfig{}, err
	}
	cfg := scene.SamplingConfig{
		Background:             r.color(),
		AdaptiveSupersampling:  r.flag(),
		SupersamplingThreshold: r.float(),
		SubSamplingSize:        r.integer(),
		RecursionDepth:         r.integer(),
		ShadowDistribution:     r.integer(),
		ReflectionDistribution: r.integer(),
		RefractionDistribution: r.integer(),
		Width:                  r.integer(),
		Height:                 r.integer(),
	}
	return cfg, r.done()
}

// DescribeCamera encodes a camera. The field of view is stored in degrees.
func DescribeCamera(c *camera.Camera) string {
	if c.Kind == camera.Ortho {
		return newRecord(LabelOrthoCamera).
			vec(c.Position).vec(c.Direction).vec(c.Up).
			float(c.OrthoWidth, c.OrthoHeight).
			String()
	}
	return newRecord(LabelPerspectiveCamera).
		vec(c.Position).vec(c.Direction).vec(c.Up).
		float(c.FOV).
		String()
}

// ParseCamera decodes a PerspectiveCamera or OrthoCamera record
func ParseCamera(line string) (*camera.Camera, error) {
	fields := split(line)
	var (
		r   *fieldReader
		err error
		c   *camera.Camera
	)
	switch fields[0] {
	case LabelPerspectiveCamera:
		r, err = newFieldReader(fields, LabelPerspectiveCamera, perspectiveFields)
		c = camera.NewPerspective()
	case LabelOrthoCamera:
		r, err = newFieldReader(fields, LabelOrthoCamera, orthoFields)
		c = camera.NewOrtho(0, 0)
	default:
		return nil, fmt.Errorf("%w: %q is not a camera", ErrUnknownLabel, fields[0])
	}
	if err != nil {
		return nil, err
	}

	position, direction, up := r.vec(), r.vec(), r.vec()
	c.LookAt(position, position.Add(direction), up)
	if c.Kind == camera.Ortho {
		c.OrthoWidth = r.float()
		c.OrthoHeight = r.float()
	} else {
		c.FOV = r.float()
	}
	return c, r.done()
}

// DescribeLight encodes a point or sphere light
func DescribeLight(l *lights.Light) string {
	if l.Kind == lights.KindSphere {
		return newRecord(LabelSphereLight).
			str(l.Name).float(l.Radius).vec(l.Position).color(l.Color).flag(l.Enabled).
			String()
	}
	return newRecord(LabelPointLight).
		str(l.Name).vec(l.Position).color(l.Color).flag(l.Enabled).
		String()
}

// ParseLight decodes a PointLight or SphereLight record
func ParseLight(line string) (*lights.Light, error) {
	fields := split(line)
	switch fields[0] {
	case LabelPointLight:
		r, err := newFieldReader(fields, LabelPointLight, pointLightFields)
		if err != nil {
			return nil, err
		}
		l := lights.NewPointLight(r.next(), r.vec(), r.color())
		l.Enabled = r.flag()
		return l, r.done()
	case LabelSphereLight:
		r, err := newFieldReader(fields, LabelSphereLight, sphereLightFields)
		if err != nil {
			return nil, err
		}
		name, radius := r.next(), r.float()
		l := lights.NewSphereLight(name, r.vec(), r.color(), radius)
		l.Enabled = r.flag()
		return l, r.done()
	default:
		return nil, fmt.Errorf("%w: %q is not a light", ErrUnknownLabel, fields[0])
	}
}

func (r *record) properties(p material.Properties) *record {
	return r.color(p.Diffuse).color(p.Specular).color(p.Ambient).
		integer(p.Shininess).
		float(p.Reflectance, p.ReflectionDistribution, p.Transparency, p.RefractionIndex, p.RefractionDistribution)
}

func (r *fieldReader) properties() material.Properties {
	return material.Properties{
		Diffuse:                r.color(),
		Specular:               r.color(),
		Ambient:                r.color(),
		Shininess:              r.integer(),
		Reflectance:            r.float(),
		ReflectionDistribution: r.float(),
		Transparency:           r.float(),
		RefractionIndex:        r.float(),
		RefractionDistribution: r.float(),
	}
}

// DescribeMaterial encodes a simple or checker material
func DescribeMaterial(m *material.Material) string {
	if m.Kind == material.KindChecker {
		return newRecord(LabelCheckerMaterial).
			materialName(m.Name).vec(m.TileSize).properties(m.Properties).properties(m.Alternate).
			String()
	}
	return newRecord(LabelSimpleMaterial).materialName(m.Name).properties(m.Properties).String()
}

// ParseMaterial decodes a SimpleMaterial or CheckerMaterial record
func ParseMaterial(line string) (*material.Material, error) {
	fields := split(line)
	switch fields[0] {
	case LabelSimpleMaterial:
		r, err := newFieldReader(fields, LabelSimpleMaterial, simpleFields)
		if err != nil {
			return nil, err
		}
		m := material.NewSimple(unescapeMaterialName(r.next()), r.properties())
		return m, r.done()
	case LabelCheckerMaterial:
		r, err := newFieldReader(fields, LabelCheckerMaterial, checkerFields)
		if err != nil {
			return nil, err
		}
		name, tile := unescapeMaterialName(r.next()), r.vec()
		odd := r.properties()
		m := material.NewChecker(name, tile, odd, r.properties())
		return m, r.done()
	default:
		return nil, fmt.Errorf("%w: %q is not a material", ErrUnknownLabel, fields[0])
	}
}

// DescribeShape encodes the subtree id of f as a single line
func DescribeShape(f *csg.Forest, id csg.NodeID) string {
	r := shapeRecord(f, id)
	if r == nil {
		return ""
	}
	return r.String()
}

func shapeRecord(f *csg.Forest, id csg.NodeID) *record {
	n := f.Node(id)
	if n == nil {
		return nil
	}

	if n.IsComposite() {
		r := newRecord(LabelComposite).str(n.Name).flag(n.Enabled).material(n.Material).integer(int(n.Op))
		for _, child := range []csg.NodeID{n.Left, n.Right} {
			if sub := shapeRecord(f, child); sub != nil {
				r.nested(sub)
			} else {
				r.raw("")
			}
		}
		return r
	}

	var r *record
	switch p := n.Primitive.(type) {
	case *geometry.Quadric:
		r = newRecord(LabelQuadric).str(n.Name).float(p.A, p.B, p.C, p.D, p.E, p.F, p.G, p.H, p.I, p.J)
	case *geometry.Plane:
		r = newRecord(LabelPlane).str(n.Name).vec(p.Origin).vec(p.Normal)
	case *geometry.Quad:
		r = newRecord(LabelQuad).str(n.Name).vec(p.Dimensions).vec(p.Plane.Origin).vec(p.Plane.Normal)
	case *geometry.Triangle:
		r = triangleRecord(newRecord(LabelTriangle).str(n.Name), p)
	case *geometry.Mesh:
		r = meshFields(newRecord(LabelMesh).str(n.Name), p)
	case *geometry.Model:
		r = newRecord(LabelModel).str(n.Name).flag(p.Smooth())
		for i := range p.Meshes {
			r.nested(meshFields(newRecord(LabelMesh).str("mesh"), &p.Meshes[i]).flag(true).material(nil))
		}
	default:
		return nil
	}
	return r.flag(n.Enabled).material(n.Material)
}

func triangleRecord(r *record, t *geometry.Triangle) *record {
	return r.vec(t.V1).vec(t.V2).vec(t.V3).vec(t.N1).vec(t.N2).vec(t.N3)
}

// meshFields appends the smooth flag and the triangle records
func meshFields(r *record, m *geometry.Mesh) *record {
	r.flag(m.Smooth)
	for i := range m.Triangles {
		t := &m.Triangles[i]
		r.nested(triangleRecord(newRecord(LabelTriangle).str("triangle"), t).flag(true).material(t.Material))
	}
	return r
}

// ParseShape decodes a shape record into dst and returns the new node. The
// node is not added to the top-level list and dst is untouched on error. Material names are resolved
// against materials; unknown names leave the material unset.
func ParseShape(line string, dst *csg.Forest, materials []*material.Material) (csg.NodeID, error) {
	scratch := csg.NewForest()
	id, err := parseShape(split(line), scratch, materials)
	if err != nil {
		return csg.NoNode, err
	}
	return dst.CopySubtree(scratch, id), nil
}

func parseShape(fields []string, dst *csg.Forest, materials []*material.Material) (csg.NodeID, error) {
	if len(fields) == 0 {
		return csg.NoNode, fmt.Errorf("%w: empty shape record", ErrFieldCount)
	}

	label := fields[0]
	if label == LabelComposite {
		return parseComposite(fields, dst, materials)
	}

	want := map[string]int{
		LabelQuadric:  quadricFields,
		LabelPlane:    planeFields,
		LabelQuad:     quadFields,
		LabelTriangle: triangleFields,
		LabelMesh:     -1,
		LabelModel:    -1,
	}
	count, ok := want[label]
	if !ok {
		return csg.NoNode, fmt.Errorf("%w: %q is not a shape", ErrUnknownLabel, label)
	}
	r, err := newFieldReader(fields, label, count)
	if err != nil {
		return csg.NoNode, err
	}

	name := r.next()
	var prim geometry.Primitive
	switch label {
	case LabelQuadric:
		prim = geometry.NewQuadric(r.float(), r.float(), r.float(), r.float(), r.float(),
			r.float(), r.float(), r.float(), r.float(), r.float())
	case LabelPlane:
		origin := r.vec()
		prim = geometry.NewPlane(origin, r.vec())
	case LabelQuad:
		dims, origin := r.vec(), r.vec()
		prim = geometry.NewQuad(origin, r.vec(), dims)
	case LabelTriangle:
		prim = readTriangle(r)
	case LabelMesh:
		prim = readMesh(r, materials)
	case LabelModel:
		smooth := r.flag()
		var meshes []geometry.Mesh
		for r.peek() == LabelMesh {
			sub, err := newFieldReader(r.subrecord(), LabelMesh, -1)
			if err != nil {
				return csg.NoNode, fmt.Errorf("model %q: %w", name, err)
			}
			sub.next()
			mesh := readMesh(sub, materials)
			sub.flag()
			sub.material(materials)
			if err := sub.done(); err != nil {
				return csg.NoNode, fmt.Errorf("model %q: %w", name, err)
			}
			meshes = append(meshes, *mesh)
		}
		model := geometry.NewModel(meshes)
		model.SetSmooth(smooth)
		prim = model
	}

	enabled := r.flag()
	mat := r.material(materials)
	if err := r.done(); err != nil {
		return csg.NoNode, err
	}

	id := dst.NewLeaf(name, prim, mat)
	dst.Node(id).Enabled = enabled
	return id, nil
}

func readTriangle(r *fieldReader) *geometry.Triangle {
	v1, v2, v3 := r.vec(), r.vec(), r.vec()
	n1, n2, n3 := r.vec(), r.vec(), r.vec()
	return geometry.NewSmoothTriangle(v1, v2, v3, n1, n2, n3)
}

// readMesh reads the smooth flag and the nested triangle records
func readMesh(r *fieldReader, materials []*material.Material) *geometry.Mesh {
	smooth := r.flag()
	var triangles []geometry.Triangle
	for r.peek() == LabelTriangle {
		sub, err := newFieldReader(r.subrecord(), LabelTriangle, triangleFields)
		if err != nil {
			r.err = err
			break
		}
		sub.next()
		t := readTriangle(sub)
		sub.flag()
		t.Material = sub.material(materials)
		if err := sub.done(); err != nil {
			r.err = err
			break
		}
		triangles = append(triangles, *t)
	}
	return geometry.NewMesh(triangles, smooth)
}

func parseComposite(fields []string, dst *csg.Forest, materials []*material.Material) (csg.NodeID, error) {
	r, err := newFieldReader(fields, LabelComposite, -1)
	if err != nil {
		return csg.NoNode, err
	}

	name := r.next()
	enabled := r.flag()
	mat := r.material(materials)
	op := csg.Op(r.integer())
	if r.err == nil && (op < csg.Add || op > csg.None) {
		return csg.NoNode, fmt.Errorf("composite %q: invalid operation %d", name, op)
	}

	children := [2]csg.NodeID{csg.NoNode, csg.NoNode}
	for i := range children {
		if r.peek() == "" {
			r.next()
			continue
		}
		sub := r.subrecord()
		if r.err != nil {
			break
		}
		child, err := parseShape(sub, dst, materials)
		if err != nil {
			return csg.NoNode, fmt.Errorf("composite %q: %w", name, err)
		}
		children[i] = child
	}
	if err := r.done(); err != nil {
		return csg.NoNode, err
	}

	id := dst.NewComposite(name, op, mat, children[0], children[1])
	dst.Node(id).Enabled = enabled
	return id, nil
}

// DescribeScene encodes a whole scene, one record per line: render settings,
// camera, lights, materials and then the top-level shapes
func DescribeScene(s *scene.Scene) []string {
	lines := []string{DescribeSettings(s.SamplingConfig), DescribeCamera(s.Camera)}
	lines = append(lines, lo.Map(s.Lights, func(l *lights.Light, _ int) string { return DescribeLight(l) })...)
	lines = append(lines, lo.Map(s.Materials, func(m *material.Material, _ int) string { return DescribeMaterial(m) })...)
	for _, root := range s.Shapes.Roots() {
		if line := DescribeShape(s.Shapes, root); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
