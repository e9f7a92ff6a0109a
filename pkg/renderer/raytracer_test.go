package renderer

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
	"github.com/df07/go-csg-raytracer/pkg/lights"
	"github.com/df07/go-csg-raytracer/pkg/material"
	"github.com/df07/go-csg-raytracer/pkg/scene"
)

func newTestSampler() core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(42)))
}

func matteProperties(diffuse core.Color) material.Properties {
	props := material.DefaultProperties()
	props.Diffuse = diffuse
	props.Ambient = core.Black
	props.Specular = core.Black
	props.Shininess = 0
	props.Reflectance = 0
	props.Transparency = 0
	return props
}

// newSphereScene creates a red unit sphere at the origin lit from the camera
// side by a white point light
func newSphereScene(width, height int) *scene.Scene {
	s := scene.New()
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = height
	red := s.AddMaterial(material.NewSimple("red", matteProperties(core.NewColor(1, 0, 0))))
	s.AddPrimitive("ball", geometry.NewSphere(core.NewVec3(0, 0, 0), 1), red)
	s.AddLight(lights.NewPointLight("key", core.NewVec3(0, 0, 10), core.White))
	return s
}

func pixelAt(rt *Raytracer, x, y int) [4]byte {
	i := (y*rt.Width() + x) * 4
	p := rt.Pixels()
	return [4]byte{p[i], p[i+1], p[i+2], p[i+3]}
}

func TestNewRaytracer_UsesSceneSettings(t *testing.T) {
	s := scene.New()
	s.SamplingConfig.Width = 32
	s.SamplingConfig.Height = 16
	s.SamplingConfig.RecursionDepth = 2

	rt := NewRaytracer(s, nil)
	if rt.Width() != 32 || rt.Height() != 16 {
		t.Errorf("Expected 32x16, got %dx%d", rt.Width(), rt.Height())
	}
	if len(rt.Pixels()) != 32*16*4 {
		t.Errorf("Expected %d framebuffer bytes, got %d", 32*16*4, len(rt.Pixels()))
	}
	if rt.Config().RecursionDepth != 2 {
		t.Errorf("Expected recursion depth 2, got %d", rt.Config().RecursionDepth)
	}

	rt.SetSize(0, -4)
	if rt.Width() != 1 || rt.Height() != 1 {
		t.Errorf("Expected the size to clamp to 1x1, got %dx%d", rt.Width(), rt.Height())
	}
}

func TestRender_BackgroundOnly(t *testing.T) {
	s := scene.New()
	s.SamplingConfig.Width = 8
	s.SamplingConfig.Height = 4

	rt := NewRaytracer(s, nil)
	rt.SetBackgroundColor(core.NewColor(0.2, 0.4, 0.6))
	rt.Render(context.Background())

	want := [4]byte{153, 102, 51, 255} // B G R A
	for y := 0; y < rt.Height(); y++ {
		for x := 0; x < rt.Width(); x++ {
			if got := pixelAt(rt, x, y); got != want {
				t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
	if rt.Cancelled() {
		t.Error("Render reported cancellation")
	}
}

func TestTraceRay_Lighting(t *testing.T) {
	tests := []struct {
		name     string
		lightPos core.Vec3
		enabled  bool
		expected core.Color
	}{
		{"facing light", core.NewVec3(0, 0, 10), true, core.NewColor(1, 0, 0)},
		{"light behind surface", core.NewVec3(0, 0, -10), true, core.Black},
		{"light disabled", core.NewVec3(0, 0, 10), false, core.Black},
		{"light at 60 degrees", core.NewVec3(0, 10*math.Sqrt(3), 11), true, core.NewColor(0.5, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSphereScene(4, 4)
			s.Lights[0].Position = tt.lightPos
			s.Lights[0].Enabled = tt.enabled
			rt := NewRaytracer(s, nil)

			ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
			got := rt.traceRay(ray, 0, newTestSampler())
			if got.Distance(tt.expected) > 1e-3 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTraceRay_Shadow(t *testing.T) {
	s := scene.New()
	props := matteProperties(core.White)
	props.Ambient = core.NewColor(0.1, 0.1, 0.1)
	white := s.AddMaterial(material.NewSimple("white", props))
	s.AddPrimitive("floor", geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), white)
	s.AddLight(lights.NewPointLight("top", core.NewVec3(0, 10, 0), core.White))
	blocker := s.AddPrimitive("blocker", geometry.NewSphere(core.NewVec3(0, 5, 0), 1), white)

	rt := NewRaytracer(s, nil)
	ray := core.NewRay(core.NewVec3(0, 1, 3), core.NewVec3(0, -1, -3))

	shadowed := rt.traceRay(ray, 0, newTestSampler())
	if shadowed.Distance(props.Ambient) > 1e-9 {
		t.Errorf("Expected ambient only in shadow, got %v", shadowed)
	}

	s.Shapes.SetEnabled(blocker, false)
	lit := rt.traceRay(ray, 0, newTestSampler())
	if lit.Distance(core.NewColor(1.1, 1.1, 1.1)) > 1e-9 {
		t.Errorf("Expected ambient plus full diffuse, got %v", lit)
	}
}

func TestTraceRay_Specular(t *testing.T) {
	s := newSphereScene(4, 4)
	props := matteProperties(core.Black)
	props.Specular = core.White
	props.Shininess = 10
	s.SetMaterial(s.Materials[0], material.NewSimple("shiny", props))

	rt := NewRaytracer(s, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	got := rt.traceRay(ray, 0, newTestSampler())
	if got.Distance(core.White) > 1e-9 {
		t.Errorf("Expected a full highlight looking down the mirrored light ray, got %v", got)
	}
}

func TestTraceRay_Reflection(t *testing.T) {
	s := scene.New()
	props := matteProperties(core.Black)
	props.Reflectance = 0.5
	mirror := s.AddMaterial(material.NewSimple("mirror", props))
	s.AddPrimitive("mirror", geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), mirror)

	rt := NewRaytracer(s, nil)
	rt.SetBackgroundColor(core.NewColor(0, 0, 1))
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	tests := []struct {
		name     string
		depth    int
		preview  bool
		expected core.Color
	}{
		{"no bounces left", 0, false, core.Black},
		{"one bounce", 1, false, core.NewColor(0, 0, 0.5)},
		{"preview", 1, true, core.Black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt.SetPreviewMode(tt.preview)
			got := rt.traceRay(ray, tt.depth, newTestSampler())
			if got.Distance(tt.expected) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTraceRay_Refraction(t *testing.T) {
	s := scene.New()
	props := matteProperties(core.Black)
	props.Transparency = 1
	props.RefractionIndex = 1
	glass := s.AddMaterial(material.NewSimple("glass", props))
	s.AddPrimitive("pane", geometry.NewSphere(core.NewVec3(0, 0, 0), 1), glass)

	rt := NewRaytracer(s, nil)
	rt.SetBackgroundColor(core.NewColor(0, 1, 0))
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	// Index 1 passes straight through both surfaces
	got := rt.traceRay(ray, 2, newTestSampler())
	if got.Distance(core.NewColor(0, 1, 0)) > 1e-9 {
		t.Errorf("Expected the background through the sphere, got %v", got)
	}
	if got := rt.traceRay(ray, 1, newTestSampler()); got.Distance(core.Black) > 1e-9 {
		t.Errorf("Expected black with one bounce, got %v", got)
	}
}

func TestTraceDistributed_StaysOnSide(t *testing.T) {
	s := scene.New()
	rt := NewRaytracer(s, nil)
	rt.SetBackgroundColor(core.White)

	normal := core.NewVec3(0, 1, 0)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0.05, 0))
	got := rt.traceDistributed(ray, normal, 90, 16, 1, newTestSampler())
	if got.Distance(core.White) > 1e-9 {
		t.Errorf("Expected the average of background samples, got %v", got)
	}
}

func TestRender_PreviewBlocks(t *testing.T) {
	s := scene.New()
	s.SamplingConfig.Width = 10
	s.SamplingConfig.Height = 10

	rt := NewRaytracer(s, nil)
	rt.SetBackgroundColor(core.NewColor(0, 0, 1))
	rt.SetPreviewMode(true)
	rt.SetSubSamplingSize(4)

	var lines []int
	rt.SetLineCallback(func(y int) { lines = append(lines, y) })
	rt.Render(context.Background())

	if len(lines) != 10 {
		t.Fatalf("Expected 10 line callbacks, got %v", lines)
	}
	for i, y := range lines {
		if y != i {
			t.Fatalf("Expected lines in order, got %v", lines)
		}
	}

	// Every marker row is traced afterwards, so no red is left
	blue := [4]byte{255, 0, 0, 255}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if got := pixelAt(rt, x, y); got != blue {
				t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, blue, got)
			}
		}
	}
	if rt.Stats().PrimaryRays != 9 {
		t.Errorf("Expected one ray per 4x4 block (9), got %d", rt.Stats().PrimaryRays)
	}
}

func TestRender_PreviewMarkerOnCancel(t *testing.T) {
	s := scene.New()
	s.SamplingConfig.Width = 8
	s.SamplingConfig.Height = 8

	rt := NewRaytracer(s, nil)
	rt.SetPreviewMode(true)
	rt.SetSubSamplingSize(4)
	rt.SetLineCallback(func(y int) {
		if y == 3 {
			rt.Cancel()
		}
	})
	rt.Render(context.Background())

	red := [4]byte{0, 0, 255, 255}
	for _, x := range []int{0, 4} {
		if got := pixelAt(rt, x, 4); got != red {
			t.Errorf("Expected a red marker at (%d,4), got %v", x, got)
		}
	}
	if got := pixelAt(rt, 1, 4); got != [4]byte{} {
		t.Errorf("Expected (1,4) untouched, got %v", got)
	}
}

func TestRender_CancelKeepsCompletedRows(t *testing.T) {
	s := newSphereScene(16, 12)
	rt := NewRaytracer(s, nil)
	rt.SetNumWorkers(3)

	var lines []int
	rt.SetLineCallback(func(y int) {
		lines = append(lines, y)
		if y == 4 {
			rt.Cancel()
		}
	})
	elapsed := rt.Render(context.Background())

	if !rt.Cancelled() {
		t.Fatal("Expected the render to be cancelled")
	}
	if elapsed < 0 {
		t.Errorf("Expected a non-negative elapsed time, got %d", elapsed)
	}
	if len(lines) != 5 || rt.Stats().Rows != 5 {
		t.Errorf("Expected 5 completed rows, got callbacks %v and stats %d", lines, rt.Stats().Rows)
	}

	for y := 0; y < rt.Height(); y++ {
		for x := 0; x < rt.Width(); x++ {
			alpha := pixelAt(rt, x, y)[3]
			if y <= 4 && alpha != 255 {
				t.Fatalf("Completed row %d has an unwritten pixel at x=%d", y, x)
			}
			if y > 4 && pixelAt(rt, x, y) != [4]byte{} {
				t.Fatalf("Row %d was touched after cancellation", y)
			}
		}
	}
}

func TestRender_CancelledContext(t *testing.T) {
	rt := NewRaytracer(newSphereScene(16, 16), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rt.Render(ctx)
	if !rt.Cancelled() {
		t.Error("Expected a cancelled context to cancel the render")
	}
	if rt.Stats().Rows != 0 {
		t.Errorf("Expected no rows, got %d", rt.Stats().Rows)
	}

	// A new render clears the flag
	rt.Render(context.Background())
	if rt.Cancelled() || rt.Stats().Rows != 16 {
		t.Errorf("Expected a complete render, got cancelled=%v rows=%d", rt.Cancelled(), rt.Stats().Rows)
	}
}

func TestRender_AdaptiveSupersampling(t *testing.T) {
	tests := []struct {
		name     string
		adaptive bool
		refined  bool
	}{
		{"enabled", true, true},
		{"disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRaytracer(newSphereScene(24, 24), nil)
			rt.SetAdaptiveSupersampling(tt.adaptive)
			rt.SetSupersamplingThreshold(0.1)
			rt.Render(context.Background())

			stats := rt.Stats()
			if (stats.RefinedPixels > 0) != tt.refined {
				t.Errorf("Expected refined=%v, got %d refined pixels", tt.refined, stats.RefinedPixels)
			}
			if stats.PrimaryRays != 24*24+4*stats.RefinedPixels {
				t.Errorf("Expected %d primary rays, got %d", 24*24+4*stats.RefinedPixels, stats.PrimaryRays)
			}
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	s := newSphereScene(20, 20)
	s.Lights = nil
	s.AddLight(lights.NewSphereLight("soft", core.NewVec3(2, 5, 5), core.White, 1))
	s.SamplingConfig.ShadowDistribution = 4

	first := NewRaytracer(s, nil)
	first.SetNumWorkers(1)
	first.Render(context.Background())

	second := NewRaytracer(s, nil)
	second.SetNumWorkers(1)
	second.Render(context.Background())

	a, b := first.Pixels(), second.Pixels()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Renders differ at byte %d", i)
		}
	}
}

func TestNewSpanGrid(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		step       int
		numWorkers int
	}{
		{"single worker", 10, 1, 1},
		{"many workers", 100, 1, 8},
		{"more workers than pixels", 3, 1, 16},
		{"preview blocks", 50, 20, 4},
		{"uneven blocks", 17, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := NewSpanGrid(tt.width, tt.step, tt.numWorkers)
			next := 0
			for _, span := range spans {
				if span.X0 != next {
					t.Fatalf("Spans %v leave a gap at %d", spans, next)
				}
				if span.X0%tt.step != 0 {
					t.Errorf("Span %v is not aligned to %d", span, tt.step)
				}
				if span.X1 <= span.X0 {
					t.Errorf("Empty span %v", span)
				}
				next = span.X1
			}
			if next != tt.width {
				t.Errorf("Spans %v end at %d, expected %d", spans, next, tt.width)
			}
		})
	}
}
