package renderer

import (
	"context"
	"image"
	"image/color"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/scene"
)

// Raytracer renders a scene into a BGRA framebuffer, one scanline at a time
// from the top. Settings must not change while Render is running.
type Raytracer struct {
	scene      *scene.Scene
	config     scene.SamplingConfig
	preview    bool
	numWorkers int
	seed       int64

	pixels []byte // width*height*4, B G R A

	// Unrefined samples of the current and previous row, used for edge detection
	row   []core.Color
	above []core.Color

	cancelled    atomic.Bool
	lineCallback func(y int)
	stats        RenderStats
	logger       core.Logger
}

// NewRaytracer creates a raytracer configured from the scene's sampling
// settings
func NewRaytracer(s *scene.Scene, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	rt := &Raytracer{
		scene:      s,
		config:     s.SamplingConfig,
		numWorkers: 1,
		seed:       42, // Deterministic for testing
		logger:     logger,
	}
	rt.SetSize(rt.config.Width, rt.config.Height)
	return rt
}

// SetScene changes the rendered scene. The current settings are kept.
func (rt *Raytracer) SetScene(s *scene.Scene) {
	rt.scene = s
}

// Scene returns the rendered scene
func (rt *Raytracer) Scene() *scene.Scene {
	return rt.scene
}

// Config returns the current settings
func (rt *Raytracer) Config() scene.SamplingConfig {
	return rt.config
}

// SetSize resizes and clears the framebuffer
func (rt *Raytracer) SetSize(width, height int) {
	width, height = max(1, width), max(1, height)
	rt.config.Width = width
	rt.config.Height = height
	rt.pixels = make([]byte, width*height*4)
	rt.row = make([]core.Color, width)
	rt.above = make([]core.Color, width)
}

// SetPreviewMode switches between block previews without reflection or
// refraction and full renders
func (rt *Raytracer) SetPreviewMode(preview bool) { rt.preview = preview }

// SetRecursionDepth limits the reflection/refraction depth
func (rt *Raytracer) SetRecursionDepth(depth int) { rt.config.RecursionDepth = max(0, depth) }

// SetShadowDistribution sets the number of shadow rays per sphere light
func (rt *Raytracer) SetShadowDistribution(n int) { rt.config.ShadowDistribution = max(1, n) }

// SetReflectionDistribution sets the number of rays per glossy reflection
func (rt *Raytracer) SetReflectionDistribution(n int) { rt.config.ReflectionDistribution = max(1, n) }

// SetRefractionDistribution sets the number of rays per glossy refraction
func (rt *Raytracer) SetRefractionDistribution(n int) { rt.config.RefractionDistribution = max(1, n) }

func (rt *Raytracer) SetAdaptiveSupersampling(enabled bool) {
	rt.config.AdaptiveSupersampling = enabled
}

func (rt *Raytracer) SetSupersamplingThreshold(threshold float64) {
	rt.config.SupersamplingThreshold = threshold
}

// SetSubSamplingSize sets the block size of preview renders
func (rt *Raytracer) SetSubSamplingSize(size int) { rt.config.SubSamplingSize = max(1, size) }

func (rt *Raytracer) SetBackgroundColor(c core.Color) { rt.config.Background = c }

// SetNumWorkers sets the number of goroutines sharing each row. Renders are
// single-threaded by default; 0 uses the CPU count.
func (rt *Raytracer) SetNumWorkers(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	rt.numWorkers = n
}

// SetLineCallback registers a function called after each completed
// scanline, in order from the top
func (rt *Raytracer) SetLineCallback(fn func(y int)) { rt.lineCallback = fn }

// Width returns the framebuffer width
func (rt *Raytracer) Width() int { return rt.config.Width }

// Height returns the framebuffer height
func (rt *Raytracer) Height() int { return rt.config.Height }

// PreviewMode reports whether renders are block previews
func (rt *Raytracer) PreviewMode() bool { return rt.preview }

// Pixels returns the live BGRA framebuffer. It is replaced by SetSize.
func (rt *Raytracer) Pixels() []byte { return rt.pixels }

// Stats returns the statistics of the last render
func (rt *Raytracer) Stats() RenderStats { return rt.stats }

// Cancel asks a running render to stop at the next pixel
func (rt *Raytracer) Cancel() { rt.cancelled.Store(true) }

// Cancelled reports whether the last render was stopped early
func (rt *Raytracer) Cancelled() bool { return rt.cancelled.Load() }

// Render traces the whole image and returns the elapsed time in
// microseconds. Cancelling ctx or calling Cancel stops it early; rows
// finished so far stay in the framebuffer.
func (rt *Raytracer) Render(ctx context.Context) int64 {
	start := time.Now()
	rt.cancelled.Store(false)
	rt.stats = RenderStats{}

	ctxCancelled := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		rt.Cancel()
		close(ctxCancelled)
	})
	defer func() {
		if !stop() {
			<-ctxCancelled
		}
	}()
	if ctx.Err() != nil {
		rt.Cancel()
	}

	width, height := rt.config.Width, rt.config.Height
	step := 1
	if rt.preview {
		step = max(1, rt.config.SubSamplingSize)
	}
	refine := !rt.preview && rt.config.AdaptiveSupersampling

	pool := NewWorkerPool(rt, rt.numWorkers)
	pool.Start()
	defer pool.Stop()

	spans := NewSpanGrid(width, step, pool.GetNumWorkers())
	for y := 0; y < height; y += step {
		if rt.cancelled.Load() {
			break
		}

		pool.RunPass(y, step, spans, tracePass)
		if refine && y > 0 {
			pool.RunPass(y, step, spans, refinePass)
		}
		if rt.cancelled.Load() {
			break
		}

		rt.stats.Rows += min(step, height-y)
		if rt.lineCallback != nil {
			for line := y; line < min(y+step, height); line++ {
				rt.lineCallback(line)
			}
		}
		rt.row, rt.above = rt.above, rt.row
	}

	rt.stats.Elapsed = time.Since(start)
	rt.stats.Collect(pool)
	if rt.cancelled.Load() {
		rt.logger.Printf("Render cancelled after %d of %d rows (%v)\n", rt.stats.Rows, height, rt.stats.Elapsed)
	} else {
		rt.logger.Printf("Rendered %dx%d in %v (%d primary rays, %d pixels refined)\n",
			width, height, rt.stats.Elapsed, rt.stats.PrimaryRays, rt.stats.RefinedPixels)
	}
	return rt.stats.Elapsed.Microseconds()
}

// setPixel writes a clamped colour into the framebuffer
func (rt *Raytracer) setPixel(x, y int, c core.Color) {
	r, g, b := c.Clamp().Bytes()
	i := (y*rt.config.Width + x) * 4
	rt.pixels[i] = b
	rt.pixels[i+1] = g
	rt.pixels[i+2] = r
	rt.pixels[i+3] = 255
}

// Image converts the framebuffer into an RGBA image
func (rt *Raytracer) Image() *image.RGBA {
	width, height := rt.config.Width, rt.config.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			img.SetRGBA(x, y, color.RGBA{
				R: rt.pixels[i+2],
				G: rt.pixels[i+1],
				B: rt.pixels[i],
				A: rt.pixels[i+3],
			})
		}
	}
	return img
}
