package renderer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

// Result describes one finished render of a Controller
type Result struct {
	Preview   bool
	Cancelled bool
	Elapsed   int64 // Microseconds
	Stats     RenderStats
}

// Controller runs at most one render of a Raytracer at a time on a
// background goroutine. Starting a render or editing cancels the active
// render and waits for it to stop first.
type Controller struct {
	rt     *Raytracer
	logger core.Logger

	mu      sync.Mutex
	group   *errgroup.Group
	cancel  context.CancelFunc
	running atomic.Bool
}

// NewController creates a controller for rt
func NewController(rt *Raytracer, logger core.Logger) *Controller {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Controller{rt: rt, logger: logger}
}

// Raytracer returns the controlled raytracer. Change its settings through
// Edit while a render may be running.
func (c *Controller) Raytracer() *Raytracer {
	return c.rt
}

// Start renders in the background. With previewFirst a block preview is
// rendered before the final image. onResult, if set, is called on the
// render goroutine after each render.
func (c *Controller) Start(ctx context.Context, previewFirst bool, onResult func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	c.group, c.cancel = g, cancel
	c.running.Store(true)

	passes := []bool{false}
	if previewFirst {
		passes = []bool{true, false}
	}

	g.Go(func() error {
		defer c.running.Store(false)
		for _, preview := range passes {
			c.rt.SetPreviewMode(preview)
			elapsed := c.rt.Render(ctx)
			result := Result{
				Preview:   preview,
				Cancelled: c.rt.Cancelled(),
				Elapsed:   elapsed,
				Stats:     c.rt.Stats(),
			}
			if onResult != nil {
				onResult(result)
			}
			if result.Cancelled {
				return context.Canceled
			}
		}
		return nil
	})
}

// Stop cancels the active render and waits for it to return
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if c.group == nil {
		return
	}
	c.cancel()
	if err := c.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Printf("Render stopped with error: %v\n", err)
	}
	c.group, c.cancel = nil, nil
}

// Wait blocks until the active render finishes. It returns
// context.Canceled when the render was cancelled.
func (c *Controller) Wait() error {
	c.mu.Lock()
	g := c.group
	c.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// Busy reports whether a render is in flight
func (c *Controller) Busy() bool {
	return c.running.Load()
}

// Edit cancels the active render and calls fn while no render runs. The
// scene and the settings may be changed freely inside fn.
func (c *Controller) Edit(fn func(rt *Raytracer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	fn(c.rt)
}
