package renderer

import (
	"math/rand"
	"sync"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

// rowPass selects what a span task does with its pixels
type rowPass int

const (
	tracePass  rowPass = iota // Trace one ray per pixel or preview block
	refinePass                // Supersample pixels that differ from their neighbours
)

// Span is a horizontal run of pixels [X0, X1) of a row
type Span struct {
	X0, X1 int
}

// NewSpanGrid splits a row of the given width into spans for numWorkers
// workers. Span starts are aligned to step so preview blocks are never
// split.
func NewSpanGrid(width, step, numWorkers int) []Span {
	blocks := (width + step - 1) / step
	count := min(blocks, max(1, numWorkers*4))
	perSpan := (blocks + count - 1) / count

	var spans []Span
	for b := 0; b < blocks; b += perSpan {
		spans = append(spans, Span{
			X0: b * step,
			X1: min(width, (b+perSpan)*step),
		})
	}
	return spans
}

// SpanTask is one span of one row pass
type SpanTask struct {
	Y    int
	Step int
	Span Span
	Pass rowPass
	done *sync.WaitGroup
}

// WorkerPool traces row spans in parallel
type WorkerPool struct {
	taskQueue  chan SpanTask
	workers    []*Worker
	numWorkers int
	wg         sync.WaitGroup
}

// Worker traces span tasks with its own random sampler
type Worker struct {
	ID        int
	raytracer *Raytracer
	sampler   core.Sampler
	taskQueue chan SpanTask

	primaryRays   int
	refinedPixels int
}

// NewWorkerPool creates a worker pool for rt with the specified number of
// workers
func NewWorkerPool(rt *Raytracer, numWorkers int) *WorkerPool {
	numWorkers = max(1, numWorkers)
	wp := &WorkerPool{
		taskQueue:  make(chan SpanTask, numWorkers*4),
		numWorkers: numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:        i,
			raytracer: rt,
			sampler:   core.NewRandomSampler(rand.New(rand.NewSource(rt.seed + int64(i)))),
			taskQueue: wp.taskQueue,
		})
	}
	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop shuts down all workers once queued tasks are done
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
}

// RunPass submits every span of row y and waits for them to finish
func (wp *WorkerPool) RunPass(y, step int, spans []Span, pass rowPass) {
	var done sync.WaitGroup
	done.Add(len(spans))
	for _, span := range spans {
		wp.taskQueue <- SpanTask{Y: y, Step: step, Span: span, Pass: pass, done: &done}
	}
	done.Wait()
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		switch task.Pass {
		case tracePass:
			w.traceSpan(task)
		case refinePass:
			w.refineSpan(task)
		}
		task.done.Done()
	}
}

// traceSpan traces the centre of each pixel, or of each block in preview,
// and fills the block. Previews mark the row below each block in red.
func (w *Worker) traceSpan(task SpanTask) {
	rt := w.raytracer
	width, height := rt.config.Width, rt.config.Height
	y, step := task.Y, task.Step

	for x := task.Span.X0; x < task.Span.X1; x += step {
		if rt.cancelled.Load() {
			return
		}

		// Sample the centre of the part of the block inside the image
		cx := float64(x) + 0.5*float64(min(step, width-x))
		cy := float64(y) + 0.5*float64(min(step, height-y))
		c := rt.traceRay(rt.scene.Camera.GetRay(width, height, cx, cy), rt.config.RecursionDepth, w.sampler)
		w.primaryRays++
		rt.row[x] = c

		for by := y; by < min(y+step, height); by++ {
			for bx := x; bx < min(x+step, width); bx++ {
				rt.setPixel(bx, by, c)
			}
		}
		if rt.preview && y+step < height {
			rt.setPixel(x, y+step, core.Red)
		}
	}
}

// supersampleWeight is the weight of each of the four extra samples
const supersampleWeight = 0.6

var supersampleOffsets = [4][2]float64{
	{-0.25, 0.25}, {0.25, 0.25}, {-0.25, -0.25}, {0.25, -0.25},
}

// refineSpan adds four weighted samples to pixels whose first sample
// differs from the pixel to the left or above by more than the threshold
func (w *Worker) refineSpan(task SpanTask) {
	rt := w.raytracer
	width, height := rt.config.Width, rt.config.Height
	threshold := rt.config.SupersamplingThreshold
	y := task.Y

	for x := max(1, task.Span.X0); x < task.Span.X1; x++ {
		if rt.cancelled.Load() {
			return
		}

		c := rt.row[x]
		if c.Distance(rt.row[x-1]) <= threshold && c.Distance(rt.above[x]) <= threshold {
			continue
		}

		for _, off := range supersampleOffsets {
			ray := rt.scene.Camera.GetRay(width, height, float64(x)+0.5+off[0], float64(y)+0.5+off[1])
			c = c.Add(rt.traceRay(ray, rt.config.RecursionDepth, w.sampler).Multiply(supersampleWeight))
			w.primaryRays++
		}
		rt.setPixel(x, y, c.Divide(1+4*supersampleWeight))
		w.refinedPixels++
	}
}
