package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/loaders"
	"github.com/df07/go-csg-raytracer/pkg/renderer"
	"github.com/df07/go-csg-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client. Zero values
// fall back to the settings stored with the scene.
type RenderRequest struct {
	Scene           string
	Width           int
	Height          int
	PreviewFirst    bool // Stream a block preview before the final image
	RecursionDepth  int
	SubSamplingSize int
	Supersampling   bool
	Background      core.Color
}

// LineUpdate represents one finished scanline sent via SSE
type LineUpdate struct {
	Y         int    `json:"y"`
	Preview   bool   `json:"preview"`
	ImageData string `json:"imageData"` // Base64 encoded PNG of the row
}

// PassUpdate is sent after each preview or final render
type PassUpdate struct {
	RenderID       string `json:"renderId"`
	Preview        bool   `json:"preview"`
	Cancelled      bool   `json:"cancelled"`
	ElapsedMs      int64  `json:"elapsedMs"`
	Rows           int    `json:"rows"`
	PrimaryRays    int    `json:"primaryRays"`
	RefinedPixels  int    `json:"refinedPixels"`
	PrimitiveCount int    `json:"primitiveCount"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "start", "console", "line", "pass", "cancelled", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders a scene and streams every finished scanline via SSE.
// The render can be stopped with DELETE /api/render/:id using the ID of the
// start event, or by disconnecting.
func (s *Server) handleRender(c echo.Context) error {
	sc, req, err := s.parseRenderRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reqCtx := c.Request().Context()
	renderCtx, cancel := context.WithCancel(reqCtx)
	defer cancel()

	renderID := uuid.NewString()
	s.register(renderID, cancel)
	defer s.unregister(renderID)

	// Only one render runs at a time: supersede the active one and wait
	// until it has stopped
	release := s.acquireRender(cancel)
	defer release()

	res := c.Response()
	setSSEHeaders(res)
	res.WriteHeader(http.StatusOK)

	// Single writer goroutine; it drains the channel until it is closed
	events := make(chan SSEEvent, 100)
	written := make(chan struct{})
	go func() {
		writeSSEEvents(reqCtx, res, events)
		close(written)
	}()
	// emit queues an event unless ctx ends first. Render progress is sent
	// under renderCtx so a stalled client cannot hold up a superseded render.
	emit := func(ctx context.Context, eventType string, payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Error marshaling %s event: %v", eventType, err)
			return
		}
		select {
		case events <- SSEEvent{Type: eventType, Data: string(data)}:
		case <-ctx.Done():
		}
	}
	send := func(eventType string, payload interface{}) {
		emit(renderCtx, eventType, payload)
	}

	consoleChan := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		for msg := range consoleChan {
			send("console", msg)
		}
		close(consoleDone)
	}()
	logger := NewWebLogger(renderID, consoleChan)

	rt := configureRaytracer(sc, req, logger)
	rt.SetLineCallback(func(y int) {
		data, err := encodeRow(rt, y)
		if err != nil {
			logger.Printf("Error encoding row %d: %v\n", y, err)
			return
		}
		send("line", LineUpdate{Y: y, Preview: rt.PreviewMode(), ImageData: data})
	})

	emit(reqCtx, "start", map[string]interface{}{
		"renderId": renderID,
		"scene":    req.Scene,
		"width":    rt.Width(),
		"height":   rt.Height(),
	})

	ctrl := renderer.NewController(rt, logger)
	ctrl.Start(renderCtx, req.PreviewFirst, func(result renderer.Result) {
		send("pass", PassUpdate{
			RenderID:       renderID,
			Preview:        result.Preview,
			Cancelled:      result.Cancelled,
			ElapsedMs:      result.Elapsed / 1000,
			Rows:           result.Stats.Rows,
			PrimaryRays:    result.Stats.PrimaryRays,
			RefinedPixels:  result.Stats.RefinedPixels,
			PrimitiveCount: sc.GetPrimitiveCount(),
		})
	})
	renderErr := ctrl.Wait()
	release()

	close(consoleChan)
	<-consoleDone
	if renderErr != nil {
		emit(reqCtx, "cancelled", map[string]string{"renderId": renderID})
	} else {
		emit(reqCtx, "complete", map[string]string{"renderId": renderID})
	}
	close(events)
	<-written
	return nil
}

// parseRenderRequest opens the requested scene and applies the overrides of
// the query string
func (s *Server) parseRenderRequest(c echo.Context) (*scene.Scene, *RenderRequest, error) {
	req := &RenderRequest{Scene: sceneParam(c)}
	sc, err := loaders.OpenScene(req.Scene)
	if err != nil {
		return nil, nil, err
	}

	values := c.QueryParams()
	config := sc.SamplingConfig
	if req.Width, err = parseIntParam(values, "width", config.Width, minImageSize, maxImageSize); err != nil {
		return nil, nil, err
	}
	if req.Height, err = parseIntParam(values, "height", config.Height, minImageSize, maxImageSize); err != nil {
		return nil, nil, err
	}
	if req.RecursionDepth, err = parseIntParam(values, "recursionDepth", config.RecursionDepth, 0, maxDepth); err != nil {
		return nil, nil, err
	}
	if req.SubSamplingSize, err = parseIntParam(values, "subSamplingSize", config.SubSamplingSize, 1, maxBlockSize); err != nil {
		return nil, nil, err
	}
	if req.Supersampling, err = parseBoolParam(values, "supersampling", config.AdaptiveSupersampling); err != nil {
		return nil, nil, err
	}
	if req.PreviewFirst, err = parseBoolParam(values, "preview", true); err != nil {
		return nil, nil, err
	}

	req.Background = config.Background
	if value := values.Get("background"); value != "" {
		if req.Background, err = renderer.ParseColor(value); err != nil {
			return nil, nil, err
		}
	}

	if req.Width*req.Height > 800*600 && req.RecursionDepth > 8 {
		log.Printf("Render warning: Large image with deep recursion may render slowly")
	}
	return sc, req, nil
}

// configureRaytracer creates a raytracer for the scene with the request
// overrides applied
func configureRaytracer(sc *scene.Scene, req *RenderRequest, logger core.Logger) *renderer.Raytracer {
	rt := renderer.NewRaytracer(sc, logger)
	rt.SetSize(req.Width, req.Height)
	rt.SetRecursionDepth(req.RecursionDepth)
	rt.SetSubSamplingSize(req.SubSamplingSize)
	rt.SetAdaptiveSupersampling(req.Supersampling)
	rt.SetBackgroundColor(req.Background)
	return rt
}

// handleCancel stops an active render
func (s *Server) handleCancel(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	cancel, ok := s.renders[id]
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown render: "+id)
	}
	cancel()
	return c.JSON(http.StatusOK, map[string]string{"cancelled": id})
}

// activeRender is the render currently holding the server
type activeRender struct {
	cancel func()
	done   chan struct{}
}

// acquireRender makes the caller the active render. The previous render, if
// any, is cancelled and waited for. The returned release func marks the
// caller's render as stopped and may be called more than once.
func (s *Server) acquireRender(cancel func()) (release func()) {
	next := &activeRender{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	prev := s.active
	s.active = next
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.active == next {
				s.active = nil
			}
			s.mu.Unlock()
			close(next.done)
		})
	}
}

func (s *Server) register(id string, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders[id] = cancel
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.renders, id)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
}

// writeSSEEvents writes all SSE events from a single goroutine. Events that
// arrive after the client disconnected are drained and dropped.
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	failed := false
	for event := range events {
		if failed || ctx.Err() != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			failed = true
			continue
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// encodeRow converts scanline y of the framebuffer into a base64 PNG
func encodeRow(rt *renderer.Raytracer, y int) (string, error) {
	width := rt.Width()
	pixels := rt.Pixels()[y*width*4 : (y+1)*width*4]

	img := image.NewRGBA(image.Rect(0, 0, width, 1))
	for x := 0; x < width; x++ {
		i := x * 4
		img.Pix[i] = pixels[i+2]
		img.Pix[i+1] = pixels[i+1]
		img.Pix[i+2] = pixels[i]
		img.Pix[i+3] = pixels[i+3]
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
