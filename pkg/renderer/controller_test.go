package renderer

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestController_PreviewThenFinal(t *testing.T) {
	rt := NewRaytracer(newSphereScene(16, 16), nil)
	c := NewController(rt, nil)

	var (
		mu      sync.Mutex
		results []Result
	)
	c.Start(context.Background(), true, func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})
	if err := c.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].Preview || results[1].Preview {
		t.Errorf("Expected a preview then a final render, got %+v", results)
	}
	for _, r := range results {
		if r.Cancelled {
			t.Errorf("Unexpected cancellation: %+v", r)
		}
	}
	if rt.PreviewMode() {
		t.Error("Expected the raytracer to be left in final mode")
	}
	if c.Busy() {
		t.Error("Controller still busy after Wait")
	}
}

func TestController_RestartCancelsActiveRender(t *testing.T) {
	rt := NewRaytracer(newSphereScene(64, 64), nil)
	c := NewController(rt, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	rt.SetLineCallback(func(y int) {
		if y == 0 {
			once.Do(func() { close(started) })
			<-release
		}
	})

	var first Result
	c.Start(context.Background(), false, func(r Result) { first = r })
	<-started

	// Unblock the first render once the restart has cancelled it
	go func() {
		for !rt.Cancelled() {
		}
		close(release)
	}()

	rt2done := make(chan Result, 1)
	c.Start(context.Background(), false, func(r Result) { rt2done <- r })

	if !first.Cancelled {
		t.Errorf("Expected the first render to be cancelled, got %+v", first)
	}
	if err := c.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if second := <-rt2done; second.Cancelled || second.Stats.Rows != 64 {
		t.Errorf("Expected the second render to complete, got %+v", second)
	}
}

func TestController_EditStopsRender(t *testing.T) {
	rt := NewRaytracer(newSphereScene(32, 32), nil)
	c := NewController(rt, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx, false, nil)
	if err := c.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled from a cancelled context, got %v", err)
	}

	c.Start(context.Background(), false, nil)
	c.Edit(func(rt *Raytracer) {
		if c.Busy() {
			t.Error("Render still running inside Edit")
		}
		rt.SetSize(8, 8)
	})
	if rt.Width() != 8 {
		t.Errorf("Expected the edit to resize to 8, got %d", rt.Width())
	}

	c.Stop()
	c.Stop()
}
