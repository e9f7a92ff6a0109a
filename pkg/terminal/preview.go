package terminal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/df07/go-csg-raytracer/pkg/camera"
	"github.com/df07/go-csg-raytracer/pkg/renderer"
	"github.com/df07/go-csg-raytracer/pkg/scene"
)

// Config holds the options of the interactive preview
type Config struct {
	Title string
	FPS   int
}

// statusLogger keeps the last logged line for the status bar
type statusLogger struct {
	mu   sync.Mutex
	last string
}

func (l *statusLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = strings.TrimSpace(fmt.Sprintf(format, args...))
}

func (l *statusLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// keyActions maps keys to camera motion
var keyActions = []struct {
	keys   []string
	action camera.Action
}{
	{[]string{"w"}, camera.Forward},
	{[]string{"s"}, camera.Backward},
	{[]string{"a"}, camera.Left},
	{[]string{"d"}, camera.Right},
	{[]string{"r", "pgup"}, camera.Up},
	{[]string{"f", "pgdown"}, camera.Down},
	{[]string{"left"}, camera.YawLeft},
	{[]string{"right"}, camera.YawRight},
	{[]string{"up"}, camera.PitchUp},
	{[]string{"down"}, camera.PitchDown},
}

// Run shows the scene in the terminal and lets the camera be flown around.
// Every camera move restarts a block preview followed by a full render.
// The scene camera is left where the user stopped.
func Run(ctx context.Context, s *scene.Scene, cfg Config) error {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	status := &statusLogger{}
	rt := renderer.NewRaytracer(s, status)
	ctrl := renderer.NewController(rt, status)
	defer ctrl.Stop()

	frame := NewFrame(0, 0)
	resize := func(w, h int) {
		// One status row; two pixels per remaining cell
		rows := max(1, h-1)
		ctrl.Edit(func(rt *renderer.Raytracer) {
			rt.SetSize(w, rows*2)
			frame.Resize(rt.Width(), rt.Height())
			rt.SetLineCallback(func(y int) { frame.CopyRow(rt.Pixels(), y) })
		})
	}

	var mu sync.Mutex
	nav := camera.NewNavigator(s.Camera, cfg.FPS)
	restart := true
	final := false

	resize(width, height)

	go func() {
		for ev := range term.Events() {
			mu.Lock()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				resize(width, height)
				restart = true
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("q", "escape", "ctrl+c"):
					cancel()
				case ev.MatchString("space"):
					nav.Stop()
					final, restart = true, true
				default:
					for _, ka := range keyActions {
						if ev.MatchString(ka.keys...) {
							nav.Apply(ka.action)
						}
					}
				}
			}
			mu.Unlock()
		}
	}()

	frameTime := time.Second / time.Duration(cfg.FPS)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		mu.Lock()
		if nav.Moving() {
			ctrl.Edit(func(*renderer.Raytracer) { nav.Update() })
			restart = true
		}
		if restart && !nav.Moving() {
			ctrl.Start(ctx, !final, nil)
			restart, final = false, false
		}
		w, h := width, height
		mu.Unlock()

		if frame.Dirty() {
			frame.Draw(term, w, max(1, h-1))
		}
		title := cfg.Title
		if ctrl.Busy() {
			title += " [rendering]"
		}
		DrawText(term, 0, h-1, w, fmt.Sprintf("%s | wasd/rf move, arrows look, space full render, q quit | %s", title, status))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
	}
}
