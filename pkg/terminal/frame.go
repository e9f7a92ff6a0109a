package terminal

import (
	"image/color"
	"sync"

	uv "github.com/charmbracelet/ultraviolet"
)

// CellSetter is the part of uv.Screen that Draw needs
type CellSetter interface {
	SetCell(x, y int, c *uv.Cell)
}

// Frame is a copy of the raytracer framebuffer that the display can read
// while a render is writing the live one. Rows are copied in as the
// raytracer completes them.
type Frame struct {
	mu     sync.Mutex
	width  int
	height int
	pixels []byte // B G R A
	dirty  bool
}

// NewFrame creates a black frame
func NewFrame(width, height int) *Frame {
	f := &Frame{}
	f.Resize(width, height)
	return f
}

// Resize clears the frame to the given size
func (f *Frame) Resize(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
	f.pixels = make([]byte, width*height*4)
	f.dirty = true
}

// CopyRow copies scanline y out of a BGRA framebuffer of the same width
func (f *Frame) CopyRow(src []byte, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if y < 0 || y >= f.height {
		return
	}
	start, end := y*f.width*4, (y+1)*f.width*4
	if end > len(src) {
		return
	}
	copy(f.pixels[start:end], src[start:end])
	f.dirty = true
}

// Dirty reports whether rows arrived since the last Draw
func (f *Frame) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

func (f *Frame) pixel(x, y int) color.RGBA {
	if x >= f.width || y >= f.height {
		return color.RGBA{}
	}
	i := (y*f.width + x) * 4
	return color.RGBA{R: f.pixels[i+2], G: f.pixels[i+1], B: f.pixels[i], A: f.pixels[i+3]}
}

// Draw paints the frame onto rows [0, rows) of the screen. Each cell shows
// two pixels with an upper half block: foreground on top, background below.
func (f *Frame) Draw(scr CellSetter, cols, rows int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for row := 0; row < rows; row++ {
		top, bottom := row*2, row*2+1
		for col := 0; col < cols && col < f.width; col++ {
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(f.pixel(col, top)),
					Bg: cellColor(f.pixel(col, bottom)),
				},
			})
		}
	}
	f.dirty = false
}

// cellColor maps pixels that were never rendered to the terminal default
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// DrawText writes a single line of text starting at (x, y)
func DrawText(scr CellSetter, x, y, width int, text string) {
	col := x
	for _, r := range text {
		if col >= width {
			break
		}
		scr.SetCell(col, y, &uv.Cell{Content: string(r), Width: 1})
		col++
	}
	for ; col < width; col++ {
		scr.SetCell(col, y, &uv.Cell{Content: " ", Width: 1})
	}
}
