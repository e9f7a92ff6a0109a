package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

// ImageFormats lists the file extensions SaveImage can write
var ImageFormats = []string{".png", ".bmp", ".tif", ".tiff"}

// SaveImage encodes img to path, choosing the format by extension
func SaveImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))

	var encode func(*os.File, image.Image) error
	switch ext {
	case ".png":
		encode = func(f *os.File, img image.Image) error { return png.Encode(f, img) }
	case ".bmp":
		encode = func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }
	case ".tif", ".tiff":
		encode = func(f *os.File, img image.Image) error {
			return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return fmt.Errorf("unsupported image format %q (supported: %s)", ext, strings.Join(ImageFormats, ", "))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", ext, err)
	}
	return file.Close()
}

// ParseColor parses a background colour given as a hex string ("#1a2b3c"
// or "1a2b3c") or as three comma separated components in [0, 1]
func ParseColor(s string) (core.Color, error) {
	s = strings.TrimSpace(s)

	if parts := strings.Split(s, ","); len(parts) == 3 {
		var rgb [3]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return core.Color{}, fmt.Errorf("invalid colour component %q: %w", part, err)
			}
			rgb[i] = v
		}
		return core.NewColor(rgb[0], rgb[1], rgb[2]), nil
	}

	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return core.Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return core.NewColor(c.R, c.G, c.B), nil
}

// FormatColor returns the hex form of a colour, clamped to [0, 1]
func FormatColor(c core.Color) string {
	c = c.Clamp()
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Hex()
}
