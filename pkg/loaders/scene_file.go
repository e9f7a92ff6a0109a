package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-csg-raytracer/pkg/scene"
)

// ReadScene decodes a scene description, one record per line. Blank lines
// and lines starting with '#' are skipped. Reading stops at the first
// malformed line; the scene loaded so far is returned with the error.
func ReadScene(r io.Reader) (*scene.Scene, error) {
	s := scene.New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 256*1024*1024) // Mesh records are long
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := readLine(s, line); err != nil {
			return s, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("reading scene: %w", err)
	}
	return s, nil
}

func readLine(s *scene.Scene, line string) error {
	switch Label(line) {
	case LabelRayTracer:
		cfg, err := ParseSettings(line)
		if err != nil {
			return err
		}
		s.SamplingConfig = cfg
	case LabelPerspectiveCamera, LabelOrthoCamera:
		c, err := ParseCamera(line)
		if err != nil {
			return err
		}
		s.SetCamera(c)
	case LabelPointLight, LabelSphereLight:
		l, err := ParseLight(line)
		if err != nil {
			return err
		}
		s.AddLight(l)
	case LabelSimpleMaterial, LabelCheckerMaterial:
		m, err := ParseMaterial(line)
		if err != nil {
			return err
		}
		s.AddMaterial(m)
	default:
		id, err := ParseShape(line, s.Shapes, s.Materials)
		if err != nil {
			return err
		}
		s.Shapes.AppendRoot(id)
	}
	return nil
}

// WriteScene encodes s, one record per line
func WriteScene(w io.Writer, s *scene.Scene) error {
	bw := bufio.NewWriter(w)
	for _, line := range DescribeScene(s) {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadSceneFile reads a scene description file
func LoadSceneFile(path string) (*scene.Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ReadScene(file)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// SaveSceneFile writes s to path. A non-empty title is stored as the
// "# Scene:" metadata header used by scene discovery.
func SaveSceneFile(path string, s *scene.Scene, title string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create scene file: %w", err)
	}

	if title != "" {
		if _, err := fmt.Fprintf(file, "# Scene: %s\n", title); err != nil {
			file.Close()
			return err
		}
	}
	if err := WriteScene(file, s); err != nil {
		file.Close()
		return fmt.Errorf("failed to write scene file: %w", err)
	}
	return file.Close()
}

// OpenScene resolves a scene ID: a builtin ID, "file:<name>" for a file in
// the discovered scenes directory, or a path to a scene file
func OpenScene(id string) (*scene.Scene, error) {
	if s, ok := scene.Builtin(id); ok {
		return s, nil
	}

	path := id
	if name, ok := strings.CutPrefix(id, scene.FilePrefix); ok {
		dir := scene.FindScenesDir()
		if dir == "" {
			return nil, fmt.Errorf("scene %q: no scenes directory found", id)
		}
		path = filepath.Join(dir, name+scene.FileExtension)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("unknown scene %q (builtin scenes: %s)", id, strings.Join(scene.BuiltinIDs(), ", "))
	}
	return LoadSceneFile(path)
}
