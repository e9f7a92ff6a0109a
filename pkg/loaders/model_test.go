package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-csg-raytracer/pkg/core"
)

func TestReadOBJ(t *testing.T) {
	src := `# two groups
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
o square
f 1//1 2//1 3//1 4//1
g tri
f -4 -3 -2
`
	model, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if len(model.Meshes) != 2 {
		t.Fatalf("Expected 2 meshes, got %d", len(model.Meshes))
	}

	square := model.Meshes[0]
	if len(square.Triangles) != 2 {
		t.Errorf("Expected the quad to fan into 2 triangles, got %d", len(square.Triangles))
	}
	if !square.Smooth {
		t.Error("Expected the square to be smooth, every corner has a normal")
	}

	tri := model.Meshes[1]
	if tri.Smooth {
		t.Error("Expected the triangle without normals to be flat")
	}
	if tri.Triangles[0].V3 != core.NewVec3(1, 1, 0) {
		t.Errorf("Negative index resolved to %v", tri.Triangles[0].V3)
	}
}

func TestReadOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"bad coordinate", "v 0 zero 0\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadOBJ(strings.NewReader(tt.src)); err == nil {
				t.Error("Expected an error, got nil")
			}
		})
	}
}

func TestImportModel(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "tri.OBJ")
	if err := os.WriteFile(objPath, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	model, err := ImportModel(objPath)
	if err != nil {
		t.Fatalf("ImportModel failed: %v", err)
	}
	if model.TriangleCount() != 1 {
		t.Errorf("Expected 1 triangle, got %d", model.TriangleCount())
	}

	tests := []struct {
		name string
		path string
	}{
		{"unsupported extension", filepath.Join(dir, "model.stl")},
		{"missing file", filepath.Join(dir, "missing.ply")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := ImportModel(tt.path)
			if err == nil {
				t.Fatal("Expected an error, got nil")
			}
			if model == nil || !model.IsEmpty() {
				t.Error("Expected an empty model alongside the error")
			}
		})
	}
}

func TestSupportedExtensions(t *testing.T) {
	got := strings.Join(SupportedExtensions(), " ")
	if got != ".3mf .glb .gltf .obj .ply" {
		t.Errorf("Unexpected extensions %q", got)
	}
}

func TestIndexedMesh(t *testing.T) {
	positions := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	}

	if _, err := indexedMesh(positions, nil, []int{0, 1}); err == nil {
		t.Error("Expected an error for a partial triangle")
	}
	if _, err := indexedMesh(positions, nil, []int{0, 1, 3}); err == nil {
		t.Error("Expected an error for an out of range index")
	}

	mesh, err := indexedMesh(positions, nil, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("indexedMesh failed: %v", err)
	}
	if mesh.Smooth {
		t.Error("Expected a flat mesh without normals")
	}
	if n := mesh.Triangles[0].N1; n != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected face normal +Z, got %v", n)
	}
}

func TestFan(t *testing.T) {
	got := fan([]int{4, 5, 6, 7, 8})
	want := []int{4, 5, 6, 4, 6, 7, 4, 7, 8}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}
