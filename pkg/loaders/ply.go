package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty

	HasNormals bool
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData contains the vertex and face data loaded from a PLY file
type PLYData struct {
	Vertices []core.Vec3 // Vertex positions (x, y, z)
	Faces    []int       // Triangle indices (3 per triangle)
	Normals  []core.Vec3 // Per-vertex normals (nx, ny, nz) - empty if not present
}

// ImportPLY loads a PLY file as a single-mesh model
func ImportPLY(path string) (*geometry.Model, error) {
	data, err := LoadPLY(path)
	if err != nil {
		return nil, err
	}
	mesh, err := indexedMesh(data.Vertices, data.Normals, data.Faces)
	if err != nil {
		return nil, err
	}
	return geometry.NewModel([]geometry.Mesh{*mesh}), nil
}

// LoadPLY loads a PLY file and returns the raw vertex and face data
func LoadPLY(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()
	return ReadPLY(file)
}

// ReadPLY decodes an ascii or binary little endian PLY stream. Polygons are
// fan triangulated.
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReaderSize(r, 1024*1024)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values plyValueReader
	switch header.Format {
	case "binary_little_endian":
		values = &plyBinaryReader{r: reader}
	case "ascii":
		values = &plyASCIIReader{r: reader}
	case "binary_big_endian":
		return nil, fmt.Errorf("binary big-endian PLY format not yet implemented")
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	data, err := readPLYBody(values, header)
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}
	return data, nil
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("missing ply magic number")
	}

	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("error reading header: %w", err)
		}
		line := strings.TrimSpace(raw)
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element definition: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				if prop.Name == "nx" {
					header.HasNormals = true
				}
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

// plyValueReader reads one scalar of a PLY data type as float64
type plyValueReader interface {
	read(dataType string) (float64, error)
}

type plyBinaryReader struct {
	r   *bufio.Reader
	buf [8]byte
}

func (b *plyBinaryReader) read(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return 0, err
	}

	le := binary.LittleEndian
	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(le.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(le.Uint64(buf)), nil
	case "int", "int32":
		return float64(int32(le.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(le.Uint32(buf)), nil
	case "short", "int16":
		return float64(int16(le.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(le.Uint16(buf)), nil
	case "char", "int8":
		return float64(int8(buf[0])), nil
	default: // uchar, uint8
		return float64(buf[0]), nil
	}
}

type plyASCIIReader struct {
	r      *bufio.Reader
	tokens []string
}

func (a *plyASCIIReader) read(dataType string) (float64, error) {
	for len(a.tokens) == 0 {
		line, err := a.r.ReadString('\n')
		if line == "" && err != nil {
			return 0, io.ErrUnexpectedEOF
		}
		a.tokens = strings.Fields(line)
	}
	tok := a.tokens[0]
	a.tokens = a.tokens[1:]
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, tok)
	}
	return v, nil
}

// readPLYBody reads the vertex and face elements described by header
func readPLYBody(values plyValueReader, header *PLYHeader) (*PLYData, error) {
	data := &PLYData{
		Vertices: make([]core.Vec3, 0, header.VertexCount),
		Faces:    make([]int, 0, header.FaceCount*3),
	}
	if header.HasNormals {
		data.Normals = make([]core.Vec3, 0, header.VertexCount)
	}

	for i := 0; i < header.VertexCount; i++ {
		var pos, normal core.Vec3
		for _, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipPLYList(values, prop); err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			v, err := values.read(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex %d property %s: %w", i, prop.Name, err)
			}
			switch prop.Name {
			case "x":
				pos.X = v
			case "y":
				pos.Y = v
			case "z":
				pos.Z = v
			case "nx":
				normal.X = v
			case "ny":
				normal.Y = v
			case "nz":
				normal.Z = v
			}
		}
		data.Vertices = append(data.Vertices, pos)
		if header.HasNormals {
			data.Normals = append(data.Normals, normal)
		}
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipPLYProperty(values, prop); err != nil {
					return nil, fmt.Errorf("face %d property %s: %w", i, prop.Name, err)
				}
				continue
			}

			count, err := values.read(prop.ListType)
			if err != nil {
				return nil, fmt.Errorf("failed to read face vertex count at face %d: %w", i, err)
			}
			if count < 3 {
				return nil, fmt.Errorf("face %d has %v vertices", i, count)
			}
			polygon := make([]int, int(count))
			for j := range polygon {
				idx, err := values.read(prop.DataType)
				if err != nil {
					return nil, fmt.Errorf("failed to read face indices at face %d: %w", i, err)
				}
				polygon[j] = int(idx)
			}
			data.Faces = append(data.Faces, fan(polygon)...)
		}
	}

	return data, nil
}

func skipPLYProperty(values plyValueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipPLYList(values, prop)
	}
	_, err := values.read(prop.Type)
	return err
}

func skipPLYList(values plyValueReader, prop PLYProperty) error {
	count, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := values.read(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// getTypeSize returns the size in bytes of a PLY data type, 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}
