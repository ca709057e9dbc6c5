package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/pkg/errors"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
}

// LoadPLYFile loads the faces of a PLY file as triangles
func LoadPLYFile(path string) ([]*geometry.Triangle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open PLY")
	}
	defer file.Close()

	triangles, err := LoadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return triangles, nil
}

// LoadPLY reads vertex positions and faces from an ascii or binary PLY
// stream. Polygons are split into triangle fans; other properties are skipped.
func LoadPLY(r io.Reader) ([]*geometry.Triangle, error) {
	reader := bufio.NewReader(r)
	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, err
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		values = &asciiValues{scanner: newWordScanner(reader)}
	case "binary_little_endian":
		values = &binaryValues{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{reader: reader, order: binary.BigEndian}
	default:
		return nil, errors.Errorf("unsupported PLY format %q", header.Format)
	}

	position := [3]int{-1, -1, -1}
	for i, prop := range header.VertexProps {
		switch prop.Name {
		case "x":
			position[0] = i
		case "y":
			position[1] = i
		case "z":
			position[2] = i
		}
	}
	if position[0] < 0 || position[1] < 0 || position[2] < 0 {
		return nil, errors.New("PLY vertices have no x, y, z properties")
	}

	vertices := make([]core.Vec3, header.VertexCount)
	row := make([]float64, len(header.VertexProps))
	for v := range vertices {
		for i, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipList(values, prop); err != nil {
					return nil, errors.Wrapf(err, "vertex %d", v)
				}
				continue
			}
			if row[i], err = values.next(prop.Type); err != nil {
				return nil, errors.Wrapf(err, "vertex %d", v)
			}
		}
		vertices[v] = core.NewVec3(row[position[0]], row[position[1]], row[position[2]])
	}

	triangles := make([]*geometry.Triangle, 0, header.FaceCount)
	for f := 0; f < header.FaceCount; f++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return nil, errors.Wrapf(err, "face %d", f)
				}
				continue
			}

			indices, err := readList(values, prop)
			if err != nil {
				return nil, errors.Wrapf(err, "face %d", f)
			}
			for _, index := range indices {
				if index < 0 || index >= len(vertices) {
					return nil, errors.Errorf("face %d references vertex %d of %d", f, index, len(vertices))
				}
			}
			for k := 2; k < len(indices); k++ {
				triangles = append(triangles, geometry.NewTriangle(
					vertices[indices[0]], vertices[indices[k-1]], vertices[indices[k]], nil))
			}
		}
	}
	return triangles, nil
}

// parsePLYHeader reads up to and including the end_header line
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string

	for first := true; ; first = false {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "read PLY header")
		}
		line = strings.TrimSpace(line)
		if first {
			if line != "ply" {
				return nil, errors.New("missing PLY magic number")
			}
			continue
		}
		if line == "end_header" {
			return header, nil
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 2 {
				header.Format = parts[1]
			}
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid element line %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("invalid element count: %s", parts[2])
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
				return nil, err
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		return PLYProperty{IsList: true, ListType: parts[1], Type: parts[2], Name: parts[3]}, nil
	}
	if len(parts) == 2 && parts[0] != "list" {
		return PLYProperty{Type: parts[0], Name: parts[1]}, nil
	}
	return PLYProperty{}, errors.Errorf("invalid property definition %q", strings.Join(parts, " "))
}

// plyValueReader yields the next scalar of the body, whatever the encoding
type plyValueReader interface {
	next(typ string) (float64, error)
}

func readList(values plyValueReader, prop PLYProperty) ([]int, error) {
	count, err := values.next(prop.ListType)
	if err != nil {
		return nil, err
	}
	indices := make([]int, int(count))
	for i := range indices {
		v, err := values.next(prop.Type)
		if err != nil {
			return nil, err
		}
		indices[i] = int(v)
	}
	return indices, nil
}

func skipList(values plyValueReader, prop PLYProperty) error {
	_, err := readList(values, prop)
	return err
}

func skipProperty(values plyValueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipList(values, prop)
	}
	_, err := values.next(prop.Type)
	return err
}

type binaryValues struct {
	reader io.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *binaryValues) next(typ string) (float64, error) {
	size := plyTypeSize(typ)
	if size == 0 {
		return 0, errors.Errorf("unknown PLY type %q", typ)
	}
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.reader, buf); err != nil {
		return 0, errors.Wrap(err, "truncated PLY body")
	}

	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default: // double
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}

func plyTypeSize(typ string) int {
	switch typ {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

type asciiValues struct {
	scanner *bufio.Scanner
}

func newWordScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return scanner
}

func (a *asciiValues) next(typ string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, errors.Wrap(err, "read PLY body")
		}
		return 0, errors.New("truncated PLY body")
	}
	v, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s value", typ)
	}
	return v, nil
}
