package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/pkg/errors"
)

const (
	stlHeaderSize = 80
	stlRecordSize = 50 // normal, three vertices, attribute byte count
)

// LoadSTLFile loads the triangles of a binary STL file
func LoadSTLFile(path string) ([]*geometry.Triangle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open STL")
	}
	defer file.Close()

	triangles, err := LoadSTL(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return triangles, nil
}

// LoadSTL reads a binary STL stream. The stored facet normals are ignored;
// triangles compute theirs from the winding. Triangles carry no material.
func LoadSTL(r io.Reader) ([]*geometry.Triangle, error) {
	reader := bufio.NewReader(r)

	var header [stlHeaderSize + 4]byte
	if _, err := io.ReadFull(reader, header[:]); err != nil {
		return nil, errors.Wrap(err, "read STL header")
	}
	count := binary.LittleEndian.Uint32(header[stlHeaderSize:])

	triangles := make([]*geometry.Triangle, 0, min(count, 1<<20))
	var record [stlRecordSize]byte
	for {
		n, err := io.ReadFull(reader, record[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Errorf("truncated STL record %d: read %d of %d bytes", len(triangles), n, stlRecordSize)
		}
		triangles = append(triangles, geometry.NewTriangle(
			stlPoint(record[12:]),
			stlPoint(record[24:]),
			stlPoint(record[36:]),
			nil,
		))
	}

	if uint32(len(triangles)) != count {
		return nil, errors.Errorf("STL header declares %d triangles, file holds %d", count, len(triangles))
	}
	return triangles, nil
}

func stlPoint(b []byte) core.Vec3 {
	return core.NewVec3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	)
}
