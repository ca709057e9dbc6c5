package renderer

import (
	"image"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Tile is the private framebuffer region owned by one worker
type Tile struct {
	ID     int             // Worker index
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1) in image coordinates
	Pixels []core.Vec3     // Row-major colors for Bounds
	Random core.Random     // Tile-specific random generator for deterministic results
}

// NewTile creates a tile for bounds with its own generator
func NewTile(id int, bounds image.Rectangle, seed uint64) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
		Pixels: make([]core.Vec3, bounds.Dx()*bounds.Dy()),
		Random: core.NewRandom(seed),
	}
}

func (t *Tile) index(x, y int) int {
	return (x - t.Bounds.Min.X) + (y-t.Bounds.Min.Y)*t.Bounds.Dx()
}

// Set stores the color of image pixel (x, y)
func (t *Tile) Set(x, y int, color core.Vec3) {
	t.Pixels[t.index(x, y)] = color
}

// At returns the color of image pixel (x, y)
func (t *Tile) At(x, y int) core.Vec3 {
	return t.Pixels[t.index(x, y)]
}

// PartitionStrips splits the image into n full-height column strips of
// width/n columns. The width%n leftover columns go one each to the first
// strips, so the strips always cover the image.
func PartitionStrips(width, height, n int) []image.Rectangle {
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	if width <= 0 || height <= 0 {
		return nil
	}

	strips := make([]image.Rectangle, n)
	base, remainder := width/n, width%n
	x := 0
	for i := range strips {
		w := base
		if i < remainder {
			w++
		}
		strips[i] = image.Rect(x, 0, x+w, height)
		x += w
	}
	return strips
}
