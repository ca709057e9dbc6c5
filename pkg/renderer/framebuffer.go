package renderer

import (
	"image"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/pkg/errors"
)

// Framebuffer holds the linear color of every pixel, row-major from the top
// left. It records how often each pixel was written so merges can be checked.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
	writes []uint16
}

// NewFramebuffer creates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
		writes: make([]uint16, width*height),
	}
}

// Index returns the position of pixel (x, y) in Pixels
func (fb *Framebuffer) Index(x, y int) int {
	return x + y*fb.Width
}

// At returns the color of pixel (x, y)
func (fb *Framebuffer) At(x, y int) core.Vec3 {
	return fb.Pixels[fb.Index(x, y)]
}

// Bounds returns the image rectangle covered by the framebuffer
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// Writes returns how many times pixel (x, y) has been written
func (fb *Framebuffer) Writes(x, y int) int {
	return int(fb.writes[fb.Index(x, y)])
}

// MergeTile copies a finished tile into place. Tiles must lie inside the
// framebuffer and must not overlap pixels that were already merged.
func (fb *Framebuffer) MergeTile(tile *Tile) error {
	if !tile.Bounds.In(fb.Bounds()) {
		return errors.Errorf("tile %d bounds %v outside framebuffer %v", tile.ID, tile.Bounds, fb.Bounds())
	}

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			i := fb.Index(x, y)
			if fb.writes[i] > 0 {
				return errors.Errorf("tile %d overlaps pixel (%d, %d)", tile.ID, x, y)
			}
			fb.writes[i]++
			fb.Pixels[i] = tile.At(x, y)
		}
	}
	return nil
}

// CheckComplete verifies every pixel was written exactly once
func (fb *Framebuffer) CheckComplete() error {
	missing := 0
	first := -1
	for i, n := range fb.writes {
		if n != 1 {
			missing++
			if first < 0 {
				first = i
			}
		}
	}
	if missing > 0 {
		return errors.Errorf("%d pixels not written exactly once, first at (%d, %d)",
			missing, first%fb.Width, first/fb.Width)
	}
	return nil
}
