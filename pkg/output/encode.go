package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Formats lists the supported encodings, named by file extension
var Formats = []string{"png", "bmp", "tiff", "ppm", "exr", "pfm"}

// ToRGBA tone maps the framebuffer and quantizes it to 8 bits per channel
func ToRGBA(fb *renderer.Framebuffer, tm ToneMapper) *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	mapped := tm.Map(fb.Pixels)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			p := mapped[fb.Index(x, y)]
			img.SetRGBA(x, y, color.RGBA{R: quantize(p.X), G: quantize(p.Y), B: quantize(p.Z), A: 255})
		}
	}
	return img
}

func quantize(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Max(0, math.Min(v, 1)) * 255)
}

// Encode writes img in the given format. exr and pfm keep linear data; use
// WriteEXR and WritePFM for those.
func Encode(w io.Writer, img *image.RGBA, format string) error {
	var err error
	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(w, img)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff", "tif":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "ppm":
		err = writePPM(w, img)
	default:
		return errors.Errorf("unsupported image format %q", format)
	}
	return errors.Wrapf(err, "encode %s", format)
}

// writePPM writes a binary P6 pixmap
func writePPM(w io.Writer, img *image.RGBA) error {
	bw := bufio.NewWriter(w)
	bounds := img.Bounds()
	fmt.Fprintf(bw, "P6\n%d %d\n255\n", bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			bw.Write([]byte{c.R, c.G, c.B})
		}
	}
	return bw.Flush()
}

// WritePFM writes the untouched linear radiance as a little-endian color
// portable float map. PFM stores rows bottom to top.
func WritePFM(w io.Writer, fb *renderer.Framebuffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "PF\n%d %d\n-1.0\n", fb.Width, fb.Height)
	row := make([]float32, 3*fb.Width)
	for y := fb.Height - 1; y >= 0; y-- {
		for x := 0; x < fb.Width; x++ {
			p := fb.At(x, y)
			row[3*x], row[3*x+1], row[3*x+2] = float32(p.X), float32(p.Y), float32(p.Z)
		}
		if err := binary.Write(bw, binary.LittleEndian, row); err != nil {
			return errors.Wrap(err, "write PFM row")
		}
	}
	return errors.Wrap(bw.Flush(), "write PFM")
}

// WriteEXR writes the untouched linear radiance as a 32-bit float RGB
// OpenEXR scanline image with ZIP compression
func WriteEXR(w io.WriteSeeker, fb *renderer.Framebuffer) error {
	header := exr.NewScanlineHeader(fb.Width, fb.Height)
	header.SetCompression(exr.CompressionZIP)
	// Channels are stored in name order
	channels := exr.NewChannelList()
	for _, name := range []string{"B", "G", "R"} {
		channels.Add(exr.NewChannel(name, exr.PixelTypeFloat))
	}
	header.SetChannels(channels)

	n := fb.Width * fb.Height
	red, green, blue := make([]float32, n), make([]float32, n), make([]float32, n)
	for i, p := range fb.Pixels {
		red[i], green[i], blue[i] = float32(p.X), float32(p.Y), float32(p.Z)
	}
	frameBuffer := exr.NewFrameBuffer()
	frameBuffer.Set("R", exr.NewSliceFromFloat32(red, fb.Width, fb.Height))
	frameBuffer.Set("G", exr.NewSliceFromFloat32(green, fb.Width, fb.Height))
	frameBuffer.Set("B", exr.NewSliceFromFloat32(blue, fb.Width, fb.Height))

	writer, err := exr.NewScanlineWriter(w, header)
	if err != nil {
		return errors.Wrap(err, "create EXR writer")
	}
	writer.SetFrameBuffer(frameBuffer)
	if err := writer.WritePixels(0, fb.Height-1); err != nil {
		return errors.Wrap(err, "write EXR scanlines")
	}
	return errors.Wrap(writer.Close(), "finish EXR")
}

// SaveFile writes the framebuffer to path, choosing the format from its extension
func SaveFile(path string, fb *renderer.Framebuffer, tm ToneMapper) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	defer file.Close()

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch format {
	case "exr":
		err = WriteEXR(file, fb)
	case "pfm":
		err = WritePFM(file, fb)
	default:
		err = Encode(file, ToRGBA(fb, tm), format)
	}
	if err != nil {
		return err
	}
	return errors.Wrap(file.Close(), "close output file")
}
