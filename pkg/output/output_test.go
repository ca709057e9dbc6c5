package output

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mrjoshuak/go-openexr/exr"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testFramebuffer() *renderer.Framebuffer {
	fb := renderer.NewFramebuffer(3, 2)
	fb.Pixels[fb.Index(0, 0)] = core.NewVec3(0.25, 0.25, 0.25)
	fb.Pixels[fb.Index(1, 0)] = core.NewVec3(4, 4, 4)
	fb.Pixels[fb.Index(2, 0)] = core.NewVec3(1, 0, 0)
	fb.Pixels[fb.Index(0, 1)] = core.NewVec3(0.5, 0.1, 0.9)
	return fb
}

func TestGamma(t *testing.T) {
	got := Gamma{}.Map([]core.Vec3{
		core.NewVec3(0.25, 0, -1),
		core.NewVec3(4, 1, 0.81),
	})
	want := []core.Vec3{
		core.NewVec3(0.5, 0, 0),
		core.NewVec3(0.999, 0.999, 0.9),
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Gamma mismatch (-want +got):\n%s", diff)
	}
}

func TestToneMappers_Range(t *testing.T) {
	pixels := testFramebuffer().Pixels
	for _, name := range []string{"gamma", "reinhard", "filmic"} {
		t.Run(name, func(t *testing.T) {
			tm, err := NewToneMapper(name)
			if err != nil {
				t.Fatal(err)
			}
			out := tm.Map(pixels)
			if len(out) != len(pixels) {
				t.Fatalf("Expected %d pixels, got %d", len(pixels), len(out))
			}
			for i, p := range out {
				for axis := 0; axis < 3; axis++ {
					v := p.Axis(axis)
					if math.IsNaN(v) || v < -1e-9 || v > 1+1e-9 {
						t.Errorf("Pixel %d channel %d out of range: %f", i, axis, v)
					}
				}
			}
			// Black stays black
			if out[5] != (core.Vec3{}) && name != "filmic" {
				t.Errorf("Expected black pixel to stay black, got %v", out[5])
			}
			// Brighter input gives brighter output
			if out[1].X <= out[0].X {
				t.Errorf("Expected monotonic mapping, got %f <= %f", out[1].X, out[0].X)
			}
		})
	}

	if _, err := NewToneMapper("aces"); err == nil {
		t.Error("Expected error for unknown tone mapper")
	}
}

func TestReinhardDevlin_AllBlack(t *testing.T) {
	out := DefaultReinhardDevlin().Map(make([]core.Vec3, 4))
	for i, p := range out {
		if p != (core.Vec3{}) {
			t.Errorf("Pixel %d: expected black, got %v", i, p)
		}
	}
}

func TestFilmic_WhitePoint(t *testing.T) {
	// Exposure bias doubles the input, so 5.6 lands on the white point
	out := Filmic{}.Map([]core.Vec3{core.NewVec3(5.6, 0, 0)})
	if math.Abs(out[0].X-1) > 1e-12 {
		t.Errorf("Expected white point to map to 1, got %f", out[0].X)
	}
	if math.Abs(out[0].Y) > 1e-12 {
		t.Errorf("Expected zero to map to 0, got %f", out[0].Y)
	}
}

func TestToRGBA(t *testing.T) {
	img := ToRGBA(testFramebuffer(), Gamma{})
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("Unexpected bounds %v", img.Bounds())
	}

	tests := []struct {
		x, y    int
		r, g, b uint8
	}{
		{0, 0, 127, 127, 127}, // sqrt(0.25) * 255 truncated
		{1, 0, 254, 254, 254}, // capped at 0.999
		{2, 0, 254, 0, 0},
		{2, 1, 0, 0, 0},
	}
	for _, tt := range tests {
		c := img.RGBAAt(tt.x, tt.y)
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != 255 {
			t.Errorf("Pixel (%d, %d): expected (%d,%d,%d), got %v", tt.x, tt.y, tt.r, tt.g, tt.b, c)
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	img := ToRGBA(testFramebuffer(), Gamma{})
	decoders := map[string]func(*bytes.Buffer) (image.Image, error){
		"png":  func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) },
		"bmp":  func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) },
		"tiff": func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(b) },
	}

	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, img, format); err != nil {
				t.Fatal(err)
			}
			decoded, err := decode(&buf)
			if err != nil {
				t.Fatal(err)
			}
			for y := 0; y < 2; y++ {
				for x := 0; x < 3; x++ {
					r1, g1, b1, _ := img.At(x, y).RGBA()
					r2, g2, b2, _ := decoded.At(x, y).RGBA()
					if r1 != r2 || g1 != g2 || b1 != b2 {
						t.Errorf("Pixel (%d, %d) changed in %s round trip", x, y, format)
					}
				}
			}
		})
	}

	if err := Encode(&bytes.Buffer{}, img, "gif"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestEncode_PPM(t *testing.T) {
	img := ToRGBA(testFramebuffer(), Gamma{})
	var buf bytes.Buffer
	if err := Encode(&buf, img, "ppm"); err != nil {
		t.Fatal(err)
	}
	header := "P6\n3 2\n255\n"
	if got := buf.String()[:len(header)]; got != header {
		t.Fatalf("Unexpected header %q", got)
	}
	body := buf.Bytes()[len(header):]
	if len(body) != 3*2*3 {
		t.Fatalf("Expected 18 body bytes, got %d", len(body))
	}
	if body[3] != 254 || body[6] != 254 || body[7] != 0 {
		t.Errorf("Unexpected pixel bytes %v", body[:9])
	}
}

func TestWritePFM(t *testing.T) {
	fb := testFramebuffer()
	var buf bytes.Buffer
	if err := WritePFM(&buf, fb); err != nil {
		t.Fatal(err)
	}

	reader := bufio.NewReader(&buf)
	for _, want := range []string{"PF\n", "3 2\n", "-1.0\n"} {
		line, err := reader.ReadString('\n')
		if err != nil || line != want {
			t.Fatalf("Expected header line %q, got %q (%v)", want, line, err)
		}
	}

	data := make([]float32, 3*3*2)
	if err := binary.Read(reader, binary.LittleEndian, data); err != nil {
		t.Fatal(err)
	}
	// First stored row is the bottom image row
	if data[0] != 0.5 || data[1] != float32(0.1) || data[2] != float32(0.9) {
		t.Errorf("Expected bottom-left pixel first, got %v", data[:3])
	}
	if data[9+3] != 4 {
		t.Errorf("Expected unclamped radiance, got %f", data[9+3])
	}
}

func TestWriteEXR(t *testing.T) {
	fb := testFramebuffer()
	path := filepath.Join(t.TempDir(), "render.exr")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteEXR(file, fb); err != nil {
		t.Fatal(err)
	}
	if err := file.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := exr.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	header := in.Header(0)
	if header.Width() != 3 || header.Height() != 2 {
		t.Fatalf("Expected 3x2 image, got %dx%d", header.Width(), header.Height())
	}
	channels := header.Channels()
	if channels.Len() != 3 {
		t.Fatalf("Expected 3 channels, got %d", channels.Len())
	}
	for i := 0; i < channels.Len(); i++ {
		if ch := channels.At(i); ch.Type != exr.PixelTypeFloat {
			t.Errorf("Channel %s: expected float pixels, got %v", ch.Name, ch.Type)
		}
	}

	reader, err := exr.NewScanlineReader(in)
	if err != nil {
		t.Fatal(err)
	}
	planes := map[string][]float32{"R": make([]float32, 6), "G": make([]float32, 6), "B": make([]float32, 6)}
	frameBuffer := exr.NewFrameBuffer()
	for name, data := range planes {
		frameBuffer.Set(name, exr.NewSliceFromFloat32(data, 3, 2))
	}
	reader.SetFrameBuffer(frameBuffer)
	if err := reader.ReadPixels(0, 1); err != nil {
		t.Fatal(err)
	}

	// Linear radiance survives unclamped, rows top to bottom
	for i, p := range fb.Pixels {
		got := []float32{planes["R"][i], planes["G"][i], planes["B"][i]}
		want := []float32{float32(p.X), float32(p.Y), float32(p.Z)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Pixel %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	fb := testFramebuffer()
	for _, format := range Formats {
		path := filepath.Join(dir, "nested", "render."+format)
		if err := SaveFile(path, fb, Gamma{}); err != nil {
			t.Fatalf("SaveFile(%s): %v", format, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("Expected non-empty %s file, got %v", format, err)
		}
	}
}
