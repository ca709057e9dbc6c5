package job

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/df07/go-bvh-pathtracer/pkg/config"
	"github.com/go-json-experiment/json"
)

func smallConfig() config.Render {
	cfg := config.Default()
	cfg.Width, cfg.Height = 15, 15
	cfg.SamplesPerPixel = 2
	cfg.MaxDepth = 4
	cfg.Workers = 3
	return cfg
}

func TestJob_Run(t *testing.T) {
	j, err := New(smallConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if j.Tree == nil {
		t.Fatal("Expected a BVH for the default config")
	}

	result, err := j.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Render.TotalSamples != 15*15*2 || result.Render.Workers != 3 {
		t.Errorf("Unexpected stats %+v", result.Render)
	}
	if result.BVH == nil || result.BVH.Strategy != "object" || result.BVH.Primitives != result.Primitives {
		t.Errorf("Unexpected BVH stats %+v", result.BVH)
	}

	// The emissive ceiling fills the top rows
	lit := false
	for x := 0; x < 15; x++ {
		if result.Framebuffer.At(x, 0).Luminance() > 0 {
			lit = true
		}
	}
	if !lit {
		t.Error("Expected the light to show in the top row")
	}
}

func TestJob_Deterministic(t *testing.T) {
	render := func() []float64 {
		j, err := New(smallConfig(), nil)
		if err != nil {
			t.Fatal(err)
		}
		result, err := j.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		values := make([]float64, 0, 3*len(result.Framebuffer.Pixels))
		for _, p := range result.Framebuffer.Pixels {
			values = append(values, p.X, p.Y, p.Z)
		}
		return values
	}

	a, b := render(), render()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Value %d differs between renders with the same seed", i)
		}
	}
}

func TestJob_Inspect(t *testing.T) {
	for _, bvhName := range []string{"object", "spatial", "none"} {
		t.Run(bvhName, func(t *testing.T) {
			cfg := smallConfig()
			cfg.BVH = bvhName
			j, err := New(cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			if (j.Tree == nil) != (bvhName == "none") {
				t.Fatalf("Unexpected tree %v for bvh=%s", j.Tree, bvhName)
			}

			// Center pixel looks straight at the sphere
			got, err := j.Inspect(7, 7)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Hit || got.GeometryType != "sphere" || got.MaterialType != "diffuse" {
				t.Fatalf("Unexpected inspection %+v", got)
			}
			if math.Abs(got.Distance-1.15) > 1e-9 {
				t.Errorf("Expected distance 1.15, got %f", got.Distance)
			}
			if !got.FrontFace || got.Normal[2] > -0.999 {
				t.Errorf("Expected front face normal towards camera, got %v", got.Normal)
			}

			// Top row center sees the ceiling light
			top, err := j.Inspect(7, 0)
			if err != nil {
				t.Fatal(err)
			}
			if !top.Light || top.MaterialType != "emissive" || top.GeometryType != "triangle" {
				t.Errorf("Expected emissive triangle, got %+v", top)
			}
		})
	}

	j, _ := New(smallConfig(), nil)
	if _, err := j.Inspect(15, 0); err == nil {
		t.Error("Expected error for pixel outside the image")
	}
}

func TestJob_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Scene = "teapot"
	if _, err := New(cfg, nil); err == nil {
		t.Error("Expected error for unknown scene")
	}

	cfg = smallConfig()
	cfg.SamplesPerPixel = 0
	if _, err := New(cfg, nil); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestJob_IntegratorSettings(t *testing.T) {
	tests := []struct {
		name     string
		cutoff   *[3]float64
		expected [3]float64
	}{
		{"default cutoff is white", nil, [3]float64{1, 1, 1}},
		{"configured cutoff", &[3]float64{0.2, 0.4, 0.6}, [3]float64{0.2, 0.4, 0.6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.MaxDepth = 0
			if tt.cutoff != nil {
				cfg.CutoffColor = *tt.cutoff
			}
			j, err := New(cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			result, err := j.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			// With no depth budget every camera ray returns the cutoff color
			for i, p := range result.Framebuffer.Pixels {
				got := [3]float64{p.X, p.Y, p.Z}
				for c := range got {
					if math.Abs(got[c]-tt.expected[c]) > 1e-12 {
						t.Fatalf("Pixel %d: expected %v, got %v", i, tt.expected, got)
					}
				}
			}
		})
	}

	cfg := smallConfig()
	cfg.Integrator = "roulette"
	cfg.StopProbability = 1
	if _, err := New(cfg, nil); err == nil {
		t.Error("Expected error for a roulette that always stops")
	}
}

func TestJob_Mesh(t *testing.T) {
	// One triangle in binary STL
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, [12]float32{0, 0, 1, -0.2, 0, 0, 0.2, 0, 0, 0, 0.3, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	path := filepath.Join(t.TempDir(), "tri.stl")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := smallConfig()
	cfg.Mesh = &config.Mesh{Path: path, Center: [3]float64{0, -0.9, 0}}
	j, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	plain, _ := New(smallConfig(), nil)
	if j.Scene.PrimitiveCount() != plain.Scene.PrimitiveCount()+1 {
		t.Errorf("Expected one extra primitive, got %d vs %d", j.Scene.PrimitiveCount(), plain.Scene.PrimitiveCount())
	}

	cfg.Mesh.Path = filepath.Join(t.TempDir(), "missing.stl")
	if _, err := New(cfg, nil); err == nil {
		t.Error("Expected error for missing mesh file")
	}
}

func TestResult_WriteStats(t *testing.T) {
	j, err := New(smallConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := j.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := result.WriteStats(&buf); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		ID     string `json:"id"`
		Render struct {
			TotalSamples int `json:"totalSamples"`
		} `json:"render"`
		BVH *struct {
			Nodes int `json:"nodes"`
		} `json:"bvh"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Stats are not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.ID != j.ID.String() || decoded.Render.TotalSamples != 15*15*2 || decoded.BVH == nil || decoded.BVH.Nodes == 0 {
		t.Errorf("Unexpected stats %s", buf.String())
	}
}

func TestJob_OutputPath(t *testing.T) {
	j, err := New(smallConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	want := filepath.Join("output", "cornell", "render_20240309_140507.png")
	if got := j.OutputPath(at); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if j.ID.Version() != 4 {
		t.Errorf("Expected a random render id, got %s", j.ID)
	}
}
