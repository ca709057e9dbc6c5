package renderer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/integrator"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// RayGenerator maps normalized image plane coordinates to camera rays
type RayGenerator interface {
	GetRay(s, t float64) core.Ray
}

// Config contains rendering configuration
type Config struct {
	Width           int    // Image width
	Height          int    // Image height
	SamplesPerPixel int    // Number of rays per pixel
	NumWorkers      int    // Number of parallel workers (0 = auto-detect CPU count)
	Seed            uint64 // Worker i draws from Seed+i
}

// Renderer runs one worker per column strip and merges their tiles
type Renderer struct {
	camera     RayGenerator
	scene      integrator.Intersector
	integrator integrator.Integrator
	config     Config
	logger     core.Logger
}

// NewRenderer creates a renderer. The scene must not change while rendering.
func NewRenderer(camera RayGenerator, scene integrator.Intersector, integ integrator.Integrator, config Config, logger core.Logger) *Renderer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Renderer{
		camera:     camera,
		scene:      scene,
		integrator: integ,
		config:     config,
		logger:     logger,
	}
}

// Workers returns the number of workers a render will use
func (r *Renderer) Workers() int {
	n := r.config.NumWorkers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, r.config.Width))
}

// Render traces the whole image. Any worker failure or cancellation of ctx
// aborts the render; workers notice cancellation between rows.
func (r *Renderer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	cfg := r.config
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.SamplesPerPixel <= 0 {
		return nil, RenderStats{}, errors.Errorf("invalid render size %dx%d at %d spp", cfg.Width, cfg.Height, cfg.SamplesPerPixel)
	}

	start := time.Now()
	strips := PartitionStrips(cfg.Width, cfg.Height, r.Workers())
	tiles := make([]*Tile, len(strips))
	progress := NewProgress(len(strips)*cfg.Height, r.logger)

	r.logger.Printf("Rendering %dx%d at %d spp with %d workers\n", cfg.Width, cfg.Height, cfg.SamplesPerPixel, len(strips))

	g, ctx := errgroup.WithContext(ctx)
	for i, bounds := range strips {
		tile := NewTile(i, bounds, cfg.Seed+uint64(i))
		tiles[i] = tile
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = errors.Errorf("worker %d panicked: %v", tile.ID, p)
				}
			}()
			return r.renderTile(ctx, tile, progress)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, RenderStats{}, errors.Wrap(err, "render aborted")
	}

	// All workers have joined; merging needs no locking
	fb := NewFramebuffer(cfg.Width, cfg.Height)
	for _, tile := range tiles {
		if err := fb.MergeTile(tile); err != nil {
			return nil, RenderStats{}, errors.Wrap(err, "merge tiles")
		}
	}
	if err := fb.CheckComplete(); err != nil {
		return nil, RenderStats{}, errors.Wrap(err, "merge tiles")
	}

	elapsed := time.Since(start)
	stats := RenderStats{
		Width:           cfg.Width,
		Height:          cfg.Height,
		Workers:         len(strips),
		SamplesPerPixel: cfg.SamplesPerPixel,
		TotalSamples:    cfg.Width * cfg.Height * cfg.SamplesPerPixel,
		Duration:        elapsed,
		Seconds:         elapsed.Seconds(),
	}
	r.logger.Printf("Render finished in %v (%s)\n", elapsed.Round(time.Millisecond), formatRate(stats.SamplesPerSecond()))
	return fb, stats, nil
}

// renderTile samples every pixel of the tile with its own generator
func (r *Renderer) renderTile(ctx context.Context, tile *Tile, progress *Progress) error {
	width := float64(r.config.Width)
	height := float64(r.config.Height)
	spp := r.config.SamplesPerPixel
	random := tile.Random

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			var color core.Vec3
			for sample := 0; sample < spp; sample++ {
				// Row 0 is the top of the image
				s := (float64(x) + random.Float64()) / width
				t := 1 - (float64(y)+random.Float64())/height
				ray := r.camera.GetRay(s, t)
				color = color.Add(r.integrator.RayColor(ray, r.scene, random))
			}
			tile.Set(x, y, color.Multiply(1.0/float64(spp)))
		}
		progress.Increment()
	}
	return nil
}

func formatRate(samplesPerSecond float64) string {
	switch {
	case samplesPerSecond >= 1e6:
		return fmt.Sprintf("%.2f Msamples/s", samplesPerSecond/1e6)
	case samplesPerSecond >= 1e3:
		return fmt.Sprintf("%.2f ksamples/s", samplesPerSecond/1e3)
	default:
		return fmt.Sprintf("%.0f samples/s", samplesPerSecond)
	}
}
