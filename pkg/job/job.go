// Package job turns a render configuration into a finished image: it builds
// the scene and its BVH, picks the integrator and runs the renderer.
package job

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/config"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/integrator"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// defaultMeshAlbedo is used for external meshes configured without a color
var defaultMeshAlbedo = core.NewVec3(0.73, 0.73, 0.73)

// Job is a prepared render. The scene is frozen once New returns.
type Job struct {
	ID         uuid.UUID
	Config     config.Render
	Scene      *scene.Scene
	Tree       *bvh.Tree // nil when intersection is brute force
	integrator integrator.Integrator
	logger     core.Logger
}

// Result is the outcome of a render
type Result struct {
	ID          string                `json:"id"`
	Scene       string                `json:"scene"`
	Integrator  string                `json:"integrator"`
	Primitives  int                   `json:"primitives"`
	Render      renderer.RenderStats  `json:"render"`
	BVH         *bvh.Stats            `json:"bvh,omitempty"`
	Framebuffer *renderer.Framebuffer `json:"-"`
}

// New validates cfg and prepares the scene, BVH and integrator under a fresh id
func New(cfg config.Render, logger core.Logger) (*Job, error) {
	return NewWithID(uuid.New(), cfg, logger)
}

// NewWithID is New for callers that tag their logger with the id up front
func NewWithID(id uuid.UUID, cfg config.Render, logger core.Logger) (*Job, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	build, err := scene.Lookup(cfg.Scene)
	if err != nil {
		return nil, err
	}
	// The scene generator gets its own stream so layouts depend only on the seed
	s := build(cfg.AspectRatio(), core.NewRandom(cfg.Seed))

	if cfg.Mesh != nil {
		albedo := core.NewVec3(cfg.Mesh.Albedo[0], cfg.Mesh.Albedo[1], cfg.Mesh.Albedo[2])
		if albedo == (core.Vec3{}) {
			albedo = defaultMeshAlbedo
		}
		center := core.NewVec3(cfg.Mesh.Center[0], cfg.Mesh.Center[1], cfg.Mesh.Center[2])
		mesh, err := s.AddMeshFile(cfg.Mesh.Path, center, material.NewDiffuse(albedo))
		if err != nil {
			return nil, err
		}
		logger.Printf("Loaded %d triangles from %s\n", len(mesh.Triangles), cfg.Mesh.Path)
	}

	j := &Job{ID: id, Config: cfg, Scene: s, logger: logger}

	if opts, ok := cfg.BVHOptions(); ok {
		start := time.Now()
		j.Tree = s.BuildBVH(opts)
		if err := j.Tree.CheckBounds(); err != nil {
			return nil, errors.Wrap(err, "bvh")
		}
		stats := j.Tree.Stats()
		logger.Printf("Built %s median BVH over %d primitives: %d nodes, depth %d, in %v\n",
			opts.Strategy, stats.Primitives, stats.Nodes, stats.MaxDepth, time.Since(start).Round(time.Microsecond))
	} else {
		logger.Printf("BVH disabled, intersecting %d primitives by brute force\n", s.PrimitiveCount())
	}

	kind, err := integrator.ParseKind(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	j.integrator, err = integrator.New(kind, cfg.IntegratorOptions())
	if err != nil {
		return nil, errors.Wrap(err, "integrator")
	}
	return j, nil
}

// Run renders the image, stopping early when ctx is cancelled
func (j *Job) Run(ctx context.Context) (*Result, error) {
	cfg := j.Config
	r := renderer.NewRenderer(j.Scene.Camera, j.Scene, j.integrator, renderer.Config{
		Width:           cfg.Width,
		Height:          cfg.Height,
		SamplesPerPixel: cfg.SamplesPerPixel,
		NumWorkers:      cfg.Workers,
		Seed:            cfg.Seed,
	}, j.logger)

	fb, stats, err := r.Render(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "render %s", j.ID)
	}

	result := &Result{
		ID:          j.ID.String(),
		Scene:       cfg.Scene,
		Integrator:  cfg.Integrator,
		Primitives:  j.Scene.PrimitiveCount(),
		Render:      stats,
		Framebuffer: fb,
	}
	if j.Tree != nil {
		treeStats := j.Tree.Stats()
		if opts, ok := cfg.BVHOptions(); ok {
			treeStats.Strategy = opts.Strategy.String()
		}
		result.BVH = &treeStats
	}
	return result, nil
}

// OutputPath names the image file for a render finished at t
func (j *Job) OutputPath(t time.Time) string {
	name := fmt.Sprintf("render_%s.%s", t.Format("20060102_150405"), j.Config.Format)
	return filepath.Join(j.Config.OutputDir, j.Config.Scene, name)
}

// WriteStats writes the result summary as indented JSON
func (r *Result) WriteStats(w io.Writer) error {
	if err := json.MarshalWrite(w, r, jsontext.WithIndent("  ")); err != nil {
		return errors.Wrap(err, "encode stats")
	}
	_, err := io.WriteString(w, "\n")
	return err
}
