// Package config loads render settings from YAML files.
package config

import (
	"bytes"
	"io"
	"os"
	"slices"

	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/integrator"
	"github.com/df07/go-bvh-pathtracer/pkg/output"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Render holds every setting of a single render
type Render struct {
	Scene           string     `yaml:"scene"`
	Width           int        `yaml:"width"`
	Height          int        `yaml:"height"`
	SamplesPerPixel int        `yaml:"samples_per_pixel"`
	MaxDepth        int        `yaml:"max_depth"`
	Seed            uint64     `yaml:"seed"`
	Workers         int        `yaml:"workers"`          // 0 uses every CPU
	Integrator      string     `yaml:"integrator"`       // path or roulette
	CutoffColor     [3]float64 `yaml:"cutoff_color"`     // path: radiance once depth runs out
	Background      [3]float64 `yaml:"background"`       // radiance of escaped rays
	MinBounces      int        `yaml:"min_bounces"`      // roulette: bounces before roulette starts
	StopProbability float64    `yaml:"stop_probability"` // roulette: chance of ending per bounce
	BVH             string     `yaml:"bvh"`              // object, spatial or none
	LeafSize        int        `yaml:"leaf_size"`        // 0 uses the strategy default
	ToneMap         string     `yaml:"tonemap"`
	Format          string     `yaml:"format"`
	OutputDir       string     `yaml:"output_dir"`
	Mesh            *Mesh      `yaml:"mesh,omitempty"`
}

// Mesh places an external STL or PLY model in the scene
type Mesh struct {
	Path   string     `yaml:"path"`
	Center [3]float64 `yaml:"center"`
	Albedo [3]float64 `yaml:"albedo"`
}

// Default returns the settings used when nothing is configured
func Default() Render {
	return Render{
		Scene:           "cornell",
		Width:           528,
		Height:          512,
		SamplesPerPixel: 64,
		MaxDepth:        32,
		Seed:            5489,
		Integrator:      string(integrator.KindPathTracing),
		CutoffColor:     [3]float64{1, 1, 1},
		MinBounces:      10,
		StopProbability: 0.1,
		BVH:             "object",
		ToneMap:         "gamma",
		Format:          "png",
		OutputDir:       "output",
	}
}

// Load reads a YAML file on top of the defaults
func Load(path string) (Render, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Render{}, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Render{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (Render, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return Render{}, errors.Wrap(err, "decode config")
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings a render cannot start with
func (c Render) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("invalid image size %dx%d", c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return errors.Errorf("samples_per_pixel must be positive, got %d", c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return errors.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	case c.Workers < 0:
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	case c.LeafSize < 0:
		return errors.Errorf("leaf_size must not be negative, got %d", c.LeafSize)
	case c.MinBounces < 0:
		return errors.Errorf("min_bounces must not be negative, got %d", c.MinBounces)
	case c.StopProbability < 0 || c.StopProbability >= 1:
		return errors.Errorf("stop_probability must be in [0, 1), got %g", c.StopProbability)
	}

	if _, err := integrator.ParseKind(c.Integrator); err != nil {
		return err
	}
	if c.BVH != "none" {
		if _, err := bvh.ParseStrategy(c.BVH); err != nil {
			return err
		}
	}
	if _, err := output.NewToneMapper(c.ToneMap); err != nil {
		return err
	}
	if !slices.Contains(output.Formats, c.Format) {
		return errors.Errorf("unknown format %q (want one of %v)", c.Format, output.Formats)
	}
	if c.Mesh != nil && c.Mesh.Path == "" {
		return errors.New("mesh needs a path")
	}
	return nil
}

// AspectRatio returns width over height
func (c Render) AspectRatio() float64 {
	return float64(c.Width) / float64(c.Height)
}

// IntegratorOptions returns the depth, colors and roulette policy of the render
func (c Render) IntegratorOptions() integrator.Options {
	return integrator.Options{
		MaxDepth:        c.MaxDepth,
		CutoffColor:     core.NewVec3(c.CutoffColor[0], c.CutoffColor[1], c.CutoffColor[2]),
		Background:      core.NewVec3(c.Background[0], c.Background[1], c.Background[2]),
		MinBounces:      c.MinBounces,
		StopProbability: c.StopProbability,
	}
}

// BVHOptions returns the tree build options, or false when the BVH is disabled
func (c Render) BVHOptions() (bvh.Options, bool) {
	if c.BVH == "none" {
		return bvh.Options{}, false
	}
	strategy, _ := bvh.ParseStrategy(c.BVH)
	opts := bvh.DefaultOptions(strategy)
	if c.LeafSize > 0 {
		opts.LeafSize = c.LeafSize
	}
	return opts, true
}

// Marshal encodes the settings as YAML
func (c Render) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	return data, errors.Wrap(err, "encode config")
}
