package integrator

import (
	"fmt"
	"strings"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/pkg/errors"
)

const (
	// TMin offsets secondary rays from the surface they leave
	TMin = 0.001
	// TMax bounds every intersection query
	TMax = 100000.0
)

// Intersector answers nearest-hit queries. Scenes implement it; tests can
// substitute their own.
type Intersector interface {
	Intersect(ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray
	RayColor(ray core.Ray, scene Intersector, random core.Random) core.Vec3
}

// Kind names a termination discipline. A render uses exactly one.
type Kind string

const (
	KindPathTracing     Kind = "path"
	KindRussianRoulette Kind = "roulette"
)

// ParseKind maps a configuration name to a Kind
func ParseKind(name string) (Kind, error) {
	switch Kind(strings.ToLower(name)) {
	case KindPathTracing, "":
		return KindPathTracing, nil
	case KindRussianRoulette:
		return KindRussianRoulette, nil
	}
	return "", errors.Errorf("unknown integrator %q", name)
}

// Options collects the settings shared by both disciplines. Fields that only
// one discipline reads are ignored by the other.
type Options struct {
	MaxDepth        int       // Path tracing depth; russian roulette cap when positive
	CutoffColor     core.Vec3 // Path tracing: returned once the depth budget is spent
	Background      core.Vec3 // Returned for rays that escape the scene
	MinBounces      int       // Russian roulette: bounces before roulette starts
	StopProbability float64   // Russian roulette: chance of ending the path per bounce
}

// DefaultOptions matches DefaultPathTracingConfig and DefaultRussianRouletteConfig
func DefaultOptions() Options {
	pt := DefaultPathTracingConfig()
	rr := DefaultRussianRouletteConfig()
	return Options{
		MaxDepth:        pt.MaxDepth,
		CutoffColor:     pt.CutoffColor,
		Background:      pt.Background,
		MinBounces:      rr.MinBounces,
		StopProbability: rr.StopProbability,
	}
}

// New builds the integrator for kind from opts
func New(kind Kind, opts Options) (Integrator, error) {
	switch kind {
	case KindPathTracing:
		return NewPathTracingIntegrator(PathTracingConfig{
			MaxDepth:    opts.MaxDepth,
			CutoffColor: opts.CutoffColor,
			Background:  opts.Background,
		}), nil
	case KindRussianRoulette:
		if opts.MinBounces < 0 {
			return nil, errors.Errorf("min bounces must be non-negative, got %d", opts.MinBounces)
		}
		if opts.StopProbability < 0 || opts.StopProbability >= 1 {
			return nil, errors.Errorf("stop probability must be in [0, 1), got %g", opts.StopProbability)
		}
		return NewRussianRouletteIntegrator(RussianRouletteConfig{
			MinBounces:      opts.MinBounces,
			StopProbability: opts.StopProbability,
			MaxDepth:        opts.MaxDepth,
			Background:      opts.Background,
		}), nil
	}
	return nil, errors.Errorf("unknown integrator %q", string(kind))
}

// materialOf returns the material of a hit. Every primitive in a scene carries
// one, so a missing material is a programming error.
func materialOf(hit *material.HitRecord) material.Material {
	if hit.Material == nil {
		panic(fmt.Sprintf("integrator: hit at t=%g point=%v has no material", hit.T, hit.Point))
	}
	return hit.Material
}
