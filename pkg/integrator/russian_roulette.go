package integrator

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// RussianRouletteConfig configures the probabilistically terminated integrator
type RussianRouletteConfig struct {
	MinBounces      int       // Bounces always traced before roulette starts
	StopProbability float64   // Chance of ending the path at each later bounce
	MaxDepth        int       // Hard cap on bounces, 0 for none
	Background      core.Vec3 // Returned for rays that escape the scene
}

// DefaultRussianRouletteConfig returns roulette after 10 bounces with p=0.1
func DefaultRussianRouletteConfig() RussianRouletteConfig {
	return RussianRouletteConfig{MinBounces: 10, StopProbability: 0.1}
}

// RussianRouletteIntegrator accumulates emission at every hit and keeps the
// estimator unbiased by reweighting paths that survive the roulette
type RussianRouletteIntegrator struct {
	config RussianRouletteConfig
}

// NewRussianRouletteIntegrator creates a new russian roulette integrator
func NewRussianRouletteIntegrator(config RussianRouletteConfig) *RussianRouletteIntegrator {
	if config.StopProbability < 0 {
		config.StopProbability = 0
	}
	if config.StopProbability >= 1 {
		config.StopProbability = 0.99
	}
	return &RussianRouletteIntegrator{config: config}
}

// RayColor computes the color for a single camera ray
func (rr *RussianRouletteIntegrator) RayColor(ray core.Ray, scene Intersector, random core.Random) core.Vec3 {
	return rr.Radiance(ray, 0, scene, random)
}

// Radiance evaluates the path recursively at the given bounce count
func (rr *RussianRouletteIntegrator) Radiance(ray core.Ray, bounce int, scene Intersector, random core.Random) core.Vec3 {
	if rr.config.MaxDepth > 0 && bounce >= rr.config.MaxDepth {
		return core.Vec3{}
	}

	var hit material.HitRecord
	if !scene.Intersect(ray, TMin, TMax, &hit) {
		return rr.config.Background
	}

	mat := materialOf(&hit)
	color := mat.EmissionAt(ray, &hit)

	scatter, didScatter := mat.Scatter(ray, &hit, random)
	if !didScatter {
		return color
	}

	weight := 1.0
	if bounce >= rr.config.MinBounces {
		if random.Float64() < rr.config.StopProbability {
			return color
		}
		weight = 1.0 / (1.0 - rr.config.StopProbability)
	}

	incoming := rr.Radiance(scatter.Scattered, bounce+1, scene, random)
	return color.Add(scatter.Attenuation.MultiplyVec(incoming).Multiply(weight))
}
