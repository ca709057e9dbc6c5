package integrator

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// PathTracingConfig configures the bounded-depth integrator
type PathTracingConfig struct {
	MaxDepth    int       // Bounces before the path is cut off
	CutoffColor core.Vec3 // Returned once the depth budget is spent
	Background  core.Vec3 // Returned for rays that escape the scene
}

// DefaultPathTracingConfig returns the configuration used by the CLI. Paths
// that run out of depth return white; escaped rays see a black world.
func DefaultPathTracingConfig() PathTracingConfig {
	return PathTracingConfig{MaxDepth: 32, CutoffColor: core.NewVec3(1, 1, 1)}
}

// PathTracingIntegrator traces one scattered ray per bounce up to a fixed
// depth. Emission only enters through surfaces that stop the path.
type PathTracingIntegrator struct {
	config PathTracingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config PathTracingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{config: config}
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene Intersector, random core.Random) core.Vec3 {
	return pt.Radiance(ray, pt.config.MaxDepth, scene, random)
}

// Radiance evaluates the path recursively with depth bounces remaining
func (pt *PathTracingIntegrator) Radiance(ray core.Ray, depth int, scene Intersector, random core.Random) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return pt.config.CutoffColor
	}

	var hit material.HitRecord
	if !scene.Intersect(ray, TMin, TMax, &hit) {
		return pt.config.Background
	}

	mat := materialOf(&hit)
	scatter, didScatter := mat.Scatter(ray, &hit, random)
	if didScatter {
		return scatter.Attenuation.MultiplyVec(pt.Radiance(scatter.Scattered, depth-1, scene, random))
	}

	// Emitters report their radiance as the attenuation of a stopped path
	if mat.IsEmissive() {
		return scatter.Attenuation
	}

	return core.Vec3{}
}
