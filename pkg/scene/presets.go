package scene

import (
	"sort"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/pkg/errors"
)

// Builder creates a preset scene for the given image aspect ratio
type Builder func(aspectRatio float64, random core.Random) *Scene

var presets = map[string]Builder{
	"cornell": func(aspect float64, _ core.Random) *Scene { return NewCornellScene(aspect) },
	"sphere-light": func(aspect float64, _ core.Random) *Scene {
		return NewSphereLightScene(aspect)
	},
	"spheregrid": func(aspect float64, random core.Random) *Scene {
		return NewSphereGridScene(aspect, 10, random)
	},
}

// Names lists the preset scenes in alphabetical order
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the builder of a named preset
func Lookup(name string) (Builder, error) {
	builder, ok := presets[name]
	if !ok {
		return nil, errors.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	return builder, nil
}

// NewCornellScene creates a two unit Cornell box lit by its emissive ceiling,
// with a white sphere in the middle
func NewCornellScene(aspectRatio float64) *Scene {
	s := NewScene(renderer.CameraConfig{
		Center:      core.NewVec3(0, 0, -1.5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        75,
		AspectRatio: aspectRatio,
	})

	white := material.NewDiffuse(core.NewVec3(1, 1, 1))
	green := material.NewDiffuse(core.NewVec3(0, 1, 0))
	red := material.NewDiffuse(core.NewVec3(1, 0, 0))
	light := material.NewEmissive(core.NewVec3(1, 1, 1), 4)

	const boxSize = 2.0
	h := boxSize / 2

	// Wall corners in winding order, centered on the origin
	xz := []core.Vec3{
		core.NewVec3(-h, 0, h),
		core.NewVec3(-h, 0, -h),
		core.NewVec3(h, 0, -h),
		core.NewVec3(h, 0, h),
	}
	yz := []core.Vec3{
		core.NewVec3(0, h, -h),
		core.NewVec3(0, h, h),
		core.NewVec3(0, -h, h),
		core.NewVec3(0, -h, -h),
	}
	xy := []core.Vec3{
		core.NewVec3(-h, h, 0),
		core.NewVec3(h, h, 0),
		core.NewVec3(h, -h, 0),
		core.NewVec3(-h, -h, 0),
	}

	s.Add(geometry.NewMesh(core.NewVec3(0, h, 0), geometry.TriangulateSquare(xz), light))
	s.Add(geometry.NewMesh(core.NewVec3(0, -h, 0), geometry.TriangulateSquare(xz), white))
	s.Add(geometry.NewMesh(core.NewVec3(0, 0, h), geometry.TriangulateSquare(xy), white))
	s.Add(geometry.NewMesh(core.NewVec3(-h, 0, 0), geometry.TriangulateSquare(yz), green))
	s.Add(geometry.NewMesh(core.NewVec3(h, 0, 0), geometry.TriangulateSquare(yz), red))

	s.AddGeneric(geometry.NewSphere(core.NewVec3(0, 0, 0), 0.35, white))
	return s
}

// NewSphereLightScene creates a unit sphere at the origin lit by a square
// emissive quad above it, facing down
func NewSphereLightScene(aspectRatio float64) *Scene {
	s := NewScene(renderer.CameraConfig{
		Center:      core.NewVec3(0, 0, -3),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60,
		AspectRatio: aspectRatio,
	})

	s.AddGeneric(geometry.NewSphere(core.NewVec3(0, 0, 0), 1, material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))))
	s.Add(geometry.NewQuadMesh(
		core.NewVec3(0, 2.5, 0),
		core.NewVec3(2, 0, 0),
		core.NewVec3(0, 0, 2), // u × v points down at the sphere
		material.NewEmissive(core.NewVec3(1, 1, 1), 4),
	))
	return s
}

// NewSphereGridScene creates an n×n grid of small spheres with random
// materials on a ground box, under a large area light
func NewSphereGridScene(aspectRatio float64, n int, random core.Random) *Scene {
	center := float64(n-1) / 2
	s := NewScene(renderer.CameraConfig{
		Center:      core.NewVec3(center, 0.6*float64(n), -0.8*float64(n)),
		LookAt:      core.NewVec3(center, 0, center),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: aspectRatio,
	})

	ground := material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))
	s.Add(geometry.NewBoxMesh(
		core.NewVec3(center, -0.55, center),
		core.NewVec3(float64(n)/2+1, 0.05, float64(n)/2+1),
		ground,
	))

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			albedo := core.NewVec3(random.Float64(), random.Float64(), random.Float64())
			var mat material.Material
			switch choose := random.Float64(); {
			case choose < 0.6:
				mat = material.NewDiffuse(albedo)
			case choose < 0.85:
				mat = material.NewMetal(albedo.Multiply(0.5).Add(core.NewVec3(0.5, 0.5, 0.5)), 0.3*random.Float64())
			default:
				mat = material.NewDielectric(1.5)
			}
			s.AddGeneric(geometry.NewSphere(core.NewVec3(float64(i), -0.1, float64(j)), 0.4, mat))
		}
	}

	s.Add(geometry.NewQuadMesh(
		core.NewVec3(center, float64(n), center),
		core.NewVec3(float64(n), 0, 0),
		core.NewVec3(0, 0, float64(n)),
		material.NewEmissive(core.NewVec3(1, 0.95, 0.9), 3),
	))
	return s
}
