package material

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Diffuse represents a Lambertian surface scattering around its normal
type Diffuse struct {
	nonEmissive
	Albedo core.Vec3 // Surface color
}

// NewDiffuse creates a new diffuse material
func NewDiffuse(albedo core.Vec3) *Diffuse {
	return &Diffuse{Albedo: albedo}
}

// Scatter offsets the normal by a random unit vector, which yields a
// cosine-weighted direction without an explicit PDF
func (d *Diffuse) Scatter(rayIn core.Ray, hit *HitRecord, random core.Random) (ScatterResult, bool) {
	direction := hit.Normal.Add(core.RandomUnitVector(random))

	// Catch degenerate scatter direction
	if direction.NearZero() {
		direction = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: d.Albedo,
	}, true
}
