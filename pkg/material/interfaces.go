package material

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Material is the capability a surface exposes to the integrator
type Material interface {
	// IsEmissive reports whether a non-scattering hit returns its attenuation as light
	IsEmissive() bool
	// CountsAsLight decides which scene list a primitive with this material joins
	CountsAsLight() bool
	// Scatter produces the next ray and the attenuation for an incoming ray.
	// Emissive materials return false with the emitted color as attenuation.
	Scatter(rayIn core.Ray, hit *HitRecord, random core.Random) (ScatterResult, bool)
	// EmissionAt is the self-emission term at the hit
	EmissionAt(rayIn core.Ray, hit *HitRecord) core.Vec3
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation, or emitted color when not scattering
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal at intersection, facing the ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
	Material  Material  // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// nonEmissive supplies the emission half of Material for surfaces that never glow
type nonEmissive struct{}

func (nonEmissive) IsEmissive() bool    { return false }
func (nonEmissive) CountsAsLight() bool { return false }
func (nonEmissive) EmissionAt(core.Ray, *HitRecord) core.Vec3 {
	return core.Vec3{}
}
