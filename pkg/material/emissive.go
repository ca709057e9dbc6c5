package material

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Emissive represents a light-emitting material
type Emissive struct {
	Color     core.Vec3 // Emitted color
	Intensity float64   // Scale applied to Color
}

// NewEmissive creates a new emissive material
func NewEmissive(color core.Vec3, intensity float64) *Emissive {
	return &Emissive{Color: color, Intensity: intensity}
}

func (e *Emissive) IsEmissive() bool    { return true }
func (e *Emissive) CountsAsLight() bool { return true }

// Scatter never bounces; the attenuation carries the emitted radiance
func (e *Emissive) Scatter(rayIn core.Ray, hit *HitRecord, random core.Random) (ScatterResult, bool) {
	return ScatterResult{Attenuation: e.emitted()}, false
}

func (e *Emissive) EmissionAt(rayIn core.Ray, hit *HitRecord) core.Vec3 {
	return e.emitted()
}

func (e *Emissive) emitted() core.Vec3 {
	return e.Color.Multiply(e.Intensity)
}
