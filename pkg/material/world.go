package material

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// World is a sky dome material blending two colors by ray height. It glows
// but is not sampled as a light.
type World struct {
	Top    core.Vec3
	Bottom core.Vec3
}

// NewWorld creates a gradient sky material
func NewWorld(top, bottom core.Vec3) *World {
	return &World{Top: top, Bottom: bottom}
}

func (w *World) IsEmissive() bool    { return true }
func (w *World) CountsAsLight() bool { return false }

func (w *World) Scatter(rayIn core.Ray, hit *HitRecord, random core.Random) (ScatterResult, bool) {
	return ScatterResult{Attenuation: w.Gradient(rayIn.Direction)}, false
}

func (w *World) EmissionAt(rayIn core.Ray, hit *HitRecord) core.Vec3 {
	return w.Gradient(rayIn.Direction)
}

// Gradient returns the sky color seen along the unit direction dir
func (w *World) Gradient(dir core.Vec3) core.Vec3 {
	t := 0.5 * (dir.Y + 1.0)
	return w.Bottom.Lerp(w.Top, t)
}
