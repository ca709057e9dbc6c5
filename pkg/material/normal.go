package material

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Normal is a debug material that shows the shading normal as a color
type Normal struct{}

// NewNormal creates a normal-visualising material
func NewNormal() *Normal {
	return &Normal{}
}

func (n *Normal) IsEmissive() bool    { return true }
func (n *Normal) CountsAsLight() bool { return true }

func (n *Normal) Scatter(rayIn core.Ray, hit *HitRecord, random core.Random) (ScatterResult, bool) {
	return ScatterResult{Attenuation: normalColor(hit)}, false
}

func (n *Normal) EmissionAt(rayIn core.Ray, hit *HitRecord) core.Vec3 {
	return normalColor(hit)
}

// normalColor maps each normal component from [-1,1] to [0,1]
func normalColor(hit *HitRecord) core.Vec3 {
	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}
