package geometry

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// Primitive is a surface that rays can hit. Implementations are immutable and
// safe to share between render workers.
type Primitive interface {
	// Hit reports the intersection within (tMin, tMax). The record is only
	// written when Hit returns true.
	Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool
	BoundingBox() core.AABB
	Centroid() core.Vec3
	Material() material.Material
	RandomPointOnSurface(random core.Random) core.Vec3
}
