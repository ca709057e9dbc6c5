package geometry

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center        core.Vec3
	Radius        float64
	inverseRadius float64
	material      material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	return &Sphere{
		Center:        center,
		Radius:        radius,
		inverseRadius: 1.0 / radius,
		material:      mat,
	}
}

// Hit tests if a ray intersects with the sphere. The ray direction is unit
// length, so the quadratic's leading coefficient is 1.
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool {
	oc := ray.Origin.Subtract(s.Center)

	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius
	discriminant := b*b - 4.0*c
	if discriminant < 0 {
		return false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-b - sqrtD) / 2.0
	if root <= tMin || root >= tMax {
		root = (-b + sqrtD) / 2.0
		if root <= tMin || root >= tMax {
			return false
		}
	}

	rec.T = root
	rec.Point = ray.At(root)
	rec.Material = s.material

	outwardNormal := rec.Point.Subtract(s.Center).Multiply(s.inverseRadius)
	rec.SetFaceNormal(ray, outwardNormal)

	return true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}

func (s *Sphere) Centroid() core.Vec3 {
	return s.Center
}

func (s *Sphere) Material() material.Material {
	return s.material
}

// RandomPointOnSurface samples the sphere surface uniformly
func (s *Sphere) RandomPointOnSurface(random core.Random) core.Vec3 {
	return s.Center.Add(core.RandomUnitVector(random).Multiply(s.Radius))
}
