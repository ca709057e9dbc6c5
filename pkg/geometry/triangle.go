package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// parallelEpsilon rejects rays lying in the triangle's plane
const parallelEpsilon = 1e-10

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3         // The three vertices
	edge1      core.Vec3         // V1 - V0
	edge2      core.Vec3         // V2 - V0
	normal     core.Vec3         // Cached normal vector
	centroid   core.Vec3         // Cached centroid
	bbox       core.AABB         // Cached bounding box
	material   material.Material // May be nil until assigned by a mesh
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, mat material.Material) *Triangle {
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)
	return &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		edge1:    edge1,
		edge2:    edge2,
		normal:   edge1.Cross(edge2).Normalize(),
		centroid: v0.Add(v1).Add(v2).Multiply(1.0 / 3.0),
		bbox:     core.NewAABBFromPoints(v0, v1, v2),
		material: mat,
	}
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool {
	h := ray.Direction.Cross(t.edge2)
	a := t.edge1.Dot(h)

	// Ray lies in plane of triangle
	if math.Abs(a) < parallelEpsilon {
		return false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return false
	}

	q := s.Cross(t.edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return false
	}

	tHit := f * t.edge2.Dot(q)
	if tHit <= tMin || tHit >= tMax {
		return false
	}

	rec.T = tHit
	rec.Point = ray.At(tHit)
	rec.Material = t.material
	rec.SetFaceNormal(ray, t.normal)

	return true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

func (t *Triangle) Centroid() core.Vec3 {
	return t.centroid
}

func (t *Triangle) Material() material.Material {
	return t.material
}

// Normal returns the triangle's unit face normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// RandomPointOnSurface samples the triangle uniformly by folding the unit
// square onto the lower-left half
func (t *Triangle) RandomPointOnSurface(random core.Random) core.Vec3 {
	a := random.Float64()
	b := random.Float64()
	if a+b >= 1.0 {
		a = 1.0 - a
		b = 1.0 - b
	}
	return t.V0.Add(t.edge1.Multiply(a)).Add(t.edge2.Multiply(b))
}

// Barycentric returns the weights (u, v) of V1 and V2 for a point in the
// triangle's plane, matching the u and v of the intersection test
func (t *Triangle) Barycentric(p core.Vec3) (u, v float64) {
	w := p.Subtract(t.V0)
	d00 := t.edge1.Dot(t.edge1)
	d01 := t.edge1.Dot(t.edge2)
	d11 := t.edge2.Dot(t.edge2)
	d20 := w.Dot(t.edge1)
	d21 := w.Dot(t.edge2)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return math.NaN(), math.NaN()
	}
	u = (d11*d20 - d01*d21) / denom
	v = (d00*d21 - d01*d20) / denom
	return u, v
}

// Translate returns a copy moved by offset, keeping the material
func (t *Triangle) Translate(offset core.Vec3) *Triangle {
	return NewTriangle(t.V0.Add(offset), t.V1.Add(offset), t.V2.Add(offset), t.material)
}

// WithMaterial returns a copy that uses mat
func (t *Triangle) WithMaterial(mat material.Material) *Triangle {
	c := *t
	c.material = mat
	return &c
}

func (t *Triangle) String() string {
	return fmt.Sprintf("Triangle(%v, %v, %v, normal=%v)", t.V0, t.V1, t.V2, t.normal)
}
