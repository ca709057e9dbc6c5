package geometry

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// Mesh is a group of triangles placed at Center and sharing one material
type Mesh struct {
	Center    core.Vec3
	Material  material.Material
	Triangles []*Triangle
}

// NewMesh translates model-space triangles by center and assigns mat to all of them
func NewMesh(center core.Vec3, triangles []*Triangle, mat material.Material) *Mesh {
	placed := make([]*Triangle, len(triangles))
	for i, tri := range triangles {
		placed[i] = tri.Translate(center).WithMaterial(mat)
	}
	return &Mesh{Center: center, Material: mat, Triangles: placed}
}

// Primitives returns the mesh triangles as primitives
func (m *Mesh) Primitives() []Primitive {
	prims := make([]Primitive, len(m.Triangles))
	for i, tri := range m.Triangles {
		prims[i] = tri
	}
	return prims
}

// BoundingBox returns the box bounding every triangle of the mesh
func (m *Mesh) BoundingBox() core.AABB {
	boxes := make([]core.AABB, len(m.Triangles))
	for i, tri := range m.Triangles {
		boxes[i] = tri.BoundingBox()
	}
	return core.UnionAll(boxes)
}

// TriangulateSquare splits a four-corner polygon, given in winding order,
// into two triangles sharing the p0-p2 diagonal
func TriangulateSquare(points []core.Vec3) []*Triangle {
	if len(points) != 4 {
		panic("TriangulateSquare needs exactly 4 points")
	}
	return []*Triangle{
		NewTriangle(points[0], points[1], points[2], nil),
		NewTriangle(points[0], points[2], points[3], nil),
	}
}

// NewQuadMesh creates a parallelogram at center spanned by the edge vectors u and v
func NewQuadMesh(center, u, v core.Vec3, mat material.Material) *Mesh {
	hu := u.Multiply(0.5)
	hv := v.Multiply(0.5)
	corners := []core.Vec3{
		hu.Negate().Subtract(hv),
		hu.Subtract(hv),
		hu.Add(hv),
		hv.Subtract(hu),
	}
	return NewMesh(center, TriangulateSquare(corners), mat)
}
