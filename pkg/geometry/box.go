package geometry

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// boxFaces lists the corner indices of each face, counter-clockwise seen from outside
var boxFaces = [6][4]int{
	{0, 3, 2, 1}, // back (-Z)
	{4, 5, 6, 7}, // front (+Z)
	{0, 4, 7, 3}, // left (-X)
	{1, 2, 6, 5}, // right (+X)
	{0, 1, 5, 4}, // bottom (-Y)
	{3, 7, 6, 2}, // top (+Y)
}

// NewBoxMesh creates an axis-aligned box of 12 outward-facing triangles.
// Size represents half-extents (so a size of (1,1,1) creates a 2x2x2 box).
func NewBoxMesh(center, size core.Vec3, mat material.Material) *Mesh {
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}

	triangles := make([]*Triangle, 0, 12)
	for _, face := range boxFaces {
		quad := make([]core.Vec3, 4)
		for i, idx := range face {
			quad[i] = corners[idx].MultiplyVec(size)
		}
		triangles = append(triangles, TriangulateSquare(quad)...)
	}
	return NewMesh(center, triangles, mat)
}
