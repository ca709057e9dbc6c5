package scene

import (
	"fmt"

	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/loaders"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/pkg/errors"
)

// Scene contains all the elements needed for rendering. Primitives whose
// material counts as a light live in Lights, everything else in Objects.
// Once a BVH is attached the scene is frozen and read-only, so it can be
// shared by all render workers.
type Scene struct {
	Camera       *renderer.Camera
	CameraConfig renderer.CameraConfig
	Objects      []geometry.Primitive
	Lights       []geometry.Primitive
	tree         *bvh.Tree
}

// NewScene creates an empty scene viewed through camera
func NewScene(config renderer.CameraConfig) *Scene {
	return &Scene{
		Camera:       renderer.NewCamera(config),
		CameraConfig: config,
	}
}

// Add inserts every triangle of the mesh
func (s *Scene) Add(mesh *geometry.Mesh) {
	for _, tri := range mesh.Triangles {
		s.AddGeneric(tri)
	}
}

// AddGeneric inserts a single primitive into Lights or Objects
func (s *Scene) AddGeneric(prim geometry.Primitive) {
	if s.tree != nil {
		panic("scene: insertion after BVH was attached")
	}
	mat := prim.Material()
	if mat == nil {
		panic(fmt.Sprintf("scene: primitive %v has no material", prim))
	}
	if mat.CountsAsLight() {
		s.Lights = append(s.Lights, prim)
	} else {
		s.Objects = append(s.Objects, prim)
	}
}

// AddMeshFile loads an STL or PLY mesh and inserts it at center
func (s *Scene) AddMeshFile(path string, center core.Vec3, mat material.Material) (*geometry.Mesh, error) {
	triangles, err := loaders.LoadMeshFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "add mesh %s", path)
	}
	mesh := geometry.NewMesh(center, triangles, mat)
	s.Add(mesh)
	return mesh, nil
}

// AllElements returns the lights followed by the objects
func (s *Scene) AllElements() []geometry.Primitive {
	all := make([]geometry.Primitive, 0, len(s.Lights)+len(s.Objects))
	all = append(all, s.Lights...)
	return append(all, s.Objects...)
}

// UseBVH attaches a tree built from this scene's elements. Passing nil
// detaches it and makes intersection brute force again.
func (s *Scene) UseBVH(tree *bvh.Tree) {
	s.tree = tree
}

// BuildBVH builds a tree over AllElements and attaches it
func (s *Scene) BuildBVH(opts bvh.Options) *bvh.Tree {
	tree := bvh.Build(s.AllElements(), opts)
	s.UseBVH(tree)
	return tree
}

// HasBVH reports whether intersection goes through a tree
func (s *Scene) HasBVH() bool {
	return s.tree != nil
}

// BVH returns the attached tree, or nil
func (s *Scene) BVH() *bvh.Tree {
	return s.tree
}

// Intersect finds the closest hit in (tMin, tMax), through the BVH when one
// is attached
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool {
	if s.tree != nil {
		return s.tree.Intersect(ray, tMin, tMax, rec)
	}
	return s.IntersectNoBVH(ray, tMin, tMax, rec)
}

// IntersectNoBVH tests every object and then every light
func (s *Scene) IntersectNoBVH(ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool {
	hitAnything := false
	closest := tMax
	for _, prims := range [][]geometry.Primitive{s.Objects, s.Lights} {
		for _, prim := range prims {
			if prim.Hit(ray, tMin, closest, rec) {
				hitAnything = true
				closest = rec.T
			}
		}
	}
	return hitAnything
}

// RandomLight picks a light primitive uniformly, or nil when the scene has none
func (s *Scene) RandomLight(random core.Random) geometry.Primitive {
	if len(s.Lights) == 0 {
		return nil
	}
	index := min(int(float64(len(s.Lights))*random.Float64()), len(s.Lights)-1)
	return s.Lights[index]
}

// PrimitiveCount returns the total number of primitives in the scene
func (s *Scene) PrimitiveCount() int {
	return len(s.Objects) + len(s.Lights)
}
