package bvh

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// Intersect finds the closest primitive hit within (tMin, tMax). rec is only
// written when a hit is found.
func (t *Tree) Intersect(ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool {
	if len(t.nodes) == 0 {
		return false
	}
	return t.hitNode(0, ray, tMin, tMax, rec)
}

// hitNode recursively tests ray intersection with BVH nodes
func (t *Tree) hitNode(index int, ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool {
	node := &t.nodes[index]
	if !node.Bounds.Hit(ray, tMin, tMax) {
		return false
	}

	hitAnything := false
	closestSoFar := tMax

	if node.IsLeaf() {
		for _, idx := range t.order[node.Start : node.Start+node.Count] {
			if t.prims[idx].Hit(ray, tMin, closestSoFar, rec) {
				hitAnything = true
				closestSoFar = rec.T
			}
		}
		return hitAnything
	}

	// Right children hold the larger coordinates on the split axis
	first, second := node.Left, node.Right
	if ray.Direction.Axis(node.Axis) < 0 {
		first, second = second, first
	}

	if t.hitNode(first, ray, tMin, closestSoFar, rec) {
		hitAnything = true
		closestSoFar = rec.T
	}
	if t.hitNode(second, ray, tMin, closestSoFar, rec) {
		hitAnything = true
	}

	return hitAnything
}
