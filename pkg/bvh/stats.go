package bvh

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/pkg/errors"
)

// Stats summarises the shape of a tree
type Stats struct {
	Strategy     string  `json:"strategy,omitempty"`
	Nodes        int     `json:"nodes"`
	Leaves       int     `json:"leaves"`
	Primitives   int     `json:"primitives"`
	MaxDepth     int     `json:"maxDepth"`
	AvgLeafDepth float64 `json:"avgLeafDepth"`
	MaxLeafSize  int     `json:"maxLeafSize"`
}

// Stats returns statistics about the tree structure
func (t *Tree) Stats() Stats {
	var stats Stats
	if len(t.nodes) == 0 {
		return stats
	}
	t.collectStats(0, 0, &stats)

	// Calculate average depth after collecting all data
	if stats.Leaves > 0 {
		stats.AvgLeafDepth /= float64(stats.Leaves)
	}
	return stats
}

// collectStats recursively collects statistics about the tree
func (t *Tree) collectStats(index, depth int, stats *Stats) {
	node := &t.nodes[index]
	stats.Nodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.IsLeaf() {
		stats.Leaves++
		stats.Primitives += node.Count
		stats.AvgLeafDepth += float64(depth)
		if node.Count > stats.MaxLeafSize {
			stats.MaxLeafSize = node.Count
		}
		return
	}

	t.collectStats(node.Left, depth+1, stats)
	t.collectStats(node.Right, depth+1, stats)
}

// CheckBounds verifies that every node's box equals the union of the boxes of
// the primitives below it, and that each primitive sits in exactly one leaf
func (t *Tree) CheckBounds() error {
	if len(t.nodes) == 0 {
		if len(t.prims) != 0 {
			return errors.Errorf("empty tree over %d primitives", len(t.prims))
		}
		return nil
	}

	seen := make([]int, len(t.prims))
	if _, err := t.checkNode(0, seen); err != nil {
		return err
	}
	for i, n := range seen {
		if n != 1 {
			return errors.Errorf("primitive %d referenced by %d leaves", i, n)
		}
	}
	return nil
}

func (t *Tree) checkNode(index int, seen []int) (core.AABB, error) {
	node := &t.nodes[index]

	var union core.AABB
	if node.IsLeaf() {
		if node.Count == 0 {
			return union, errors.Errorf("node %d: empty leaf", index)
		}
		for k, idx := range t.order[node.Start : node.Start+node.Count] {
			seen[idx]++
			box := t.prims[idx].BoundingBox()
			if k == 0 {
				union = box
			} else {
				union = union.Union(box)
			}
		}
	} else {
		left, err := t.checkNode(node.Left, seen)
		if err != nil {
			return union, err
		}
		right, err := t.checkNode(node.Right, seen)
		if err != nil {
			return union, err
		}
		union = left.Union(right)
	}

	if union != node.Bounds {
		return union, errors.Errorf("node %d: bounds %v, children union %v", index, node.Bounds, union)
	}
	return union, nil
}
