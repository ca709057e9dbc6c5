// Package bvh builds and queries a bounding volume hierarchy over scene
// primitives. The tree is an index arena: nodes refer to children by index and
// leaves hold a range into a shared primitive order, so a built tree is
// immutable and safe to query from many goroutines.
package bvh

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
)

// Node is one entry of the tree arena
type Node struct {
	Bounds core.AABB // Union of every primitive box below this node
	Axis   int       // Split axis of an inner node
	Left   int       // Index of the left child, -1 for leaves
	Right  int       // Index of the right child, -1 for leaves
	Start  int       // First entry of the leaf range in the primitive order
	Count  int       // Number of primitives in the leaf
}

// IsLeaf reports whether the node stores primitives directly
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Tree is a built bounding volume hierarchy
type Tree struct {
	nodes []Node
	order []int                // Primitive indices grouped by leaf
	prims []geometry.Primitive // Shared primitive table, owned by the caller
}

// Len returns the number of primitives in the tree
func (t *Tree) Len() int {
	return len(t.prims)
}

// Nodes exposes the arena for inspection. Index 0 is the root.
func (t *Tree) Nodes() []Node {
	return t.nodes
}

// Bounds returns the bounding box of the whole tree
func (t *Tree) Bounds() core.AABB {
	if len(t.nodes) == 0 {
		return core.AABB{}
	}
	return t.nodes[0].Bounds
}

// LeafPrimitives returns the primitives stored in the leaf at node index i
func (t *Tree) LeafPrimitives(i int) []geometry.Primitive {
	node := &t.nodes[i]
	if !node.IsLeaf() {
		return nil
	}
	prims := make([]geometry.Primitive, node.Count)
	for k, idx := range t.order[node.Start : node.Start+node.Count] {
		prims[k] = t.prims[idx]
	}
	return prims
}
