package bvh

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/pkg/errors"
)

// Strategy selects how a node's primitives are divided between its children
type Strategy int

const (
	// SpatialMedian splits the longest axis of the node box at its midpoint
	SpatialMedian Strategy = iota
	// ObjectMedian splits the centroid-sorted primitives into equal halves
	ObjectMedian
)

const (
	spatialLeafSize = 19
	objectLeafSize  = 3
	defaultMaxDepth = 64
)

func (s Strategy) String() string {
	switch s {
	case SpatialMedian:
		return "spatial"
	case ObjectMedian:
		return "object"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration name to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "spatial", "spatial-median":
		return SpatialMedian, nil
	case "object", "object-median", "":
		return ObjectMedian, nil
	}
	return 0, errors.Errorf("unknown bvh strategy %q", name)
}

// Options control tree construction
type Options struct {
	Strategy Strategy
	LeafSize int // Nodes with this many or fewer primitives become leaves
	MaxDepth int // Spatial splits below this depth fall back to object median
}

// DefaultOptions returns the leaf size tuned for each strategy
func DefaultOptions(strategy Strategy) Options {
	leafSize := objectLeafSize
	if strategy == SpatialMedian {
		leafSize = spatialLeafSize
	}
	return Options{Strategy: strategy, LeafSize: leafSize, MaxDepth: defaultMaxDepth}
}

// builder holds the per-primitive data computed once before recursion
type builder struct {
	opts      Options
	boxes     []core.AABB
	centroids []core.Vec3
	order     []int
	nodes     []Node
}

// Build constructs a tree over prims. The slice is referenced, not copied, and
// must not change while the tree is in use.
func Build(prims []geometry.Primitive, opts Options) *Tree {
	if opts.LeafSize < 1 {
		opts.LeafSize = DefaultOptions(opts.Strategy).LeafSize
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}

	b := &builder{
		opts:      opts,
		boxes:     make([]core.AABB, len(prims)),
		centroids: make([]core.Vec3, len(prims)),
		order:     make([]int, len(prims)),
	}
	for i, p := range prims {
		b.boxes[i] = p.BoundingBox()
		b.centroids[i] = p.Centroid()
		b.order[i] = i
	}

	if len(prims) > 0 {
		// A binary tree over n leaves has at most 2n-1 nodes
		b.nodes = make([]Node, 0, 2*len(prims)-1)
		b.build(0, len(prims), 0)
	}

	return &Tree{nodes: b.nodes, order: b.order, prims: prims}
}

// build creates the node for order[start:end] and returns its index
func (b *builder) build(start, end, depth int) int {
	bounds := b.boxes[b.order[start]]
	for _, idx := range b.order[start+1 : end] {
		bounds = bounds.Union(b.boxes[idx])
	}

	index := len(b.nodes)
	b.nodes = append(b.nodes, Node{Bounds: bounds, Left: -1, Right: -1, Start: start, Count: end - start})

	if end-start <= b.opts.LeafSize {
		return index
	}

	var axis, mid int
	switch b.opts.Strategy {
	case SpatialMedian:
		axis, mid = b.splitSpatial(start, end, depth, bounds)
	default:
		axis, mid = b.splitObject(start, end)
	}

	left := b.build(start, mid, depth+1)
	right := b.build(mid, end, depth+1)

	node := &b.nodes[index]
	node.Axis = axis
	node.Left = left
	node.Right = right
	node.Start = 0
	node.Count = 0
	return index
}

// splitSpatial partitions by centroid against the midpoint of the longest box
// axis. Degenerate cases fall back to an object median split.
func (b *builder) splitSpatial(start, end, depth int, bounds core.AABB) (axis, mid int) {
	size := bounds.Size()
	switch {
	case size.X > size.Y && size.X > size.Z:
		axis = 0
	case size.Y > size.X && size.Y > size.Z:
		axis = 1
	default:
		axis = 2
	}

	extent := size.Axis(axis)
	if depth >= b.opts.MaxDepth || !(extent > 0) {
		return b.splitObject(start, end)
	}
	split := bounds.Min.Axis(axis) + extent/2

	// Partition in place: centroids <= split move to the front
	mid = start
	for i := start; i < end; i++ {
		if b.centroids[b.order[i]].Axis(axis) <= split {
			b.order[i], b.order[mid] = b.order[mid], b.order[i]
			mid++
		}
	}

	if mid == start || mid == end {
		return b.splitObject(start, end)
	}
	return axis, mid
}

// splitObject tries every axis, sorting by centroid and cutting at the median
// index. The most balanced cut wins; with equal balance the axis with the
// widest centroid spread is preferred.
func (b *builder) splitObject(start, end int) (axis, mid int) {
	n := end - start
	mid = start + n/2

	bestAxis := -1
	bestRatio := math.Inf(1)
	bestSpread := math.Inf(-1)
	for a := 0; a < 3; a++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, idx := range b.order[start:end] {
			c := b.centroids[idx].Axis(a)
			lo = math.Min(lo, c)
			hi = math.Max(hi, c)
		}
		spread := hi - lo

		ratio := math.Abs(1 - float64(mid-start)/float64(end-mid))
		if ratio < bestRatio || (ratio == bestRatio && spread > bestSpread) {
			bestAxis, bestRatio, bestSpread = a, ratio, spread
		}
	}

	b.sortByAxis(start, end, bestAxis)
	return bestAxis, mid
}

// sortByAxis orders a range by centroid, breaking ties by primitive index so
// builds are deterministic
func (b *builder) sortByAxis(start, end, axis int) {
	slices.SortFunc(b.order[start:end], func(i, j int) int {
		if c := cmp.Compare(b.centroids[i].Axis(axis), b.centroids[j].Axis(axis)); c != 0 {
			return c
		}
		return cmp.Compare(i, j)
	})
}
