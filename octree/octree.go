// Package octree implements an insert-only spatial index over decoded
// geometry: a cube-partitioned tree supporting radius queries and
// frustum-culled, distance-based level-of-detail queries. Nodes live in a
// flat arena and reference children by index, keeping a deep tree cache
// friendly and free of pointer lifetime concerns.
package octree

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Policy defaults. A leaf holding more than maxPointsPerNode points splits
// into octants; a node farther from the camera than halfExtent×lodFactor is
// emitted as a strided LOD unit instead of being recursed into.
const (
	defaultMaxPointsPerNode = 100
	defaultLODFactor        = 1000.0
	defaultMinHalfExtent    = 1e-6
)

// noChildren marks a leaf in the arena.
const noChildren = int32(-1)

// PointRef is one indexed point: its position plus a back-reference into the
// source Buffer for looking up color and other channels. The reference is
// weak; the octree never owns or copies channel data.
type PointRef struct {
	P r3.Vector
	// Index is the vertex index in the source geometry buffer.
	Index int
}

// node is one cube of space. A node is a leaf iff children == noChildren;
// splitting moves every owned point into exactly one child and leaves the
// bucket permanently empty. The transition is one-way: nodes never merge
// back into leaves and points are never removed.
type node struct {
	center r3.Vector
	half   float64
	// children indexes the first of 8 contiguous child nodes in the arena.
	children int32
	points   []PointRef
}

// Octree is the spatial index. It is mutated only via Insert during the
// initial bulk load of one asset; afterwards it is read-only and safe for
// any number of concurrent queries.
type Octree struct {
	logger golog.Logger
	nodes  []node

	maxPointsPerNode int
	lodFactor        float64
	minHalfExtent    float64

	size int
}

// Option configures an Octree at construction.
type Option func(*Octree)

// WithMaxPointsPerNode overrides the leaf capacity before subdivision.
func WithMaxPointsPerNode(n int) Option {
	return func(o *Octree) { o.maxPointsPerNode = n }
}

// WithLODFactor overrides the distance multiple at which a node is emitted
// as a single strided LOD unit.
func WithLODFactor(f float64) Option {
	return func(o *Octree) { o.lodFactor = f }
}

// WithMinHalfExtent overrides the smallest cube the tree will subdivide
// into. Leaves at that extent may exceed the per-node capacity; this bounds
// tree depth for degenerate inputs such as many coincident points.
func WithMinHalfExtent(e float64) Option {
	return func(o *Octree) { o.minHalfExtent = e }
}

// New creates an octree rooted on the cube at center with the given half
// extent. Root bounds are fixed for the tree's lifetime; callers precompute
// them from the source geometry's extents before the first Insert.
func New(center r3.Vector, halfExtent float64, logger golog.Logger, opts ...Option) (*Octree, error) {
	if halfExtent <= 0 {
		return nil, errors.Errorf("invalid half extent (%.2f) for octree", halfExtent)
	}
	if logger == nil {
		logger = golog.Global()
	}
	o := &Octree{
		logger:           logger,
		nodes:            []node{{center: center, half: halfExtent, children: noChildren}},
		maxPointsPerNode: defaultMaxPointsPerNode,
		lodFactor:        defaultLODFactor,
		minHalfExtent:    defaultMinHalfExtent,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxPointsPerNode < 1 {
		return nil, errors.Errorf("invalid leaf capacity (%d) for octree", o.maxPointsPerNode)
	}
	return o, nil
}

// Size returns the number of points inserted.
func (o *Octree) Size() int {
	return o.size
}

// NodeCount returns the number of nodes in the arena, interior and leaf.
func (o *Octree) NodeCount() int {
	return len(o.nodes)
}

// contains reports whether p lies within the node's cube, boundary
// inclusive. Interior octant routing uses the stricter >=/< convention so a
// boundary point lands in exactly one child; the inclusive test here only
// decides acceptance at the root.
func (n *node) contains(p r3.Vector) bool {
	return math.Abs(p.X-n.center.X) <= n.half &&
		math.Abs(p.Y-n.center.Y) <= n.half &&
		math.Abs(p.Z-n.center.Z) <= n.half
}

// octant returns which of the 8 children owns p, bit-packed from per-axis
// >= comparisons against the node center. The >= side takes the positive
// octant, so points on a shared boundary face route deterministically.
func (n *node) octant(p r3.Vector) int32 {
	idx := int32(0)
	if p.X >= n.center.X {
		idx |= 4
	}
	if p.Y >= n.center.Y {
		idx |= 2
	}
	if p.Z >= n.center.Z {
		idx |= 1
	}
	return idx
}

// Insert adds one point to the index. Returns false, without modifying the
// tree, if the point lies outside the root bounds. A leaf that exceeds the
// per-node capacity splits into 8 equal cube children (half the extent,
// centers offset by a quarter extent on each axis) and redistributes every
// owned point; the emptied interior node routes from then on.
func (o *Octree) Insert(p PointRef) bool {
	if !o.nodes[0].contains(p.P) {
		return false
	}
	i := int32(0)
	for o.nodes[i].children != noChildren {
		i = o.nodes[i].children + o.nodes[i].octant(p.P)
	}
	o.nodes[i].points = append(o.nodes[i].points, p)
	o.size++
	o.maybeSplit(i)
	return true
}

func (o *Octree) maybeSplit(i int32) {
	if len(o.nodes[i].points) <= o.maxPointsPerNode {
		return
	}
	childHalf := o.nodes[i].half / 2
	if childHalf < o.minHalfExtent {
		// Degenerate cluster; growing this leaf beyond capacity is the
		// documented fallback.
		return
	}

	base := int32(len(o.nodes))
	center := o.nodes[i].center
	quarter := o.nodes[i].half / 2
	for oct := int32(0); oct < 8; oct++ {
		c := center
		if oct&4 != 0 {
			c.X += quarter
		} else {
			c.X -= quarter
		}
		if oct&2 != 0 {
			c.Y += quarter
		} else {
			c.Y -= quarter
		}
		if oct&1 != 0 {
			c.Z += quarter
		} else {
			c.Z -= quarter
		}
		o.nodes = append(o.nodes, node{center: c, half: childHalf, children: noChildren})
	}

	points := o.nodes[i].points
	o.nodes[i].points = nil
	o.nodes[i].children = base
	for _, p := range points {
		child := base + o.nodes[i].octant(p.P)
		o.nodes[child].points = append(o.nodes[child].points, p)
	}
	// A skewed redistribution can leave a child over capacity in turn.
	for oct := int32(0); oct < 8; oct++ {
		o.maybeSplit(base + oct)
	}
}
