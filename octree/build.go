package octree

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/ahmad-kad/splatcloud/splat"
)

// boundsPadding is the relative margin added to the root half extent so
// points lying exactly on the maximum boundary stay inside the inclusive
// containment test.
const boundsPadding = 1e-9

// BuildFromBuffer indexes every vertex of a decoded geometry buffer. The
// root cube is derived from the buffer's extents: centered on the bounding
// box, sized to its largest axis span. The buffer itself is not retained;
// each indexed point carries only its position and vertex index.
func BuildFromBuffer(buf *splat.Buffer, logger golog.Logger, opts ...Option) (*Octree, error) {
	if buf == nil || buf.VertexCount == 0 {
		return nil, errors.New("cannot index an empty geometry buffer")
	}

	min, max := buf.MinMax()
	center := min.Add(max).Mul(0.5)
	span := max.Sub(min)
	half := span.X
	if span.Y > half {
		half = span.Y
	}
	if span.Z > half {
		half = span.Z
	}
	half /= 2
	if half == 0 {
		// All points coincide; any positive extent works.
		half = 1
	}
	half *= 1 + boundsPadding

	o, err := New(center, half, logger, opts...)
	if err != nil {
		return nil, err
	}
	for i := 0; i < buf.VertexCount; i++ {
		p := PointRef{P: buf.Position(i), Index: i}
		if !o.Insert(p) {
			return nil, errors.Errorf("vertex %d at %v fell outside the computed root bounds", i, p.P)
		}
	}
	return o, nil
}

// Bounds returns the root cube as (center, halfExtent). Convenience for
// callers positioning a camera or probe query around a loaded asset.
func (o *Octree) Bounds() (r3.Vector, float64) {
	return o.nodes[0].center, o.nodes[0].half
}
