// Package splat maps decoded container records onto one canonical geometry
// schema: positions, normals, colors, scales, rotations and triangulated
// face indices. It is the sole decode entry point for callers; the ply
// package underneath handles the container layer.
package splat

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Channel arity per vertex.
const (
	positionArity = 3
	normalArity   = 3
	colorArity    = 4
	scaleArity    = 3
	rotationArity = 4
)

// Buffer is the canonical decoded geometry. All channels are flat arrays
// indexed by vertex; optional channels are nil when the source carried no
// such data. A Buffer is immutable once returned and exclusively owned by
// the caller; the decoder retains nothing after decode completes.
type Buffer struct {
	// Positions holds x/y/z per vertex, length 3×VertexCount.
	Positions []float64
	// Normals holds nx/ny/nz per vertex, or nil.
	Normals []float64
	// Colors holds r/g/b/a per vertex normalized to [0,1], or nil.
	Colors []float64
	// Scales holds per-axis scale per vertex, already exponentiated, or nil.
	Scales []float64
	// Rotations holds raw quaternion components (w,x,y,z as stored) per
	// vertex, not necessarily unit length, or nil.
	Rotations []float64
	// Indices holds triangulated face indices, length 3×triangle count,
	// or nil for pure point sets.
	Indices []uint32

	VertexCount int
}

// Position returns vertex i's position.
func (b *Buffer) Position(i int) r3.Vector {
	return r3.Vector{X: b.Positions[3*i], Y: b.Positions[3*i+1], Z: b.Positions[3*i+2]}
}

// Normal returns vertex i's normal; the second return is false when the
// buffer has no normal channel.
func (b *Buffer) Normal(i int) (r3.Vector, bool) {
	if b.Normals == nil {
		return r3.Vector{}, false
	}
	return r3.Vector{X: b.Normals[3*i], Y: b.Normals[3*i+1], Z: b.Normals[3*i+2]}, true
}

// Color returns vertex i's normalized color components. Vertices without a
// color channel report opaque white.
func (b *Buffer) Color(i int) (r, g, bl, a float64) {
	if b.Colors == nil {
		return 1, 1, 1, 1
	}
	return b.Colors[4*i], b.Colors[4*i+1], b.Colors[4*i+2], b.Colors[4*i+3]
}

// Rotation returns vertex i's rotation as a quaternion. The components are
// raw file values; callers needing a unit rotation should normalize.
func (b *Buffer) Rotation(i int) (quat.Number, bool) {
	if b.Rotations == nil {
		return quat.Number{}, false
	}
	return quat.Number{
		Real: b.Rotations[4*i],
		Imag: b.Rotations[4*i+1],
		Jmag: b.Rotations[4*i+2],
		Kmag: b.Rotations[4*i+3],
	}, true
}

// NormalizedRotation returns vertex i's rotation scaled to unit length.
// Zero-length rotations come back as the identity.
func (b *Buffer) NormalizedRotation(i int) (quat.Number, bool) {
	q, ok := b.Rotation(i)
	if !ok {
		return quat.Number{}, false
	}
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}, true
	}
	return quat.Scale(1/n, q), true
}

// TriangleCount returns the number of triangulated faces.
func (b *Buffer) TriangleCount() int {
	return len(b.Indices) / 3
}

// MinMax returns the axis-aligned bounding extents over all positions.
func (b *Buffer) MinMax() (min, max r3.Vector) {
	min = r3.Vector{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	max = min.Mul(-1)
	for i := 0; i < b.VertexCount; i++ {
		p := b.Position(i)
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	return min, max
}
