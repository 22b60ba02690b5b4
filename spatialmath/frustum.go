package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Frustum is a camera's visible volume as six clipping planes. The plane set
// is recomputed wholesale on every Update; there is no incremental state, so
// a Frustum may simply be overwritten once per frame from the current camera
// matrices. Plane order is an implementation detail callers must not rely on.
type Frustum struct {
	planes [6]Plane
}

// NewFrustum returns a frustum computed from the given camera matrices.
func NewFrustum(projection, view mgl64.Mat4) *Frustum {
	f := &Frustum{}
	f.Update(projection, view)
	return f
}

// Update derives the six planes from combined = projection × view using the
// row-combination extraction: with rows r0..r3 of the combined matrix,
// left = r3+r0, right = r3-r0, bottom = r3+r1, top = r3-r1, near = r3+r2,
// far = r3-r2. Each plane is then normalized to a unit normal, scaling its
// offset identically. mgl64.Mat4 is column-major, matching the standard
// graphics-API layout.
func (f *Frustum) Update(projection, view mgl64.Mat4) {
	m := projection.Mul4(view)

	row := func(i int) (r3.Vector, float64) {
		return r3.Vector{X: m.At(i, 0), Y: m.At(i, 1), Z: m.At(i, 2)}, m.At(i, 3)
	}
	r0, d0 := row(0)
	r1, d1 := row(1)
	r2, d2 := row(2)
	r3v, d3 := row(3)

	f.planes = [6]Plane{
		{Normal: r3v.Add(r0), Offset: d3 + d0}, // left
		{Normal: r3v.Sub(r0), Offset: d3 - d0}, // right
		{Normal: r3v.Add(r1), Offset: d3 + d1}, // bottom
		{Normal: r3v.Sub(r1), Offset: d3 - d1}, // top
		{Normal: r3v.Add(r2), Offset: d3 + d2}, // near
		{Normal: r3v.Sub(r2), Offset: d3 - d2}, // far
	}
	for i := range f.planes {
		f.planes[i] = f.planes[i].normalized()
	}
}

// Planes returns a copy of the six planes.
func (f *Frustum) Planes() [6]Plane {
	return f.planes
}

// ContainsPoint reports whether p lies inside or on every plane.
func (f *Frustum) ContainsPoint(p r3.Vector) bool {
	for _, pl := range f.planes {
		if pl.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsCube reports whether the axis-aligned cube at center with the
// given half extent intersects the frustum. For each plane the cube corner
// most positive along the plane normal is tested; if that corner's signed
// distance is negative the cube is entirely outside that plane and is
// rejected. The test is conservative in the usual way: a cube passing all
// six plane tests may still be slightly outside the frustum near its edges.
func (f *Frustum) IntersectsCube(center r3.Vector, halfExtent float64) bool {
	for _, pl := range f.planes {
		corner := center
		if pl.Normal.X >= 0 {
			corner.X += halfExtent
		} else {
			corner.X -= halfExtent
		}
		if pl.Normal.Y >= 0 {
			corner.Y += halfExtent
		} else {
			corner.Y -= halfExtent
		}
		if pl.Normal.Z >= 0 {
			corner.Z += halfExtent
		} else {
			corner.Z -= halfExtent
		}
		if pl.DistanceToPoint(corner) < 0 {
			return false
		}
	}
	return true
}
