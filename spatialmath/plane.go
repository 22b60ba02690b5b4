// Package spatialmath holds the camera-space geometry used by the spatial
// index: clipping planes and the view frustum derived from camera matrices.
package spatialmath

import "github.com/golang/geo/r3"

// Plane is an oriented half-space boundary in Hessian normal form: points p
// with Normal·p + Offset >= 0 are on or inside the plane.
type Plane struct {
	Normal r3.Vector
	Offset float64
}

// DistanceToPoint returns the signed distance from the plane to p. Positive
// means the inside half-space when Normal is unit length.
func (pl Plane) DistanceToPoint(p r3.Vector) float64 {
	return pl.Normal.Dot(p) + pl.Offset
}

// normalized returns the plane scaled so its normal is unit length, with the
// offset scaled identically. A degenerate zero normal is returned unchanged.
func (pl Plane) normalized() Plane {
	n := pl.Normal.Norm()
	if n == 0 {
		return pl
	}
	return Plane{Normal: pl.Normal.Mul(1 / n), Offset: pl.Offset / n}
}
