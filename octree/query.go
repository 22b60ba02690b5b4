package octree

import (
	"github.com/golang/geo/r3"

	"github.com/ahmad-kad/splatcloud/spatialmath"
)

// QueryRadius returns every point within radius of pos. Traversal is
// depth-first; a node is skipped entirely when the query sphere cannot reach
// its cube (closest-point-in-box test against the squared radius), so cost
// is bounded by tree depth and local density rather than total point count.
func (o *Octree) QueryRadius(pos r3.Vector, radius float64) []PointRef {
	if radius < 0 {
		return nil
	}
	rsq := radius * radius
	var out []PointRef

	stack := []int32{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &o.nodes[i]

		if sqDistToCube(n.center, n.half, pos) > rsq {
			continue
		}
		for _, p := range n.points {
			d := p.P.Sub(pos)
			if d.Dot(d) <= rsq {
				out = append(out, p)
			}
		}
		if n.children != noChildren {
			for oct := int32(0); oct < 8; oct++ {
				stack = append(stack, n.children+oct)
			}
		}
	}
	return out
}

// sqDistToCube returns the squared distance from pos to the closest point of
// the cube; zero when pos is inside.
func sqDistToCube(center r3.Vector, half float64, pos r3.Vector) float64 {
	d := 0.0
	for _, axis := range [3][2]float64{
		{pos.X, center.X},
		{pos.Y, center.Y},
		{pos.Z, center.Z},
	} {
		lo, hi := axis[1]-half, axis[1]+half
		if axis[0] < lo {
			d += (lo - axis[0]) * (lo - axis[0])
		} else if axis[0] > hi {
			d += (axis[0] - hi) * (axis[0] - hi)
		}
	}
	return d
}

// QueryFrustum returns the points visible in the frustum, reduced by
// level-of-detail for distant octants. Nodes whose cubes fail the 6-plane
// box test are pruned. An interior node whose center is farther from the
// camera than halfExtent×lodFactor is emitted as a single LOD unit: a
// strided subsample of its whole subtree (stride = max(1,
// floor(distance/lodThreshold))) with no further per-child culling, which
// bounds per-frame cost for distant, dense octants. Nearer nodes recurse
// fully and emit every point.
func (o *Octree) QueryFrustum(f *spatialmath.Frustum, camera r3.Vector) []PointRef {
	var out []PointRef

	stack := []int32{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &o.nodes[i]

		if !f.IntersectsCube(n.center, n.half) {
			continue
		}

		if n.children == noChildren {
			out = append(out, n.points...)
			continue
		}

		dist := n.center.Sub(camera).Norm()
		lodThreshold := n.half * o.lodFactor
		if dist > lodThreshold {
			stride := int(dist / lodThreshold)
			if stride < 1 {
				stride = 1
			}
			out = o.appendStrided(i, stride, out)
			continue
		}
		for oct := int32(0); oct < 8; oct++ {
			stack = append(stack, n.children+oct)
		}
	}
	return out
}

// appendStrided emits every stride-th point of the subtree rooted at i, in
// deterministic arena order.
func (o *Octree) appendStrided(i int32, stride int, out []PointRef) []PointRef {
	k := 0
	stack := []int32{i}
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &o.nodes[j]

		for _, p := range n.points {
			if k%stride == 0 {
				out = append(out, p)
			}
			k++
		}
		if n.children != noChildren {
			for oct := int32(7); oct >= 0; oct-- {
				stack = append(stack, n.children+oct)
			}
		}
	}
	return out
}
