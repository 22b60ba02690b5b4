package splat

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// assemble validates the mapped channels and produces the final immutable
// Buffer, fan-triangulating any polygonal faces.
func assemble(ch *channels, faces [][]uint32, logger golog.Logger) (*Buffer, error) {
	if ch.count == 0 {
		return nil, &EmptyGeometryError{}
	}
	if err := checkArity("position", ch.positions, positionArity, ch.count); err != nil {
		return nil, err
	}
	if err := checkArity("normal", ch.normals, normalArity, ch.count); err != nil {
		return nil, err
	}
	if err := checkArity("color", ch.colors, colorArity, ch.count); err != nil {
		return nil, err
	}
	if err := checkArity("scale", ch.scales, scaleArity, ch.count); err != nil {
		return nil, err
	}
	if err := checkArity("rotation", ch.rotations, rotationArity, ch.count); err != nil {
		return nil, err
	}

	buf := &Buffer{
		Positions:   ch.positions,
		Normals:     ch.normals,
		Colors:      ch.colors,
		Scales:      ch.scales,
		Rotations:   ch.rotations,
		VertexCount: ch.count,
	}
	if len(faces) > 0 {
		buf.Indices = triangulate(faces, ch.count, logger)
	}
	return buf, nil
}

func checkArity(name string, channel []float64, arity, count int) error {
	if channel == nil {
		return nil
	}
	if len(channel) != arity*count {
		return errors.Errorf("%s channel length %d is not %d per vertex for %d vertices",
			name, len(channel), arity, count)
	}
	return nil
}

// triangulate fans each n-gon from its first index: (v0,v1,v2), (v0,v2,v3),
// and so on, emitting n-2 triangles. This assumes convex, consistently wound
// polygons; that is a documented limitation, not validated here. Polygons
// with fewer than 3 indices are skipped, as are ones referencing vertices
// outside the buffer.
func triangulate(faces [][]uint32, vertexCount int, logger golog.Logger) []uint32 {
	out := make([]uint32, 0, 3*len(faces))
	for fi, face := range faces {
		if len(face) < 3 {
			logger.Warnf("face %d has %d indices, need at least 3; skipping", fi, len(face))
			continue
		}
		inRange := true
		for _, idx := range face {
			if int(idx) >= vertexCount {
				logger.Warnf("face %d references vertex %d of %d; skipping", fi, idx, vertexCount)
				inRange = false
				break
			}
		}
		if !inRange {
			continue
		}
		for i := 1; i+1 < len(face); i++ {
			out = append(out, face[0], face[i], face[i+1])
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
