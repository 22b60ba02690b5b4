package splat

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/ahmad-kad/splatcloud/ply"
)

// shC0 is the zeroth-order spherical-harmonic normalization constant. The DC
// color term in splat files stores (channel - 0.5)/shC0; decoding inverts
// that and clamps to [0,1].
const shC0 = 0.28209479177387814

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// decodeDCColor converts one spherical-harmonic DC term to a normalized
// color channel.
func decodeDCColor(fdc float64) float64 {
	return clamp01(0.5 + shC0*fdc)
}

// channels is the intermediate mapping result for one vertex element before
// assembly: flat per-vertex arrays, nil when the source had no such data.
type channels struct {
	count     int
	positions []float64
	normals   []float64
	colors    []float64
	scales    []float64
	rotations []float64
}

// positionColumns pulls the mandatory x/y/z columns out of a decoded vertex
// element. Every variant requires them.
func positionColumns(ed *ply.ElementData) (x, y, z []float64, err error) {
	x, okX := ed.Column("x")
	y, okY := ed.Column("y")
	z, okZ := ed.Column("z")
	if !okX || !okY || !okZ {
		return nil, nil, nil, errors.Errorf("element %q missing position properties x/y/z", ed.Name)
	}
	if len(x) != len(y) || len(x) != len(z) {
		return nil, nil, nil, errors.Errorf("element %q has ragged position columns (%d/%d/%d)",
			ed.Name, len(x), len(y), len(z))
	}
	return x, y, z, nil
}

// tripleColumns returns three same-length columns if all are present.
func tripleColumns(ed *ply.ElementData, a, b, c string) ([]float64, []float64, []float64, bool) {
	ca, okA := ed.Column(a)
	cb, okB := ed.Column(b)
	cc, okC := ed.Column(c)
	if !okA || !okB || !okC {
		return nil, nil, nil, false
	}
	return ca, cb, cc, true
}

// mapStandard maps a generic vertex element: raw positions and normals,
// 8-bit colors normalized by 255.
func mapStandard(ed *ply.ElementData, logger golog.Logger) (*channels, error) {
	x, y, z, err := positionColumns(ed)
	if err != nil {
		return nil, err
	}
	ch := &channels{count: len(x)}
	ch.positions = interleave3(x, y, z)

	if nx, ny, nz, ok := tripleColumns(ed, "nx", "ny", "nz"); ok {
		ch.normals = interleave3(nx, ny, nz)
	}

	if red, green, blue, ok := tripleColumns(ed, "red", "green", "blue"); ok {
		alpha, hasAlpha := ed.Column("alpha")
		ch.colors = make([]float64, 0, colorArity*ch.count)
		for i := 0; i < ch.count; i++ {
			a := 1.0
			if hasAlpha {
				a = alpha[i] / 255
			}
			ch.colors = append(ch.colors, red[i]/255, green[i]/255, blue[i]/255, a)
		}
	}
	return ch, nil
}

// mapSH maps a per-vertex spherical-harmonic vertex element: DC terms to
// color, sigmoid opacity to alpha, exponentiated log scales, raw rotation
// quaternions.
func mapSH(ed *ply.ElementData, logger golog.Logger) (*channels, error) {
	ch, err := mapStandard(ed, logger)
	if err != nil {
		return nil, err
	}

	if dc0, dc1, dc2, ok := tripleColumns(ed, "f_dc_0", "f_dc_1", "f_dc_2"); ok {
		opacity, hasOpacity := ed.Column("opacity")
		ch.colors = make([]float64, 0, colorArity*ch.count)
		for i := 0; i < ch.count; i++ {
			a := 1.0
			if hasOpacity {
				a = sigmoid(opacity[i])
			}
			ch.colors = append(ch.colors, decodeDCColor(dc0[i]), decodeDCColor(dc1[i]), decodeDCColor(dc2[i]), a)
		}
	}

	if s0, s1, s2, ok := tripleColumns(ed, "scale_0", "scale_1", "scale_2"); ok {
		ch.scales = make([]float64, 0, scaleArity*ch.count)
		for i := 0; i < ch.count; i++ {
			// Scales are log-encoded in the file.
			ch.scales = append(ch.scales, math.Exp(s0[i]), math.Exp(s1[i]), math.Exp(s2[i]))
		}
	}

	r0, ok0 := ed.Column("rot_0")
	r1, ok1 := ed.Column("rot_1")
	r2, ok2 := ed.Column("rot_2")
	r3c, ok3 := ed.Column("rot_3")
	if ok0 && ok1 && ok2 && ok3 {
		ch.rotations = make([]float64, 0, rotationArity*ch.count)
		for i := 0; i < ch.count; i++ {
			ch.rotations = append(ch.rotations, r0[i], r1[i], r2[i], r3c[i])
		}
	}
	return ch, nil
}

func interleave3(a, b, c []float64) []float64 {
	out := make([]float64, 0, 3*len(a))
	for i := range a {
		out = append(out, a[i], b[i], c[i])
	}
	return out
}
