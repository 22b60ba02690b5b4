package splat

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/ahmad-kad/splatcloud/ply"
)

// codebookElement is the element name whose presence marks the codebook
// variant: a small shared table of representative splat values which
// vertices reference by index.
const codebookElement = "codebook"

// codebookIndexProperty is the per-vertex property referencing a codebook
// entry.
const codebookIndexProperty = "codebook_index"

// codebook holds the decoded shared table. Each entry is decoded with the
// same DC-color/exp-scale/sigmoid-opacity rules as a per-vertex splat.
type codebook struct {
	count     int
	colors    []float64
	scales    []float64
	rotations []float64
}

func decodeCodebook(ed *ply.ElementData) (*codebook, error) {
	cb := &codebook{count: ed.Count}

	if dc0, dc1, dc2, ok := tripleColumns(ed, "f_dc_0", "f_dc_1", "f_dc_2"); ok {
		opacity, hasOpacity := ed.Column("opacity")
		cb.colors = make([]float64, 0, colorArity*cb.count)
		for i := 0; i < cb.count; i++ {
			a := 1.0
			if hasOpacity {
				a = sigmoid(opacity[i])
			}
			cb.colors = append(cb.colors, decodeDCColor(dc0[i]), decodeDCColor(dc1[i]), decodeDCColor(dc2[i]), a)
		}
	}

	if s0, s1, s2, ok := tripleColumns(ed, "scale_0", "scale_1", "scale_2"); ok {
		cb.scales = make([]float64, 0, scaleArity*cb.count)
		for i := 0; i < cb.count; i++ {
			cb.scales = append(cb.scales, math.Exp(s0[i]), math.Exp(s1[i]), math.Exp(s2[i]))
		}
	}

	r0, ok0 := ed.Column("rot_0")
	r1, ok1 := ed.Column("rot_1")
	r2, ok2 := ed.Column("rot_2")
	r3c, ok3 := ed.Column("rot_3")
	if ok0 && ok1 && ok2 && ok3 {
		cb.rotations = make([]float64, 0, rotationArity*cb.count)
		for i := 0; i < cb.count; i++ {
			cb.rotations = append(cb.rotations, r0[i], r1[i], r2[i], r3c[i])
		}
	}
	return cb, nil
}

// residuals gathers the optional per-vertex correction columns. Residuals
// are added to the referenced entry's decoded values after lookup.
type residuals struct {
	dc      [3][]float64
	opacity []float64
	scale   [3][]float64
	rot     [4][]float64
}

func vertexResiduals(ed *ply.ElementData) residuals {
	var res residuals
	names := [3]string{"f_dc_0_residual", "f_dc_1_residual", "f_dc_2_residual"}
	for i, n := range names {
		res.dc[i], _ = ed.Column(n)
	}
	res.opacity, _ = ed.Column("opacity_residual")
	scaleNames := [3]string{"scale_0_residual", "scale_1_residual", "scale_2_residual"}
	for i, n := range scaleNames {
		res.scale[i], _ = ed.Column(n)
	}
	rotNames := [4]string{"rot_0_residual", "rot_1_residual", "rot_2_residual", "rot_3_residual"}
	for i, n := range rotNames {
		res.rot[i], _ = ed.Column(n)
	}
	return res
}

func residualAt(col []float64, i int) float64 {
	if col == nil {
		return 0
	}
	return col[i]
}

// mapCodebook maps a codebook-variant vertex element: positions come from
// the vertex records, color/scale/rotation from a direct codebook lookup
// plus any residual correction the schema carries.
func mapCodebook(vertex, book *ply.ElementData, logger golog.Logger) (*channels, error) {
	x, y, z, err := positionColumns(vertex)
	if err != nil {
		return nil, err
	}
	ch := &channels{count: len(x)}
	ch.positions = interleave3(x, y, z)

	if nx, ny, nz, ok := tripleColumns(vertex, "nx", "ny", "nz"); ok {
		ch.normals = interleave3(nx, ny, nz)
	}

	indices, ok := vertex.Column(codebookIndexProperty)
	if !ok {
		return nil, errors.Errorf("codebook variant vertex element missing %q property", codebookIndexProperty)
	}

	cb, err := decodeCodebook(book)
	if err != nil {
		return nil, err
	}
	res := vertexResiduals(vertex)

	if cb.colors != nil {
		ch.colors = make([]float64, 0, colorArity*ch.count)
	}
	if cb.scales != nil {
		ch.scales = make([]float64, 0, scaleArity*ch.count)
	}
	if cb.rotations != nil {
		ch.rotations = make([]float64, 0, rotationArity*ch.count)
	}

	for i := 0; i < ch.count; i++ {
		idx := int(indices[i])
		if idx < 0 || idx >= cb.count {
			return nil, errors.Errorf("vertex %d references codebook entry %d of %d", i, idx, cb.count)
		}
		if cb.colors != nil {
			ch.colors = append(ch.colors,
				clamp01(cb.colors[4*idx]+residualAt(res.dc[0], i)),
				clamp01(cb.colors[4*idx+1]+residualAt(res.dc[1], i)),
				clamp01(cb.colors[4*idx+2]+residualAt(res.dc[2], i)),
				clamp01(cb.colors[4*idx+3]+residualAt(res.opacity, i)),
			)
		}
		if cb.scales != nil {
			ch.scales = append(ch.scales,
				cb.scales[3*idx]+residualAt(res.scale[0], i),
				cb.scales[3*idx+1]+residualAt(res.scale[1], i),
				cb.scales[3*idx+2]+residualAt(res.scale[2], i),
			)
		}
		if cb.rotations != nil {
			ch.rotations = append(ch.rotations,
				cb.rotations[4*idx]+residualAt(res.rot[0], i),
				cb.rotations[4*idx+1]+residualAt(res.rot[1], i),
				cb.rotations[4*idx+2]+residualAt(res.rot[2], i),
				cb.rotations[4*idx+3]+residualAt(res.rot[3], i),
			)
		}
	}
	return ch, nil
}
