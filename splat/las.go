package splat

import (
	"github.com/edaniels/golog"
	"github.com/edaniels/lidario"
	"go.uber.org/multierr"
)

// Largest integer range float64 can represent exactly. LAS stores scaled
// integer coordinates; positions outside this range lose precision when
// widened to float64.
const (
	maxPreciseFloat64 = float64(1 << 53)
	minPreciseFloat64 = -maxPreciseFloat64
)

// FromLASFile ingests a LAS lidar file into the canonical geometry schema:
// positions, and colors when the point format carries 16-bit RGB. Potential
// precision loss is reported through the logger but is not an error.
func FromLASFile(path string, logger golog.Logger) (_ *Buffer, err error) {
	if logger == nil {
		logger = golog.Global()
	}
	lf, err := lidario.NewLasFile(path, "r")
	if err != nil {
		return nil, err
	}
	defer func() {
		cerr := lf.Close()
		err = multierr.Combine(err, cerr)
	}()

	n := lf.Header.NumberPoints
	if n == 0 {
		return nil, &EmptyGeometryError{}
	}

	hasColor := lf.Header.PointFormatID == 2
	buf := &Buffer{
		Positions:   make([]float64, 0, positionArity*n),
		VertexCount: n,
	}
	if hasColor {
		buf.Colors = make([]float64, 0, colorArity*n)
	}

	for i := 0; i < n; i++ {
		p, err := lf.LasPoint(i)
		if err != nil {
			return nil, err
		}
		data := p.PointData()

		x, y, z := data.X, data.Y, data.Z
		if x < minPreciseFloat64 || x > maxPreciseFloat64 ||
			y < minPreciseFloat64 || y > maxPreciseFloat64 ||
			z < minPreciseFloat64 || z > maxPreciseFloat64 {
			logger.Warnf("potential floating point lossiness for LAS point %d (%f,%f,%f)", i, x, y, z)
		}
		buf.Positions = append(buf.Positions, x, y, z)

		if hasColor {
			r, g, b, a := 1.0, 1.0, 1.0, 1.0
			if rgb := p.RgbData(); rgb != nil {
				// LAS color is 16-bit per channel.
				r = float64(rgb.Red) / 65535
				g = float64(rgb.Green) / 65535
				b = float64(rgb.Blue) / 65535
			}
			buf.Colors = append(buf.Colors, r, g, b, a)
		}
	}
	return buf, nil
}
