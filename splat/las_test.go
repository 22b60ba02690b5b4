package splat

import (
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"github.com/edaniels/lidario"
	"go.viam.com/test"
)

// writeLASFixture writes a point-format-2 LAS file with one record per
// position, carrying 16-bit RGB.
func writeLASFixture(t *testing.T, path string, positions [][3]float64, colors [][3]uint16) {
	t.Helper()

	lf, err := lidario.NewLasFile(path, "w")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lf.AddHeader(lidario.LasHeader{PointFormatID: 2}), test.ShouldBeNil)

	for i, p := range positions {
		pr0 := &lidario.PointRecord0{
			X: p[0],
			Y: p[1],
			Z: p[2],
			BitField: lidario.PointBitField{
				Value: (1) | (1 << 3),
			},
			ClassBitField: lidario.ClassificationBitField{
				Value: 0,
			},
			PointSourceID: 1,
		}
		err = lf.AddLasPoint(&lidario.PointRecord2{
			PointRecord0: pr0,
			RGB: &lidario.RgbData{
				Red:   colors[i][0],
				Green: colors[i][1],
				Blue:  colors[i][2],
			},
		})
		test.That(t, err, test.ShouldBeNil)
	}
	test.That(t, lf.Close(), test.ShouldBeNil)
}

func TestDecodeFileLAS(t *testing.T) {
	logger := golog.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "cloud.las")

	positions := [][3]float64{
		{1, 2, 3},
		{-4, 0, 5},
		{0, -6, 2},
	}
	colors := [][3]uint16{
		{65535, 0, 0},
		{0, 65535, 0},
		{0, 0, 65535},
	}
	writeLASFixture(t, path, positions, colors)

	buf, err := DecodeFile(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, buf.VertexCount, test.ShouldEqual, 3)
	test.That(t, buf.TriangleCount(), test.ShouldEqual, 0)

	// LAS stores scaled integer coordinates; integral inputs survive any
	// decimal scale factor.
	for i, p := range positions {
		got := buf.Position(i)
		test.That(t, got.X, test.ShouldAlmostEqual, p[0], 1e-3)
		test.That(t, got.Y, test.ShouldAlmostEqual, p[1], 1e-3)
		test.That(t, got.Z, test.ShouldAlmostEqual, p[2], 1e-3)
	}

	r, g, b, a := buf.Color(0)
	test.That(t, r, test.ShouldAlmostEqual, 1, 1e-3)
	test.That(t, g, test.ShouldAlmostEqual, 0, 1e-3)
	test.That(t, b, test.ShouldAlmostEqual, 0, 1e-3)
	test.That(t, a, test.ShouldEqual, 1)
	_, g, _, _ = buf.Color(1)
	test.That(t, g, test.ShouldAlmostEqual, 1, 1e-3)
	_, _, b, _ = buf.Color(2)
	test.That(t, b, test.ShouldAlmostEqual, 1, 1e-3)
}

func TestDecodeFileCompressedLASRefused(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := DecodeFile(filepath.Join(t.TempDir(), "cloud.las.gz"), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "decompress")
}
