package ply

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func mustParse(t *testing.T, data []byte) *Header {
	t.Helper()
	h, err := ParseHeader(data)
	test.That(t, err, test.ShouldBeNil)
	return h
}

func TestDecodeBinaryLittleEndian(t *testing.T) {
	logger := golog.NewTestLogger(t)

	var b bytes.Buffer
	b.WriteString("ply\n" +
		"format binary_little_endian 1.0\n" +
		"element vertex 2\n" +
		"property float x\n" +
		"property uchar red\n" +
		"property ushort v\n" +
		"end_header\n")
	for _, rec := range []struct {
		x   float32
		red uint8
		v   uint16
	}{
		{1.5, 255, 7},
		{-2.25, 0, 65535},
	} {
		test.That(t, binary.Write(&b, binary.LittleEndian, rec.x), test.ShouldBeNil)
		test.That(t, binary.Write(&b, binary.LittleEndian, rec.red), test.ShouldBeNil)
		test.That(t, binary.Write(&b, binary.LittleEndian, rec.v), test.ShouldBeNil)
	}

	data := b.Bytes()
	h := mustParse(t, data)
	elements, err := NewDecoder(data, h, logger).DecodeAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(elements), test.ShouldEqual, 1)

	ed := elements[0]
	test.That(t, ed.Columns["x"], test.ShouldResemble, []float64{1.5, -2.25})
	test.That(t, ed.Columns["red"], test.ShouldResemble, []float64{255, 0})
	test.That(t, ed.Columns["v"], test.ShouldResemble, []float64{7, 65535})
}

func TestDecodeBinaryBigEndian(t *testing.T) {
	logger := golog.NewTestLogger(t)

	var b bytes.Buffer
	b.WriteString("ply\n" +
		"format binary_big_endian 1.0\n" +
		"element vertex 1\n" +
		"property double x\n" +
		"property int tag\n" +
		"end_header\n")
	test.That(t, binary.Write(&b, binary.BigEndian, float64(3.75)), test.ShouldBeNil)
	test.That(t, binary.Write(&b, binary.BigEndian, int32(-12)), test.ShouldBeNil)

	data := b.Bytes()
	h := mustParse(t, data)
	elements, err := NewDecoder(data, h, logger).DecodeAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, elements[0].Columns["x"], test.ShouldResemble, []float64{3.75})
	test.That(t, elements[0].Columns["tag"], test.ShouldResemble, []float64{-12})
}

func TestDecodeBinaryOverflow(t *testing.T) {
	logger := golog.NewTestLogger(t)

	var b bytes.Buffer
	b.WriteString("ply\n" +
		"format binary_little_endian 1.0\n" +
		"element anchor 1\n" +
		"property float x\n" +
		"element vertex 2\n" +
		"property float y\n" +
		"end_header\n")
	test.That(t, binary.Write(&b, binary.LittleEndian, float32(9)), test.ShouldBeNil)
	// Only one of the two vertex records is present.
	test.That(t, binary.Write(&b, binary.LittleEndian, float32(1)), test.ShouldBeNil)

	data := b.Bytes()
	h := mustParse(t, data)
	elements, err := NewDecoder(data, h, logger).DecodeAll()

	var boe *BufferOverflowError
	test.That(t, errors.As(err, &boe), test.ShouldBeTrue)
	test.That(t, boe.Element, test.ShouldEqual, "vertex")
	test.That(t, boe.Property, test.ShouldEqual, "y")
	test.That(t, boe.Need, test.ShouldEqual, 4)

	// The element decoded before the overflow is retained.
	test.That(t, len(elements), test.ShouldEqual, 1)
	test.That(t, elements[0].Name, test.ShouldEqual, "anchor")
	test.That(t, elements[0].Columns["x"], test.ShouldResemble, []float64{9})
}

func TestDecodeASCIIWithFaces(t *testing.T) {
	logger := golog.NewTestLogger(t)

	data := []byte("ply\n" +
		"format ascii 1.0\n" +
		"element vertex 4\n" +
		"property float x\n" +
		"property float y\n" +
		"property float z\n" +
		"element face 2\n" +
		"property list uchar int vertex_indices\n" +
		"end_header\n" +
		"0 0 0\n" +
		"1 0 0\n" +
		"1 1 0\n" +
		"0 1 0\n" +
		"4 0 1 2 3\n" +
		"3 0 1 2\n")

	h := mustParse(t, data)
	elements, err := NewDecoder(data, h, logger).DecodeAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(elements), test.ShouldEqual, 2)

	vertex := elements[0]
	test.That(t, vertex.Columns["x"], test.ShouldResemble, []float64{0, 1, 1, 0})
	test.That(t, vertex.Columns["y"], test.ShouldResemble, []float64{0, 0, 1, 1})

	face := elements[1]
	test.That(t, face.Lists["vertex_indices"], test.ShouldResemble, [][]uint32{
		{0, 1, 2, 3},
		{0, 1, 2},
	})
}

func TestDecodeASCIIShortRecord(t *testing.T) {
	logger := golog.NewTestLogger(t)

	data := []byte("ply\n" +
		"format ascii 1.0\n" +
		"element vertex 2\n" +
		"property float x\n" +
		"property float y\n" +
		"end_header\n" +
		"1 2\n" +
		"3\n")

	h := mustParse(t, data)
	_, err := NewDecoder(data, h, logger).DecodeAll()
	var boe *BufferOverflowError
	test.That(t, errors.As(err, &boe), test.ShouldBeTrue)
	test.That(t, boe.Element, test.ShouldEqual, "vertex")
	test.That(t, boe.Property, test.ShouldEqual, "y")
	test.That(t, boe.Offset, test.ShouldEqual, 1)
}

func TestDecodeASCIIBadTokenIsZero(t *testing.T) {
	logger := golog.NewTestLogger(t)

	data := []byte("ply\n" +
		"format ascii 1.0\n" +
		"element vertex 1\n" +
		"property float x\n" +
		"property float y\n" +
		"end_header\n" +
		"oops 4\n")

	h := mustParse(t, data)
	elements, err := NewDecoder(data, h, logger).DecodeAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, elements[0].Columns["x"], test.ShouldResemble, []float64{0})
	test.That(t, elements[0].Columns["y"], test.ShouldResemble, []float64{4})
}

func TestDecodeUnsupportedTypeIsZero(t *testing.T) {
	logger := golog.NewTestLogger(t)

	var b bytes.Buffer
	b.WriteString("ply\n" +
		"format binary_little_endian 1.0\n" +
		"element vertex 1\n" +
		"property float x\n" +
		"property half y\n" +
		"end_header\n")
	test.That(t, binary.Write(&b, binary.LittleEndian, float32(2)), test.ShouldBeNil)

	data := b.Bytes()
	h := mustParse(t, data)
	elements, err := NewDecoder(data, h, logger).DecodeAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, elements[0].Columns["x"], test.ShouldResemble, []float64{2})
	test.That(t, elements[0].Columns["y"], test.ShouldResemble, []float64{0})
}

func TestScalarTypeSizes(t *testing.T) {
	for name, want := range map[string]int{
		"char": 1, "uchar": 1, "short": 2, "ushort": 2,
		"int": 4, "uint": 4, "float": 4, "double": 8,
		"int8": 1, "uint16": 2, "int32": 4, "float64": 8,
		"mystery": 0,
	} {
		test.That(t, ParseScalarType(name).Size(), test.ShouldEqual, want)
	}
}
