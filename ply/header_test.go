package ply

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestParseHeaderStride(t *testing.T) {
	data := []byte("ply\n" +
		"format binary_little_endian 1.0\n" +
		"comment made up for this test\n" +
		"element vertex 5\n" +
		"property float x\n" +
		"property float y\n" +
		"property double z\n" +
		"property uchar red\n" +
		"property short tag\n" +
		"end_header\n")

	h, err := ParseHeader(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.Format, test.ShouldEqual, FormatBinaryLittleEndian)
	test.That(t, len(h.Elements), test.ShouldEqual, 1)

	elem := h.Elements[0]
	test.That(t, elem.Name, test.ShouldEqual, "vertex")
	test.That(t, elem.Count, test.ShouldEqual, 5)
	test.That(t, len(elem.Properties), test.ShouldEqual, 5)

	// Stride is the sum of the scalar property sizes: 4+4+8+1+2.
	test.That(t, elem.Stride(), test.ShouldEqual, 19)
	test.That(t, elem.Properties[0].ByteOffset, test.ShouldEqual, 0)
	test.That(t, elem.Properties[1].ByteOffset, test.ShouldEqual, 4)
	test.That(t, elem.Properties[2].ByteOffset, test.ShouldEqual, 8)
	test.That(t, elem.Properties[3].ByteOffset, test.ShouldEqual, 16)
	test.That(t, elem.Properties[4].ByteOffset, test.ShouldEqual, 17)

	// Payload begins immediately after the sentinel line.
	test.That(t, h.DataOffset, test.ShouldEqual, len(data))
}

func TestParseHeaderListProperty(t *testing.T) {
	data := []byte("ply\n" +
		"format ascii 1.0\n" +
		"element vertex 3\n" +
		"property float x\n" +
		"element face 2\n" +
		"property list uchar int vertex_indices\n" +
		"end_header\n")

	h, err := ParseHeader(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(h.Elements), test.ShouldEqual, 2)

	face, ok := h.Element("face")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, len(face.Properties), test.ShouldEqual, 1)
	test.That(t, face.Properties[0].List, test.ShouldBeTrue)
	test.That(t, face.Properties[0].CountType, test.ShouldEqual, TypeUInt8)
	test.That(t, face.Properties[0].Type, test.ShouldEqual, TypeInt32)
	// List properties have no fixed stride.
	test.That(t, face.Stride(), test.ShouldEqual, -1)

	vertex, ok := h.Element("vertex")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, vertex.Stride(), test.ShouldEqual, 4)
}

func TestParseHeaderMalformed(t *testing.T) {
	for _, tc := range []struct {
		name   string
		data   string
		reason string
	}{
		{
			"missing sentinel",
			"ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\n",
			"end_header sentinel not found",
		},
		{
			"missing magic",
			"format ascii 1.0\nend_header\n",
			"missing ply magic",
		},
		{
			"property before element",
			"ply\nformat ascii 1.0\nproperty float x\nend_header\n",
			"property declared before any element",
		},
		{
			"element arity",
			"ply\nformat ascii 1.0\nelement vertex\nend_header\n",
			"element line must have 3 fields",
		},
		{
			"property arity",
			"ply\nformat ascii 1.0\nelement vertex 1\nproperty float\nend_header\n",
			"property line must have 3 fields",
		},
		{
			"list property arity",
			"ply\nformat ascii 1.0\nelement face 1\nproperty list uchar vertex_indices\nend_header\n",
			"property list line must have 5 fields",
		},
		{
			"bad element count",
			"ply\nformat ascii 1.0\nelement vertex minus-one\nend_header\n",
			"invalid element count",
		},
		{
			"unknown encoding",
			"ply\nformat binary_middle_endian 1.0\nend_header\n",
			"unknown format encoding",
		},
		{
			"missing format",
			"ply\nelement vertex 1\nproperty float x\nend_header\n",
			"header missing format line",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h, err := ParseHeader([]byte(tc.data))
			test.That(t, h, test.ShouldBeNil)
			var mhe *MalformedHeaderError
			test.That(t, errors.As(err, &mhe), test.ShouldBeTrue)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.reason)
		})
	}
}

func TestParseHeaderUnknownScalarType(t *testing.T) {
	data := []byte("ply\n" +
		"format ascii 1.0\n" +
		"element vertex 1\n" +
		"property float x\n" +
		"property half y\n" +
		"end_header\n")

	h, err := ParseHeader(data)
	test.That(t, err, test.ShouldBeNil)
	// Unknown type names are tolerated at header time; decode substitutes 0.
	test.That(t, h.Elements[0].Properties[1].Type, test.ShouldEqual, TypeInvalid)
	test.That(t, h.Elements[0].Properties[1].TypeName, test.ShouldEqual, "half")
}

func TestParseHeaderCRLF(t *testing.T) {
	data := []byte("ply\r\nformat ascii 1.0\r\nelement vertex 1\r\nproperty float x\r\nend_header\r\n1.5\r\n")
	h, err := ParseHeader(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data[h.DataOffset:]), test.ShouldEqual, "1.5\r\n")
}
