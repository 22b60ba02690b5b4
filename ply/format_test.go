package ply

import (
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name   string
		header string
		want   Variant
	}{
		{
			"standard",
			"ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nend_header\n",
			VariantStandard,
		},
		{
			"spherical harmonic",
			"ply\nformat binary_little_endian 1.0\nelement vertex 3\n" +
				"property float x\nproperty float f_dc_0\nproperty float f_dc_1\nend_header\n",
			VariantSH,
		},
		{
			"codebook wins over SH properties",
			"ply\nformat binary_little_endian 1.0\nelement codebook 16\nproperty float f_dc_0\n" +
				"element vertex 3\nproperty float x\nend_header\n",
			VariantCodebook,
		},
		{
			"chunked",
			"ply\nformat binary_little_endian 1.0\nelement chunk 4\nproperty float min_x\n" +
				"element vertex 3\nproperty uint packed_position\nend_header\n",
			VariantChunked,
		},
		{
			"no magic",
			"format ascii 1.0\nelement vertex 3\nend_header\n",
			VariantUnknown,
		},
		{
			"empty",
			"",
			VariantUnknown,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, Classify([]byte(tc.header)), test.ShouldEqual, tc.want)
		})
	}
}

func TestClassifyBoundedPrefix(t *testing.T) {
	// Signatures past the inspected prefix are invisible; the file still
	// classifies from what fits in the first KB.
	header := "ply\nformat ascii 1.0\n" +
		strings.Repeat("comment padding padding padding padding padding\n", 40) +
		"element codebook 4\nend_header\n"
	test.That(t, len(header), test.ShouldBeGreaterThan, classifyPrefixLen)
	test.That(t, Classify([]byte(header)), test.ShouldEqual, VariantStandard)
}
