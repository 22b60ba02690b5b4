package ply

import (
	"bytes"
	"strings"
)

// Variant identifies which member of the container family a file is, decided
// once up front so all downstream decode code can stay format-agnostic.
type Variant int

const (
	// VariantUnknown means the prefix carried no recognizable signature.
	// Not a hard failure: callers fall back to the standard schema and may
	// still succeed.
	VariantUnknown Variant = iota
	// VariantStandard is a plain container: positions plus optional
	// normals, 8-bit colors and faces.
	VariantStandard
	// VariantSH carries per-vertex spherical-harmonic DC color terms,
	// log-encoded scales, logit opacity and raw quaternion rotations.
	VariantSH
	// VariantCodebook stores a shared codebook element; vertices reference
	// entries by index instead of carrying full-precision values.
	VariantCodebook
	// VariantChunked stores chunk-quantized blocks. Recognized but not
	// decodable: the quantization bit layout has no reference decoder.
	VariantChunked
)

func (v Variant) String() string {
	switch v {
	case VariantStandard:
		return "standard"
	case VariantSH:
		return "spherical-harmonic"
	case VariantCodebook:
		return "codebook"
	case VariantChunked:
		return "chunked-quantized"
	}
	return "unknown"
}

// classifyPrefixLen bounds how much of the stream Classify inspects. Headers
// of interest fit well within this.
const classifyPrefixLen = 1024

// Classify inspects at most the first KB of a stream and reports which
// container variant its header signature matches. The decision is purely
// name-based: a codebook element implies the codebook variant, a chunk
// element the chunked variant, spherical-harmonic DC property names with no
// codebook the SH variant, and any other parsable header the standard one.
// No side effects.
func Classify(prefix []byte) Variant {
	if len(prefix) > classifyPrefixLen {
		prefix = prefix[:classifyPrefixLen]
	}
	lines := strings.Split(string(bytes.TrimLeft(prefix, "\xef\xbb\xbf")), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "ply" {
		return VariantUnknown
	}

	var hasCodebook, hasChunk, hasSH bool
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "element":
			if len(fields) >= 2 {
				switch fields[1] {
				case "codebook":
					hasCodebook = true
				case "chunk":
					hasChunk = true
				}
			}
		case "property":
			name := fields[len(fields)-1]
			if strings.HasPrefix(name, "f_dc_") {
				hasSH = true
			}
		case "end_header":
		}
	}

	switch {
	case hasChunk:
		return VariantChunked
	case hasCodebook:
		return VariantCodebook
	case hasSH:
		return VariantSH
	}
	return VariantStandard
}
