package splat

import "fmt"

// EmptyGeometryError reports a decode that produced zero vertices. Fatal: no
// partial Buffer is returned.
type EmptyGeometryError struct{}

func (e *EmptyGeometryError) Error() string {
	return "decode produced zero vertices"
}

// UnsupportedFormatError reports that no usable container variant could be
// identified, or that an identified variant has no decoder (the chunked
// quantized variant), or that the generic fallback schema also failed.
type UnsupportedFormatError struct {
	Variant string
	Reason  string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("unsupported container format (%s): %s", e.Variant, e.Reason)
	}
	return fmt.Sprintf("unsupported container format: %s", e.Reason)
}
