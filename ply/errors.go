package ply

import "fmt"

// MalformedHeaderError reports an unparsable or structurally incomplete
// header. It is fatal: the whole-file decode aborts.
type MalformedHeaderError struct {
	// Line is the 1-based header line the failure was detected on, or 0
	// when the failure is not attributable to a single line (e.g. a missing
	// sentinel).
	Line   int
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed header at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed header: %s", e.Reason)
}

// BufferOverflowError reports a binary read past the end of the payload, or
// an ascii record with too few tokens. It aborts the current element's
// decode; elements decoded before it are retained by DecodeAll's caller.
type BufferOverflowError struct {
	Element  string
	Property string
	// Offset is the byte offset of the failed read for binary payloads, or
	// the record index for ascii payloads.
	Offset int
	Need   int
}

func (e *BufferOverflowError) Error() string {
	return fmt.Sprintf("buffer overflow decoding element %q property %q: need %d bytes at offset %d",
		e.Element, e.Property, e.Need, e.Offset)
}

// UnsupportedPropertyTypeError reports a property whose declared type the
// decoder cannot read. It is advisory: the decoder logs it once per property,
// substitutes zero, and continues.
type UnsupportedPropertyTypeError struct {
	Element  string
	Property string
	TypeName string
}

func (e *UnsupportedPropertyTypeError) Error() string {
	return fmt.Sprintf("unsupported property type %q for element %q property %q",
		e.TypeName, e.Element, e.Property)
}
