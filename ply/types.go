// Package ply parses the PLY family of point-cloud containers: a textual
// header terminated by an end_header sentinel, followed by ascii or
// fixed-endianness binary records, including the Gaussian-splat vendor
// variants layered on top of the base container.
package ply

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ScalarType is a fixed-width numeric type a property can declare.
type ScalarType int

// The scalar types a header may declare. TypeInvalid marks a type name the
// parser did not recognize; decode substitutes zero for such properties
// rather than rejecting the whole file.
const (
	TypeInvalid ScalarType = iota
	TypeInt8
	TypeUInt8
	TypeInt16
	TypeUInt16
	TypeInt32
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat32
	TypeFloat64
)

var scalarTypeNames = map[string]ScalarType{
	"char":    TypeInt8,
	"int8":    TypeInt8,
	"uchar":   TypeUInt8,
	"uint8":   TypeUInt8,
	"short":   TypeInt16,
	"int16":   TypeInt16,
	"ushort":  TypeUInt16,
	"uint16":  TypeUInt16,
	"int":     TypeInt32,
	"int32":   TypeInt32,
	"uint":    TypeUInt32,
	"uint32":  TypeUInt32,
	"int64":   TypeInt64,
	"uint64":  TypeUInt64,
	"float":   TypeFloat32,
	"float32": TypeFloat32,
	"double":  TypeFloat64,
	"float64": TypeFloat64,
}

// ParseScalarType maps a header type token to a ScalarType. Unrecognized
// names return TypeInvalid.
func ParseScalarType(s string) ScalarType {
	if t, ok := scalarTypeNames[s]; ok {
		return t
	}
	return TypeInvalid
}

// Size returns the encoded width of the type in bytes. TypeInvalid has size 0.
func (t ScalarType) Size() int {
	switch t {
	case TypeInt8, TypeUInt8:
		return 1
	case TypeInt16, TypeUInt16:
		return 2
	case TypeInt32, TypeUInt32, TypeFloat32:
		return 4
	case TypeInt64, TypeUInt64, TypeFloat64:
		return 8
	case TypeInvalid:
		return 0
	}
	return 0
}

func (t ScalarType) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeUInt8:
		return "uint8"
	case TypeInt16:
		return "int16"
	case TypeUInt16:
		return "uint16"
	case TypeInt32:
		return "int32"
	case TypeUInt32:
		return "uint32"
	case TypeInt64:
		return "int64"
	case TypeUInt64:
		return "uint64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	}
	return "invalid"
}

// Property describes one declared property of an element. The scalar/list
// distinction is resolved once at header-parse time; downstream code branches
// on List instead of re-sniffing raw header lines.
type Property struct {
	Name string
	// List marks a variable-length property: a count of CountType followed
	// by that many values of Type.
	List      bool
	Type      ScalarType
	CountType ScalarType
	// TypeName preserves the raw type token from the header so diagnostics
	// for unrecognized types can name what the file actually declared.
	TypeName string
	// ByteOffset is the property's offset within a fixed-stride binary
	// record. Only meaningful for scalar properties.
	ByteOffset int
}

// Element is one element block from the header: a name, a record count and
// the ordered property schema its records follow.
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// Stride returns the fixed record size in bytes: the sum of the scalar
// property sizes. Elements containing a list property have no fixed stride
// and return -1; their binary records must be walked one property at a time.
func (e *Element) Stride() int {
	stride := 0
	for _, p := range e.Properties {
		if p.List {
			return -1
		}
		stride += p.Type.Size()
	}
	return stride
}

// Property returns the named property and whether it exists.
func (e *Element) Property(name string) (Property, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Format is the payload encoding declared by the header's format line.
type Format int

// Payload encodings.
const (
	FormatASCII Format = iota
	FormatBinaryLittleEndian
	FormatBinaryBigEndian
)

func (f Format) String() string {
	switch f {
	case FormatASCII:
		return "ascii"
	case FormatBinaryLittleEndian:
		return "binary_little_endian"
	case FormatBinaryBigEndian:
		return "binary_big_endian"
	}
	return "unknown"
}

// Header is the parsed textual header of a container: payload format, the
// ordered element schemas, and the byte offset where record payload begins.
type Header struct {
	Format   Format
	Elements []Element
	// DataOffset is the index of the first payload byte, just past the
	// end_header sentinel line.
	DataOffset int
}

// ByteOrder returns the byte order for binary payloads. ASCII headers report
// little-endian; the value is unused in that case.
func (h *Header) ByteOrder() binary.ByteOrder {
	if h.Format == FormatBinaryBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Element returns the named element and whether it exists.
func (h *Header) Element(name string) (*Element, bool) {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i], true
		}
	}
	return nil, false
}

// VertexElement returns the element holding per-point records. It is the
// element named "vertex", falling back to the first element when no element
// carries that name.
func (h *Header) VertexElement() (*Element, error) {
	if e, ok := h.Element("vertex"); ok {
		return e, nil
	}
	if len(h.Elements) == 0 {
		return nil, errors.New("header declares no elements")
	}
	return &h.Elements[0], nil
}
