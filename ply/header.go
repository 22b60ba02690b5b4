package ply

import (
	"bytes"
	"strconv"
	"strings"
)

const (
	headerMagic    = "ply"
	headerSentinel = "end_header"
)

// ParseHeader consumes the textual header segment of a container: magic,
// format line, element/property declarations, terminated by the end_header
// sentinel. The sentinel is textual regardless of whether the payload is
// ascii or binary. Returns a MalformedHeaderError if the sentinel is never
// found or a declaration line cannot be tokenized into its expected shape.
func ParseHeader(data []byte) (*Header, error) {
	h := &Header{}
	var (
		sawMagic     bool
		sawFormat    bool
		strideCursor int
	)

	offset := 0
	lineNo := 0
	for offset < len(data) {
		var line string
		if nl := bytes.IndexByte(data[offset:], '\n'); nl >= 0 {
			line = string(data[offset : offset+nl])
			offset += nl + 1
		} else {
			line = string(data[offset:])
			offset = len(data)
		}
		lineNo++
		line = strings.TrimRight(line, "\r")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if !sawMagic {
			if fields[0] != headerMagic {
				return nil, &MalformedHeaderError{Line: lineNo, Reason: "missing ply magic"}
			}
			sawMagic = true
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, &MalformedHeaderError{Line: lineNo, Reason: "format line missing encoding"}
			}
			switch fields[1] {
			case "ascii":
				h.Format = FormatASCII
			case "binary_little_endian":
				h.Format = FormatBinaryLittleEndian
			case "binary_big_endian":
				h.Format = FormatBinaryBigEndian
			default:
				return nil, &MalformedHeaderError{Line: lineNo, Reason: "unknown format encoding " + strconv.Quote(fields[1])}
			}
			sawFormat = true

		case "element":
			if len(fields) != 3 {
				return nil, &MalformedHeaderError{Line: lineNo, Reason: "element line must have 3 fields, got " + strconv.Itoa(len(fields))}
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, &MalformedHeaderError{Line: lineNo, Reason: "invalid element count " + strconv.Quote(fields[2])}
			}
			h.Elements = append(h.Elements, Element{Name: fields[1], Count: count})
			strideCursor = 0

		case "property":
			if len(h.Elements) == 0 {
				return nil, &MalformedHeaderError{Line: lineNo, Reason: "property declared before any element"}
			}
			elem := &h.Elements[len(h.Elements)-1]
			if len(fields) >= 2 && fields[1] == "list" {
				if len(fields) != 5 {
					return nil, &MalformedHeaderError{Line: lineNo, Reason: "property list line must have 5 fields, got " + strconv.Itoa(len(fields))}
				}
				elem.Properties = append(elem.Properties, Property{
					Name:      fields[4],
					List:      true,
					CountType: ParseScalarType(fields[2]),
					Type:      ParseScalarType(fields[3]),
					TypeName:  fields[3],
				})
			} else {
				if len(fields) != 3 {
					return nil, &MalformedHeaderError{Line: lineNo, Reason: "property line must have 3 fields, got " + strconv.Itoa(len(fields))}
				}
				t := ParseScalarType(fields[1])
				elem.Properties = append(elem.Properties, Property{
					Name:       fields[2],
					Type:       t,
					TypeName:   fields[1],
					ByteOffset: strideCursor,
				})
				strideCursor += t.Size()
			}

		case "comment", "obj_info":
			// Freeform metadata, ignored.

		case headerSentinel:
			if !sawFormat {
				return nil, &MalformedHeaderError{Line: lineNo, Reason: "header missing format line"}
			}
			h.DataOffset = offset
			return h, nil

		default:
			// Unknown keywords are skipped; some writers emit extras.
		}
	}
	return nil, &MalformedHeaderError{Reason: "end_header sentinel not found before end of input"}
}
