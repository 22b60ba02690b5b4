package ply

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// ElementData is the columnar result of decoding one element: every scalar
// property becomes a column of raw numeric values, every list property a
// per-record index list.
type ElementData struct {
	Name    string
	Count   int
	Columns map[string][]float64
	Lists   map[string][][]uint32
}

// Column returns the named scalar column and whether it was decoded.
func (ed *ElementData) Column(name string) ([]float64, bool) {
	c, ok := ed.Columns[name]
	return c, ok
}

// Decoder walks a container's payload element by element, in header order.
// It keeps a single cursor; elements must be decoded sequentially because
// binary records are tightly packed and ascii records are successive lines.
type Decoder struct {
	data   []byte
	header *Header
	logger golog.Logger

	cursor int
	lines  *bufio.Scanner
	next   int
	warned map[string]bool
}

// NewDecoder prepares decoding of the payload described by header. The
// logger is the sink for recoverable per-field anomalies; nothing else is
// written to it.
func NewDecoder(data []byte, header *Header, logger golog.Logger) *Decoder {
	if logger == nil {
		logger = golog.Global()
	}
	d := &Decoder{
		data:   data,
		header: header,
		logger: logger,
		cursor: header.DataOffset,
		warned: map[string]bool{},
	}
	if header.Format == FormatASCII {
		d.lines = bufio.NewScanner(bytes.NewReader(data[min(header.DataOffset, len(data)):]))
		d.lines.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	}
	return d
}

// DecodeAll decodes every element in header order. On failure it returns the
// elements decoded so far along with the error, so callers can retain
// earlier elements even when a later one overflows the payload.
func (d *Decoder) DecodeAll() ([]*ElementData, error) {
	out := make([]*ElementData, 0, len(d.header.Elements))
	for range d.header.Elements {
		ed, err := d.DecodeNext()
		if err != nil {
			return out, err
		}
		out = append(out, ed)
	}
	return out, nil
}

// DecodeNext decodes the next element in header order.
func (d *Decoder) DecodeNext() (*ElementData, error) {
	if d.next >= len(d.header.Elements) {
		return nil, errors.New("all declared elements already decoded")
	}
	elem := &d.header.Elements[d.next]
	d.next++

	ed := &ElementData{
		Name:    elem.Name,
		Count:   elem.Count,
		Columns: make(map[string][]float64, len(elem.Properties)),
		Lists:   map[string][][]uint32{},
	}
	for _, p := range elem.Properties {
		if p.List {
			ed.Lists[p.Name] = make([][]uint32, 0, elem.Count)
		} else {
			ed.Columns[p.Name] = make([]float64, 0, elem.Count)
		}
	}

	if d.header.Format == FormatASCII {
		return ed, d.decodeASCII(elem, ed)
	}
	return ed, d.decodeBinary(elem, ed)
}

func (d *Decoder) decodeBinary(elem *Element, ed *ElementData) error {
	order := d.header.ByteOrder()
	for i := 0; i < elem.Count; i++ {
		for _, p := range elem.Properties {
			if !p.List {
				v, err := d.readBinaryScalar(elem.Name, p.Name, p.TypeName, p.Type, order)
				if err != nil {
					return err
				}
				ed.Columns[p.Name] = append(ed.Columns[p.Name], v)
				continue
			}
			countV, err := d.readBinaryScalar(elem.Name, p.Name, p.TypeName, p.CountType, order)
			if err != nil {
				return err
			}
			count := int(countV)
			if count < 0 {
				count = 0
			}
			entries := make([]uint32, 0, count)
			for j := 0; j < count; j++ {
				v, err := d.readBinaryScalar(elem.Name, p.Name, p.TypeName, p.Type, order)
				if err != nil {
					return err
				}
				entries = append(entries, uint32(int64(v)))
			}
			ed.Lists[p.Name] = append(ed.Lists[p.Name], entries)
		}
	}
	return nil
}

// readBinaryScalar reads one fixed-width value at the cursor. An
// unrecognized type is a recoverable anomaly: logged once per property,
// decoded as zero, cursor unmoved. A read past the end of the payload is
// structural and aborts the element.
func (d *Decoder) readBinaryScalar(elemName, propName, typeName string, t ScalarType, order binary.ByteOrder) (float64, error) {
	if t == TypeInvalid {
		d.warnUnsupported(elemName, propName, typeName)
		return 0, nil
	}
	size := t.Size()
	if d.cursor+size > len(d.data) {
		return 0, &BufferOverflowError{Element: elemName, Property: propName, Offset: d.cursor, Need: size}
	}
	buf := d.data[d.cursor : d.cursor+size]
	d.cursor += size

	switch t {
	case TypeInt8:
		return float64(int8(buf[0])), nil
	case TypeUInt8:
		return float64(buf[0]), nil
	case TypeInt16:
		return float64(int16(order.Uint16(buf))), nil
	case TypeUInt16:
		return float64(order.Uint16(buf)), nil
	case TypeInt32:
		return float64(int32(order.Uint32(buf))), nil
	case TypeUInt32:
		return float64(order.Uint32(buf)), nil
	case TypeInt64:
		return float64(int64(order.Uint64(buf))), nil
	case TypeUInt64:
		return float64(order.Uint64(buf)), nil
	case TypeFloat32:
		return float64(math.Float32frombits(order.Uint32(buf))), nil
	case TypeFloat64:
		return math.Float64frombits(order.Uint64(buf)), nil
	}
	return 0, nil
}

func (d *Decoder) decodeASCII(elem *Element, ed *ElementData) error {
	for i := 0; i < elem.Count; i++ {
		tokens, ok := d.nextRecordLine()
		if !ok {
			return &BufferOverflowError{Element: elem.Name, Property: "", Offset: i, Need: 1}
		}
		pos := 0
		for _, p := range elem.Properties {
			if !p.List {
				if pos >= len(tokens) {
					return &BufferOverflowError{Element: elem.Name, Property: p.Name, Offset: i, Need: 1}
				}
				ed.Columns[p.Name] = append(ed.Columns[p.Name], d.parseToken(elem.Name, p.Name, tokens[pos]))
				pos++
				continue
			}
			if pos >= len(tokens) {
				return &BufferOverflowError{Element: elem.Name, Property: p.Name, Offset: i, Need: 1}
			}
			count := int(d.parseToken(elem.Name, p.Name, tokens[pos]))
			pos++
			if count < 0 {
				count = 0
			}
			if pos+count > len(tokens) {
				return &BufferOverflowError{Element: elem.Name, Property: p.Name, Offset: i, Need: count}
			}
			entries := make([]uint32, 0, count)
			for j := 0; j < count; j++ {
				entries = append(entries, uint32(int64(d.parseToken(elem.Name, p.Name, tokens[pos]))))
				pos++
			}
			ed.Lists[p.Name] = append(ed.Lists[p.Name], entries)
		}
	}
	return nil
}

// nextRecordLine returns the whitespace-split tokens of the next non-empty
// payload line. One record per line; one token slice allocation per record.
func (d *Decoder) nextRecordLine() ([]string, bool) {
	for d.lines.Scan() {
		fields := strings.Fields(d.lines.Text())
		if len(fields) > 0 {
			return fields, true
		}
	}
	return nil, false
}

func (d *Decoder) parseToken(elemName, propName, token string) float64 {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		d.logger.Debugf("element %q property %q: unparsable token %q, using 0", elemName, propName, token)
		return 0
	}
	return v
}

func (d *Decoder) warnUnsupported(elemName, propName, typeName string) {
	key := elemName + "/" + propName
	if d.warned[key] {
		return
	}
	d.warned[key] = true
	err := &UnsupportedPropertyTypeError{Element: elemName, Property: propName, TypeName: typeName}
	d.logger.Warnf("%v; decoding as 0", err)
}
