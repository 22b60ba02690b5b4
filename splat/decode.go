package splat

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edaniels/golog"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/ahmad-kad/splatcloud/ply"
)

// faceElement and its index-list property names, as written by common
// exporters.
const faceElement = "face"

var faceListProperties = []string{"vertex_indices", "vertex_index"}

// Decode parses a complete in-memory container and returns the canonical
// geometry. The variant is classified once up front; all decode paths below
// that are format-agnostic. Failures follow the taxonomy in the ply and
// splat packages: structural problems surface as typed errors and never as a
// partially filled Buffer, while per-field anomalies are logged and decoded
// as zero.
func Decode(data []byte, logger golog.Logger) (*Buffer, error) {
	if logger == nil {
		logger = golog.Global()
	}

	variant := ply.Classify(data)
	if variant == ply.VariantChunked {
		return nil, &UnsupportedFormatError{
			Variant: variant.String(),
			Reason:  "chunk-quantized block layout has no reference decoder",
		}
	}

	header, err := ply.ParseHeader(data)
	if err != nil {
		if variant == ply.VariantUnknown {
			// Nothing identified the container and it is not a parsable
			// generic one either.
			return nil, &UnsupportedFormatError{Reason: err.Error()}
		}
		return nil, err
	}
	vertex, err := header.VertexElement()
	if err != nil {
		return nil, err
	}

	elements, err := ply.NewDecoder(data, header, logger).DecodeAll()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*ply.ElementData, len(elements))
	for _, ed := range elements {
		byName[ed.Name] = ed
	}
	vertexData := byName[vertex.Name]

	var ch *channels
	switch variant {
	case ply.VariantSH:
		ch, err = mapSH(vertexData, logger)
	case ply.VariantCodebook:
		book, ok := byName[codebookElement]
		if !ok {
			return nil, &UnsupportedFormatError{
				Variant: variant.String(),
				Reason:  "codebook element missing from payload",
			}
		}
		ch, err = mapCodebook(vertexData, book, logger)
	default:
		// Standard schema; also the fallback for unclassified files.
		ch, err = mapStandard(vertexData, logger)
		if err != nil && variant == ply.VariantUnknown {
			return nil, &UnsupportedFormatError{Reason: err.Error()}
		}
	}
	if err != nil {
		return nil, err
	}

	var faces [][]uint32
	if fd, ok := byName[faceElement]; ok {
		for _, name := range faceListProperties {
			if lists, ok := fd.Lists[name]; ok {
				faces = lists
				break
			}
		}
	}

	return assemble(ch, faces, logger)
}

// DecodeFile reads and decodes a container from disk, dispatching on the
// file extension: .las files go through the LAS ingest path, .gz files are
// decompressed first, anything else is decoded as a PLY-family container.
func DecodeFile(path string, logger golog.Logger) (*Buffer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".las":
		return FromLASFile(path, logger)
	case ".gz":
		inner := strings.TrimSuffix(path, filepath.Ext(path))
		if strings.ToLower(filepath.Ext(inner)) == ".las" {
			return nil, errors.Errorf("compressed LAS %q not supported; decompress it first", path)
		}
		data, err := readGzip(path)
		if err != nil {
			return nil, err
		}
		return Decode(data, logger)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return Decode(data, logger)
	}
}

func readGzip(path string) (_ []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "opening gzip stream %q", path)
	}
	// Closing the gzip reader finishes checksum verification, so its error
	// is part of the read result.
	defer func() {
		cerr := zr.Close()
		err = multierr.Combine(err, cerr)
	}()

	return io.ReadAll(zr)
}
