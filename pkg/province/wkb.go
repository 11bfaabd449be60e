package province

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/wkb"
)

var (
	errShortWKB = errors.New("wkb: truncated geometry")
	// errWKBDims is returned for Z, M or EWKB flagged geometries. The
	// decoder reads plain 2D geometries only.
	errWKBDims = errors.New("wkb: only 2D geometries are supported")
)

// decodeWKB reads a Polygon or MultiPolygon.
func decodeWKB(b []byte) (geom.Polygonal, error) {
	if err := check2D(b); err != nil {
		return nil, err
	}
	g, err := wkb.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("wkb: %w", err)
	}
	p, ok := g.(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("wkb: unsupported geometry %T", g)
	}
	return p, nil
}

// check2D looks at the geometry type word ahead of the decoder so Z and M
// data fail with a clear error.
func check2D(b []byte) error {
	if len(b) < 5 {
		return errShortWKB
	}
	var order binary.ByteOrder
	switch b[0] {
	case 0:
		order = binary.BigEndian
	case 1:
		order = binary.LittleEndian
	default:
		return fmt.Errorf("wkb: bad byte order %d", b[0])
	}
	t := order.Uint32(b[1:5])
	if t&0xe0000000 != 0 || t >= 1000 {
		return fmt.Errorf("%w: type %#x", errWKBDims, t)
	}
	return nil
}

// encodeWKB writes g as a little-endian MultiPolygon so every row of a
// layer has the same type.
func encodeWKB(g geom.Polygonal) ([]byte, error) {
	return wkb.Encode(geom.MultiPolygon(g.Polygons()), binary.LittleEndian)
}
