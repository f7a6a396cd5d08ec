// README: Encoded polyline codec (Google/OSRM format) at precision 5 or 6.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"haul/internal/types"
)

// DefaultPrecision is the precision of the classic Google encoding; OSRM "polyline6" uses 6.
const DefaultPrecision = 5

// ErrDecode is returned for malformed or truncated polyline input.
var ErrDecode = errors.New("polyline decode error")

func precisionFactor(precision int) (float64, error) {
	switch precision {
	case 0, 5:
		return 1e5, nil
	case 6:
		return 1e6, nil
	default:
		return 0, fmt.Errorf("%w: unsupported polyline precision %d", types.ErrValidation, precision)
	}
}

// Decode turns an encoded polyline into points. Each component is a zig-zag,
// 5-bit chunked varint delta against the previous component value.
func Decode(encoded string, precision int) ([]types.Point, error) {
	factor, err := precisionFactor(precision)
	if err != nil {
		return nil, err
	}

	points := make([]types.Point, 0, len(encoded)/4)
	var lat, lng int64
	for i := 0; i < len(encoded); {
		dLat, next, err := decodeValue(encoded, i)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, fmt.Errorf("%w: latitude at offset %d has no longitude", ErrDecode, i)
		}
		dLng, after, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		lat += dLat
		lng += dLng
		points = append(points, types.Point{
			Lat: float64(lat) / factor,
			Lng: float64(lng) / factor,
		})
		i = after
	}
	return points, nil
}

func decodeValue(s string, i int) (int64, int, error) {
	var result int64
	var shift uint
	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("%w: truncated value at end of input", ErrDecode)
		}
		c := s[i]
		if c < 63 || c > 126 {
			return 0, i, fmt.Errorf("%w: invalid character %q at offset %d", ErrDecode, c, i)
		}
		if shift > 60 {
			return 0, i, fmt.Errorf("%w: value overflow at offset %d", ErrDecode, i)
		}
		b := int64(c) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// Encode is the inverse of Decode. An empty slice encodes to "".
func Encode(points []types.Point, precision int) (string, error) {
	factor, err := precisionFactor(precision)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var prevLat, prevLng int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat * factor))
		lng := int64(math.Round(p.Lng * factor))
		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String(), nil
}

func encodeValue(b *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		b.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	b.WriteByte(byte(u + 63))
}

// Reencode converts a polyline between precisions.
func Reencode(encoded string, from, to int) (string, error) {
	if from == to || encoded == "" {
		return encoded, nil
	}
	points, err := Decode(encoded, from)
	if err != nil {
		return "", err
	}
	return Encode(points, to)
}
