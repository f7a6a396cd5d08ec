package geo

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"haul/internal/types"
)

// The reference example from the encoded polyline format documentation.
const referencePolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

var referencePoints = []types.Point{
	{Lat: 38.5, Lng: -120.2},
	{Lat: 40.7, Lng: -120.95},
	{Lat: 43.252, Lng: -126.453},
}

func TestEncode_Reference(t *testing.T) {
	got, err := Encode(referencePoints, 5)
	require.NoError(t, err)
	assert.Equal(t, referencePolyline, got)
}

func TestDecode_Reference(t *testing.T) {
	got, err := Decode(referencePolyline, 5)
	require.NoError(t, err)
	require.Len(t, got, len(referencePoints))
	for i, p := range referencePoints {
		assert.InDelta(t, p.Lat, got[i].Lat, 1e-5)
		assert.InDelta(t, p.Lng, got[i].Lng, 1e-5)
	}
}

func TestEncode_MatchesGoogleClient(t *testing.T) {
	path := []maps.LatLng{{Lat: 36.8065, Lng: 10.1815}, {Lat: 36.1, Lng: 10.4}, {Lat: 35.8256, Lng: 10.6369}}
	points := make([]types.Point, len(path))
	for i, ll := range path {
		points[i] = types.Point{Lat: ll.Lat, Lng: ll.Lng}
	}

	got, err := Encode(points, 5)
	require.NoError(t, err)
	assert.Equal(t, maps.Encode(path), got)

	decoded, err := maps.DecodePolyline(got)
	require.NoError(t, err)
	require.Len(t, decoded, len(points))
	for i := range decoded {
		assert.InDelta(t, points[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, points[i].Lng, decoded[i].Lng, 1e-5)
	}
}

func TestRoundTrip_RandomPaths(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, precision := range []int{5, 6} {
		tolerance := math.Pow10(-precision)
		for n := 0; n < 50; n++ {
			points := make([]types.Point, 1+rng.Intn(40))
			for i := range points {
				points[i] = types.Point{Lat: rng.Float64()*180 - 90, Lng: rng.Float64()*360 - 180}
			}
			enc, err := Encode(points, precision)
			require.NoError(t, err)
			dec, err := Decode(enc, precision)
			require.NoError(t, err)
			require.Len(t, dec, len(points))
			for i := range points {
				assert.InDelta(t, points[i].Lat, dec[i].Lat, tolerance)
				assert.InDelta(t, points[i].Lng, dec[i].Lng, tolerance)
			}
		}
	}
}

func TestEncode_Empty(t *testing.T) {
	got, err := Encode(nil, 5)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	points, err := Decode("", 6)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"latitude without longitude", "_p~iF"},
		{"ends inside a value", "_p~iF~ps|"},
		{"continuation byte only", "_"},
		{"character below range", "_p~iF~ps|U "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input, 5)
			assert.True(t, errors.Is(err, ErrDecode), "got %v", err)
		})
	}
}

func TestPrecision_Unsupported(t *testing.T) {
	_, err := Decode(referencePolyline, 7)
	assert.True(t, errors.Is(err, types.ErrValidation))
	_, err = Encode(referencePoints, 4)
	assert.True(t, errors.Is(err, types.ErrValidation))
}

func TestReencode(t *testing.T) {
	six, err := Reencode(referencePolyline, 5, 6)
	require.NoError(t, err)
	points, err := Decode(six, 6)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 43.252, points[2].Lat, 1e-6)

	same, err := Reencode(referencePolyline, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, referencePolyline, same)
}
