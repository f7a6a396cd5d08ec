package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"haul/internal/types"
)

func TestRouteKey(t *testing.T) {
	pts := []types.Point{{Lat: 36.8065, Lng: 10.1815}, {Lat: 35.8256, Lng: 10.6369}}

	key := RouteKey("haul:", "car", false, pts)
	assert.Equal(t, "haul:route:v1:car:0:36.80650,10.18150;35.82560,10.63690", key)

	assert.Equal(t, key, RouteKey("haul:", " CAR ", false, pts))
	assert.NotEqual(t, key, RouteKey("haul:", "car", true, pts))
	assert.NotEqual(t, key, RouteKey("haul:", "truck", false, pts))

	reversed := []types.Point{pts[1], pts[0]}
	assert.NotEqual(t, key, RouteKey("haul:", "car", false, reversed))
}

func TestRouteKey_RoundsAndNormalizesZero(t *testing.T) {
	a := RouteKey("", "car", false, []types.Point{{Lat: 36.806500001, Lng: -0.0}, {Lat: 1, Lng: 2}})
	b := RouteKey("", "car", false, []types.Point{{Lat: 36.8065, Lng: 0}, {Lat: 1, Lng: 2}})
	assert.Equal(t, a, b)
	assert.NotContains(t, a, "-0.00000")
}

func TestAutocompleteKey_NormalizesQuery(t *testing.T) {
	base := AutocompleteKey("haul:", "Avenue Habib Bourguiba", nil, 5, "fr")
	assert.True(t, strings.HasPrefix(base, "haul:geo:ac:"))
	assert.Equal(t, base, AutocompleteKey("haul:", "  avenue   HABIB bourguiba ", nil, 5, "fr"))
	assert.NotEqual(t, base, AutocompleteKey("haul:", "Avenue Habib Bourguiba", nil, 10, "fr"))

	near := types.Point{Lat: 36.8, Lng: 10.18}
	assert.NotEqual(t, base, AutocompleteKey("haul:", "Avenue Habib Bourguiba", &near, 5, "fr"))

	hash := base[strings.LastIndex(base, ":")+1:]
	assert.Len(t, hash, 16)
}

func TestReverseKey(t *testing.T) {
	key := ReverseKey("haul:", types.Point{Lat: 36.8, Lng: 10.18}, "FR")
	assert.Equal(t, "haul:geo:rev:v1:fr:36.80000,10.18000", key)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "rue de marseille", NormalizeQuery("\tRue  de\nMarseille "))
	assert.Equal(t, "", NormalizeQuery("   "))
}
