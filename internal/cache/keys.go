// README: Deterministic, category-prefixed cache key derivation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"haul/internal/types"
)

const (
	categoryRoute        = "route"
	categoryAutocomplete = "geo:ac"
	categoryReverse      = "geo:rev"

	// coordDecimals rounds coordinates to roughly 1 m before keying.
	coordDecimals = 5
	keyVersion    = "v1"
)

// RouteKey keys a provider route by profile, alternatives flag and rounded
// waypoints under a namespace such as "haul:".
func RouteKey(namespace, profile string, alternatives bool, waypoints []types.Point) string {
	parts := make([]string, len(waypoints))
	for i, p := range waypoints {
		parts[i] = formatPoint(p)
	}
	return join(namespace, categoryRoute, strings.ToLower(strings.TrimSpace(profile)), boolFlag(alternatives), strings.Join(parts, ";"))
}

// AutocompleteKey keys a suggestion query. Casing and whitespace do not change the key.
func AutocompleteKey(namespace, query string, near *types.Point, limit int, language string) string {
	nearPart := "-"
	if near != nil {
		nearPart = formatPoint(*near)
	}
	sum := sha256.Sum256([]byte(NormalizeQuery(query)))
	return join(namespace, categoryAutocomplete, strings.ToLower(language), strconv.Itoa(limit), nearPart, hex.EncodeToString(sum[:8]))
}

func ReverseKey(namespace string, p types.Point, language string) string {
	return join(namespace, categoryReverse, strings.ToLower(language), formatPoint(p))
}

func join(namespace, category string, parts ...string) string {
	return namespace + category + ":" + keyVersion + ":" + strings.Join(parts, ":")
}

// NormalizeQuery lower-cases and collapses whitespace.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func formatPoint(p types.Point) string {
	return formatCoord(p.Lat) + "," + formatCoord(p.Lng)
}

func formatCoord(v float64) string {
	scale := math.Pow10(coordDecimals)
	r := math.Round(v*scale) / scale
	if r == 0 {
		r = 0 // normalizes -0
	}
	return strconv.FormatFloat(r, 'f', coordDecimals, 64)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
