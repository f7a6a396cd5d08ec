// README: Google Places autocomplete and reverse geocoding backend.
package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"haul/internal/types"
)

// autocompleteBiasRadius is the location-bias radius in meters when Near is set.
const autocompleteBiasRadius = 50000

// GooglePlaces handles interactions with Google Places and Geocoding APIs.
type GooglePlaces struct {
	client   *maps.Client
	language string
}

func NewGooglePlaces(apiKey string, language string, opts ...maps.ClientOption) (*GooglePlaces, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GooglePlaces{client: client, language: language}, nil
}

// Autocomplete returns predictions. Predictions carry no coordinates; callers
// resolve PlaceID when they need a point.
func (s *GooglePlaces) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Place, error) {
	r := &maps.PlaceAutocompleteRequest{
		Input:    req.Query,
		Language: firstNonEmpty(req.Language, s.language),
	}
	if req.Near != nil {
		r.Location = &maps.LatLng{Lat: req.Near.Lat, Lng: req.Near.Lng}
		r.Radius = autocompleteBiasRadius
	}

	resp, err := s.client.PlaceAutocomplete(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	places := make([]Place, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		places = append(places, Place{
			Label:   p.Description,
			Name:    p.StructuredFormatting.MainText,
			PlaceID: p.PlaceID,
		})
		if req.Limit > 0 && len(places) >= req.Limit {
			break
		}
	}
	return places, nil
}

func (s *GooglePlaces) Reverse(ctx context.Context, p types.Point) (*Place, error) {
	results, err := s.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Language: s.language,
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return nil, nil
		}
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	res := results[0]
	place := Place{
		Label:   res.FormattedAddress,
		PlaceID: res.PlaceID,
		Point:   &types.Point{Lat: res.Geometry.Location.Lat, Lng: res.Geometry.Location.Lng},
	}
	for _, c := range res.AddressComponents {
		switch {
		case hasType(c.Types, "street_number"):
			place.HouseNumber = c.LongName
		case hasType(c.Types, "route"):
			place.Street = c.LongName
		case hasType(c.Types, "postal_code"):
			place.Postcode = c.LongName
		case hasType(c.Types, "locality"):
			place.City = c.LongName
		case hasType(c.Types, "administrative_area_level_1"):
			place.State = c.LongName
		case hasType(c.Types, "country"):
			place.Country = c.LongName
			place.CountryCode = c.ShortName
		}
	}
	return &place, nil
}

func hasType(kinds []string, want string) bool {
	for _, t := range kinds {
		if t == want {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
