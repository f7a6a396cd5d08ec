// README: Normalized address model and geocoding options.
package geocoding

import (
	"time"

	"haul/internal/types"
)

const (
	DefaultLimit   = 5
	MaxLimit       = 20
	MinQueryRunes  = 2
	DefaultTimeout = 5 * time.Second
)

// Address is a provider-independent geocoding result.
type Address struct {
	Label       string       `json:"label"`
	Name        string       `json:"name,omitempty"`
	Street      string       `json:"street,omitempty"`
	HouseNumber string       `json:"house_number,omitempty"`
	Postcode    string       `json:"postcode,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Country     string       `json:"country,omitempty"`
	CountryCode string       `json:"country_code,omitempty"`
	Point       *types.Point `json:"point,omitempty"`
	PlaceID     string       `json:"place_id,omitempty"`
}

type AutocompleteOptions struct {
	Near  *types.Point
	Limit int
}

type Config struct {
	Namespace       string
	TTL             time.Duration
	ProviderTimeout time.Duration
	Language        string
}
