// README: Geocoding gateway: cached autocomplete and reverse lookups with result normalization.
package geocoding

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"haul/internal/cache"
	"haul/internal/maps"
	"haul/internal/types"
)

type Service struct {
	geocoder maps.Geocoder
	cache    *cache.Layer
	cfg      Config
	log      *zap.Logger
}

func NewService(geocoder maps.Geocoder, layer *cache.Layer, cfg Config, log *zap.Logger) *Service {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{geocoder: geocoder, cache: layer, cfg: cfg, log: log}
}

// Autocomplete returns normalized suggestions for a partial address and whether
// they came from cache.
func (s *Service) Autocomplete(ctx context.Context, query string, opts AutocompleteOptions) ([]Address, bool, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryRunes {
		return nil, false, fmt.Errorf("%w: query must be at least %d characters", types.ErrValidation, MinQueryRunes)
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, false, fmt.Errorf("%w: limit must be between 1 and %d", types.ErrValidation, MaxLimit)
	}
	if opts.Near != nil {
		if err := opts.Near.Validate(); err != nil {
			return nil, false, fmt.Errorf("near: %w", err)
		}
	}

	key := cache.AutocompleteKey(s.cfg.Namespace, query, opts.Near, limit, s.cfg.Language)
	return cache.GetOrCompute(ctx, s.cache, key, s.cfg.TTL, func(ctx context.Context) ([]Address, error) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
		defer cancel()

		places, err := s.geocoder.Autocomplete(ctx, maps.AutocompleteRequest{
			Query:    query,
			Near:     opts.Near,
			Limit:    limit,
			Language: s.cfg.Language,
		})
		if err != nil {
			s.log.Warn("geocoder autocomplete failed", zap.String("query", query), zap.Error(err))
			return nil, fmt.Errorf("%w: autocomplete: %w", types.ErrUpstreamUnavailable, err)
		}
		return normalizeAll(places, limit), nil
	})
}

// Reverse returns the address at p. No match is types.ErrNotFound and is not cached.
func (s *Service) Reverse(ctx context.Context, p types.Point) (Address, bool, error) {
	if err := p.Validate(); err != nil {
		return Address{}, false, err
	}

	key := cache.ReverseKey(s.cfg.Namespace, p, s.cfg.Language)
	return cache.GetOrCompute(ctx, s.cache, key, s.cfg.TTL, func(ctx context.Context) (Address, error) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
		defer cancel()

		place, err := s.geocoder.Reverse(ctx, p)
		if err != nil {
			s.log.Warn("geocoder reverse failed", zap.Stringer("point", p), zap.Error(err))
			return Address{}, fmt.Errorf("%w: reverse: %w", types.ErrUpstreamUnavailable, err)
		}
		if place == nil {
			return Address{}, fmt.Errorf("%w: no address at %s", types.ErrNotFound, p)
		}
		addr, ok := normalize(*place)
		if !ok {
			return Address{}, fmt.Errorf("%w: no address at %s", types.ErrNotFound, p)
		}
		return addr, nil
	})
}

// normalizeAll keeps provider order, drops unlabeled candidates and duplicate
// labels, and caps the result at limit.
func normalizeAll(places []maps.Place, limit int) []Address {
	out := make([]Address, 0, min(len(places), limit))
	seen := make(map[string]struct{}, len(places))
	for _, p := range places {
		addr, ok := normalize(p)
		if !ok {
			continue
		}
		k := strings.ToLower(addr.Label)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, addr)
		if len(out) == limit {
			break
		}
	}
	return out
}

func normalize(p maps.Place) (Address, bool) {
	addr := Address{
		Name:        strings.TrimSpace(p.Name),
		Street:      strings.TrimSpace(p.Street),
		HouseNumber: strings.TrimSpace(p.HouseNumber),
		Postcode:    strings.TrimSpace(p.Postcode),
		City:        strings.TrimSpace(p.City),
		State:       strings.TrimSpace(p.State),
		Country:     strings.TrimSpace(p.Country),
		CountryCode: strings.ToUpper(strings.TrimSpace(p.CountryCode)),
		PlaceID:     strings.TrimSpace(p.PlaceID),
	}
	if p.Point != nil && p.Point.Validate() == nil {
		pt := *p.Point
		addr.Point = &pt
	}
	addr.Label = strings.Join(strings.Fields(p.Label), " ")
	if addr.Label == "" {
		addr.Label = buildLabel(addr)
	}
	return addr, addr.Label != ""
}

// buildLabel renders "name, house street, postcode city, country".
func buildLabel(a Address) string {
	var parts []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, existing := range parts {
			if strings.EqualFold(existing, s) {
				return
			}
		}
		parts = append(parts, s)
	}
	add(a.Name)
	add(a.HouseNumber + " " + a.Street)
	add(a.Postcode + " " + a.City)
	add(a.Country)
	return strings.Join(parts, ", ")
}
