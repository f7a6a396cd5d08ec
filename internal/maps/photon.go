// README: Photon (OpenStreetMap) geocoder client.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"haul/internal/types"
)

type PhotonConfig struct {
	BaseURL  string
	Language string
	Client   *http.Client
}

type PhotonClient struct {
	baseURL  string
	language string
	http     *http.Client
}

func NewPhotonClient(cfg PhotonConfig) *PhotonClient {
	return &PhotonClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		language: cfg.Language,
		http:     defaultHTTPClient(cfg.Client),
	}
}

type photonFeatureCollection struct {
	Features []photonFeature `json:"features"`
}

type photonFeature struct {
	Geometry struct {
		// [lng, lat]
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		OSMID       int64  `json:"osm_id"`
		OSMType     string `json:"osm_type"`
		Name        string `json:"name"`
		Street      string `json:"street"`
		HouseNumber string `json:"housenumber"`
		Postcode    string `json:"postcode"`
		City        string `json:"city"`
		State       string `json:"state"`
		Country     string `json:"country"`
		CountryCode string `json:"countrycode"`
	} `json:"properties"`
}

func (c *PhotonClient) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Place, error) {
	q := url.Values{}
	q.Set("q", req.Query)
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Near != nil {
		q.Set("lat", formatFloat(req.Near.Lat))
		q.Set("lon", formatFloat(req.Near.Lng))
	}
	c.setLanguage(q, req.Language)

	fc, err := c.get(ctx, "/api", q)
	if err != nil {
		return nil, err
	}
	places := make([]Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		places = append(places, f.place())
	}
	return places, nil
}

func (c *PhotonClient) Reverse(ctx context.Context, p types.Point) (*Place, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(p.Lat))
	q.Set("lon", formatFloat(p.Lng))
	q.Set("limit", "1")
	c.setLanguage(q, "")

	fc, err := c.get(ctx, "/reverse", q)
	if err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}
	place := fc.Features[0].place()
	return &place, nil
}

func (c *PhotonClient) setLanguage(q url.Values, lang string) {
	if lang == "" {
		lang = c.language
	}
	if lang != "" {
		q.Set("lang", lang)
	}
}

func (c *PhotonClient) get(ctx context.Context, path string, q url.Values) (*photonFeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("photon request: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Provider: "photon", StatusCode: resp.StatusCode}
	}
	var fc photonFeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("photon response: %w", err)
	}
	return &fc, nil
}

func (f photonFeature) place() Place {
	p := Place{
		Name:        f.Properties.Name,
		Street:      f.Properties.Street,
		HouseNumber: f.Properties.HouseNumber,
		Postcode:    f.Properties.Postcode,
		City:        f.Properties.City,
		State:       f.Properties.State,
		Country:     f.Properties.Country,
		CountryCode: strings.ToUpper(f.Properties.CountryCode),
	}
	if f.Properties.OSMID != 0 {
		p.PlaceID = f.Properties.OSMType + strconv.FormatInt(f.Properties.OSMID, 10)
	}
	if c := f.Geometry.Coordinates; len(c) >= 2 {
		p.Point = &types.Point{Lat: c[1], Lng: c[0]}
	}
	return p
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
