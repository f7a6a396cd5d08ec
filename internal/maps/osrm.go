// README: OSRM route service client (HTTP + JSON).
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"haul/internal/geo"
)

type OSRMConfig struct {
	BaseURL string
	// Profiles maps car/truck/foot to OSRM profile names.
	Profiles  map[string]string
	Precision int
	Client    *http.Client
}

type OSRMClient struct {
	baseURL   string
	profiles  map[string]string
	precision int
	http      *http.Client
}

func DefaultOSRMProfiles() map[string]string {
	return map[string]string{
		ProfileCar:   "driving",
		ProfileTruck: "driving",
		ProfileFoot:  "foot",
	}
}

func NewOSRMClient(cfg OSRMConfig) *OSRMClient {
	profiles := DefaultOSRMProfiles()
	for k, v := range cfg.Profiles {
		if v != "" {
			profiles[k] = v
		}
	}
	precision := cfg.Precision
	if precision == 0 {
		precision = geo.DefaultPrecision
	}
	return &OSRMClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		profiles:  profiles,
		precision: precision,
		http:      defaultHTTPClient(cfg.Client),
	}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry string  `json:"geometry"`
	} `json:"routes"`
}

func (c *OSRMClient) Route(ctx context.Context, req RouteRequest) ([]RouteCandidate, error) {
	endpoint, err := c.routeURL(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("osrm request: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Provider: "osrm", StatusCode: resp.StatusCode}
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("osrm response: %w", err)
	}
	if body.Code != "Ok" {
		return nil, fmt.Errorf("osrm status %q: %s", body.Code, body.Message)
	}
	if len(body.Routes) == 0 {
		return nil, ErrNoRoute
	}

	out := make([]RouteCandidate, 0, len(body.Routes))
	for _, r := range body.Routes {
		if r.Distance < 0 || r.Duration < 0 {
			return nil, fmt.Errorf("osrm returned negative metrics (distance=%f duration=%f)", r.Distance, r.Duration)
		}
		out = append(out, RouteCandidate{
			DistanceMeters:  r.Distance,
			DurationSeconds: r.Duration,
			Geometry:        r.Geometry,
		})
	}
	return out, nil
}

func (c *OSRMClient) routeURL(req RouteRequest) (string, error) {
	profile, ok := c.profiles[req.Profile]
	if !ok {
		return "", fmt.Errorf("osrm: unsupported profile %q", req.Profile)
	}

	coords := make([]string, len(req.Waypoints))
	for i, p := range req.Waypoints {
		// OSRM wants lng,lat.
		coords[i] = strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
	}

	geometries := "polyline"
	if c.precision == 6 {
		geometries = "polyline6"
	}
	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", geometries)
	q.Set("alternatives", strconv.FormatBool(req.Alternatives))
	q.Set("steps", "false")

	return fmt.Sprintf("%s/route/v1/%s/%s?%s", c.baseURL, url.PathEscape(profile), strings.Join(coords, ";"), q.Encode()), nil
}
