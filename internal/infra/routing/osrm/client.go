package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/route"
)

const (
	defaultBaseURL = "https://router.project-osrm.org"
	defaultProfile = "foot"
)

// Client requests walking routes from an OSRM compatible server.
type Client struct {
	baseURL    string
	profile    string
	httpClient *http.Client
}

// NewClient builds a routing client. Empty values fall back to the public demo server.
func NewClient(baseURL, profile string, timeout time.Duration) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	if strings.TrimSpace(profile) == "" {
		profile = defaultProfile
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		profile: profile,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Route implements route.Provider.
func (c *Client) Route(ctx context.Context, start, end geo.Point) (route.Path, error) {
	endpoint := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		c.baseURL, c.profile, start.Lng, start.Lat, end.Lng, end.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return route.Path{}, fmt.Errorf("build route request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return route.Path{}, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return route.Path{}, fmt.Errorf("route request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return route.Path{}, fmt.Errorf("decode route response: %w", err)
	}
	return normalizeRoute(raw)
}

type apiResponse struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Routes  []apiRoute `json:"routes"`
}

type apiRoute struct {
	Distance float64     `json:"distance"`
	Geometry apiGeometry `json:"geometry"`
}

type apiGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

func normalizeRoute(raw apiResponse) (route.Path, error) {
	if raw.Code != "" && !strings.EqualFold(raw.Code, "ok") {
		return route.Path{}, fmt.Errorf("route api error: %s %s", raw.Code, raw.Message)
	}
	if len(raw.Routes) == 0 {
		return route.Path{}, fmt.Errorf("route api returned no routes")
	}
	first := raw.Routes[0]
	coords := make([]geo.Point, 0, len(first.Geometry.Coordinates))
	for i, pair := range first.Geometry.Coordinates {
		if len(pair) < 2 {
			return route.Path{}, fmt.Errorf("route coordinate %d is malformed", i)
		}
		p := geo.Point{Lat: pair[1], Lng: pair[0]}
		if !p.Valid() {
			return route.Path{}, fmt.Errorf("route coordinate %d out of range: %s", i, p)
		}
		coords = append(coords, p)
	}
	if len(coords) < 2 {
		return route.Path{}, fmt.Errorf("route geometry has %d coordinates", len(coords))
	}
	return route.Path{Coordinates: coords, Distance: first.Distance}, nil
}

var _ route.Provider = (*Client)(nil)
