package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/osm"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

// Client pulls accessibility tagged OSM elements from an Overpass API endpoint.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds an Overpass client.
func NewClient(endpoint string, timeout time.Duration) *Client {
	url := strings.TrimSpace(endpoint)
	if url == "" {
		url = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: url,
		timeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout + 5*time.Second,
		},
	}
}

// Fetch returns the hazard points found inside bounds. Elements whose tags are not
// in the hazard table are skipped.
func (c *Client) Fetch(ctx context.Context, bounds geo.Bounds) ([]hazard.Point, error) {
	if bounds.IsEmpty() {
		return nil, fmt.Errorf("overpass fetch requires non-empty bounds")
	}
	form := url.Values{}
	form.Set("data", buildQuery(bounds, c.timeout))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("overpass request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return normalizeElements(raw.Elements), nil
}

func buildQuery(bounds geo.Bounds, timeout time.Duration) string {
	bbox := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", bounds.South(), bounds.West(), bounds.North(), bounds.East())
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];(", int(timeout.Seconds()))
	for _, key := range hazard.OverpassFilterKeys() {
		fmt.Fprintf(&b, `node["%s"](%s);way["%s"](%s);`, key, bbox, key, bbox)
	}
	b.WriteString(");out center tags;")
	return b.String()
}

type apiResponse struct {
	Elements []apiElement `json:"elements"`
}

type apiElement struct {
	Type   string     `json:"type"`
	ID     int64      `json:"id"`
	Lat    *float64   `json:"lat"`
	Lon    *float64   `json:"lon"`
	Center *apiCenter `json:"center"`
	Tags   osm.Tags   `json:"tags"`
}

type apiCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (e apiElement) location() (geo.Point, bool) {
	switch {
	case e.Lat != nil && e.Lon != nil:
		return geo.Point{Lat: *e.Lat, Lng: *e.Lon}, true
	case e.Center != nil:
		return geo.Point{Lat: e.Center.Lat, Lng: e.Center.Lon}, true
	default:
		return geo.Point{}, false
	}
}

func normalizeElements(elements []apiElement) []hazard.Point {
	points := make([]hazard.Point, 0, len(elements))
	for _, el := range elements {
		loc, ok := el.location()
		if !ok || !loc.Valid() {
			continue
		}
		class, ok := hazard.ClassifyTags(el.Tags)
		if !ok {
			continue
		}
		description := class.Description
		if name := el.Tags.Find("name"); name != "" {
			description = description + " (" + name + ")"
		}
		points = append(points, hazard.Point{
			Point:       loc,
			Severity:    class.Severity,
			Category:    class.Category,
			Description: description,
			Source:      hazard.SourceOSM,
		})
	}
	return points
}
