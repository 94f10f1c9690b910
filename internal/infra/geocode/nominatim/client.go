package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/search"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "accessroute/1.0"
	defaultLimit     = 8
)

// Options scopes search results.
type Options struct {
	UserAgent    string
	CountryCodes string
	// ViewBox is "west,south,east,north"; results are bounded to it when set.
	ViewBox string
	Limit   int
	Timeout time.Duration
}

// Client talks to a Nominatim geocoding server.
type Client struct {
	baseURL    string
	opts       Options
	httpClient *http.Client
}

// NewClient builds a geocoding client.
func NewClient(baseURL string, opts Options) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// Search implements search.Geocoder.
func (c *Client) Search(ctx context.Context, query string) ([]search.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(c.opts.Limit))
	if c.opts.CountryCodes != "" {
		params.Set("countrycodes", c.opts.CountryCodes)
	}
	if c.opts.ViewBox != "" {
		params.Set("viewbox", c.opts.ViewBox)
		params.Set("bounded", "1")
	}

	var raw []apiPlace
	if err := c.get(ctx, "/search", params, &raw); err != nil {
		return nil, err
	}
	places := make([]search.Place, 0, len(raw))
	for _, item := range raw {
		place, ok := item.normalize()
		if !ok {
			continue
		}
		places = append(places, place)
	}
	return places, nil
}

// Reverse implements search.Geocoder.
func (c *Client) Reverse(ctx context.Context, point geo.Point) (search.Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(point.Lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(point.Lng, 'f', 6, 64))
	params.Set("format", "jsonv2")

	var raw apiPlace
	if err := c.get(ctx, "/reverse", params, &raw); err != nil {
		return search.Place{}, err
	}
	if raw.Error != "" {
		return search.Place{}, fmt.Errorf("reverse geocode error: %s", raw.Error)
	}
	place, ok := raw.normalize()
	if !ok {
		return search.Place{}, fmt.Errorf("reverse geocode returned malformed coordinates")
	}
	return place, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("geocode request error: status=%d body=%s", resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode geocode response: %w", err)
	}
	return nil
}

type apiPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Error       string `json:"error"`
}

func (p apiPlace) normalize() (search.Place, bool) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return search.Place{}, false
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return search.Place{}, false
	}
	kind := p.Type
	if kind == "" {
		kind = p.Category
	}
	return search.Place{Lat: lat, Lon: lon, DisplayName: p.DisplayName, Type: kind}, true
}

var _ search.Geocoder = (*Client)(nil)
