// Package geocode resolves addresses and map coordinates through a
// Nominatim-compatible service.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/01moynul/farinez-golang/internal/checkout"
)

// ErrNoMatch means the service answered but found nothing.
var ErrNoMatch = errors.New("geocode: no match")

// Client queries /search and /reverse.
type Client struct {
	baseURL     string
	userAgent   string
	countryCode string
	http        *http.Client
}

// NewClient builds a client restricted to countryCode (empty for no
// restriction). hc may carry an instrumented transport.
func NewClient(baseURL, userAgent, countryCode string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		countryCode: countryCode,
		http:        hc,
	}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

type reverseResult struct {
	searchResult
	Error string `json:"error"`
}

// Search resolves a free-text address to its best match.
func (c *Client) Search(ctx context.Context, query string) (checkout.Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")
	q.Set("addressdetails", "1")
	if c.countryCode != "" {
		q.Set("countrycodes", c.countryCode)
	}

	var results []searchResult
	if err := c.get(ctx, "/search", q, &results); err != nil {
		return checkout.Place{}, err
	}
	if len(results) == 0 {
		return checkout.Place{}, ErrNoMatch
	}
	return toPlace(results[0])
}

// Reverse resolves a map coordinate to a place.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (checkout.Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var result reverseResult
	if err := c.get(ctx, "/reverse", q, &result); err != nil {
		return checkout.Place{}, err
	}
	if result.Error != "" || result.DisplayName == "" {
		return checkout.Place{}, ErrNoMatch
	}
	place, err := toPlace(result.searchResult)
	if err != nil {
		return checkout.Place{}, err
	}
	// keep the clicked point, not the snapped one
	place.Lat, place.Lon = lat, lon
	return place, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geocode: decode: %w", err)
	}
	return nil
}

func toPlace(r searchResult) (checkout.Place, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return checkout.Place{}, fmt.Errorf("geocode: bad latitude %q", r.Lat)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return checkout.Place{}, fmt.Errorf("geocode: bad longitude %q", r.Lon)
	}
	return checkout.Place{
		Found:       true,
		DisplayName: r.DisplayName,
		CountryCode: r.Address.CountryCode,
		Lat:         lat,
		Lon:         lon,
	}, nil
}
