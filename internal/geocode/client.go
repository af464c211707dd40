// Package geocode resolves free-text addresses to coordinates via a
// Yandex-style geocoder.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pizzadrive/orderbot/internal/geo"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve returns the best-match point for a free-text address. An empty
// geocoder result is (zero, false, nil): a valid outcome, not an error.
func (c *Client) Resolve(ctx context.Context, address string) (geo.Point, bool, error) {
	q := url.Values{
		"apikey":  {c.APIKey},
		"geocode": {address},
		"format":  {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return geo.Point{}, false, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return geo.Point{}, false, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var raw struct {
		Response struct {
			GeoObjectCollection struct {
				FeatureMember []struct {
					GeoObject struct {
						Point struct {
							Pos string `json:"pos"` // "lon lat"
						} `json:"Point"`
					} `json:"GeoObject"`
				} `json:"featureMember"`
			} `json:"GeoObjectCollection"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return geo.Point{}, false, fmt.Errorf("geocode decode: %w", err)
	}

	members := raw.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return geo.Point{}, false, nil
	}
	pos := members[0].GeoObject.Point.Pos
	p, ok := geo.ParsePair(pos)
	if !ok {
		return geo.Point{}, false, fmt.Errorf("geocode: malformed position %q", pos)
	}
	return p, true, nil
}
