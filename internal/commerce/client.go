// Package commerce is the REST client for the storefront backend. Every
// call obtains its bearer credential through the token guard first.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pizzadrive/orderbot/internal/auth"
)

var (
	ErrNotFound = errors.New("not found")
	ErrAuth     = errors.New("authentication failed")
)

// Credentials yields a bearer value valid at the moment of the call.
// *auth.Guard satisfies it.
type Credentials interface {
	Ensure(ctx context.Context) (string, error)
}

type Client struct {
	BaseURL string
	Guard   Credentials
	HTTP    *http.Client
}

func NewClient(baseURL string, guard Credentials) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Guard:   guard,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// TokenSource returns the refresh function for the backend's
// client-credentials grant, for wiring into auth.NewGuard.
func TokenSource(baseURL, clientID, clientSecret string, hc *http.Client) auth.RefreshFunc {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/oauth/access_token"
	return func(ctx context.Context) (auth.Token, error) {
		form := url.Values{
			"client_id":     {clientID},
			"client_secret": {clientSecret},
			"grant_type":    {"client_credentials"},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return auth.Token{}, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := hc.Do(req)
		if err != nil {
			return auth.Token{}, fmt.Errorf("token request: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return auth.Token{}, fmt.Errorf("token request: %w", ErrAuth)
		}
		if resp.StatusCode/100 != 2 {
			return auth.Token{}, fmt.Errorf("token request: status %d", resp.StatusCode)
		}
		var body struct {
			AccessToken string `json:"access_token"`
			Expires     int64  `json:"expires"` // unix seconds
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return auth.Token{}, fmt.Errorf("token decode: %w", err)
		}
		return auth.Token{Value: body.AccessToken, ExpiresAt: time.Unix(body.Expires, 0)}, nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	tok, err := c.Guard.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("credential: %w", err)
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, ErrAuth)
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var raw struct {
		Data []productData `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/products", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, d.toProduct())
	}
	return out, nil
}

func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	var raw struct {
		Data productData `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/products/"+id, nil, &raw); err != nil {
		return Product{}, err
	}
	return raw.Data.toProduct(), nil
}

// ImageURL resolves a file id to its public href.
func (c *Client) ImageURL(ctx context.Context, fileID string) (string, error) {
	var raw struct {
		Data struct {
			Link struct {
				Href string `json:"href"`
			} `json:"link"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/files/"+fileID, nil, &raw); err != nil {
		return "", err
	}
	return raw.Data.Link.Href, nil
}

func (c *Client) CartTotal(ctx context.Context, cartID string) (int, error) {
	var raw struct {
		Data struct {
			Meta struct {
				DisplayPrice struct {
					WithTax struct {
						Amount int `json:"amount"`
					} `json:"with_tax"`
				} `json:"display_price"`
			} `json:"meta"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/carts/"+cartID, nil, &raw); err != nil {
		return 0, err
	}
	return raw.Data.Meta.DisplayPrice.WithTax.Amount, nil
}

func (c *Client) CartItems(ctx context.Context, cartID string) ([]CartItem, error) {
	var raw struct {
		Data []cartItemData `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/carts/"+cartID+"/items", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]CartItem, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, d.toItem())
	}
	return out, nil
}

// AddCartItem adds quantity units of a product. The backend increments the
// existing line when the product is already in the cart.
func (c *Client) AddCartItem(ctx context.Context, cartID, productID string, quantity int) error {
	payload := map[string]any{
		"data": map[string]any{
			"id":       productID,
			"type":     "cart_item",
			"quantity": quantity,
		},
	}
	return c.do(ctx, http.MethodPost, "/v2/carts/"+cartID+"/items", payload, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, cartID, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/v2/carts/"+cartID+"/items/"+itemID, nil, nil)
}

// Locations lists the fulfillment outlets stored as entries of the given
// flow. Coordinate fields pass through unparsed.
func (c *Client) Locations(ctx context.Context, flowSlug string) ([]Location, error) {
	var raw struct {
		Data []entryData `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/flows/"+flowSlug+"/entries", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]Location, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, Location{
			ID:        d.ID,
			Address:   d.Address,
			Longitude: coordString(d.Longitude),
			Latitude:  coordString(d.Latitude),
		})
	}
	return out, nil
}

func coordString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func (c *Client) CreateCustomer(ctx context.Context, name, email, password string) error {
	payload := map[string]any{
		"data": map[string]any{
			"type":     "customer",
			"name":     name,
			"email":    email,
			"password": password,
		},
	}
	return c.do(ctx, http.MethodPost, "/v2/customers", payload, nil)
}

// ---- catalog seeding (cmd/seed) ----

func (c *Client) CreateProduct(ctx context.Context, seed ProductSeed) (string, error) {
	payload := map[string]any{
		"data": map[string]any{
			"type":           "product",
			"name":           seed.Name,
			"sku":            seed.SKU,
			"slug":           seed.Slug,
			"description":    seed.Description,
			"manage_stock":   false,
			"status":         "live",
			"commodity_type": "physical",
			"price": []map[string]any{{
				"amount":       seed.PriceMinor,
				"currency":     "RUB",
				"includes_tax": true,
			}},
		},
	}
	var raw struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/products", payload, &raw); err != nil {
		return "", err
	}
	return raw.Data.ID, nil
}

func (c *Client) CreateFile(ctx context.Context, imageURL string) (string, error) {
	payload := map[string]any{
		"data": map[string]any{
			"type":          "file",
			"file_location": imageURL,
		},
	}
	var raw struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/files", payload, &raw); err != nil {
		return "", err
	}
	return raw.Data.ID, nil
}

func (c *Client) LinkMainImage(ctx context.Context, productID, fileID string) error {
	payload := map[string]any{
		"data": map[string]any{
			"type": "main_image",
			"id":   fileID,
		},
	}
	return c.do(ctx, http.MethodPost, "/v2/products/"+productID+"/relationships/main-image", payload, nil)
}
