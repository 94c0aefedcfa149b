// Package fakestore is a thin HTTP client for FakeStoreAPI-compatible
// catalog services. It owns nothing: no retries, no caching, every call is
// a fresh round trip against the remote catalog.
package fakestore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/averku/storefront/internal/domain/auth"
	"github.com/averku/storefront/internal/domain/cart"
	"github.com/averku/storefront/internal/domain/catalog"
)

// DefaultBaseURL is the public demo instance.
const DefaultBaseURL = "https://fakestoreapi.com"

var (
	_ catalog.Client     = (*Client)(nil)
	_ cart.ProductGetter = (*Client)(nil)
	_ auth.TokenIssuer   = (*Client)(nil)
)

// Client talks to a remote catalog service over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a Client for the catalog at baseURL. An empty baseURL
// selects the public demo instance; a nil httpClient selects
// http.DefaultClient. Timeouts and instrumentation belong to the injected
// http.Client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, baseURL: baseURL}
}

// productJSON mirrors the catalog's wire shape for a product.
type productJSON struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      *struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (p productJSON) toDomain() catalog.Product {
	out := catalog.Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
	if p.Rating != nil {
		out.Rating = &catalog.Rating{Rate: p.Rating.Rate, Count: p.Rating.Count}
	}
	return out
}

// List fetches the full catalog.
func (c *Client) List(ctx context.Context) ([]catalog.Product, error) {
	var raw []productJSON
	if err := c.getJSON(ctx, "/products", &raw); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	products := make([]catalog.Product, len(raw))
	for i, p := range raw {
		products[i] = p.toDomain()
	}
	return products, nil
}

// GetByID fetches one product. The demo service answers unknown ids with
// an empty 200 body rather than a 404; both map to catalog.ErrNotFound.
func (c *Client) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	body, err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10))
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, errors.Wrapf(catalog.ErrNotFound, "product %d", id)
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.Wrapf(catalog.ErrNotFound, "product %d", id)
	}

	// Only the empty and literal null bodies signal a missing product;
	// any other undecodable payload is a broken catalog, not a miss.
	var raw productJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrapf(catalog.ErrUnavailable, "product %d: undecodable body: %v", id, err)
	}
	p := raw.toDomain()
	return &p, nil
}

// Categories fetches the distinct category labels.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/products/categories", &categories); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

// Login exchanges credentials for a bearer token via /auth/login. A 4xx
// response means the credentials were rejected; anything else that is not
// a success maps to catalog.ErrUnavailable.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(catalog.ErrUnavailable, "login: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", auth.ErrInvalidCredentials
	default:
		return "", errors.Wrapf(catalog.ErrUnavailable, "login: status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrapf(catalog.ErrUnavailable, "login: decode response: %v", err)
	}
	if result.Token == "" {
		return "", errors.Wrap(catalog.ErrUnavailable, "login: empty token")
	}
	return result.Token, nil
}

// errStatusNotFound marks a 404 so GetByID can distinguish it from other
// non-success statuses.
var errStatusNotFound = errors.New("status 404")

// get performs a GET and returns the response body on success. Transport
// errors and non-2xx statuses (except 404) map to catalog.ErrUnavailable.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(catalog.ErrUnavailable, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errStatusNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(catalog.ErrUnavailable, "status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(catalog.ErrUnavailable, "read body: %v", err)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return errors.Wrapf(catalog.ErrUnavailable, "status %d", http.StatusNotFound)
		}
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(catalog.ErrUnavailable, "decode response: %v", err)
	}
	return nil
}
