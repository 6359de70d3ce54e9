// Package cms reads page configuration and CMS-managed product entries from
// the Contentstack delivery API. Everything here is read-only: the CMS owns
// its content, FarmCom only renders it.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	PageContentType    = "farmcom_page"
	ProductContentType = "product"
)

type Client struct {
	BaseURL       string
	APIKey        string
	DeliveryToken string
	Environment   string
	HTTPClient    *http.Client
}

func NewClient(baseURL, apiKey, deliveryToken, environment string) *Client {
	return &Client{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		DeliveryToken: deliveryToken,
		Environment:   environment,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Entry is a raw CMS entry. Field sets differ per content type, so callers
// pick what they need.
type Entry map[string]any

// Product is the catalog shape of a CMS-managed product entry. CMS products
// have no numeric store id and carry the entry uid instead.
type Product struct {
	UID         string  `json:"uid"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Source      string  `json:"source"`
}

func (c *Client) entries(ctx context.Context, contentType string) ([]Entry, error) {
	u := fmt.Sprintf(
		"%s/v3/content_types/%s/entries?environment=%s",
		c.BaseURL, contentType, url.QueryEscape(c.Environment),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("api_key", c.APIKey)
	req.Header.Set("access_token", c.DeliveryToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms: fetch %s: %w", contentType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cms: fetch %s: %s: %s", contentType, resp.Status, body)
	}

	var payload struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cms: decode %s: %w", contentType, err)
	}

	return payload.Entries, nil
}

// PageEntry returns the first entry of the given page content type, or nil
// when the CMS has none published.
func (c *Client) PageEntry(ctx context.Context, contentType string) (Entry, error) {
	entries, err := c.entries(ctx, contentType)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

// Products maps CMS product entries into the catalog shape. Entries without
// an image come back with an empty imageUrl, never an error.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	entries, err := c.entries(ctx, ProductContentType)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(entries))
	for _, e := range entries {
		p := Product{
			UID:         str(e["uid"]),
			Name:        str(e["title"]),
			Description: str(e["description"]),
			Category:    str(e["category"]),
			Price:       num(e["price"]),
			Source:      "cms",
		}
		if p.Name == "" {
			p.Name = str(e["name"])
		}
		if img, ok := e["image"].(map[string]any); ok {
			p.ImageURL = str(img["url"])
		}
		products = append(products, p)
	}
	return products, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}
