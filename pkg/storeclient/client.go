// Package storeclient is a typed client for the storefront product and cart
// endpoints.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/beauty_shop/internal/cart"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(storeURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(storeURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// APIError is a non-2xx answer from the storefront.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %d: %s", e.StatusCode, e.Message)
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Meta     PageMeta         `json:"meta"`
}

type cartResponse struct {
	CartData models.CartData `json:"cartData"`
	Count    int             `json:"count"`
}

type cartItem struct {
	ItemID   uuid.UUID `json:"itemId"`
	Shade    string    `json:"shade"`
	Quantity int       `json:"quantity,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &env) != nil || env.Message == "" {
			env.Message = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context, page, size int) (*ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out ProductPage
	if err := c.do(ctx, http.MethodGet, "/api/product/list?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Catalog reads every product page into a lookup index for a cart
// reconciler.
func (c *Client) Catalog(ctx context.Context) (cart.Index, error) {
	const size = 100
	var all []models.Product
	for page := 1; ; page++ {
		p, err := c.ListProducts(ctx, page, size)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Products...)
		if !p.Meta.HasNext || len(p.Products) == 0 {
			break
		}
	}
	return cart.NewIndex(all), nil
}

// CartMirror talks to the cart of the user behind token. It satisfies
// cart.Mirror.
type CartMirror struct {
	c     *Client
	token string
}

func (c *Client) CartMirror(token string) *CartMirror {
	return &CartMirror{c: c, token: token}
}

func (m *CartMirror) LoadCart(ctx context.Context) (models.CartData, error) {
	var out cartResponse
	if err := m.c.do(ctx, http.MethodGet, "/api/cart/get", m.token, nil, &out); err != nil {
		return nil, err
	}
	if out.CartData == nil {
		out.CartData = models.CartData{}
	}
	return out.CartData, nil
}

func (m *CartMirror) AddToCart(ctx context.Context, productID uuid.UUID, shade string, qty int) error {
	return m.c.do(ctx, http.MethodPost, "/api/cart/add", m.token, cartItem{ItemID: productID, Shade: shade, Quantity: qty}, nil)
}

func (m *CartMirror) UpdateCart(ctx context.Context, productID uuid.UUID, shade string, qty int) error {
	return m.c.do(ctx, http.MethodPost, "/api/cart/update", m.token, cartItem{ItemID: productID, Shade: shade, Quantity: qty}, nil)
}

func (m *CartMirror) RemoveFromCart(ctx context.Context, productID uuid.UUID, shade string) error {
	return m.c.do(ctx, http.MethodPost, "/api/cart/remove", m.token, cartItem{ItemID: productID, Shade: shade}, nil)
}

var _ cart.Mirror = (*CartMirror)(nil)
