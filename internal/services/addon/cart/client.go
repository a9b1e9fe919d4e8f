// Package cart is the HTTP client for the host storefront cart endpoints.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cartside/addons/internal/platform/timeouts"
)

const (
	// AddPath is the host cart-add JSON endpoint path.
	AddPath = "/cart/add.js"
	// StatePath is the host cart-state JSON endpoint path.
	StatePath = "/cart.js"
)

var (
	// ErrBaseURLRequired indicates the client is missing the storefront origin.
	ErrBaseURLRequired = errors.New("storefront base url is required")
	// ErrNoLineItems indicates an append was attempted with an empty batch.
	ErrNoLineItems = errors.New("at least one line item is required")
)

// LineItem is one cart entry keyed by variant identifier and quantity.
type LineItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Item is one line item as reported by the host cart state.
type Item struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// Cart is the host cart representation returned by both endpoints.
type Cart struct {
	Token     string `json:"token,omitempty"`
	ItemCount int    `json:"item_count"`
	Items     []Item `json:"items"`
}

// APIError is a non-success response from a host cart endpoint. It carries
// the host's error message when the body could be decoded.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("cart endpoint returned status %d", e.Status)
	}
	return fmt.Sprintf("cart endpoint returned status %d: %s", e.Status, e.Message)
}

// Client calls the host storefront cart JSON endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a cart client for the given storefront origin.
// A nil httpClient falls back to a client bounded by the shared cart
// request timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.CartRequest}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// AddItems appends items to the host cart in one batch call. The host
// either accepts the whole batch or the call fails as a whole; there is no
// partial-item retry.
func (c *Client) AddItems(ctx context.Context, items []LineItem) (Cart, error) {
	if c == nil || c.httpClient == nil {
		return Cart{}, errors.New("cart client is not configured")
	}
	if len(items) == 0 {
		return Cart{}, ErrNoLineItems
	}

	body, err := json.Marshal(struct {
		Items []LineItem `json:"items"`
	}{Items: items})
	if err != nil {
		return Cart{}, fmt.Errorf("encode line items: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+AddPath, bytes.NewReader(body))
	if err != nil {
		return Cart{}, fmt.Errorf("build cart add request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	return c.do(req)
}

// FetchCart reads the current host cart state.
func (c *Client) FetchCart(ctx context.Context) (Cart, error) {
	if c == nil || c.httpClient == nil {
		return Cart{}, errors.New("cart client is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+StatePath, nil)
	if err != nil {
		return Cart{}, fmt.Errorf("build cart state request: %w", err)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (Cart, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Cart{}, fmt.Errorf("call cart endpoint: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Cart{}, &APIError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	var result Cart
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Cart{}, fmt.Errorf("decode cart response: %w", err)
	}
	return result, nil
}

// decodeErrorMessage extracts the host error copy from a failed response.
// The host reports either a short message or a longer description; prefer
// the description when both are present.
func decodeErrorMessage(body io.Reader) string {
	var payload struct {
		Message     string `json:"message"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	if strings.TrimSpace(payload.Description) != "" {
		return payload.Description
	}
	return payload.Message
}
