// Package pizza is the HTTP client for the external catalog/order
// service. Every call is fallible; callers are expected to turn errors
// into user-facing text rather than let them reach a conversation.
package pizza

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Topping is one topping from the catalog.
type Topping struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
}

// Pizza is one menu entry.
type Pizza struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Toppings    []Topping `json:"toppings,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	Pizza         Pizza     `json:"pizza"`
	Quantity      int       `json:"quantity"`
	ExtraToppings []Topping `json:"extraToppings,omitempty"`
}

// Order is a placed order.
type Order struct {
	ID                      string      `json:"id"`
	UserID                  string      `json:"userId,omitempty"`
	Status                  string      `json:"status"`
	Items                   []OrderItem `json:"items"`
	Total                   float64     `json:"total"`
	CreatedAt               string      `json:"createdAt,omitempty"`
	EstimatedCompletionTime string      `json:"estimatedCompletionTime,omitempty"`
}

// PlaceOrderItem is one line of an order-creation request.
type PlaceOrderItem struct {
	PizzaID         string   `json:"pizzaId"`
	Quantity        int      `json:"quantity"`
	ExtraToppingIDs []string `json:"extraToppingIds,omitempty"`
}

// PlaceOrderRequest is the body for creating an order.
type PlaceOrderRequest struct {
	UserID string           `json:"userId"`
	Items  []PlaceOrderItem `json:"items"`
}

// StatusError reports a non-2xx response so callers can map specific
// codes to user-facing sentences.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pizza API error [%d]: %s", e.StatusCode, e.Body)
}

// Client calls the catalog/order service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog/order client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetPizzas lists the full pizza menu.
func (c *Client) GetPizzas(ctx context.Context) ([]Pizza, error) {
	var pizzas []Pizza
	if err := c.getJSON(ctx, "/api/pizzas", nil, &pizzas); err != nil {
		return nil, err
	}
	return pizzas, nil
}

// GetPizza retrieves one pizza by id.
func (c *Client) GetPizza(ctx context.Context, pizzaID string) (*Pizza, error) {
	var pizza Pizza
	if err := c.getJSON(ctx, "/api/pizzas/"+url.PathEscape(pizzaID), nil, &pizza); err != nil {
		return nil, err
	}
	return &pizza, nil
}

// GetToppings lists toppings, optionally filtered by category.
func (c *Client) GetToppings(ctx context.Context, category string) ([]Topping, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	var toppings []Topping
	if err := c.getJSON(ctx, "/api/toppings", params, &toppings); err != nil {
		return nil, err
	}
	return toppings, nil
}

// GetToppingCategories lists all topping categories.
func (c *Client) GetToppingCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/api/toppings/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetOrders lists orders for a user, optionally filtered by status and
// a relative time window such as "60m" or "2h".
func (c *Client) GetOrders(ctx context.Context, userID, status, last string) ([]Order, error) {
	params := url.Values{}
	params.Set("userId", userID)
	if status != "" {
		params.Set("status", status)
	}
	if last != "" {
		params.Set("last", last)
	}
	var orders []Order
	if err := c.getJSON(ctx, "/api/orders", params, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder retrieves one order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.getJSON(ctx, "/api/orders/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PlaceOrder creates a new order.
func (c *Client) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var order Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &order, nil
}

// CancelOrder cancels an order that has not yet started preparation.
func (c *Client) CancelOrder(ctx context.Context, orderID, userID string) error {
	params := url.Values{}
	params.Set("userId", userID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/api/orders/"+url.PathEscape(orderID)+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
