package pizzaserver

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/oventide/pizzabot/internal/adapter/pizza"
)

// Handler handles HTTP requests for the catalog/order service.
type Handler struct {
	store *Store
}

// NewHandler creates a new handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/pizzas", h.ListPizzas)
	e.GET("/api/pizzas/:pizza_id", h.GetPizza)
	e.GET("/api/toppings", h.ListToppings)
	e.GET("/api/toppings/categories", h.ListToppingCategories)

	e.GET("/api/orders", h.ListOrders)
	e.GET("/api/orders/:order_id", h.GetOrder)
	e.POST("/api/orders", h.CreateOrder)
	e.DELETE("/api/orders/:order_id", h.CancelOrder)

	e.GET("/api/health", h.Health)
}

// NewServer creates and configures the catalog/order HTTP server.
func NewServer(store *Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	NewHandler(store).RegisterRoutes(e)

	return e
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListPizzas returns the full menu.
// GET /api/pizzas
func (h *Handler) ListPizzas(c echo.Context) error {
	pizzas, err := h.store.ListPizzas(c.Request().Context())
	if err != nil {
		log.Printf("ERROR: failed to list pizzas: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list pizzas"})
	}
	if pizzas == nil {
		pizzas = []pizza.Pizza{}
	}
	return c.JSON(http.StatusOK, pizzas)
}

// GetPizza returns one pizza.
// GET /api/pizzas/:pizza_id
func (h *Handler) GetPizza(c echo.Context) error {
	p, err := h.store.GetPizza(c.Request().Context(), c.Param("pizza_id"))
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "pizza not found"})
	}
	if err != nil {
		log.Printf("ERROR: failed to get pizza: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get pizza"})
	}
	return c.JSON(http.StatusOK, p)
}

// ListToppings returns toppings, optionally filtered by category.
// GET /api/toppings?category=...
func (h *Handler) ListToppings(c echo.Context) error {
	toppings, err := h.store.ListToppings(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		log.Printf("ERROR: failed to list toppings: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list toppings"})
	}
	if toppings == nil {
		toppings = []pizza.Topping{}
	}
	return c.JSON(http.StatusOK, toppings)
}

// ListToppingCategories returns the distinct topping categories.
// GET /api/toppings/categories
func (h *Handler) ListToppingCategories(c echo.Context) error {
	categories, err := h.store.ListToppingCategories(c.Request().Context())
	if err != nil {
		log.Printf("ERROR: failed to list topping categories: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list topping categories"})
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(http.StatusOK, categories)
}

// ListOrders returns a user's orders.
// GET /api/orders?userId=...&status=...&last=...
func (h *Handler) ListOrders(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userId is required"})
	}

	var after time.Time
	if last := c.QueryParam("last"); last != "" {
		window, err := time.ParseDuration(last)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid last parameter"})
		}
		after = time.Now().Add(-window)
	}

	orders, err := h.store.ListOrders(c.Request().Context(), userID, c.QueryParam("status"), after)
	if err != nil {
		log.Printf("ERROR: failed to list orders: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list orders"})
	}
	if orders == nil {
		orders = []pizza.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order.
// GET /api/orders/:order_id
func (h *Handler) GetOrder(c echo.Context) error {
	o, err := h.store.GetOrder(c.Request().Context(), c.Param("order_id"))
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
	}
	if err != nil {
		log.Printf("ERROR: failed to get order: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get order"})
	}
	return c.JSON(http.StatusOK, o)
}

// CreateOrder places a new order.
// POST /api/orders
func (h *Handler) CreateOrder(c echo.Context) error {
	var req pizza.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	order, err := h.store.CreateOrder(c.Request().Context(), &req)
	if errors.Is(err, ErrInvalid) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err != nil {
		log.Printf("ERROR: failed to create order: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create order"})
	}
	return c.JSON(http.StatusCreated, order)
}

// CancelOrder cancels a pending order.
// DELETE /api/orders/:order_id?userId=...
func (h *Handler) CancelOrder(c echo.Context) error {
	err := h.store.CancelOrder(c.Request().Context(), c.Param("order_id"), c.QueryParam("userId"))
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
	}
	if errors.Is(err, ErrNotCancelable) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "order has already started preparation"})
	}
	if err != nil {
		log.Printf("ERROR: failed to cancel order: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to cancel order"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
