// Package pizzaserver is the catalog/order backend: the HTTP service
// the conversational agents call for menu data and order management.
package pizzaserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/oventide/pizzabot/internal/adapter/pizza"
)

// Sentinel errors mapped to HTTP status codes by the handler.
var (
	ErrNotFound      = errors.New("not found")
	ErrNotCancelable = errors.New("order cannot be canceled")
	ErrInvalid       = errors.New("invalid order")
)

// prepTimePerItem feeds the estimated completion time of new orders.
const prepTimePerItem = 10 * time.Minute

// Store persists the pizza catalog and orders in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens the database at dsn, migrates the schema, and seeds
// the catalog when it is empty.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seedCatalog(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pizzas (
			pizza_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			price REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS toppings (
			topping_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			price REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pizza_toppings (
			pizza_id TEXT NOT NULL,
			topping_id TEXT NOT NULL,
			PRIMARY KEY (pizza_id, topping_id),
			FOREIGN KEY (pizza_id) REFERENCES pizzas(pizza_id),
			FOREIGN KEY (topping_id) REFERENCES toppings(topping_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			total REAL NOT NULL,
			created_at DATETIME NOT NULL,
			estimated_completion DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_item_id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id TEXT NOT NULL,
			pizza_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(order_id),
			FOREIGN KEY (pizza_id) REFERENCES pizzas(pizza_id)
		)`,
		`CREATE TABLE IF NOT EXISTS order_item_toppings (
			order_item_id INTEGER NOT NULL,
			topping_id TEXT NOT NULL,
			PRIMARY KEY (order_item_id, topping_id),
			FOREIGN KEY (order_item_id) REFERENCES order_items(order_item_id),
			FOREIGN KEY (topping_id) REFERENCES toppings(topping_id)
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

type seedPizza struct {
	id          string
	name        string
	description string
	price       float64
	toppings    []string
}

type seedTopping struct {
	id       string
	name     string
	category string
	price    float64
}

// seedCatalog loads the menu into an empty database.
func (s *Store) seedCatalog() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pizzas").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	toppings := []seedTopping{
		{"pepperoni", "Pepperoni", "Meats", 1.99},
		{"sausage", "Italian Sausage", "Meats", 1.99},
		{"ham", "Ham", "Meats", 1.79},
		{"bacon", "Bacon", "Meats", 1.99},
		{"grilled-chicken", "Grilled Chicken", "Meats", 2.49},
		{"mushrooms", "Mushrooms", "Vegetables", 1.29},
		{"bell-peppers", "Bell Peppers", "Vegetables", 1.29},
		{"red-onions", "Red Onions", "Vegetables", 0.99},
		{"black-olives", "Black Olives", "Vegetables", 1.29},
		{"pineapple", "Pineapple", "Vegetables", 1.49},
		{"jalapenos", "Jalapenos", "Vegetables", 1.19},
		{"fresh-basil", "Fresh Basil", "Vegetables", 0.99},
		{"extra-mozzarella", "Extra Mozzarella", "Cheeses", 1.79},
		{"parmesan", "Parmesan", "Cheeses", 1.49},
		{"feta", "Feta", "Cheeses", 1.69},
	}

	pizzas := []seedPizza{
		{"margherita", "Margherita", "Classic tomato sauce and mozzarella cheese", 10.99,
			[]string{"fresh-basil"}},
		{"pepperoni", "Pepperoni", "Tomato sauce, mozzarella, and pepperoni", 12.99,
			[]string{"pepperoni"}},
		{"vegetarian", "Vegetarian", "Tomato sauce, mozzarella, bell peppers, onions, and mushrooms", 11.99,
			[]string{"bell-peppers", "red-onions", "mushrooms"}},
		{"hawaiian", "Hawaiian", "Tomato sauce, mozzarella, ham, and pineapple", 13.99,
			[]string{"ham", "pineapple"}},
		{"supreme", "Supreme", "Tomato sauce, mozzarella, pepperoni, sausage, bell peppers, onions, and olives", 14.99,
			[]string{"pepperoni", "sausage", "bell-peppers", "red-onions", "black-olives"}},
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range toppings {
		if _, err := tx.Exec(
			"INSERT INTO toppings (topping_id, name, category, price) VALUES (?, ?, ?, ?)",
			t.id, t.name, t.category, t.price,
		); err != nil {
			return err
		}
	}
	for _, p := range pizzas {
		if _, err := tx.Exec(
			"INSERT INTO pizzas (pizza_id, name, description, price) VALUES (?, ?, ?, ?)",
			p.id, p.name, p.description, p.price,
		); err != nil {
			return err
		}
		for _, tid := range p.toppings {
			if _, err := tx.Exec(
				"INSERT INTO pizza_toppings (pizza_id, topping_id) VALUES (?, ?)",
				p.id, tid,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListPizzas returns the full menu with toppings attached.
func (s *Store) ListPizzas(ctx context.Context) ([]pizza.Pizza, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT pizza_id, name, description, price FROM pizzas ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pizzas []pizza.Pizza
	for rows.Next() {
		var p pizza.Pizza
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price); err != nil {
			return nil, err
		}
		pizzas = append(pizzas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range pizzas {
		toppings, err := s.pizzaToppings(ctx, pizzas[i].ID)
		if err != nil {
			return nil, err
		}
		pizzas[i].Toppings = toppings
	}
	return pizzas, nil
}

// GetPizza returns one pizza by id.
func (s *Store) GetPizza(ctx context.Context, pizzaID string) (*pizza.Pizza, error) {
	var p pizza.Pizza
	err := s.db.QueryRowContext(ctx,
		"SELECT pizza_id, name, description, price FROM pizzas WHERE pizza_id = ?",
		pizzaID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	toppings, err := s.pizzaToppings(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Toppings = toppings
	return &p, nil
}

// ListToppings returns toppings, optionally filtered by category
// (case-insensitive).
func (s *Store) ListToppings(ctx context.Context, category string) ([]pizza.Topping, error) {
	query := "SELECT topping_id, name, category, price FROM toppings"
	var args []interface{}
	if category != "" {
		query += " WHERE category = ? COLLATE NOCASE"
		args = append(args, category)
	}
	query += " ORDER BY category, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var toppings []pizza.Topping
	for rows.Next() {
		var t pizza.Topping
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Price); err != nil {
			return nil, err
		}
		toppings = append(toppings, t)
	}
	return toppings, rows.Err()
}

// ListToppingCategories returns the distinct topping categories.
func (s *Store) ListToppingCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM toppings ORDER BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateOrder validates the request against the catalog, computes the
// total, and persists a new pending order.
func (s *Store) CreateOrder(ctx context.Context, req *pizza.PlaceOrderRequest) (*pizza.Order, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("userId is required: %w", ErrInvalid)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item: %w", ErrInvalid)
	}

	now := s.now().UTC()
	order := &pizza.Order{
		ID:                      "order_" + uuid.New().String()[:8],
		UserID:                  req.UserID,
		Status:                  "pending",
		CreatedAt:               now.Format(time.RFC3339),
		EstimatedCompletionTime: now.Add(time.Duration(orderUnits(req)) * prepTimePerItem).Format(time.RFC3339),
	}

	// Validate against the catalog before opening the transaction: the
	// in-memory configuration runs on a single connection, so catalog
	// reads cannot happen while a transaction holds it.
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalid)
		}
		p, err := s.GetPizza(ctx, item.PizzaID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("unknown pizza %q: %w", item.PizzaID, ErrInvalid)
			}
			return nil, err
		}

		var extras []pizza.Topping
		linePrice := p.Price
		for _, tid := range item.ExtraToppingIDs {
			t, err := s.getTopping(ctx, tid)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, fmt.Errorf("unknown topping %q: %w", tid, ErrInvalid)
				}
				return nil, err
			}
			extras = append(extras, *t)
			linePrice += t.Price
		}
		order.Total += linePrice * float64(item.Quantity)

		order.Items = append(order.Items, pizza.OrderItem{
			Pizza:         *p,
			Quantity:      item.Quantity,
			ExtraToppings: extras,
		})
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO orders (order_id, user_id, status, total, created_at, estimated_completion) VALUES (?, ?, ?, ?, ?, ?)",
		order.ID, order.UserID, order.Status, order.Total, order.CreatedAt, order.EstimatedCompletionTime,
	); err != nil {
		return nil, err
	}

	for i, item := range req.Items {
		res, err := tx.Exec(
			"INSERT INTO order_items (order_id, pizza_id, quantity) VALUES (?, ?, ?)",
			order.ID, item.PizzaID, item.Quantity,
		)
		if err != nil {
			return nil, err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		for _, t := range order.Items[i].ExtraToppings {
			if _, err := tx.Exec(
				"INSERT INTO order_item_toppings (order_item_id, topping_id) VALUES (?, ?)",
				itemID, t.ID,
			); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns one order by id with its items.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*pizza.Order, error) {
	var o pizza.Order
	err := s.db.QueryRowContext(ctx,
		"SELECT order_id, user_id, status, total, created_at, estimated_completion FROM orders WHERE order_id = ?",
		orderID,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.EstimatedCompletionTime)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := s.orderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// ListOrders returns a user's orders, newest first, optionally filtered
// by status and a created-after cutoff.
func (s *Store) ListOrders(ctx context.Context, userID, status string, after time.Time) ([]pizza.Order, error) {
	query := "SELECT order_id, user_id, status, total, created_at, estimated_completion FROM orders WHERE user_id = ?"
	args := []interface{}{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if !after.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, after.UTC().Format(time.RFC3339))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []pizza.Order
	for rows.Next() {
		var o pizza.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.EstimatedCompletionTime); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// CancelOrder cancels a pending order owned by userID. Orders that have
// started preparation cannot be canceled.
func (s *Store) CancelOrder(ctx context.Context, orderID, userID string) error {
	var owner, status string
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, status FROM orders WHERE order_id = ?",
		orderID,
	).Scan(&owner, &status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if userID != "" && owner != userID {
		return ErrNotFound
	}
	if status != "pending" {
		return ErrNotCancelable
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE orders SET status = 'canceled' WHERE order_id = ?", orderID)
	return err
}

// SetOrderStatus updates an order's status. Used by tests and by
// kitchen-side tooling.
func (s *Store) SetOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = ? WHERE order_id = ?", status, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) pizzaToppings(ctx context.Context, pizzaID string) ([]pizza.Topping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.topping_id, t.name, t.category, t.price
		FROM toppings t
		JOIN pizza_toppings pt ON pt.topping_id = t.topping_id
		WHERE pt.pizza_id = ?
		ORDER BY t.name`, pizzaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var toppings []pizza.Topping
	for rows.Next() {
		var t pizza.Topping
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Price); err != nil {
			return nil, err
		}
		toppings = append(toppings, t)
	}
	return toppings, rows.Err()
}

func (s *Store) getTopping(ctx context.Context, toppingID string) (*pizza.Topping, error) {
	var t pizza.Topping
	err := s.db.QueryRowContext(ctx,
		"SELECT topping_id, name, category, price FROM toppings WHERE topping_id = ?",
		toppingID,
	).Scan(&t.ID, &t.Name, &t.Category, &t.Price)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) orderItems(ctx context.Context, orderID string) ([]pizza.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT order_item_id, pizza_id, quantity FROM order_items WHERE order_id = ? ORDER BY order_item_id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type rawItem struct {
		itemID   int64
		pizzaID  string
		quantity int
	}
	var raw []rawItem
	for rows.Next() {
		var r rawItem
		if err := rows.Scan(&r.itemID, &r.pizzaID, &r.quantity); err != nil {
			return nil, err
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var items []pizza.OrderItem
	for _, r := range raw {
		p, err := s.GetPizza(ctx, r.pizzaID)
		if err != nil {
			return nil, err
		}
		extras, err := s.itemToppings(ctx, r.itemID)
		if err != nil {
			return nil, err
		}
		items = append(items, pizza.OrderItem{
			Pizza:         *p,
			Quantity:      r.quantity,
			ExtraToppings: extras,
		})
	}
	return items, nil
}

func (s *Store) itemToppings(ctx context.Context, itemID int64) ([]pizza.Topping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.topping_id, t.name, t.category, t.price
		FROM toppings t
		JOIN order_item_toppings oit ON oit.topping_id = t.topping_id
		WHERE oit.order_item_id = ?
		ORDER BY t.name`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var toppings []pizza.Topping
	for rows.Next() {
		var t pizza.Topping
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Price); err != nil {
			return nil, err
		}
		toppings = append(toppings, t)
	}
	return toppings, rows.Err()
}

func orderUnits(req *pizza.PlaceOrderRequest) int {
	units := 0
	for _, item := range req.Items {
		units += item.Quantity
	}
	if units < 1 {
		units = 1
	}
	return units
}
