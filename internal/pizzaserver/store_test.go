package pizzaserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oventide/pizzabot/internal/adapter/pizza"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSeededCatalog(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	pizzas, err := store.ListPizzas(ctx)
	if err != nil {
		t.Fatalf("ListPizzas failed: %v", err)
	}
	if len(pizzas) != 5 {
		t.Fatalf("expected 5 seeded pizzas, got %d", len(pizzas))
	}

	p, err := store.GetPizza(ctx, "margherita")
	if err != nil {
		t.Fatalf("GetPizza failed: %v", err)
	}
	if p.Name != "Margherita" || p.Price != 10.99 {
		t.Fatalf("unexpected pizza: %+v", p)
	}
	if len(p.Toppings) != 1 || p.Toppings[0].Name != "Fresh Basil" {
		t.Fatalf("unexpected toppings: %+v", p.Toppings)
	}

	if _, err := store.GetPizza(ctx, "calzone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToppingFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	meats, err := store.ListToppings(ctx, "Meats")
	if err != nil {
		t.Fatalf("ListToppings failed: %v", err)
	}
	if len(meats) == 0 {
		t.Fatal("expected meat toppings")
	}
	for _, tp := range meats {
		if tp.Category != "Meats" {
			t.Fatalf("filter leaked category %s", tp.Category)
		}
	}

	// Category filter is case-insensitive.
	lower, err := store.ListToppings(ctx, "meats")
	if err != nil {
		t.Fatalf("ListToppings failed: %v", err)
	}
	if len(lower) != len(meats) {
		t.Fatalf("case-insensitive filter mismatch: %d vs %d", len(lower), len(meats))
	}

	categories, err := store.ListToppingCategories(ctx)
	if err != nil {
		t.Fatalf("ListToppingCategories failed: %v", err)
	}
	want := []string{"Cheeses", "Meats", "Vegetables"}
	if len(categories) != len(want) {
		t.Fatalf("unexpected categories: %v", categories)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Fatalf("unexpected categories: %v", categories)
		}
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	order, err := store.CreateOrder(ctx, &pizza.PlaceOrderRequest{
		UserID: "user_1",
		Items: []pizza.PlaceOrderItem{
			{PizzaID: "margherita", Quantity: 2, ExtraToppingIDs: []string{"mushrooms"}},
			{PizzaID: "pepperoni", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if order.Status != "pending" {
		t.Fatalf("new orders must be pending, got %s", order.Status)
	}
	// 2*(10.99+1.29) + 12.99
	wantTotal := 2*(10.99+1.29) + 12.99
	if diff := order.Total - wantTotal; diff > 0.001 || diff < -0.001 {
		t.Fatalf("total = %.2f, want %.2f", order.Total, wantTotal)
	}
	if order.EstimatedCompletionTime == "" || order.CreatedAt == "" {
		t.Fatalf("timestamps missing: %+v", order)
	}

	fetched, err := store.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if len(fetched.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(fetched.Items))
	}
	if fetched.Items[0].Pizza.Name != "Margherita" || fetched.Items[0].Quantity != 2 {
		t.Fatalf("unexpected first item: %+v", fetched.Items[0])
	}
	if len(fetched.Items[0].ExtraToppings) != 1 || fetched.Items[0].ExtraToppings[0].ID != "mushrooms" {
		t.Fatalf("unexpected extras: %+v", fetched.Items[0].ExtraToppings)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cases := []*pizza.PlaceOrderRequest{
		{UserID: "", Items: []pizza.PlaceOrderItem{{PizzaID: "margherita", Quantity: 1}}},
		{UserID: "user_1"},
		{UserID: "user_1", Items: []pizza.PlaceOrderItem{{PizzaID: "margherita", Quantity: 0}}},
		{UserID: "user_1", Items: []pizza.PlaceOrderItem{{PizzaID: "calzone", Quantity: 1}}},
		{UserID: "user_1", Items: []pizza.PlaceOrderItem{{PizzaID: "margherita", Quantity: 1, ExtraToppingIDs: []string{"gold-leaf"}}}},
	}
	for i, req := range cases {
		if _, err := store.CreateOrder(ctx, req); !errors.Is(err, ErrInvalid) {
			t.Errorf("case %d: expected ErrInvalid, got %v", i, err)
		}
	}
}

func TestListOrdersFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.CreateOrder(ctx, &pizza.PlaceOrderRequest{
		UserID: "user_1",
		Items:  []pizza.PlaceOrderItem{{PizzaID: "margherita", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := store.CreateOrder(ctx, &pizza.PlaceOrderRequest{
		UserID: "user_2",
		Items:  []pizza.PlaceOrderItem{{PizzaID: "hawaiian", Quantity: 1}},
	}); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if err := store.SetOrderStatus(ctx, first.ID, "ready"); err != nil {
		t.Fatalf("SetOrderStatus failed: %v", err)
	}

	mine, err := store.ListOrders(ctx, "user_1", "", time.Time{})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Fatalf("unexpected orders: %+v", mine)
	}

	ready, err := store.ListOrders(ctx, "user_1", "ready", time.Time{})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(ready) != 1 {
		t.Fatalf("status filter failed: %+v", ready)
	}

	none, err := store.ListOrders(ctx, "user_1", "pending", time.Time{})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no pending orders: %+v", none)
	}

	// A cutoff in the future excludes everything.
	future, err := store.ListOrders(ctx, "user_1", "", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(future) != 0 {
		t.Fatalf("future cutoff should exclude all orders: %+v", future)
	}
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	order, err := store.CreateOrder(ctx, &pizza.PlaceOrderRequest{
		UserID: "user_1",
		Items:  []pizza.PlaceOrderItem{{PizzaID: "supreme", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// Wrong owner looks like a missing order.
	if err := store.CancelOrder(ctx, order.ID, "someone_else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}

	if err := store.CancelOrder(ctx, order.ID, "user_1"); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	canceled, err := store.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if canceled.Status != "canceled" {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}

	// Non-pending orders cannot be canceled.
	if err := store.CancelOrder(ctx, order.ID, "user_1"); !errors.Is(err, ErrNotCancelable) {
		t.Fatalf("expected ErrNotCancelable, got %v", err)
	}

	if err := store.CancelOrder(ctx, "order_missing", "user_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
