package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/oventide/pizzabot/internal/adapter/pizza"
)

// RegisterPizzaFunctions wires the catalog/order service into the
// registry as callable functions. The userID keys every order
// operation. Service failures are folded into the function's result
// text so the conversation sees a sentence, never a transport error.
func RegisterPizzaFunctions(r *Registry, client *pizza.Client, userID string) {
	r.MustRegister(&Function{
		Name:        "get_pizzas",
		Description: "Get a list of all available pizzas from the menu.",
		Run: func(ctx context.Context, ec *ExecutionContext) error {
			pizzas, err := client.GetPizzas(ctx)
			if err != nil {
				ec.AddResult(fmt.Sprintf("Error retrieving pizzas: %v", err))
				return nil
			}
			var entries []string
			for _, p := range pizzas {
				entries = append(entries, fmt.Sprintf("- %s ($%.2f): %s\n  Toppings: %s",
					p.Name, p.Price, p.Description, toppingNames(p.Toppings)))
			}
			ec.AddResult("Available Pizzas:\n" + strings.Join(entries, "\n\n"))
			return nil
		},
	})

	r.MustRegister(&Function{
		Name:        "get_pizza_by_id",
		Description: "Get a specific pizza by its ID.",
		Parameters: []Parameter{
			{Name: "pizza_id", Description: "The ID of the pizza to retrieve.", Required: true},
		},
		Run: func(ctx context.Context, ec *ExecutionContext) error {
			pizzaID := ec.Get("pizza_id")
			p, err := client.GetPizza(ctx, pizzaID)
			if err != nil {
				ec.AddResult(fmt.Sprintf("Error retrieving pizza with ID %s: %v", pizzaID, err))
				return nil
			}
			ec.AddResult(fmt.Sprintf("Pizza: %s\nPrice: $%.2f\nDescription: %s\nToppings: %s",
				p.Name, p.Price, p.Description, toppingNames(p.Toppings)))
			return nil
		},
	})

	r.MustRegister(&Function{
		Name:        "get_toppings",
		Description: "Get a list of all available toppings.",
		Parameters: []Parameter{
			{Name: "category", Description: "Optional category to filter toppings."},
		},
		Run: func(ctx context.Context, ec *ExecutionContext) error {
			toppings, err := client.GetToppings(ctx, ec.Get("category"))
			if err != nil {
				ec.AddResult(fmt.Sprintf("Error retrieving toppings: %v", err))
				return nil
			}
			// Group by category, preserving first-seen order.
			var categories []string
			grouped := make(map[string][]string)
			for _, t := range toppings {
				cat := t.Category
				if cat == "" {
					cat = "Other"
				}
				if _, ok := grouped[cat]; !ok {
					categories = append(categories, cat)
				}
				grouped[cat] = append(grouped[cat], fmt.Sprintf("%s ($%.2f)", t.Name, t.Price))
			}
			var b strings.Builder
			b.WriteString("Available Toppings:\n")
			for _, cat := range categories {
				fmt.Fprintf(&b, "\n%s:\n", cat)
				for _, item := range grouped[cat] {
					fmt.Fprintf(&b, "- %s\n", item)
				}
			}
			ec.AddResult(b.String())
			return nil
		},
	})

	r.MustRegister(&Function{
		Name:        "get_topping_categories",
		Description: "Get a list of all topping categories.",
		Run: func(ctx context.Context, ec *ExecutionContext) error {
			categories, err := client.GetToppingCategories(ctx)
			if err != nil {
				ec.AddResult(fmt.Sprintf("Error retrieving topping categories: %v", err))
				return nil
			}
			ec.AddResult("Topping Categories:\n- " + strings.Join(categories, "\n- "))
			return nil
		},
	})

	r.MustRegister(&Function{
		Name:        "get_orders",
		Description: "Get a list of orders.",
		Parameters: []Parameter{
			{Name: "status", Description: "Optional status to filter orders (e.g., 'pending', 'ready', 'completed')."},
			{Name: "last", Description: "Optional time constraint (e.g., '60m', '2h')."},
		},
		Run: func(ctx context.Context, ec *ExecutionContext) error {
			orders, err := client.GetOrders(ctx, userID, ec.Get("status"), ec.Get("last"))
			if err != nil {
				ec.AddResult(fmt.Sprintf("Error retrieving orders: %v", err))
				return nil
			}
			if len(orders) == 0 {
				ec.AddResult("No orders found matching the criteria.")
				return nil
			}
			var entries []string
			for _, o := range orders {
				entries = append(entries, formatOrder(&o, false))
			}
			ec.AddResult("Your Orders:\n\n" + strings.Join(entries, "\n\n"))
			return nil
		},
	})

	r.MustRegister(&Function{
		Name:        "get_order_by_id",
		Description: "Get a specific order by its ID.",
		Parameters: []Parameter{
			{Name: "order_id", Description: "The ID of the order to retrieve.", Required: true},
		},
		Run: func(ctx context.Context, ec *ExecutionContext) error {
			orderID := ec.Get("order_id")
			o, err := client.GetOrder(ctx, orderID)
			if err != nil {
				ec.AddResult(fmt.Sprintf("Error retrieving order with ID %s: %v", orderID, err))
				return nil
			}
			ec.AddResult(formatOrder(o, true))
			return nil
		},
	})

	r.MustRegister(&Function{
		Name:        "place_order",
		Description: "Place a new pizza order.",
		Parameters: []Parameter{
			{Name: "pizza_ids", Description: "Comma-separated list of pizza IDs to order.", Required: true},
			{Name: "quantities", Description: "Comma-separated list of quantities for each pizza.", Required: true},
			{Name: "extra_toppings", Description: "Optional semicolon-separated list of extra topping ID groups, one group per pizza."},
		},
		Run: func(ctx context.Context, ec *ExecutionContext) error {
			items, errText := parseOrderItems(ec.Get("pizza_ids"), ec.Get("quantities"), ec.Get("extra_toppings"))
			if errText != "" {
				ec.AddResult(errText)
				return nil
			}
			o, err := client.PlaceOrder(ctx, &pizza.PlaceOrderRequest{UserID: userID, Items: items})
			if err != nil {
				ec.AddResult(fmt.Sprintf("Error placing order: %v", err))
				return nil
			}
			ec.AddResult("Order successfully placed!\n\n" + formatOrder(o, false))
			return nil
		},
	})

	r.MustRegister(&Function{
		Name:        "cancel_order",
		Description: "Cancel an order by its ID.",
		Parameters: []Parameter{
			{Name: "order_id", Description: "The ID of the order to cancel.", Required: true},
		},
		Run: func(ctx context.Context, ec *ExecutionContext) error {
			orderID := ec.Get("order_id")
			err := client.CancelOrder(ctx, orderID, userID)
			if err == nil {
				ec.AddResult(fmt.Sprintf("Order %s has been successfully canceled.", orderID))
				return nil
			}
			var statusErr *pizza.StatusError
			if errors.As(err, &statusErr) {
				switch statusErr.StatusCode {
				case http.StatusBadRequest:
					ec.AddResult("Error: The order cannot be canceled. It may have already started preparation.")
					return nil
				case http.StatusNotFound:
					ec.AddResult("Error: Order not found. Please check the order ID.")
					return nil
				}
			}
			ec.AddResult(fmt.Sprintf("Error canceling order: %v", err))
			return nil
		},
	})
}

func toppingNames(toppings []pizza.Topping) string {
	names := make([]string, 0, len(toppings))
	for _, t := range toppings {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func formatOrder(o *pizza.Order, withCreatedAt bool) string {
	var items []string
	for _, item := range o.Items {
		line := fmt.Sprintf("%dx %s", item.Quantity, item.Pizza.Name)
		if len(item.ExtraToppings) > 0 {
			line += " with extra " + toppingNames(item.ExtraToppings)
		}
		items = append(items, line)
	}

	estimated := o.EstimatedCompletionTime
	if estimated == "" {
		estimated = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order ID: %s\n", o.ID)
	fmt.Fprintf(&b, "Status: %s\n", o.Status)
	fmt.Fprintf(&b, "Items: %s\n", strings.Join(items, ", "))
	fmt.Fprintf(&b, "Total: $%.2f\n", o.Total)
	if withCreatedAt {
		createdAt := o.CreatedAt
		if createdAt == "" {
			createdAt = "N/A"
		}
		fmt.Fprintf(&b, "Created At: %s\n", createdAt)
	}
	fmt.Fprintf(&b, "Estimated Completion: %s", estimated)
	return b.String()
}

func parseOrderItems(pizzaIDs, quantities, extraToppings string) ([]pizza.PlaceOrderItem, string) {
	idList := splitAndTrim(pizzaIDs, ",")
	qtyList := splitAndTrim(quantities, ",")
	if len(idList) != len(qtyList) {
		return nil, "Error: The number of pizza IDs must match the number of quantities."
	}

	var toppingGroups [][]string
	if extraToppings != "" {
		for _, group := range strings.Split(extraToppings, ";") {
			toppingGroups = append(toppingGroups, splitAndTrim(group, ","))
		}
		if len(toppingGroups) != len(idList) {
			return nil, "Error: The number of extra topping sets must match the number of pizzas."
		}
	}

	items := make([]pizza.PlaceOrderItem, 0, len(idList))
	for i, id := range idList {
		qty, err := strconv.Atoi(qtyList[i])
		if err != nil || qty <= 0 {
			return nil, fmt.Sprintf("Error: Invalid quantity '%s'.", qtyList[i])
		}
		item := pizza.PlaceOrderItem{PizzaID: id, Quantity: qty}
		if toppingGroups != nil {
			item.ExtraToppingIDs = toppingGroups[i]
		}
		items = append(items, item)
	}
	return items, ""
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
