// Package router selects which responder owns an inbound message.
//
// Routing is a cheap deterministic keyword classifier, not a learned
// one: reproducibility wins over accuracy. Two fixed term lists are
// counted as substring hits against the lower-cased message and the
// higher count wins, with ties going to the menu responder.
package router

import "strings"

// ResponderID names a registered responder.
type ResponderID string

const (
	ResponderMenu  ResponderID = "menu"
	ResponderOrder ResponderID = "order"
)

var orderTerms = []string{
	"order",
	"place order",
	"new order",
	"cancel",
	"status",
	"my orders",
	"track",
	"delivery",
}

var menuTerms = []string{
	"menu",
	"pizza",
	"pizzas",
	"topping",
	"toppings",
	"price",
	"ingredient",
	"ingredients",
	"option",
	"options",
	"vegetarian",
}

// Router scores messages against the fixed term lists.
type Router struct{}

// New creates a Router.
func New() *Router {
	return &Router{}
}

// Select returns the responder that should own the message. The order
// responder wins only on a strictly higher term count; ties resolve to
// the menu responder.
func (r *Router) Select(message string) ResponderID {
	lower := strings.ToLower(message)

	orderScore := countTerms(lower, orderTerms)
	menuScore := countTerms(lower, menuTerms)

	if orderScore > menuScore {
		return ResponderOrder
	}
	return ResponderMenu
}

func countTerms(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}
