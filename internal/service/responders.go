package service

import (
	"github.com/oventide/pizzabot/internal/adapter/llm"
	"github.com/oventide/pizzabot/internal/agent"
	"github.com/oventide/pizzabot/internal/policy"
	"github.com/oventide/pizzabot/internal/router"
	"github.com/oventide/pizzabot/internal/tools"
)

const menuInstructions = `You are a specialist in pizza restaurant menus.
Your role is to help customers understand the menu options, ingredients, and pricing.
Use the available functions to get accurate and up-to-date information about pizzas and toppings.
To call a function, reply with exactly: function: name({"param": "value"})
Be informative, friendly, and helpful when discussing menu items.`

const orderInstructions = `You are a specialist in handling pizza restaurant orders.
Your role is to help customers create and manage their orders.
You can help customers place new orders, check order status, and cancel orders if needed.

When a customer wants to place an order:
1. First get the list of available pizzas
2. Help them select pizzas and quantities
3. Place the order using the place_order function
4. Provide order confirmation details

To call a function, reply with exactly: function: name({"param": "value"})
Be efficient, accurate, and friendly when processing orders.`

// NewResponders assembles the menu and order specialists sharing one
// registry, backend client, and policy gate.
func NewResponders(registry *tools.Registry, client llm.CompletionClient, policies *policy.Engine, opts *llm.CompletionOptions, maxSteps int) map[router.ResponderID]*agent.Agent {
	return map[router.ResponderID]*agent.Agent{
		router.ResponderMenu: agent.New(agent.Config{
			ID:           string(router.ResponderMenu),
			Name:         "MenuAgent",
			Instructions: menuInstructions,
			Registry:     registry,
			Client:       client,
			Policy:       policies,
			Options:      opts,
			MaxSteps:     maxSteps,
		}),
		router.ResponderOrder: agent.New(agent.Config{
			ID:           string(router.ResponderOrder),
			Name:         "OrderAgent",
			Instructions: orderInstructions,
			Registry:     registry,
			Client:       client,
			Policy:       policies,
			Options:      opts,
			MaxSteps:     maxSteps,
		}),
	}
}
