package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oventide/pizzabot/internal/adapter/llm"
	"github.com/oventide/pizzabot/internal/adapter/pizza"
	"github.com/oventide/pizzabot/internal/config"
	"github.com/oventide/pizzabot/internal/policy"
	"github.com/oventide/pizzabot/internal/router"
	"github.com/oventide/pizzabot/internal/service"
	"github.com/oventide/pizzabot/internal/thread"
	"github.com/oventide/pizzabot/internal/tools"
	handler "github.com/oventide/pizzabot/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting pizzabot...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Pizza API: %s", cfg.PizzaAPIURL)
	log.Printf("LLM URL: %s", cfg.LLMBaseURL)

	// Initialize thread store
	storeOpts := []thread.Option{}
	if cfg.MaxThreads > 0 {
		storeOpts = append(storeOpts, thread.WithEvictor(thread.CapacityEvictor{Max: cfg.MaxThreads}))
	}
	threads := thread.NewStore(storeOpts...)

	// Initialize LLM client
	llmClient := llm.NewCompletionClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)

	// Initialize pizza backend client and function registry
	pizzaClient := pizza.NewClient(cfg.PizzaAPIURL, 15*time.Second)
	registry := tools.NewRegistry()
	tools.RegisterPizzaFunctions(registry, pizzaClient, cfg.PizzaUserID)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	responders := service.NewResponders(registry, llmClient, policyEngine, nil, cfg.MaxToolSteps)
	svc := service.New(threads, router.New(), responders)

	// Initialize handler and server
	h := handler.NewHandler(svc)
	h.CallDelay = cfg.CallDelay
	h.ContentDelay = cfg.ContentDelay
	server := handler.NewServer(h)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Pizzabot API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down pizzabot...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Pizzabot stopped")
}
