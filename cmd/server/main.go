/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance tracker server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env honored in development)
  2. Parse command-line flags (override PORT / DB_PATH)
  3. Load attendance rules (RULES_PATH file or built-in defaults)
  4. Initialize SQLite store
  5. Wire auth, biometrics, and API handler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/attendance.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run with custom rules
  RULES_PATH=./rules.json ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - factory/rules.go: Rules file schema
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/auth"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/policy"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the environment.
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	rules, err := loadRules(cfg.RulesPath)
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire auth
	authSvc := auth.NewService(store, cfg.JWTSecret, cfg.TokenTTL, cfg.AdminUsername, cfg.AdminPassword)
	bio, err := auth.NewBiometrics(cfg.WebAuthn, store)
	if err != nil {
		log.Fatalf("Failed to initialize biometrics: %v", err)
	}

	// Create router
	handler := api.NewHandler(store, rules, authSvc, bio)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// loadRules reads the rules file named by RULES_PATH, falling back to
// the built-in defaults when unset.
func loadRules(path string) (policy.Rules, error) {
	if path == "" {
		return policy.Default(), nil
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return policy.Rules{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rules, err := factory.ParseRules(string(doc))
	if err != nil {
		return policy.Rules{}, fmt.Errorf("invalid rules in %s: %w", path, err)
	}
	return rules, nil
}
