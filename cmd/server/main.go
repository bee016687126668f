/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the warehouse engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize store (SQLite by default, PostgreSQL when -pg-dsn is set)
  3. Create engine, catalog, and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: warehouse.db)
           Use ":memory:" for in-memory database
  -pg-dsn  PostgreSQL DSN; when set, PostgreSQL is used instead of SQLite

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/warehouse.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run against PostgreSQL
  ./server -pg-dsn="host=localhost user=warehouse dbname=warehouse"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Embedded database implementation
  - store/postgres/postgres.go: PostgreSQL implementation
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

	"github.com/complectgroup/warehouse-engine/api"
	"github.com/complectgroup/warehouse-engine/catalog"
	"github.com/complectgroup/warehouse-engine/store/postgres"
	"github.com/complectgroup/warehouse-engine/store/sqlite"
	"github.com/complectgroup/warehouse-engine/warehouse"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "warehouse.db", "SQLite database path")
	pgDSN := flag.String("pg-dsn", "", "PostgreSQL DSN (overrides -db)")
	flag.Parse()

	// Initialize store
	var store warehouse.TxStore
	if *pgDSN != "" {
		pg, err := postgres.New(*pgDSN)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store = pg
	} else {
		sq, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer sq.Close()
		store = sq
	}

	// Wire domain services
	engine := warehouse.NewEngine(store)
	cat := catalog.NewService(store)
	handler := api.NewHandler(engine, cat)

	// Create router
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
		log.Printf("📦 API available at http://localhost:%d/api", *port)
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
