/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/stock/*        Stock levels
  /api/receipts/*     Receipt ledger
  /api/shipments/*    Shipment ledger
  /api/corrections/*  Correction ledger
  /api/kits/*         Kit management and fulfillment
  /api/lines/*        Per-line shipment status
  /api/chapters/*     Chapter catalog
  /api/parts/*        Part catalog

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Stock routes
		r.Route("/stock", func(r chi.Router) {
			r.Get("/", h.ListStock)
			r.Get("/{partID}", h.GetStock)
		})

		// Ledger routes
		r.Route("/receipts", func(r chi.Router) {
			r.Get("/", h.ListReceipts)
			r.Post("/", h.CreateReceipt)
		})
		r.Route("/shipments", func(r chi.Router) {
			r.Get("/", h.ListShipments)
			r.Post("/", h.CreateShipment)
		})
		r.Route("/corrections", func(r chi.Router) {
			r.Get("/", h.ListCorrections)
			r.Post("/", h.CreateCorrection)
		})

		// Kit routes
		r.Route("/kits", func(r chi.Router) {
			r.Get("/", h.ListKits)
			r.Post("/", h.CreateKit)
			r.Get("/{id}", h.GetKit)
			r.Put("/{id}", h.UpdateKit)
			r.Delete("/{id}", h.DeleteKit)
			r.Get("/{id}/fulfillment", h.GetKitFulfillment)
			r.Post("/{id}/mark-fully-shipped", h.MarkKitFullyShipped)
			r.Put("/{id}/status", h.SetKitStatus)
		})

		// Line routes
		r.Route("/lines", func(r chi.Router) {
			r.Get("/{id}/status", h.GetLineStatus)
		})

		// Catalog routes
		r.Route("/chapters", func(r chi.Router) {
			r.Get("/", h.ListChapters)
			r.Post("/", h.CreateChapter)
			r.Delete("/{id}", h.DeleteChapter)
		})
		r.Route("/parts", func(r chi.Router) {
			r.Get("/", h.ListParts)
			r.Post("/", h.CreatePart)
			r.Get("/{id}", h.GetPart)
		})
	})

	return r
}
