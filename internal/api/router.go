package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wakala/payouts/internal/ingestion"
	"github.com/wakala/payouts/internal/payout"
	"github.com/wakala/payouts/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	sellerRepo *repository.SellerRepo,
	ledgerRepo *repository.LedgerRepo,
	batchRepo *repository.BatchRepo,
	ingestionSvc *ingestion.Service,
	orchestrator *payout.Orchestrator,
	aggregator *payout.Aggregator,
	clock payout.Clock,
) http.Handler {
	h := &Handlers{
		sellerRepo:   sellerRepo,
		ledgerRepo:   ledgerRepo,
		batchRepo:    batchRepo,
		ingestionSvc: ingestionSvc,
		orchestrator: orchestrator,
		aggregator:   aggregator,
		clock:        clock,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Scheduler entry point.
		r.Post("/payouts/run", h.RunPayoutCycle)

		// Sellers.
		r.Get("/sellers", h.ListSellers)
		r.Get("/sellers/{id}/history", h.GetSellerHistory)
		r.Get("/sellers/{id}/pending", h.GetSellerPending)

		// Ledger.
		r.Post("/ledger/ingest", h.IngestFile)
		r.Get("/ledger/entries", h.ListEntries)
		r.Get("/ledger/batches", h.ListBatches)

		// Dashboard.
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
