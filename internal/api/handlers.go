package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wakala/payouts/internal/ingestion"
	"github.com/wakala/payouts/internal/payout"
	"github.com/wakala/payouts/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	sellerRepo   *repository.SellerRepo
	ledgerRepo   *repository.LedgerRepo
	batchRepo    *repository.BatchRepo
	ingestionSvc *ingestion.Service
	orchestrator *payout.Orchestrator
	aggregator   *payout.Aggregator
	clock        payout.Clock
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// --- RunPayoutCycle ---

// RunPayoutCycle is the scheduler entry point: one call, one full cycle.
func (h *Handlers) RunPayoutCycle(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orchestrator.RunPayoutCycle(r.Context())
	if err != nil {
		if errors.Is(err, payout.ErrRunInFlight) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// --- ListSellers ---

func (h *Handlers) ListSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.sellerRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sellers": sellers,
		"total":   len(sellers),
	})
}

// --- GetSellerHistory ---

func (h *Handlers) GetSellerHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	seller, err := h.sellerRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "seller not found")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	history, err := h.sellerRepo.ListHistory(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"seller":  seller,
		"history": history,
	})
}

// --- GetSellerPending ---

// GetSellerPending previews the seller's current open window and the net
// amount accrued so far. Read-only; nothing advances.
func (h *Handlers) GetSellerPending(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	seller, err := h.sellerRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "seller not found")
		return
	}

	window, err := payout.SelectWindow(h.clock, seller)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	net, err := h.aggregator.NetAmount(window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"seller_id":    seller.ID,
		"window_start": window.Start,
		"window_end":   window.End,
		"net_amount":   net,
	})
}

// --- IngestFile ---

func (h *Handlers) IngestFile(w http.ResponseWriter, r *http.Request) {
	// Accept multipart form.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	source := r.FormValue("source")
	format := r.FormValue("format")
	if source == "" || format == "" {
		writeError(w, http.StatusBadRequest, "source and format are required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	result, err := h.ingestionSvc.IngestFile(data, source, format)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// --- ListEntries ---

func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.EntryFilter{
		SellerID:  q.Get("seller_id"),
		ProductID: q.Get("product_id"),
		From:      parseTime(q.Get("from")),
		To:        parseTime(q.Get("to")),
		Page:      parseIntDefault(q.Get("page"), 1),
		Limit:     parseIntDefault(q.Get("limit"), 50),
	}

	entries, total, err := h.ledgerRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

// --- ListBatches ---

func (h *Handlers) ListBatches(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	batches, err := h.batchRepo.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"batches": batches,
		"total":   len(batches),
	})
}

// --- GetDashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledgerRepo.GetStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	volumes, err := h.ledgerRepo.GetVolumeBySeller()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sellers, err := h.sellerRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	failing := 0
	for _, s := range sellers {
		if s.RetryCount > 0 {
			failing++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ledger":          stats,
		"seller_volumes":  volumes,
		"sellers":         len(sellers),
		"failing_sellers": failing,
	})
}
