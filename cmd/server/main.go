package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wakala/payouts/internal/api"
	"github.com/wakala/payouts/internal/domain"
	"github.com/wakala/payouts/internal/ingestion"
	"github.com/wakala/payouts/internal/payout"
	"github.com/wakala/payouts/internal/rails"
	"github.com/wakala/payouts/internal/repository"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "payouts.db"
	}

	workers := envInt("PAYOUT_WORKERS", 4)
	commitRetries := envInt("COMMIT_RETRIES", 3)

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	sellerRepo := repository.NewSellerRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	batchRepo := repository.NewBatchRepo(db)

	// External collaborators: webhook when configured, log-only otherwise.
	var rail payout.PaymentRail = rails.LogRail{}
	if url := os.Getenv("PAYMENT_RAIL_URL"); url != "" {
		rail = rails.NewWebhookRail(url)
	}
	var notifier payout.Notifier = rails.LogNotifier{}
	if url := os.Getenv("NOTIFY_URL"); url != "" {
		notifier = rails.NewWebhookNotifier(url)
	}

	// Wire the payout pipeline.
	clock := payout.SystemClock{}
	aggregator := payout.NewAggregator(ledgerRepo)
	executor := payout.NewExecutor(rail, notifier)
	committer := payout.NewCommitter(sellerRepo, commitRetries)
	orchestrator := payout.NewOrchestrator(
		sellerRepo, clock, aggregator, executor, committer, rails.LogAlerter{}, workers,
	)

	ingestionSvc := ingestion.NewService(batchRepo, ledgerRepo)

	// Seed sellers if DB is empty.
	count, err := sellerRepo.Count()
	if err != nil {
		log.Fatalf("Failed to count sellers: %v", err)
	}
	if count == 0 {
		log.Println("Database is empty, seeding sellers from testdata...")
		if err := seedSellers(sellerRepo); err != nil {
			log.Printf("WARNING: Failed to seed sellers: %v", err)
		}
	} else {
		log.Printf("Database already has %d sellers, skipping seed", count)
	}

	// Create router.
	router := api.NewRouter(sellerRepo, ledgerRepo, batchRepo, ingestionSvc,
		orchestrator, aggregator, clock)

	log.Printf("Wakala Seller Payout Service")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/payouts/run")
	log.Printf("  GET    /api/v1/sellers")
	log.Printf("  GET    /api/v1/sellers/{id}/history")
	log.Printf("  GET    /api/v1/sellers/{id}/pending")
	log.Printf("  POST   /api/v1/ledger/ingest")
	log.Printf("  GET    /api/v1/ledger/entries")
	log.Printf("  GET    /api/v1/ledger/batches")
	log.Printf("  GET    /api/v1/dashboard")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func seedSellers(repo *repository.SellerRepo) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		"testdata/sellers.json",
		filepath.Join(".", "testdata", "sellers.json"),
	}

	// Also try to find relative to the executable.
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", "sellers.json"),
			filepath.Join(dir, "..", "..", "testdata", "sellers.json"),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded sellers from %s", path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find sellers.json in any candidate path: %w", loadErr)
	}

	var sellers []domain.Seller
	if err := json.Unmarshal(data, &sellers); err != nil {
		return fmt.Errorf("unmarshal sellers: %w", err)
	}

	for i := range sellers {
		if err := repo.Insert(&sellers[i]); err != nil {
			return fmt.Errorf("insert seller %s: %w", sellers[i].ID, err)
		}
	}

	log.Printf("Seeded %d sellers", len(sellers))
	return nil
}
