// Command generate produces deterministic fixture files for local
// development: a seller roster, a platform JSON ledger batch and a
// storefront CSV ledger batch.
//
// Usage: go run testdata/generate/main.go [output-dir]
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

const (
	sellerCount   = 12
	entriesPerDay = 40
	days          = 14
	refundRate    = 0.12
)

type seedSeller struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	LastCheckpoint time.Time `json:"last_checkpoint"`
	CreatedAt      time.Time `json:"created_at"`
}

type platformEntry struct {
	ID         string `json:"id"`
	SellerID   string `json:"seller_id"`
	ProductID  string `json:"product_id"`
	Amount     int64  `json:"amount_minor"`
	OccurredAt string `json:"occurred_at"`
}

type platformFile struct {
	BatchID string          `json:"batch_id"`
	Entries []platformEntry `json:"entries"`
}

func main() {
	outDir := "testdata"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("mkdir %s: %v", outDir, err)
	}

	rng := rand.New(rand.NewSource(42))
	epoch := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	// Sellers, all starting at the same checkpoint epoch.
	sellers := make([]seedSeller, 0, sellerCount)
	for i := 1; i <= sellerCount; i++ {
		sellers = append(sellers, seedSeller{
			ID:             fmt.Sprintf("SEL-%03d", i),
			Name:           fmt.Sprintf("Storefront %03d", i),
			LastCheckpoint: epoch,
			CreatedAt:      epoch.Add(-30 * 24 * time.Hour),
		})
	}
	writeJSONFile(filepath.Join(outDir, "sellers.json"), sellers)

	// Ledger entries spread over the period; a slice of them refunds.
	var entries []platformEntry
	seq := 0
	for d := 0; d < days; d++ {
		day := epoch.Add(time.Duration(d) * 24 * time.Hour)
		for n := 0; n < entriesPerDay; n++ {
			seq++
			seller := sellers[rng.Intn(len(sellers))]
			amount := int64(500 + rng.Intn(25000)) // 5.00 to 255.00 in cents
			if rng.Float64() < refundRate {
				amount = -amount / 2
			}
			occurred := day.Add(time.Duration(rng.Intn(86400)) * time.Second)
			entries = append(entries, platformEntry{
				ID:         fmt.Sprintf("LE-%06d", seq),
				SellerID:   seller.ID,
				ProductID:  fmt.Sprintf("PRD-%03d", 1+rng.Intn(60)),
				Amount:     amount,
				OccurredAt: occurred.Format(time.RFC3339Nano),
			})
		}
	}

	// Platform JSON export: first half of the entries.
	half := len(entries) / 2
	writeJSONFile(filepath.Join(outDir, "ledger_platform.json"), platformFile{
		BatchID: "BATCH-PLATFORM-001",
		Entries: entries[:half],
	})

	// Storefront CSV export: second half.
	writeCSVFile(filepath.Join(outDir, "ledger_storefront.csv"), entries[half:])

	log.Printf("Wrote %d sellers and %d entries to %s", len(sellers), len(entries), outDir)
}

func writeJSONFile(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
}

func writeCSVFile(path string, entries []platformEntry) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"entry_id", "seller_id", "product_id", "amount_minor", "occurred_at"}); err != nil {
		log.Fatalf("write header: %v", err)
	}
	for _, e := range entries {
		row := []string{e.ID, e.SellerID, e.ProductID, fmt.Sprintf("%d", e.Amount), e.OccurredAt}
		if err := w.Write(row); err != nil {
			log.Fatalf("write row: %v", err)
		}
	}
}
