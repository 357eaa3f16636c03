package domain

import "time"

// Seller is one payout recipient on the platform. LastCheckpoint is the
// exclusive upper bound of the last ledger window that was successfully
// disbursed; it is only ever advanced by a committed payout run.
type Seller struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	LastCheckpoint time.Time `json:"last_checkpoint"`
	RetryCount     int       `json:"retry_count"`
	CreatedAt      time.Time `json:"created_at"`
}
