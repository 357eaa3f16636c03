package rails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// webhookPayload is the JSON body posted to rail and notifier endpoints.
type webhookPayload struct {
	SellerID string `json:"seller_id"`
	Amount   int64  `json:"amount"`
}

// WebhookRail posts disbursement requests to an external payment endpoint.
// Any non-2xx response is a disbursement failure; the caller retries the
// whole window on the next run.
type WebhookRail struct {
	URL    string
	Client *http.Client
}

func NewWebhookRail(url string) *WebhookRail {
	return &WebhookRail{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *WebhookRail) Disburse(ctx context.Context, sellerID string, amount int64) error {
	return postJSON(ctx, r.Client, r.URL, webhookPayload{SellerID: sellerID, Amount: amount})
}

// WebhookNotifier posts payout notifications to an external endpoint.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, sellerID string, amount int64) error {
	return postJSON(ctx, n.Client, n.URL, webhookPayload{SellerID: sellerID, Amount: amount})
}

func postJSON(ctx context.Context, client *http.Client, url string, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}
