package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// WebhookNotifier implements Notifier by POSTing the run summary as JSON to
// a configured URL.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) {
		w.client = c
	}
}

// WithHeaders sets extra request headers, e.g. an Authorization token.
func WithHeaders(h map[string]string) WebhookOption {
	return func(w *WebhookNotifier) {
		w.headers = h
	}
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		url:    url,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// summaryPayload is the webhook JSON structure.
type summaryPayload struct {
	Event   string             `json:"event"`
	Summary *domain.RunSummary `json:"summary"`
}

// SendSummary delivers the run summary to the webhook URL.
func (w *WebhookNotifier) SendSummary(ctx context.Context, summary *domain.RunSummary) error {
	body, err := json.Marshal(summaryPayload{
		Event:   "run_completed",
		Summary: summary,
	})
	if err != nil {
		return fmt.Errorf("marshaling summary payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		w.url,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending summary webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("webhook returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
