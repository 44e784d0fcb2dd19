package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// =============================================================================
// WebhookNotifier
// =============================================================================

// WebhookNotifier posts orchestration events as JSON to an HTTP endpoint.
// The event type travels in the X-Autoflow-Event header so receivers can
// route without parsing the body.
type WebhookNotifier struct {
	URL         string
	Headers     map[string]string
	MinSeverity string
	Client      *http.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	n := &WebhookNotifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// WebhookOption configures WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithWebhookHeaders sets extra headers sent with every delivery, such as
// an Authorization header.
func WithWebhookHeaders(headers map[string]string) WebhookOption {
	return func(n *WebhookNotifier) { n.Headers = headers }
}

// WithWebhookMinSeverity drops events below the given severity floor.
func WithWebhookMinSeverity(severity string) WebhookOption {
	return func(n *WebhookNotifier) { n.MinSeverity = severity }
}

// WithWebhookClient sets the HTTP client used for deliveries.
func WithWebhookClient(client *http.Client) WebhookOption {
	return func(n *WebhookNotifier) { n.Client = client }
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	if severityRank(event.Severity) < severityRank(n.MinSeverity) {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Autoflow-Event", string(event.Type))
	for k, v := range n.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}

	return nil
}
