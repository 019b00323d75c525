// Package alert posts fraud notifications to an operator-configured
// webhook. The notifier is best-effort: delivery failures are logged
// and never surface into the scoring path.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Notification is the webhook payload sent when a scoring run flags
// fraudulent transactions.
type Notification struct {
	Source            string  `json:"source"`
	TotalTransactions int     `json:"total_transactions"`
	FraudCount        int     `json:"fraud_count"`
	FraudRate         float64 `json:"fraud_rate"`
	MaxProbability    float64 `json:"max_fraud_probability"`
	DetectedAt        string  `json:"detected_at"`
}

// Notifier delivers fraud notifications over HTTP.
type Notifier struct {
	client     *resty.Client
	webhookURL string
}

// New creates a Notifier for the given webhook URL. An empty URL yields
// a disabled notifier whose Notify is a no-op.
func New(webhookURL string, timeout time.Duration) *Notifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &Notifier{client: client, webhookURL: webhookURL}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n.webhookURL != ""
}

// Notify posts the notification to the configured webhook. A disabled
// notifier returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, notification Notification) error {
	if !n.Enabled() {
		return nil
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(notification).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode(), resp.String())
	}

	log.Debug().
		Int("fraud_count", notification.FraudCount).
		Int("status", resp.StatusCode()).
		Msg("fraud alert delivered")
	return nil
}
