// Package alert delivers inflection alerts to an external webhook.
package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/substationlabs/pdwatch/internal/models"
)

type Notifier struct {
	url    string
	client *http.Client
}

// NewNotifier returns a webhook notifier, or nil if no URL is
// configured. A nil Notifier is safe to call; Notify becomes a no-op.
func NewNotifier(url string) *Notifier {
	if url == "" {
		return nil
	}
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type payload struct {
	DeviceID   string    `json:"device_id"`
	Channel    string    `json:"channel"`
	Metric     string    `json:"metric"`
	DetectedAt time.Time `json:"detected_at"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
}

// Notify POSTs the alert as JSON, retrying transient failures with
// exponential backoff. Client-side errors (4xx) are not retried.
func (n *Notifier) Notify(a models.Alert) error {
	if n == nil {
		return nil
	}

	body, err := json.Marshal(payload{
		DeviceID:   a.DeviceID,
		Channel:    a.Channel,
		Metric:     a.Metric,
		DetectedAt: a.DetectedAt,
		Level:      a.Level,
		Message:    a.Message,
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	operation := func() error {
		resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post alert: %w", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("post alert: status %d", resp.StatusCode))
		}
		return fmt.Errorf("post alert: status %d", resp.StatusCode)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, bo); err != nil {
		return err
	}

	log.Printf("alert: delivered %s/%s/%s", a.DeviceID, a.Channel, a.Metric)
	return nil
}
