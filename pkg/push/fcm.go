package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// FCMConfig holds configuration for the FCM HTTP client
type FCMConfig struct {
	Endpoint  string
	ServerKey string
	Timeout   time.Duration
}

// FCMClient sends notifications through the Firebase Cloud Messaging HTTP API
type FCMClient struct {
	client   *http.Client
	endpoint string
	key      string
	logger   ectologger.Logger
}

// NewFCMClient creates a new FCM push client
func NewFCMClient(cfg FCMConfig, logger ectologger.Logger) *FCMClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &FCMClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: cfg.Endpoint,
		key:      cfg.ServerKey,
		logger:   logger,
	}
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Send delivers a single notification to FCM
func (c *FCMClient) Send(ctx context.Context, n *Notification) error {
	ctx, span := tracing.StartSpan(ctx, "push.FCMClient.Send")
	defer span.End()

	payload, err := json.Marshal(fcmRequest{
		To: n.Token,
		Notification: fcmNotification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal FCM request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create FCM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.key)

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.PushSendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PushSendFailuresTotal.Inc()
		return fmt.Errorf("FCM request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.PushSendFailuresTotal.Inc()
		return fmt.Errorf("FCM returned status %d: %s", resp.StatusCode, string(body))
	}

	var result fcmResponse
	if err := json.Unmarshal(body, &result); err == nil && result.Failure > 0 {
		metrics.PushSendFailuresTotal.Inc()
		return fmt.Errorf("FCM rejected the message (success=%d failure=%d)", result.Success, result.Failure)
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"status": resp.StatusCode,
	}).Debug("Push delivered")

	return nil
}
