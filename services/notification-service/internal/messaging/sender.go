// Package messaging delivers booking confirmations to residents over the configured channel.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Message is one outbound confirmation. Reference identifies the booking so a provider can
// drop repeats.
type Message struct {
	To        string
	Body      string
	Reference string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
	ProviderID() string
}

// WebhookSender posts messages as JSON to a chat bridge or SMS gateway.
type WebhookSender struct {
	url    string
	token  string
	client *http.Client
}

func NewWebhookSender(url, token string) *WebhookSender {
	return &WebhookSender{
		url:    strings.TrimSpace(url),
		token:  strings.TrimSpace(token),
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *WebhookSender) ProviderID() string { return "webhook" }

type webhookPayload struct {
	To        string `json:"to"`
	Body      string `json:"body"`
	Reference string `json:"reference,omitempty"`
}

func (s *WebhookSender) Send(ctx context.Context, m Message) error {
	if s.url == "" {
		return ErrNotConfigured
	}
	raw, err := json.Marshal(webhookPayload{To: m.To, Body: m.Body, Reference: m.Reference})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.Reference != "" {
		req.Header.Set("Idempotency-Key", m.Reference)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("messaging webhook returned %d", resp.StatusCode)
	}
	return nil
}

type NoopSender struct{}

func NewNoopSender() NoopSender { return NoopSender{} }

func (NoopSender) ProviderID() string { return "noop" }

func (NoopSender) Send(context.Context, Message) error { return nil }
