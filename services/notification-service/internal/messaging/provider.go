package messaging

import (
	"fmt"
	"strings"
)

type ProviderConfig struct {
	Provider     string
	WebhookURL   string
	WebhookToken string
	TwilioSID    string
	TwilioToken  string
	TwilioFrom   string
}

// NewSender picks the delivery channel named by cfg.Provider (webhook, twilio or noop).
func NewSender(cfg ProviderConfig) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "noop":
		return NewNoopSender(), nil
	case "webhook":
		if strings.TrimSpace(cfg.WebhookURL) == "" {
			return nil, fmt.Errorf("%w: webhook url is required", ErrNotConfigured)
		}
		return NewWebhookSender(cfg.WebhookURL, cfg.WebhookToken), nil
	case "twilio":
		return NewTwilioSender(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)
	default:
		return nil, fmt.Errorf("unknown messaging provider %q", cfg.Provider)
	}
}
