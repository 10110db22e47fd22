package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrNotConfigured = errors.New("messaging provider not configured")

// MessageCreator is the slice of the Twilio REST API used for SMS.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioSender struct {
	api  MessageCreator
	from string
}

func NewTwilioSender(accountSID, authToken, from string) (*TwilioSender, error) {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" || strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("%w: twilio account sid, auth token and from number are required", ErrNotConfigured)
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewTwilioSenderWithAPI(client.Api, from), nil
}

func NewTwilioSenderWithAPI(api MessageCreator, from string) *TwilioSender {
	return &TwilioSender{api: api, from: strings.TrimSpace(from)}
}

func (s *TwilioSender) ProviderID() string {
	return "twilio"
}

// Send ignores ctx because the Twilio client does not accept one.
func (s *TwilioSender) Send(_ context.Context, m Message) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(m.To)
	params.SetFrom(s.from)
	params.SetBody(m.Body)

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}
