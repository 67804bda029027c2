package twilio

import (
	"context"
	"fmt"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the part of the Twilio REST API the messenger needs
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Messenger sends WhatsApp (or SMS) messages from a fixed sender to a fixed recipient.
// Addresses are passed through as configured, e.g. "whatsapp:+14155238886".
type Messenger struct {
	api  messageCreator
	from string
	to   string
}

func NewMessenger(accountSID, authToken, from, to string) *Messenger {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Messenger{api: client.Api, from: from, to: to}
}

func (m *Messenger) Name() string { return "twilio" }

// SendText returns the message SID. The Twilio SDK has no context support,
// so ctx is only checked before the call.
func (m *Messenger) SendText(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(m.from)
	params.SetTo(m.to)
	params.SetBody(text)

	msg, err := m.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio: create message: %w", err)
	}
	if msg == nil || msg.Sid == nil {
		return "", nil
	}
	return *msg.Sid, nil
}
