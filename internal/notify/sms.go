// Package notify provides the user feedback channel for MemberFlow.
//
// This file implements an optional out-of-band SMS sink on top of the
// Twilio REST API, used to mirror critical notices to the member's phone.
package notify

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Opts holds configuration options for the SMS notifier.
type Opts struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// Option defines a configuration option for the SMS notifier.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFrom sets the sending phone number.
func WithFrom(from string) Option {
	return func(o *Opts) { o.From = from }
}

// WithTo sets the destination phone number.
func WithTo(to string) Option {
	return func(o *Opts) { o.To = to }
}

// smsSender abstracts the Twilio message creation call for testability.
type smsSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier mirrors notifications to a phone number via Twilio SMS.
// It wraps an inner Notifier so the in-app toast feed still sees every message.
type SMSNotifier struct {
	inner  Notifier
	sender smsSender
	from   string
	to     string
}

// NewSMSNotifier creates an SMS notifier wrapping inner. Credentials fall
// back to the TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER and
// TWILIO_TO_NUMBER environment variables when not provided via options.
func NewSMSNotifier(inner Notifier, opts ...Option) (*SMSNotifier, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if cfg.To == "" {
		cfg.To = os.Getenv("TWILIO_TO_NUMBER")
	}
	slog.Debug("SMS notifier config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"From_set", cfg.From != "",
		"To_set", cfg.To != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("from and to numbers must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSNotifier{inner: inner, sender: client.Api, from: cfg.From, to: cfg.To}, nil
}

// Notify forwards the message to the inner notifier and sends it as an SMS.
// SMS delivery is best-effort: failures are logged, never surfaced.
func (n *SMSNotifier) Notify(message string, duration time.Duration) {
	if n.inner != nil {
		n.inner.Notify(message, duration)
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(n.from)
	params.SetTo(n.to)
	params.SetBody(message)
	if _, err := n.sender.CreateMessage(params); err != nil {
		slog.Error("SMSNotifier.Notify: failed to send SMS", "error", err)
		return
	}
	slog.Debug("SMSNotifier.Notify: SMS sent", "to_set", n.to != "")
}
