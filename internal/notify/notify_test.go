package notify

import (
	"errors"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestToasterNotifyAndDrain(t *testing.T) {
	toaster := NewToaster()
	toaster.Notify("first", DurationShort)
	toaster.Notify("second", DurationLong)

	toasts := toaster.Drain()
	if len(toasts) != 2 {
		t.Fatalf("expected 2 toasts, got %d", len(toasts))
	}
	if toasts[0].Message != "first" || toasts[1].Message != "second" {
		t.Errorf("toasts out of order: %+v", toasts)
	}
	if toasts[0].ID == "" || toasts[0].ID == toasts[1].ID {
		t.Error("toast IDs should be unique and non-empty")
	}

	if remaining := toaster.Drain(); len(remaining) != 0 {
		t.Errorf("expected empty feed after drain, got %d", len(remaining))
	}
}

func TestRecorderKeepsLastRedirect(t *testing.T) {
	rec := NewRecorder()
	if rec.Last() != nil {
		t.Error("expected no redirect before any Navigate call")
	}
	rec.Navigate(ScreenLoading, nil)
	rec.Navigate(ScreenProfile, map[string]string{"tab": "data"})

	last := rec.Last()
	if last == nil || last.Screen != ScreenProfile {
		t.Fatalf("expected Profile redirect, got %+v", last)
	}
	if last.Params["tab"] != "data" {
		t.Errorf("expected params preserved, got %+v", last.Params)
	}
}

type fakeSender struct {
	bodies []string
	err    error
}

func (f *fakeSender) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	if params.Body != nil {
		f.bodies = append(f.bodies, *params.Body)
	}
	return &twilioApi.ApiV2010Message{}, f.err
}

func TestSMSNotifierForwardsToInner(t *testing.T) {
	inner := NewToaster()
	sender := &fakeSender{}
	n := &SMSNotifier{inner: inner, sender: sender, from: "+100", to: "+200"}

	n.Notify("dues updated", DurationShort)

	if toasts := inner.Drain(); len(toasts) != 1 || toasts[0].Message != "dues updated" {
		t.Errorf("inner notifier did not receive toast: %+v", toasts)
	}
	if len(sender.bodies) != 1 || sender.bodies[0] != "dues updated" {
		t.Errorf("SMS not sent: %+v", sender.bodies)
	}
}

func TestSMSNotifierSwallowsSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("twilio down")}
	n := &SMSNotifier{inner: NewToaster(), sender: sender, from: "+100", to: "+200"}
	// Must not panic or surface the error.
	n.Notify("hello", DurationShort)
}

func TestNewSMSNotifierRequiresCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")
	t.Setenv("TWILIO_TO_NUMBER", "")
	if _, err := NewSMSNotifier(NewToaster()); err == nil {
		t.Error("expected error when credentials are missing")
	}
}
