// Package notify provides the user feedback channel and the navigation
// redirector consumed by the workflow engine.
//
// Workflows raise transient toast notifications and request screen changes;
// the presentation layer drains both through the API.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Toast durations, mirroring the short/long distinction of mobile toasts.
const (
	DurationShort = 2 * time.Second
	DurationLong  = 4 * time.Second
)

// Screen names the workflow engine redirects to.
const (
	ScreenLoading        = "Loading"
	ScreenProfile        = "Profile"
	ScreenWelcome        = "Welcome"
	ScreenComplaintsInfo = "ComplaintsInfo"
)

// Notifier is the user feedback channel: fire-and-forget transient messages.
type Notifier interface {
	Notify(message string, duration time.Duration)
}

// Navigator moves the presentation layer to a named destination.
type Navigator interface {
	Navigate(screen string, params map[string]string)
}

// Toast is one pending notification.
type Toast struct {
	ID       string        `json:"id"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
	Time     time.Time     `json:"time"`
}

// Toaster buffers toasts until the presentation layer drains them.
type Toaster struct {
	mu      sync.Mutex
	pending []Toast
}

// NewToaster creates an empty toaster.
func NewToaster() *Toaster {
	return &Toaster{}
}

// Notify appends a toast to the pending feed.
func (t *Toaster) Notify(message string, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, Toast{
		ID:       uuid.NewString(),
		Message:  message,
		Duration: duration,
		Time:     time.Now(),
	})
	slog.Debug("Toaster.Notify: toast queued", "message", message, "pending", len(t.pending))
}

// Drain returns all pending toasts and clears the feed.
func (t *Toaster) Drain() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.pending
	t.pending = nil
	return out
}

// Redirect records the destination of the latest Navigate call.
type Redirect struct {
	Screen string            `json:"screen"`
	Params map[string]string `json:"params,omitempty"`
	Time   time.Time         `json:"time"`
}

// Recorder implements Navigator by remembering the last destination, which
// the presentation layer reads reactively.
type Recorder struct {
	mu   sync.Mutex
	last *Redirect
}

// NewRecorder creates an empty navigation recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Navigate records the destination. Fire-and-forget: no return value.
func (r *Recorder) Navigate(screen string, params map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &Redirect{Screen: screen, Params: params, Time: time.Now()}
	slog.Debug("Recorder.Navigate: destination recorded", "screen", screen)
}

// Last returns the most recent redirect, or nil if none happened yet.
func (r *Recorder) Last() *Redirect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
