// Package flow implements the workflow engine at the core of MemberFlow:
// long-lived watcher loops that consume request events, call the backend
// gateway and publish results into the store, the session and the
// notification feed.
package flow

import (
	"log/slog"
	"sync"

	"github.com/gremialdev/memberflow/internal/models"
)

// AppContext holds the cross-watcher shared state: the session credentials
// and the processing flag. It replaces the global singletons of a typical
// mobile store with an explicit object handed to the engine at construction.
type AppContext struct {
	mu         sync.RWMutex
	session    models.Session
	processing bool
}

// NewAppContext creates an empty, unauthenticated context.
func NewAppContext() *AppContext {
	return &AppContext{}
}

// Session returns a snapshot of the current session.
func (a *AppContext) Session() models.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// SetAuth stores the credentials of a successful login. Token and cookie
// are always written together; only the auth watcher calls this.
func (a *AppContext) SetAuth(token, logoutToken, cookie string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = models.Session{AuthToken: token, LogoutToken: logoutToken, Cookie: cookie}
	slog.Debug("AppContext.SetAuth: session established", "token_set", token != "")
}

// ClearAuth drops all session credentials. Only the auth watcher calls this.
func (a *AppContext) ClearAuth() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = models.Session{}
	slog.Debug("AppContext.ClearAuth: session cleared")
}

// SetProcessing toggles the busy indicator around network-bound steps.
// The flag is a plain last-writer-wins boolean, not a counter: when two
// workflows overlap, the last one to finish determines the final value.
// Known limitation carried over from the product's behavior.
func (a *AppContext) SetProcessing(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.processing = v
}

// Processing reports the current busy indicator value.
func (a *AppContext) Processing() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.processing
}
