package flow

import (
	"context"
	"log/slog"

	"github.com/gremialdev/memberflow/internal/models"
	"github.com/gremialdev/memberflow/internal/notify"
)

// authResult carries the outcome of an in-flight login call.
type authResult struct {
	auth models.AuthResult
	err  error
}

// authWatcher owns both LOGIN_REQUEST and LOGOUT_REQUEST. While a login is
// in flight it races the gateway call against the next LOGOUT_REQUEST:
// whichever arrives first wins and the loser's result is discarded.
func (e *Engine) authWatcher(ctx context.Context) {
	loginCh := e.bus.Events(models.EventLoginRequest)
	logoutCh := e.bus.Events(models.EventLogoutRequest)
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Engine.authWatcher: context cancelled")
			return
		case ev, ok := <-loginCh:
			if !ok {
				return
			}
			e.safely(models.EventLoginRequest, func() { e.handleLogin(ctx, ev, logoutCh) })
		case _, ok := <-logoutCh:
			if !ok {
				return
			}
			e.safely(models.EventLogoutRequest, func() { e.handleLogout(ctx) })
		}
	}
}

// handleLogin authorizes the member. On success it stores the session
// credentials, fetches the member record and redirects to Loading. A
// LOGOUT_REQUEST arriving before the gateway resolves wins the race: the
// login result is discarded and the session stays unauthenticated.
func (e *Engine) handleLogin(ctx context.Context, ev models.Event, logoutCh <-chan models.Event) {
	payload, ok := ev.Payload.(models.LoginPayload)
	if !ok {
		slog.Error("Engine.handleLogin: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	resCh := make(chan authResult, 1)
	go func() {
		auth, err := e.gateway.Login(ctx, payload.Username, payload.Password)
		resCh <- authResult{auth: auth, err: err}
	}()

	select {
	case <-ctx.Done():
		return
	case _, open := <-logoutCh:
		// Logout wins: the pending login result is never applied.
		slog.Info("Engine.handleLogin: logout requested during login, discarding login result", "username", payload.Username)
		if !open {
			return
		}
		e.app.ClearAuth()
		e.navigator.Navigate(notify.ScreenLoading, nil)
		return
	case res := <-resCh:
		if res.err != nil {
			slog.Warn("Engine.handleLogin: login failed", "error", res.err, "username", payload.Username)
			e.notifier.Notify(res.err.Error(), notify.DurationLong)
			return
		}
		e.app.SetAuth(res.auth.Token, res.auth.LogoutToken, res.auth.Cookie)
		user, err := e.gateway.GetUser(ctx, res.auth.UserID)
		if err != nil {
			slog.Error("Engine.handleLogin: failed to fetch user after login", "error", err, "user_id", res.auth.UserID)
		} else if err := e.store.SaveUser(user); err != nil {
			slog.Error("Engine.handleLogin: failed to store user", "error", err, "user_id", user.ID)
		}
		slog.Info("Engine.handleLogin: login succeeded", "user_id", res.auth.UserID)
		e.navigator.Navigate(notify.ScreenLoading, nil)
	}
}

// handleLogout ends the session. The backend call is best-effort: the
// session is cleared regardless of its outcome.
func (e *Engine) handleLogout(ctx context.Context) {
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	if err := e.gateway.Logout(ctx); err != nil {
		slog.Warn("Engine.handleLogout: backend logout failed, clearing session anyway", "error", err)
	}
	e.app.ClearAuth()
	e.navigator.Navigate(notify.ScreenLoading, nil)
	slog.Info("Engine.handleLogout: session ended")
}
