package flow

import (
	"context"
	"log/slog"

	"github.com/gremialdev/memberflow/internal/models"
	"github.com/gremialdev/memberflow/internal/notify"
)

// handleUpdateUser patches the member record. A truthy result updates the
// stored record, redirects to Profile and raises a success toast. Errors are
// logged and swallowed with no user-facing notification; this mirrors the
// product's behavior, not a derived design.
func (e *Engine) handleUpdateUser(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.UpdateUserPayload)
	if !ok {
		slog.Error("Engine.handleUpdateUser: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	user, err := e.gateway.UpdateUser(ctx, payload.ID, payload.Values)
	if err != nil {
		slog.Error("Engine.handleUpdateUser: update failed", "error", err, "id", payload.ID)
		return
	}
	if user == nil {
		slog.Warn("Engine.handleUpdateUser: backend rejected update", "id", payload.ID)
		return
	}
	if err := e.store.SaveUser(*user); err != nil {
		slog.Error("Engine.handleUpdateUser: failed to store user", "error", err, "id", user.ID)
	}
	e.navigator.Navigate(notify.ScreenProfile, nil)
	e.notifier.Notify("Tus datos fueron actualizados.", notify.DurationShort)
	slog.Info("Engine.handleUpdateUser: user updated", "id", user.ID)
}

// handleGetUser refreshes the member record. Best-effort: failures are
// logged only.
func (e *Engine) handleGetUser(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.GetUserPayload)
	if !ok {
		slog.Error("Engine.handleGetUser: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	user, err := e.gateway.GetUser(ctx, payload.ID)
	if err != nil {
		slog.Error("Engine.handleGetUser: fetch failed", "error", err, "id", payload.ID)
		return
	}
	if err := e.store.SaveUser(user); err != nil {
		slog.Error("Engine.handleGetUser: failed to store user", "error", err, "id", user.ID)
	}
}

// handleChangePass changes the member's password and reports the outcome
// through the feedback channel.
func (e *Engine) handleChangePass(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.ChangePassPayload)
	if !ok {
		slog.Error("Engine.handleChangePass: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	if err := e.gateway.ChangeUserPass(ctx, payload.Current, payload.New); err != nil {
		slog.Warn("Engine.handleChangePass: change failed", "error", err)
		e.notifier.Notify(err.Error(), notify.DurationLong)
		return
	}
	e.notifier.Notify("Tu contraseña fue cambiada.", notify.DurationShort)
	e.navigator.Navigate(notify.ScreenProfile, nil)
}

// handleResetPass starts a password reset for the given email.
func (e *Engine) handleResetPass(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.ResetPassPayload)
	if !ok {
		slog.Error("Engine.handleResetPass: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	if err := e.gateway.ResetUserPass(ctx, payload.Email); err != nil {
		slog.Warn("Engine.handleResetPass: reset failed", "error", err)
		e.notifier.Notify(err.Error(), notify.DurationLong)
		return
	}
	e.notifier.Notify("Te enviamos un correo para restablecer tu contraseña.", notify.DurationLong)
}

// handleDeviceToken registers the device's push token. Log-only errors.
func (e *Engine) handleDeviceToken(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.DeviceTokenPayload)
	if !ok {
		slog.Error("Engine.handleDeviceToken: unexpected payload type", "payload", ev.Payload)
		return
	}
	if err := e.gateway.RegisterDeviceToken(ctx, payload.Token); err != nil {
		slog.Error("Engine.handleDeviceToken: registration failed", "error", err)
	}
}
