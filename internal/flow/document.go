package flow

import (
	"context"
	"log/slog"

	"github.com/gremialdev/memberflow/internal/models"
	"github.com/gremialdev/memberflow/internal/notify"
)

// handleGetDocuments refreshes the document library listing. Best-effort:
// failures are logged only.
func (e *Engine) handleGetDocuments(ctx context.Context, ev models.Event) {
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	docs, err := e.gateway.GetDocuments(ctx)
	if err != nil {
		slog.Error("Engine.handleGetDocuments: fetch failed", "error", err)
		return
	}
	if err := e.store.SaveDocuments(docs); err != nil {
		slog.Error("Engine.handleGetDocuments: failed to store documents", "error", err)
	}
}

// handleGetDocument fetches one document for viewing. Runs under the
// supersede discipline: opening another document cancels this instance, and
// a cancelled instance must not store its result.
func (e *Engine) handleGetDocument(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.GetDocumentPayload)
	if !ok {
		slog.Error("Engine.handleGetDocument: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	doc, err := e.gateway.GetDocument(ctx, payload.ID)
	if err != nil {
		slog.Error("Engine.handleGetDocument: fetch failed", "error", err, "id", payload.ID)
		return
	}
	if ctx.Err() != nil {
		slog.Debug("Engine.handleGetDocument: superseded, discarding result", "id", payload.ID)
		return
	}
	if err := e.store.SaveDocument(doc); err != nil {
		slog.Error("Engine.handleGetDocument: failed to store document", "error", err, "id", doc.ID)
	}
}

// handleNewPassword completes a password reset with the emailed token and
// reports the outcome through the feedback channel.
func (e *Engine) handleNewPassword(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.NewPasswordPayload)
	if !ok {
		slog.Error("Engine.handleNewPassword: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	if err := e.gateway.NewPassword(ctx, payload.Token, payload.Password); err != nil {
		slog.Warn("Engine.handleNewPassword: reset completion failed", "error", err)
		e.notifier.Notify(err.Error(), notify.DurationLong)
		return
	}
	e.notifier.Notify("Tu contraseña fue restablecida.", notify.DurationShort)
	e.navigator.Navigate(notify.ScreenWelcome, nil)
}
