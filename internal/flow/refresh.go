package flow

import (
	"context"
	"log/slog"

	"github.com/gremialdev/memberflow/internal/models"
	"github.com/gremialdev/memberflow/internal/notify"
)

// handleGetInformation refreshes the information record. Runs under the
// supersede discipline; a cancelled instance must not store its result.
func (e *Engine) handleGetInformation(ctx context.Context, ev models.Event) {
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	info, err := e.gateway.GetInformation(ctx)
	if err != nil {
		slog.Error("Engine.handleGetInformation: fetch failed", "error", err)
		return
	}
	if ctx.Err() != nil {
		slog.Debug("Engine.handleGetInformation: superseded, discarding result")
		return
	}
	if err := e.store.SaveInformation(info); err != nil {
		slog.Error("Engine.handleGetInformation: failed to store information", "error", err)
	}
}

// handleGetNews refreshes the news feed. Best-effort: failures are logged only.
func (e *Engine) handleGetNews(ctx context.Context, ev models.Event) {
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	news, err := e.gateway.GetNews(ctx)
	if err != nil {
		slog.Error("Engine.handleGetNews: fetch failed", "error", err)
		return
	}
	if err := e.store.SaveNews(news); err != nil {
		slog.Error("Engine.handleGetNews: failed to store news", "error", err)
	}
}

// handleGetAlerts refreshes the incident alert map. Best-effort.
func (e *Engine) handleGetAlerts(ctx context.Context, ev models.Event) {
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	alerts, err := e.gateway.GetAlerts(ctx)
	if err != nil {
		slog.Error("Engine.handleGetAlerts: fetch failed", "error", err)
		return
	}
	if err := e.store.SaveAlerts(alerts); err != nil {
		slog.Error("Engine.handleGetAlerts: failed to store alerts", "error", err)
	}
}

// handleSetAlert publishes a new incident alert and refreshes the map on
// success.
func (e *Engine) handleSetAlert(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.Alert)
	if !ok {
		slog.Error("Engine.handleSetAlert: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	if err := e.gateway.SetAlert(ctx, payload); err != nil {
		slog.Warn("Engine.handleSetAlert: publish failed", "error", err)
		e.notifier.Notify("No pudimos publicar tu alerta.", notify.DurationLong)
		return
	}
	e.notifier.Notify("Tu alerta fue publicada.", notify.DurationShort)
	e.bus.Dispatch(models.Event{Kind: models.EventGetAlerts})
}
