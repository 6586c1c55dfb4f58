package flow

import (
	"context"
	"log/slog"

	"github.com/gremialdev/memberflow/internal/models"
	"github.com/gremialdev/memberflow/internal/notify"
)

// handleEnrollment submits an enrollment request. Success raises a toast and
// redirects to Welcome; errors are logged and swallowed, matching the
// product's behavior.
func (e *Engine) handleEnrollment(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.Enrollment)
	if !ok {
		slog.Error("Engine.handleEnrollment: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	if err := e.gateway.SetEnrollment(ctx, payload.Values); err != nil {
		slog.Error("Engine.handleEnrollment: submission failed", "error", err)
		return
	}
	e.notifier.Notify("Tu solicitud de afiliación fue enviada.", notify.DurationShort)
	e.navigator.Navigate(notify.ScreenWelcome, nil)
	slog.Info("Engine.handleEnrollment: enrollment submitted")
}

// handleComplaint runs the complaint submission workflow: photos are
// uploaded strictly sequentially so the collected file-id order is
// deterministic; per-photo failures are skipped silently and only a total
// failure (zero uploads out of a non-empty set) aborts the patch step.
func (e *Engine) handleComplaint(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.ComplaintSubmission)
	if !ok {
		slog.Error("Engine.handleComplaint: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	var fileIDs []string
	for _, photo := range payload.Photos {
		fid, err := e.gateway.SetComplaintFile(ctx, photo)
		if err != nil {
			slog.Warn("Engine.handleComplaint: photo upload failed, skipping", "error", err, "name", photo.Name)
			continue
		}
		fileIDs = append(fileIDs, fid)
	}
	if len(payload.Photos) > 0 && len(fileIDs) == 0 {
		slog.Error("Engine.handleComplaint: all photo uploads failed", "requested", len(payload.Photos))
		e.notifier.Notify("No pudimos subir las fotos de tu denuncia.", notify.DurationLong)
		return
	}

	complaint, err := e.gateway.PatchComplaint(ctx, payload.Values, fileIDs)
	if err != nil {
		slog.Error("Engine.handleComplaint: patch failed", "error", err)
		e.notifier.Notify("No pudimos enviar tu denuncia.", notify.DurationLong)
		return
	}
	if complaint == nil {
		slog.Warn("Engine.handleComplaint: backend rejected complaint")
		e.notifier.Notify("No pudimos enviar tu denuncia.", notify.DurationLong)
		return
	}
	if err := e.store.AddSubmittedComplaint(*complaint); err != nil {
		slog.Error("Engine.handleComplaint: failed to record complaint", "error", err, "id", complaint.ID)
	}
	e.notifier.Notify("Tu denuncia fue enviada.", notify.DurationShort)
	e.navigator.Navigate(notify.ScreenComplaintsInfo, nil)
	slog.Info("Engine.handleComplaint: complaint submitted", "id", complaint.ID, "uploads", len(fileIDs), "requested", len(payload.Photos))
}

// handleGetComplaints refreshes the complaint list. Runs under the
// supersede discipline: a newer trigger cancels this instance, and a
// cancelled instance must not store its result.
func (e *Engine) handleGetComplaints(ctx context.Context, ev models.Event) {
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	complaints, err := e.gateway.GetComplaints(ctx)
	if err != nil {
		slog.Error("Engine.handleGetComplaints: fetch failed", "error", err)
		return
	}
	if ctx.Err() != nil {
		slog.Debug("Engine.handleGetComplaints: superseded, discarding result")
		return
	}
	if err := e.store.SaveComplaints(complaints); err != nil {
		slog.Error("Engine.handleGetComplaints: failed to store complaints", "error", err)
	}
}

// handleComplaintImages fetches the hosted image attachments of one
// complaint. Runs under the supersede discipline: viewing another complaint
// cancels this instance.
func (e *Engine) handleComplaintImages(ctx context.Context, ev models.Event) {
	payload, ok := ev.Payload.(models.ComplaintImagesPayload)
	if !ok {
		slog.Error("Engine.handleComplaintImages: unexpected payload type", "payload", ev.Payload)
		return
	}
	e.app.SetProcessing(true)
	defer e.app.SetProcessing(false)

	images, err := e.gateway.GetComplaintImages(ctx, payload.ComplaintID)
	if err != nil {
		slog.Error("Engine.handleComplaintImages: fetch failed", "error", err, "complaint_id", payload.ComplaintID)
		return
	}
	if ctx.Err() != nil {
		slog.Debug("Engine.handleComplaintImages: superseded, discarding result", "complaint_id", payload.ComplaintID)
		return
	}
	if err := e.store.SaveComplaintImages(images); err != nil {
		slog.Error("Engine.handleComplaintImages: failed to store images", "error", err)
	}
}
