package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gremialdev/memberflow/internal/bus"
	"github.com/gremialdev/memberflow/internal/flow"
	"github.com/gremialdev/memberflow/internal/models"
	"github.com/gremialdev/memberflow/internal/notify"
	"github.com/gremialdev/memberflow/internal/store"
)

func newTestServer(t *testing.T) (*Server, *bus.Bus, *store.InMemoryStore) {
	t.Helper()
	b := bus.New()
	t.Cleanup(b.Close)
	st := store.NewInMemoryStore()
	srv := NewServer(b, st, flow.NewAppContext(), notify.NewToaster(), notify.NewRecorder())
	return srv, b, st
}

func expectEvent(t *testing.T, ch <-chan models.Event, kind models.EventKind) models.Event {
	t.Helper()
	select {
	case ev := <-ch:
		if ev.Kind != kind {
			t.Fatalf("expected event kind %s, got %s", kind, ev.Kind)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s event", kind)
		return models.Event{}
	}
}

func TestLoginHandlerDispatchesEvent(t *testing.T) {
	srv, b, _ := newTestServer(t)
	ch := b.Events(models.EventLoginRequest)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"a","password":"b"}`))
	rr := httptest.NewRecorder()
	srv.loginHandler(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rr.Code)
	}
	ev := expectEvent(t, ch, models.EventLoginRequest)
	p, ok := ev.Payload.(models.LoginPayload)
	if !ok || p.Username != "a" || p.Password != "b" {
		t.Errorf("unexpected payload: %+v", ev.Payload)
	}
}

func TestLoginHandlerRejectsInvalidPayload(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"a"}`))
	rr := httptest.NewRecorder()
	srv.loginHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
	var resp models.APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Status != string(models.APIStatusError) {
		t.Errorf("expected error status, got %q", resp.Status)
	}
}

func TestLoginHandlerMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	srv.loginHandler(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("expected Allow header POST, got %q", allow)
	}
}

func TestComplaintHandlerValidatesSubmission(t *testing.T) {
	srv, b, _ := newTestServer(t)
	ch := b.Events(models.EventSetComplaint)

	body := `{"values":{"description":"equipo roto"},"photos":[{"name":"p1.jpg","data":"aGk="}]}`
	req := httptest.NewRequest(http.MethodPost, "/complaints", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	srv.complaintsHandler(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	ev := expectEvent(t, ch, models.EventSetComplaint)
	p := ev.Payload.(models.ComplaintSubmission)
	if len(p.Photos) != 1 || p.Photos[0].Name != "p1.jpg" {
		t.Errorf("unexpected photos: %+v", p.Photos)
	}

	// Missing description is rejected before dispatch.
	req = httptest.NewRequest(http.MethodPost, "/complaints", bytes.NewBufferString(`{"values":{}}`))
	rr = httptest.NewRecorder()
	srv.complaintsHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestComplaintsGetReadsSlot(t *testing.T) {
	srv, _, st := newTestServer(t)
	st.SaveComplaints([]models.Complaint{{ID: "c1"}})

	req := httptest.NewRequest(http.MethodGet, "/complaints", nil)
	rr := httptest.NewRecorder()
	srv.complaintsHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Status string             `json:"status"`
		Result []models.Complaint `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(resp.Result) != 1 || resp.Result[0].ID != "c1" {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}

func TestAlertsPostValidatesKind(t *testing.T) {
	srv, b, _ := newTestServer(t)
	ch := b.Events(models.EventSetAlert)

	req := httptest.NewRequest(http.MethodPost, "/alerts", bytes.NewBufferString(`{"kind":"earthquake"}`))
	rr := httptest.NewRecorder()
	srv.alertsHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid kind, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/alerts", bytes.NewBufferString(`{"kind":"theft","latitude":-34.6,"longitude":-58.4}`))
	rr = httptest.NewRecorder()
	srv.alertsHandler(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
	ev := expectEvent(t, ch, models.EventSetAlert)
	if a := ev.Payload.(models.Alert); a.Kind != models.AlertTheft {
		t.Errorf("unexpected alert payload: %+v", a)
	}
}

func TestDocumentHandlerDispatchAndRead(t *testing.T) {
	srv, b, st := newTestServer(t)
	ch := b.Events(models.EventGetDocument)

	req := httptest.NewRequest(http.MethodPost, "/document", bytes.NewBufferString(`{"id":7}`))
	rr := httptest.NewRecorder()
	srv.documentHandler(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
	ev := expectEvent(t, ch, models.EventGetDocument)
	if p := ev.Payload.(models.GetDocumentPayload); p.ID != 7 {
		t.Errorf("unexpected payload: %+v", p)
	}

	// Missing ID is rejected before dispatch.
	req = httptest.NewRequest(http.MethodPost, "/document", bytes.NewBufferString(`{}`))
	rr = httptest.NewRecorder()
	srv.documentHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}

	st.SaveDocument(models.Document{ID: 7, Title: "Estatuto"})
	rr = httptest.NewRecorder()
	srv.documentHandler(rr, httptest.NewRequest(http.MethodGet, "/document", nil))
	var resp struct {
		Result models.Document `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Result.Title != "Estatuto" {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}

func TestComplaintImagesHandlerValidatesID(t *testing.T) {
	srv, b, _ := newTestServer(t)
	ch := b.Events(models.EventGetComplaintImages)

	req := httptest.NewRequest(http.MethodPost, "/complaints/images", bytes.NewBufferString(`{}`))
	rr := httptest.NewRecorder()
	srv.complaintImagesHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing complaint id, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/complaints/images", bytes.NewBufferString(`{"complaint_id":"c9"}`))
	rr = httptest.NewRecorder()
	srv.complaintImagesHandler(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
	ev := expectEvent(t, ch, models.EventGetComplaintImages)
	if p := ev.Payload.(models.ComplaintImagesPayload); p.ComplaintID != "c9" {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestNewPasswordHandlerValidatesPayload(t *testing.T) {
	srv, b, _ := newTestServer(t)
	ch := b.Events(models.EventNewPassword)

	req := httptest.NewRequest(http.MethodPost, "/password/new", bytes.NewBufferString(`{"token":"tk","password":"short"}`))
	rr := httptest.NewRecorder()
	srv.newPasswordHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/password/new", bytes.NewBufferString(`{"token":"tk","password":"longenough"}`))
	rr = httptest.NewRecorder()
	srv.newPasswordHandler(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
	expectEvent(t, ch, models.EventNewPassword)
}

func TestStateHandlerReflectsContext(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.app.SetAuth("T1", "", "sid=1")
	srv.app.SetProcessing(true)
	srv.recorder.Navigate(notify.ScreenLoading, nil)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rr := httptest.NewRecorder()
	srv.stateHandler(rr, req)

	var resp struct {
		Result appState `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !resp.Result.Processing || !resp.Result.Authenticated {
		t.Errorf("unexpected state: %+v", resp.Result)
	}
	if resp.Result.Redirect == nil || resp.Result.Redirect.Screen != notify.ScreenLoading {
		t.Errorf("expected Loading redirect, got %+v", resp.Result.Redirect)
	}
}

func TestNotificationsHandlerDrainsFeed(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.toaster.Notify("hola", notify.DurationShort)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rr := httptest.NewRecorder()
	srv.notificationsHandler(rr, req)

	var resp struct {
		Result []notify.Toast `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(resp.Result) != 1 || resp.Result[0].Message != "hola" {
		t.Errorf("unexpected notifications: %+v", resp.Result)
	}

	rr = httptest.NewRecorder()
	srv.notificationsHandler(rr, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	resp.Result = nil
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if len(resp.Result) != 0 {
		t.Errorf("expected drained feed, got %+v", resp.Result)
	}
}

func TestRoutesServeKnownPaths(t *testing.T) {
	srv, _, _ := newTestServer(t)
	mux := srv.routes()

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for GET /news, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", rr.Code)
	}
}
