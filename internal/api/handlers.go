// Package api provides HTTP handlers for MemberFlow endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gremialdev/memberflow/internal/models"
	"github.com/gremialdev/memberflow/internal/notify"
)

// requireMethod writes 405 unless the request uses the expected method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		slog.Warn("Server: method not allowed", "path", r.URL.Path, "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// decodeBody decodes the JSON request body into out.
func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		slog.Warn("Server: failed to decode JSON body", "path", r.URL.Path, "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return false
	}
	return true
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.loginHandler: processing login request", "method", r.Method)
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var p models.LoginPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		slog.Warn("Server.loginHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventLoginRequest, Payload: p})
	slog.Info("Server.loginHandler: login request dispatched", "username", p.Username)
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventLogoutRequest})
	slog.Info("Server.logoutHandler: logout request dispatched")
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

func (s *Server) userHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		user, err := s.store.GetUser()
		if err != nil {
			slog.Error("Server.userHandler: failed to read user slot", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read user"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(user))
	case http.MethodPost:
		var p models.UpdateUserPayload
		if !decodeBody(w, r, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		s.bus.Dispatch(models.Event{Kind: models.EventUpdateUser, Payload: p})
		writeJSONResponse(w, http.StatusAccepted, models.Accepted())
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) userRefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var p models.GetUserPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventGetUser, Payload: p})
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

func (s *Server) changePassHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var p models.ChangePassPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventChangeUserPass, Payload: p})
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

func (s *Server) resetPassHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var p models.ResetPassPayload
	if !decodeBody(w, r, &p) {
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventResetUserPass, Payload: p})
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

func (s *Server) enrollmentHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var p models.Enrollment
	if !decodeBody(w, r, &p) {
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventSetEnrollment, Payload: p})
	slog.Info("Server.enrollmentHandler: enrollment dispatched")
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

func (s *Server) complaintsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		complaints, err := s.store.GetComplaints()
		if err != nil {
			slog.Error("Server.complaintsHandler: failed to read complaints slot", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read complaints"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(complaints))
	case http.MethodPost:
		var p models.ComplaintSubmission
		if !decodeBody(w, r, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			slog.Warn("Server.complaintsHandler: validation failed", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		s.bus.Dispatch(models.Event{Kind: models.EventSetComplaint, Payload: p})
		slog.Info("Server.complaintsHandler: complaint dispatched", "photos", len(p.Photos))
		writeJSONResponse(w, http.StatusAccepted, models.Accepted())
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) submittedComplaintsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	complaints, err := s.store.GetSubmittedComplaints()
	if err != nil {
		slog.Error("Server.submittedComplaintsHandler: failed to read slot", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read submitted complaints"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(complaints))
}

func (s *Server) complaintsRefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventGetComplaints})
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

func (s *Server) newPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var p models.NewPasswordPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventNewPassword, Payload: p})
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

func (s *Server) documentsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		docs, err := s.store.GetDocuments()
		if err != nil {
			slog.Error("Server.documentsHandler: failed to read documents slot", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read documents"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(docs))
	case http.MethodPost:
		s.bus.Dispatch(models.Event{Kind: models.EventGetDocuments})
		writeJSONResponse(w, http.StatusAccepted, models.Accepted())
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) documentHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		doc, err := s.store.GetDocument()
		if err != nil {
			slog.Error("Server.documentHandler: failed to read document slot", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read document"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(doc))
	case http.MethodPost:
		var p models.GetDocumentPayload
		if !decodeBody(w, r, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		s.bus.Dispatch(models.Event{Kind: models.EventGetDocument, Payload: p})
		writeJSONResponse(w, http.StatusAccepted, models.Accepted())
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) complaintImagesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		images, err := s.store.GetComplaintImages()
		if err != nil {
			slog.Error("Server.complaintImagesHandler: failed to read images slot", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read complaint images"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(images))
	case http.MethodPost:
		var p models.ComplaintImagesPayload
		if !decodeBody(w, r, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		s.bus.Dispatch(models.Event{Kind: models.EventGetComplaintImages, Payload: p})
		writeJSONResponse(w, http.StatusAccepted, models.Accepted())
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) newsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		news, err := s.store.GetNews()
		if err != nil {
			slog.Error("Server.newsHandler: failed to read news slot", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read news"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(news))
	case http.MethodPost:
		s.bus.Dispatch(models.Event{Kind: models.EventGetNews})
		writeJSONResponse(w, http.StatusAccepted, models.Accepted())
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) alertsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		alerts, err := s.store.GetAlerts()
		if err != nil {
			slog.Error("Server.alertsHandler: failed to read alerts slot", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read alerts"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(alerts))
	case http.MethodPost:
		var p models.Alert
		if !decodeBody(w, r, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		s.bus.Dispatch(models.Event{Kind: models.EventSetAlert, Payload: p})
		slog.Info("Server.alertsHandler: alert dispatched", "kind", p.Kind)
		writeJSONResponse(w, http.StatusAccepted, models.Accepted())
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) informationHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		info, err := s.store.GetInformation()
		if err != nil {
			slog.Error("Server.informationHandler: failed to read information slot", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to read information"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(info))
	case http.MethodPost:
		s.bus.Dispatch(models.Event{Kind: models.EventGetInformation})
		writeJSONResponse(w, http.StatusAccepted, models.Accepted())
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) deviceTokenHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var p models.DeviceTokenPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	s.bus.Dispatch(models.Event{Kind: models.EventSetDeviceToken, Payload: p})
	writeJSONResponse(w, http.StatusAccepted, models.Accepted())
}

// appState is the reactive state snapshot the presentation layer polls.
type appState struct {
	Processing    bool             `json:"processing"`
	Authenticated bool             `json:"authenticated"`
	Redirect      *notify.Redirect `json:"redirect,omitempty"`
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	state := appState{
		Processing:    s.app.Processing(),
		Authenticated: s.app.Session().Authenticated(),
		Redirect:      s.recorder.Last(),
	}
	writeJSONResponse(w, http.StatusOK, models.Success(state))
}

func (s *Server) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.toaster.Drain()))
}
