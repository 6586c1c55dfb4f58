package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gremialdev/memberflow/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler, session models.Session) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(
		WithBaseURL(srv.URL),
		WithSessionProvider(func() models.Session { return session }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Error("expected error when base URL is missing")
	}
}

func TestLogin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["username"] != "a" || body["password"] != "b" {
			t.Errorf("unexpected credentials: %v", body)
		}
		json.NewEncoder(w).Encode(models.AuthResult{Token: "T1", UserID: 42, Cookie: "sid=1"})
	})
	c := newTestClient(t, handler, models.Session{})

	res, err := c.Login(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != "T1" || res.UserID != 42 || res.Cookie != "sid=1" {
		t.Errorf("unexpected auth result: %+v", res)
	}
}

func TestLoginFailureCarriesBackendMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "wrong credentials"})
	})
	c := newTestClient(t, handler, models.Session{})

	_, err := c.Login(context.Background(), "a", "bad")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "backend returned 401: wrong credentials" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestAuthorizedRequestCarriesSessionHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer T1" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		if got := r.Header.Get("Cookie"); got != "sid=1" {
			t.Errorf("unexpected Cookie header: %q", got)
		}
		json.NewEncoder(w).Encode(models.User{ID: 42, Name: "A"})
	})
	c := newTestClient(t, handler, models.Session{AuthToken: "T1", Cookie: "sid=1"})

	user, err := c.GetUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "A" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestUpdateUserFalsyResult(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		// Backend accepts the call but rejects the update.
		w.Write([]byte(`{}`))
	})
	c := newTestClient(t, handler, models.Session{})

	user, err := c.UpdateUser(context.Background(), 42, map[string]string{"name": "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected falsy (nil) result, got %+v", user)
	}
}

func TestSetComplaintFileMultipartUpload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/files" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected multipart file: %v", err)
		}
		defer file.Close()
		if header.Filename != "photo1.jpg" {
			t.Errorf("unexpected filename: %s", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]string{"fid": "f1"})
	})
	c := newTestClient(t, handler, models.Session{})

	fid, err := c.SetComplaintFile(context.Background(), models.Photo{Name: "photo1.jpg", Data: []byte("jpegdata")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fid != "f1" {
		t.Errorf("expected fid f1, got %q", fid)
	}
}

func TestPatchComplaint(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Values  map[string]string `json:"values"`
			FileIDs []string          `json:"file_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.FileIDs) != 1 || body.FileIDs[0] != "f1" {
			t.Errorf("unexpected file ids: %v", body.FileIDs)
		}
		json.NewEncoder(w).Encode(models.Complaint{ID: "c1", FileIDs: body.FileIDs})
	})
	c := newTestClient(t, handler, models.Session{})

	complaint, err := c.PatchComplaint(context.Background(), map[string]string{"description": "d"}, []string{"f1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if complaint == nil || complaint.ID != "c1" {
		t.Errorf("unexpected complaint: %+v", complaint)
	}
}

func TestGetComplaintImagesEscapesComplaintID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/complaints/c one/images" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]models.Image{{ID: "i1", URL: "https://cdn/1.jpg"}})
	})
	c := newTestClient(t, handler, models.Session{})

	images, err := c.GetComplaintImages(context.Background(), "c one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 1 || images[0].ID != "i1" {
		t.Errorf("unexpected images: %+v", images)
	}
}

func TestNewPasswordSendsTokenAndPassword(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/password/new" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["token"] != "tk" || body["password"] != "longenough" {
			t.Errorf("unexpected body: %v", body)
		}
		w.WriteHeader(http.StatusOK)
	})
	c := newTestClient(t, handler, models.Session{})

	if err := c.NewPassword(context.Background(), "tk", "longenough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetDocument(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents/7" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.Document{ID: 7, Title: "Estatuto"})
	})
	c := newTestClient(t, handler, models.Session{})

	doc, err := c.GetDocument(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != 7 || doc.Title != "Estatuto" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestContextCancellationAbortsCall(t *testing.T) {
	block := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	defer close(block)
	c := newTestClient(t, handler, models.Session{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.GetComplaints(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}
