package models

import (
	"strings"
	"testing"
)

func TestSessionAuthenticated(t *testing.T) {
	var s Session
	if s.Authenticated() {
		t.Error("empty session should not be authenticated")
	}
	s.AuthToken = "T1"
	if !s.Authenticated() {
		t.Error("session with token should be authenticated")
	}
}

func TestLoginPayloadValidate(t *testing.T) {
	cases := []struct {
		name    string
		payload LoginPayload
		wantErr error
	}{
		{"valid", LoginPayload{Username: "a", Password: "b"}, nil},
		{"missing username", LoginPayload{Password: "b"}, ErrEmptyUsername},
		{"missing password", LoginPayload{Username: "a"}, ErrEmptyPassword},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.payload.Validate(); err != c.wantErr {
				t.Errorf("expected %v, got %v", c.wantErr, err)
			}
		})
	}
}

func TestComplaintSubmissionValidate(t *testing.T) {
	sub := ComplaintSubmission{Values: map[string]string{"description": "broken equipment"}}
	if err := sub.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	empty := ComplaintSubmission{Values: map[string]string{}}
	if err := empty.Validate(); err != ErrEmptyComplaintBody {
		t.Errorf("expected ErrEmptyComplaintBody, got %v", err)
	}

	long := ComplaintSubmission{Values: map[string]string{"description": strings.Repeat("x", MaxComplaintBodyLength+1)}}
	if err := long.Validate(); err != ErrComplaintTooLong {
		t.Errorf("expected ErrComplaintTooLong, got %v", err)
	}

	many := ComplaintSubmission{
		Values: map[string]string{"description": "d"},
		Photos: make([]Photo, MaxComplaintPhotos+1),
	}
	if err := many.Validate(); err != ErrTooManyPhotos {
		t.Errorf("expected ErrTooManyPhotos, got %v", err)
	}
}

func TestIsValidAlertKind(t *testing.T) {
	for _, k := range []AlertKind{AlertAccident, AlertCrash, AlertStore, AlertTraffic, AlertTheft, AlertOther} {
		if !IsValidAlertKind(k) {
			t.Errorf("kind %q should be valid", k)
		}
	}
	if IsValidAlertKind("earthquake") {
		t.Error("unknown kind should be invalid")
	}
}

func TestChangePassPayloadValidate(t *testing.T) {
	if err := (ChangePassPayload{Current: "old", New: "short"}).Validate(); err != ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := (ChangePassPayload{Current: "oldpassword", New: "newpassword"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewPasswordPayloadValidate(t *testing.T) {
	cases := []struct {
		name    string
		payload NewPasswordPayload
		wantErr error
	}{
		{"valid", NewPasswordPayload{Token: "tk", Password: "longenough"}, nil},
		{"missing token", NewPasswordPayload{Password: "longenough"}, ErrEmptyResetToken},
		{"missing password", NewPasswordPayload{Token: "tk"}, ErrEmptyPassword},
		{"short password", NewPasswordPayload{Token: "tk", Password: "short"}, ErrPasswordTooShort},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.payload.Validate(); err != c.wantErr {
				t.Errorf("expected %v, got %v", c.wantErr, err)
			}
		})
	}
}

func TestFetchPayloadValidate(t *testing.T) {
	if err := (GetDocumentPayload{}).Validate(); err != ErrMissingDocumentID {
		t.Errorf("expected ErrMissingDocumentID, got %v", err)
	}
	if err := (GetDocumentPayload{ID: 7}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (ComplaintImagesPayload{}).Validate(); err != ErrMissingComplaintID {
		t.Errorf("expected ErrMissingComplaintID, got %v", err)
	}
	if err := (ComplaintImagesPayload{ComplaintID: "c1"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAPIResponseHelpers(t *testing.T) {
	if r := Error("boom"); r.Status != string(APIStatusError) || r.Message != "boom" {
		t.Errorf("unexpected error response: %+v", r)
	}
	if r := Accepted(); r.Status != string(APIStatusAccepted) {
		t.Errorf("unexpected accepted response: %+v", r)
	}
	if r := Success(42); r.Status != string(APIStatusOK) || r.Result != 42 {
		t.Errorf("unexpected success response: %+v", r)
	}
}
