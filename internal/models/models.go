// Package models defines the core data structures for MemberFlow.
//
// It includes the session, member, complaint, alert and news types shared
// across the bus, flow, gateway, store and api modules.
package models

import (
	"errors"
	"time"
)

// Validation constants for input validation
const (
	// MaxComplaintPhotos defines the maximum number of photos accepted per complaint
	MaxComplaintPhotos = 10
	// MaxComplaintBodyLength defines the maximum allowed length for complaint descriptions
	MaxComplaintBodyLength = 4096
	// MinPasswordLength defines the minimum allowed length for member passwords
	MinPasswordLength = 8
)

// Error variables for better error handling and testability
var (
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrPasswordTooShort   = errors.New("password is shorter than the minimum length")
	ErrMissingUserID      = errors.New("user id is required")
	ErrEmptyComplaintBody = errors.New("complaint description cannot be empty")
	ErrComplaintTooLong   = errors.New("complaint description exceeds maximum length")
	ErrTooManyPhotos      = errors.New("too many photos attached to complaint")
	ErrInvalidAlertKind   = errors.New("invalid alert kind")
	ErrEmptyDeviceToken   = errors.New("device token cannot be empty")
	ErrMissingDocumentID  = errors.New("document id is required")
	ErrMissingComplaintID = errors.New("complaint id is required")
	ErrEmptyResetToken    = errors.New("reset token cannot be empty")
)

// Session holds the process-wide credentials of the authenticated member.
// AuthToken and Cookie are set together on successful login and cleared
// together on logout; no other code path mutates them.
type Session struct {
	AuthToken   string `json:"auth_token,omitempty"`
	LogoutToken string `json:"logout_token,omitempty"`
	Cookie      string `json:"cookie,omitempty"`
}

// Authenticated reports whether the session carries a usable auth token.
func (s Session) Authenticated() bool {
	return s.AuthToken != ""
}

// AuthResult is the backend's answer to a successful login call.
type AuthResult struct {
	Token       string `json:"token"`
	LogoutToken string `json:"logout_token,omitempty"`
	Cookie      string `json:"cookie,omitempty"`
	UserID      int64  `json:"user_id"`
}

// User represents a union member's profile record.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	MemberNum string `json:"member_num,omitempty"`
	Branch    string `json:"branch,omitempty"`
}

// Photo is a file attachment captured by the presentation layer.
type Photo struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// ComplaintSubmission carries the form values and photo attachments of one
// SET_COMPLAINT request. It is transient: it exists only for the duration of
// a single submission workflow run.
type ComplaintSubmission struct {
	Values map[string]string `json:"values"`
	Photos []Photo           `json:"photos,omitempty"`
}

// Validate checks a complaint submission before it is dispatched.
func (c ComplaintSubmission) Validate() error {
	body := c.Values["description"]
	if body == "" {
		return ErrEmptyComplaintBody
	}
	if len(body) > MaxComplaintBodyLength {
		return ErrComplaintTooLong
	}
	if len(c.Photos) > MaxComplaintPhotos {
		return ErrTooManyPhotos
	}
	return nil
}

// Complaint is a complaint record as returned by the backend.
type Complaint struct {
	ID        string            `json:"id"`
	Values    map[string]string `json:"values,omitempty"`
	FileIDs   []string          `json:"file_ids,omitempty"`
	Status    string            `json:"status,omitempty"`
	CreatedAt time.Time         `json:"created_at,omitempty"`
}

// AlertKind classifies an incident alert shown on the map.
type AlertKind string

const (
	AlertAccident AlertKind = "accident"
	AlertCrash    AlertKind = "crash"
	AlertStore    AlertKind = "store"
	AlertTraffic  AlertKind = "traffic"
	AlertTheft    AlertKind = "theft"
	AlertOther    AlertKind = "other"
)

// IsValidAlertKind checks if the given alert kind is supported.
func IsValidAlertKind(k AlertKind) bool {
	switch k {
	case AlertAccident, AlertCrash, AlertStore, AlertTraffic, AlertTheft, AlertOther:
		return true
	default:
		return false
	}
}

// Alert is an incident alert pinned to the map.
type Alert struct {
	ID          string    `json:"id"`
	Kind        AlertKind `json:"kind"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Validate checks an alert before it is dispatched.
func (a Alert) Validate() error {
	if !IsValidAlertKind(a.Kind) {
		return ErrInvalidAlertKind
	}
	return nil
}

// NewsItem is one entry of the news feed.
type NewsItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Published time.Time `json:"published,omitempty"`
}

// Document is one entry of the union's document library (statutes,
// collective agreements, forms).
type Document struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Body      string    `json:"body,omitempty"`
	Published time.Time `json:"published,omitempty"`
}

// Image is one hosted image attachment of a complaint.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Information is the static informational record (contact data, benefits,
// office hours) the app shows on its information screen.
type Information struct {
	Values map[string]string `json:"values"`
}

// Enrollment carries the form values of an enrollment request.
type Enrollment struct {
	Values map[string]string `json:"values"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusAccepted indicates a request event was accepted for processing.
	APIStatusAccepted APIStatus = "accepted"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// Accepted creates an accepted API response for dispatched request events.
func Accepted() APIResponse {
	return APIResponse{Status: string(APIStatusAccepted)}
}
