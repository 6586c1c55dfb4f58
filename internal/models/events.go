// Package models defines the core data structures for MemberFlow.
//
// This file declares the request event kinds consumed by the workflow
// engine and their kind-specific payloads.
package models

// EventKind names a request event consumed by exactly one watcher.
type EventKind string

const (
	// EventLoginRequest asks the auth watcher to authenticate a member.
	EventLoginRequest EventKind = "LOGIN_REQUEST"
	// EventLogoutRequest asks the auth watcher to end the session. It also
	// cancels a concurrently running login attempt (first wins).
	EventLogoutRequest EventKind = "LOGOUT_REQUEST"
	// EventUpdateUser asks the profile watcher to patch the member record.
	EventUpdateUser EventKind = "UPDATE_USER"
	// EventGetUser asks for a refresh of the member record.
	EventGetUser EventKind = "GET_USER"
	// EventSetEnrollment submits an enrollment request.
	EventSetEnrollment EventKind = "SET_ENROLLMENT"
	// EventSetComplaint submits a complaint with optional photo attachments.
	EventSetComplaint EventKind = "SET_COMPLAINT"
	// EventChangeUserPass changes the member's password.
	EventChangeUserPass EventKind = "CHANGE_USER_PASS"
	// EventResetUserPass starts a password reset for a member.
	EventResetUserPass EventKind = "RESET_USER_PASS"
	// EventGetComplaints asks for a refresh of the complaint list.
	EventGetComplaints EventKind = "GET_COMPLAINTS"
	// EventGetInformation asks for a refresh of the information record.
	EventGetInformation EventKind = "GET_INFORMATION"
	// EventGetNews asks for a refresh of the news feed.
	EventGetNews EventKind = "GET_NEWS"
	// EventGetAlerts asks for a refresh of the incident alert map.
	EventGetAlerts EventKind = "GET_ALERTS"
	// EventSetAlert publishes a new incident alert.
	EventSetAlert EventKind = "SET_ALERT"
	// EventSetDeviceToken registers the device's push notification token.
	EventSetDeviceToken EventKind = "SET_DEVICE_TOKEN"
	// EventGetDocuments asks for a refresh of the document library.
	EventGetDocuments EventKind = "GET_DOCUMENTS"
	// EventGetDocument asks for one document by ID. Opening another document
	// supersedes an in-flight fetch.
	EventGetDocument EventKind = "GET_DOCUMENT"
	// EventGetComplaintImages asks for the image attachments of one
	// complaint. Viewing another complaint supersedes an in-flight fetch.
	EventGetComplaintImages EventKind = "GET_COMPLAINT_IMAGES"
	// EventNewPassword completes a password reset with the emailed token.
	EventNewPassword EventKind = "NEW_PASSWORD"
)

// Event is a request event delivered via the bus. Each event is consumed
// exactly once by the watcher registered for its kind.
type Event struct {
	Kind    EventKind
	Payload interface{}
}

// LoginPayload carries the credentials of a LOGIN_REQUEST.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the login payload before dispatch.
func (p LoginPayload) Validate() error {
	if p.Username == "" {
		return ErrEmptyUsername
	}
	if p.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// GetUserPayload carries a GET_USER refresh request.
type GetUserPayload struct {
	ID int64 `json:"id"`
}

// Validate checks the fetch payload before dispatch.
func (p GetUserPayload) Validate() error {
	if p.ID == 0 {
		return ErrMissingUserID
	}
	return nil
}

// UpdateUserPayload carries an UPDATE_USER request.
type UpdateUserPayload struct {
	ID     int64             `json:"id"`
	Values map[string]string `json:"values"`
}

// Validate checks the update payload before dispatch.
func (p UpdateUserPayload) Validate() error {
	if p.ID == 0 {
		return ErrMissingUserID
	}
	return nil
}

// ChangePassPayload carries a CHANGE_USER_PASS request.
type ChangePassPayload struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

// Validate checks the change-password payload before dispatch.
func (p ChangePassPayload) Validate() error {
	if p.Current == "" || p.New == "" {
		return ErrEmptyPassword
	}
	if len(p.New) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ResetPassPayload carries a RESET_USER_PASS request.
type ResetPassPayload struct {
	Email string `json:"email"`
}

// GetDocumentPayload carries a GET_DOCUMENT request.
type GetDocumentPayload struct {
	ID int64 `json:"id"`
}

// Validate checks the document fetch payload before dispatch.
func (p GetDocumentPayload) Validate() error {
	if p.ID == 0 {
		return ErrMissingDocumentID
	}
	return nil
}

// ComplaintImagesPayload carries a GET_COMPLAINT_IMAGES request.
type ComplaintImagesPayload struct {
	ComplaintID string `json:"complaint_id"`
}

// Validate checks the complaint images payload before dispatch.
func (p ComplaintImagesPayload) Validate() error {
	if p.ComplaintID == "" {
		return ErrMissingComplaintID
	}
	return nil
}

// NewPasswordPayload carries a NEW_PASSWORD request: the token from the
// reset email plus the replacement password.
type NewPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate checks the new-password payload before dispatch.
func (p NewPasswordPayload) Validate() error {
	if p.Token == "" {
		return ErrEmptyResetToken
	}
	if p.Password == "" {
		return ErrEmptyPassword
	}
	if len(p.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// DeviceTokenPayload carries a SET_DEVICE_TOKEN request.
type DeviceTokenPayload struct {
	Token string `json:"token"`
}

// Validate checks the device token payload before dispatch.
func (p DeviceTokenPayload) Validate() error {
	if p.Token == "" {
		return ErrEmptyDeviceToken
	}
	return nil
}
