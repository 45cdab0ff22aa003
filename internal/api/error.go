package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"overhead/internal/notify"
)

// User-facing failure messages. The 401 sentinel body is part of the
// backend contract.
const (
	invalidCredentialsBody = "Invalid credentials or API key."

	MsgFailedToConnect     = "Failed to connect to the server. Please check your internet connection or try again later."
	MsgServerNotResponding = "The server is not responding. Please try again later."
	MsgInvalidCredentials  = "Invalid credentials."
	MsgUserNotFound        = "This username is not found in the database."
	MsgUnknown             = "An unknown error occurred. Please try again later."
	MsgSessionExpired      = "Session expired, please, log in again"
)

// Error is a failed backend call. Err is set when the request never
// produced a response (connection refused, timeout); otherwise Status and
// the raw body describe the rejection.
type Error struct {
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api: transport failure: %v", e.Err)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// JSONMessage extracts a structured message or error field from the body,
// for endpoints that wrap their failure text in JSON.
func (e *Error) JSONMessage() string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal([]byte(e.Body), &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return ""
}

// Translate classifies a failed call into the user-facing message. It never
// touches session or view state; session reactions stay with the caller.
func Translate(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return MsgUnknown
	}
	switch {
	case apiErr.Err != nil:
		return MsgFailedToConnect
	case apiErr.Status == 0:
		return MsgServerNotResponding
	case apiErr.Status == 401 && apiErr.Body == invalidCredentialsBody:
		return MsgInvalidCredentials
	case apiErr.Status == 401:
		return MsgUserNotFound
	case apiErr.Body != "":
		return apiErr.Body
	default:
		return MsgUnknown
	}
}

// Translator forwards classified failures to the popup channel and logs
// the raw error.
type Translator struct {
	Popups *notify.Notifier
	Logger *slog.Logger
}

func (t *Translator) Handle(err error) {
	msg := Translate(err)
	t.Logger.Error("api call failed", "error", err)
	t.Popups.Show(msg)
}
