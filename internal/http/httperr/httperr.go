package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/velvetrow/salonbook/pkg/logging"
)

// Error is a domain error that knows its HTTP mapping. Handlers return these
// from services/repositories and pass them to Write at the request boundary.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation reports missing or malformed input (HTTP 400).
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: msg}
}

// NotFound reports an absent referenced entity (HTTP 404).
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: msg}
}

// Conflict reports a uniqueness violation such as a double booking (HTTP 409).
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Message: msg}
}

// Unauthorized reports failed or missing authentication (HTTP 401).
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: msg}
}

// State reports a transition attempted from a terminal or wrong state.
// Mapped to 404 to match the "not found or already finalized" contract.
func State(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "state_error", Message: msg}
}

// Wrap attaches a cause for logging while keeping the client-facing mapping.
func (e *Error) Wrap(err error) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: e.Message, cause: err}
}

// Write maps err to its HTTP response. Unrecognized errors become a generic
// 500 with no internal detail leaked.
func Write(w http.ResponseWriter, logger *logging.Logger, err error) {
	var herr *Error
	if errors.As(err, &herr) {
		if herr.Status >= http.StatusInternalServerError && logger != nil {
			logger.Error("internal error", "code", herr.Code, "error", err)
		}
		JSON(w, herr.Status, herr)
		return
	}
	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	JSON(w, http.StatusInternalServerError, &Error{
		Code:    "internal_error",
		Message: "internal server error",
	})
}

// JSON writes v as an application/json response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
