package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
)

func TestWriteMapsKnownErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", Validation("date is required"), 400, "validation_error"},
		{"not found", NotFound("appointment not found"), 404, "not_found"},
		{"conflict", Conflict("slot already booked"), 409, "conflict"},
		{"state", State("appointment not found or already finalized"), 404, "state_error"},
		{"wrapped in fmt", fmt.Errorf("booking: %w", Conflict("slot already booked")), 409, "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, nil, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body Error
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestWriteHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, nil, errors.New("pq: connection refused at 10.0.0.3"))

	if rec.Code != 500 {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body Error
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "internal server error" {
		t.Errorf("message %q leaks internal detail", body.Message)
	}
}

func TestWrapKeepsMappingAndCause(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := Conflict("slot already booked").Wrap(cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}

	rec := httptest.NewRecorder()
	Write(rec, nil, err)
	if rec.Code != 409 {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}
