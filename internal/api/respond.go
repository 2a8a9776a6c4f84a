package api

import (
	"encoding/json"
	"net/http"

	"github.com/clinicore/appointment-system/internal/booking"
)

// Result is the envelope every endpoint responds with: a success flag, a
// human-readable message, the payload on success and field errors on
// validation failure.
type Result struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message,omitempty"`
	Data    any                      `json:"data,omitempty"`
	Errors  []booking.FieldViolation `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Result{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Result{Success: false, Message: message})
}

func writeValidationFailure(w http.ResponseWriter, verr *booking.ValidationError) {
	writeJSON(w, http.StatusBadRequest, Result{
		Success: false,
		Message: "Validation failed",
		Errors:  verr.Violations,
	})
}
