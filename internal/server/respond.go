package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
)

// errorBody is the JSON error envelope. details appears only on 5xx
// responses and carries the raw underlying message; 400s never include it.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps err to a status and envelope. The error field is never
// empty: "Failed" stands in only when the error itself carries no message.
func respondError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)

	msg := err.Error()
	if msg == "" {
		msg = "Failed"
	}

	body := errorBody{Error: msg}
	if status >= http.StatusInternalServerError {
		if cause := rootMessage(err); cause != "" && cause != msg {
			body.Details = cause
		}
	}
	respondJSON(w, status, body)
}

// respondFailure emits a 500 with a fixed error string and the underlying
// message as details.
func respondFailure(w http.ResponseWriter, label string, err error) {
	respondJSON(w, http.StatusInternalServerError, errorBody{
		Error:   label,
		Details: err.Error(),
	})
}

// rootMessage walks to the innermost error's text.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid JSON body", err)
	}
	return nil
}
