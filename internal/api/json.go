package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error   string            `json:"error" validate:"required"`
	Details map[string]string `json:"details,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// invalidBody builds the 422 response for a rejected document. Field rule
// violations land in details, with nested front matter errors merged one
// level so field names key directly; parse errors keep Error as the bare
// diagnostic.
func invalidBody(err error) errResponse {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return errResponse{Error: err.Error()}
	}
	resp := errResponse{
		Error:   "document failed validation",
		Details: make(map[string]string, len(verrs)),
	}
	for field, ferr := range verrs {
		if nested, ok := ferr.(validation.Errors); ok {
			for k, v := range nested {
				resp.Details[k] = v.Error()
			}
			continue
		}
		resp.Details[field] = ferr.Error()
	}
	return resp
}
