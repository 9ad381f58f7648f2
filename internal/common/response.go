package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/oops"
)

type ErrorResponse struct {
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message, detail string) {
	RespondWithJSON(w, code, ErrorResponse{Msg: message, Detail: detail})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"msg": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithDomainError writes err with the status HTTPStatusFromError picks.
// Internal causes are logged and replaced by their public operator message.
func RespondWithDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := HTTPStatusFromError(err)
	if code >= http.StatusInternalServerError {
		LogError(r.Context(), logger, "request failed", err)
		RespondWithError(w, code, PublicMessage(err), "")
		return
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		RespondWithError(w, code, "validation error", validationErr.Summary)
		return
	}
	if errors.Is(err, ErrNotFound) {
		RespondWithError(w, code, "not found", "")
		return
	}
	RespondWithError(w, code, err.Error(), "")
}

// PublicMessage returns the operator-facing message attached with oops.Public,
// or a generic one.
func PublicMessage(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Public() != "" {
		return oopsErr.Public()
	}
	return ErrInternalServer.Error()
}
