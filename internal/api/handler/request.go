package handler

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"todo_server/internal/common"
)

const maxBodyBytes = 1 << 20

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

// decodeBody fills dst from a JSON body, or calls fromForm with the parsed
// form when the body is url-encoded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fromForm func(r *http.Request)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if fromForm != nil && isForm(r) {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("failed to parse form data: %w", err)
		}
		fromForm(r)
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}
	return nil
}

func respondBadPayload(w http.ResponseWriter, err error) {
	common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload", err.Error())
}

// todoIDParam parses the todo_id segment. A malformed id names no todo, so it
// is reported like a missing one.
func todoIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "todo_id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
