package services

import (
	"encoding/json"
	"net/http"

	"github.com/mockview-ai/backend/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError renders a typed error as a stable kind plus message. Internal
// causes stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.HTTPStatus(err), map[string]string{
		"error":   string(apperrors.KindOf(err)),
		"message": apperrors.MessageOf(err),
	})
}
