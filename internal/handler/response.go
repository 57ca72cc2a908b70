package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kamdem/boutique-service/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation: http.StatusBadRequest,
	apperr.KindAuth:       http.StatusUnauthorized,
	apperr.KindNotFound:   http.StatusNotFound,
	apperr.KindConflict:   http.StatusConflict,
	apperr.KindStorage:    http.StatusInternalServerError,
}

// writeError maps the error taxonomy onto HTTP statuses. Storage
// failures keep their generic client message; the cause only goes to
// the log.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if kind == apperr.KindStorage {
		h.log.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.MessageOf(err)})
}
