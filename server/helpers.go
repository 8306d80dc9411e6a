package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const bodyLimit = 1 << 20 // 1 MiB

type errorResponse struct {
	Error string `json:"error"`
}

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return v, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeInternalError logs the actual error server-side and returns a generic
// message to the client.
func writeInternalError(w http.ResponseWriter, log *slog.Logger, err error) {
	log.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
