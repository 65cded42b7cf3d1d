package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"familybank/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, code string) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

// writeLedgerError maps domain errors to HTTP statuses. Rule violations
// come back as 422 with a stable code; missing entities as 404.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, err, "invalid_amount")
	case errors.Is(err, core.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, err, "insufficient_funds")
	case errors.Is(err, core.ErrUnknownCategory):
		writeError(w, http.StatusUnprocessableEntity, err, "unknown_category")
	case errors.Is(err, core.ErrUnknownKind):
		writeError(w, http.StatusUnprocessableEntity, err, "unknown_kind")
	case errors.Is(err, core.ErrInvalidRate):
		writeError(w, http.StatusUnprocessableEntity, err, "invalid_rate")
	case errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, err, "invalid_date")
	case errors.Is(err, core.ErrChildNotFound),
		errors.Is(err, core.ErrTransactionNotFound),
		errors.Is(err, core.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, err, "not_found")
	default:
		writeError(w, http.StatusInternalServerError, err, "internal")
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
