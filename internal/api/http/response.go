package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"

	"github.com/gorilla/mux"
)

type errorResponse struct {
	Error         string     `json:"error"`
	Code          string     `json:"code"`
	NextAvailable *time.Time `json:"next_available,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// statusFor maps an engine error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeDuplicateRental, domain.ErrCodeNoInventory:
		return http.StatusConflict
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeChargeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := statusFor(code)
	body := errorResponse{Error: err.Error(), Code: code}

	var ne *domain.NoInventoryError
	if errors.As(err, &ne) {
		body.NextAvailable = ne.NextAvailable
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "code", code,
			"request_id", RequestIDFrom(r.Context()), "error", err)
		if code == domain.ErrCodeStorage {
			body.Error = "internal storage error"
		}
	}
	writeJSON(w, status, body)
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return int32(id), nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("body", err.Error())
	}
	return nil
}
