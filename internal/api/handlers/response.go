package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/histolib/internal/dashboard"
	"github.com/wonny/histolib/internal/gateway"
	"github.com/wonny/histolib/internal/index"
	"github.com/wonny/histolib/internal/quiz"
)

// ⭐ SSOT: 요청 바디 검증은 이 validator 인스턴스로만
var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON decodes and validates a request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, quiz.ErrInvalidOption),
		errors.Is(err, index.ErrUnknownSortMode),
		errors.Is(err, dashboard.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrNotInProgress),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrNotAnswered):
		return http.StatusConflict
	case gateway.Kind(err) != "unknown":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
