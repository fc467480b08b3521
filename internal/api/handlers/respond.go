package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

// Outcome tells the presentation layer how an operation ended
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeValidationError Outcome = "validation-error"
	OutcomeUnauthorized    Outcome = "unauthorized"
	OutcomeForbidden       Outcome = "forbidden"
	OutcomeNotFound        Outcome = "not-found"
	OutcomeDependencyError Outcome = "dependency-error"
	OutcomeInternalError   Outcome = "internal-error"
)

const msgInternal = "Something went wrong, please try again."

type successResponse struct {
	Outcome Outcome     `json:"outcome"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errorResponse struct {
	Outcome Outcome `json:"outcome"`
	Error   string  `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func respondWithSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	respondWithJSON(w, statusCode, successResponse{Outcome: OutcomeSuccess, Message: message, Data: data})
}

func respondWithError(w http.ResponseWriter, statusCode int, outcome Outcome, message string) {
	respondWithJSON(w, statusCode, errorResponse{Outcome: outcome, Error: message})
}

// respondWithAppError maps an application error to its status and outcome.
// Internal and unknown errors are logged and hidden from the caller.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, outcome := classify(apperrors.TypeOf(err))

	message := msgInternal
	if appErr, ok := asAppError(err); ok && statusCode != http.StatusInternalServerError {
		message = appErr.Message
	}

	if statusCode >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	respondWithError(w, statusCode, outcome, message)
}

func classify(errorType apperrors.ErrorType) (int, Outcome) {
	switch errorType {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest, OutcomeValidationError
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict, OutcomeValidationError
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound, OutcomeNotFound
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden, OutcomeForbidden
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized, OutcomeUnauthorized
	case apperrors.ErrorTypeDependency:
		return http.StatusBadGateway, OutcomeDependencyError
	default:
		return http.StatusInternalServerError, OutcomeInternalError
	}
}

func asAppError(err error) (*apperrors.AppError, bool) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	return nil
}
