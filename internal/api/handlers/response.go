package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// statusForError maps AppError types to HTTP statuses
func statusForError(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeDataLoad:
		return http.StatusServiceUnavailable
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondWithAppError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := "internal server error"

	var appErr *apperrors.AppError
	switch {
	case status == http.StatusServiceUnavailable:
		message = "medication dataset unavailable"
	case status != http.StatusInternalServerError && errors.As(err, &appErr):
		message = appErr.Message
	}
	respondWithError(w, status, message)
}
