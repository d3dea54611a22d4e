package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/webkit/pkg/api"
)

// responder общие методы ответа для всех handlers
type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, api.ErrorResponse{Error: message}, statusCode)
}

// sendErrorMessage отправляет ошибку с сообщением для пользователя
func (h responder) sendErrorMessage(w http.ResponseWriter, message, userMessage string, statusCode int) {
	h.sendJSON(w, api.ErrorResponse{Error: message, Message: userMessage}, statusCode)
}
