package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mBrond/chat-medicamentos/internal/application/services"
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

const maxChatBody = 64 << 10

// ChatReplier answers one validated chat message
type ChatReplier interface {
	Reply(ctx context.Context, text string, intent entities.Intent) (*services.ChatReply, error)
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Text   string `json:"text"`
	Intent string `json:"intent"`
}

// ChatHandler handles the chat endpoint
type ChatHandler struct {
	chat   ChatReplier
	bounds services.CodeBounds
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatReplier, bounds services.CodeBounds) *ChatHandler {
	return &ChatHandler{chat: chat, bounds: bounds}
}

// Chat handles POST /chat. Validation failures and "not found" outcomes are
// regular 200 replies carrying "erro"; only transport and dataset failures
// use error statuses.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := observability.LoggerFromContext(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, err := services.ValidateQuery(req.Text, req.Intent, h.bounds)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithJSON(w, http.StatusOK, &services.ChatReply{
				Error:   appErr.Message,
				Latency: time.Since(start).Seconds(),
			})
			return
		}
		respondWithAppError(w, err)
		return
	}

	reply, err := h.chat.Reply(r.Context(), req.Text, intent)
	if err != nil {
		logger.Error().Err(err).Str("intent", string(intent)).Msg("chat reply failed")
		respondWithAppError(w, err)
		return
	}

	out := *reply
	out.Latency = time.Since(start).Seconds()
	respondWithJSON(w, http.StatusOK, &out)
}
