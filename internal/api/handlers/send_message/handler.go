package send_message

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingAgent/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations"
	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations/models"
)

const (
	msgInvalidBody  = "некорректное тело запроса"
	msgEmptyText    = "текст сообщения обязателен"
	msgNotFound     = "беседа не найдена"
	msgInvalidInput = "некорректные данные запроса"
)

type Handler struct {
	service ConversationService
	logger  Logger
}

func NewHandler(service ConversationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/conversations/{conversationId}/messages
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	conversationID := vars["conversationId"]

	var req Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /conversations/{id}/messages - Invalid body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}
	if req.Text == "" {
		h.logger.Warn("POST /conversations/{id}/messages - Empty text: conversation_id=%s", conversationID)
		handlers.RespondBadRequest(w, msgEmptyText)
		return
	}

	resp, err := h.service.HandleMessage(r.Context(), &models.SendMessageRequest{
		ConversationID: conversationID,
		Text:           req.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, conversations.ErrConversationNotFound):
			h.logger.Warn("POST /conversations/{id}/messages - Conversation not found: conversation_id=%s", conversationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, conversations.ErrInvalidInput):
			h.logger.Warn("POST /conversations/{id}/messages - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /conversations/{id}/messages - Failed to handle message: conversation_id=%s, error=%v",
				conversationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /conversations/{id}/messages - Message handled: conversation_id=%s, step=%s",
		conversationID, resp.Step)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
