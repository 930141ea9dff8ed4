package get_transcript

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingAgent/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations"
)

const msgNotFound = "беседа не найдена"

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

// Handle GET /api/v1/conversations/{conversationId}/messages
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	conversationID := vars["conversationId"]

	transcript, err := h.service.GetTranscript(r.Context(), conversationID)
	if err != nil {
		switch {
		case errors.Is(err, conversations.ErrConversationNotFound):
			h.logger.Warn("GET /conversations/{id}/messages - Conversation not found: conversation_id=%s", conversationID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /conversations/{id}/messages - Failed to get transcript: conversation_id=%s, error=%v",
				conversationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /conversations/{id}/messages - Transcript retrieved: conversation_id=%s, messages=%d",
		conversationID, len(transcript.Messages))
	handlers.RespondJSON(w, http.StatusOK, transcript)
}
