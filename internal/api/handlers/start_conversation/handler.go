package start_conversation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingAgent/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingAgent/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations"
	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidInput  = "некорректные данные запроса"
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

// Handle POST /api/v1/conversations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /conversations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	conv, err := h.service.Start(r.Context(), &models.StartConversationRequest{UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, conversations.ErrInvalidInput):
			h.logger.Warn("POST /conversations - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /conversations - Failed to start conversation: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /conversations - Conversation started: id=%s, user_id=%s", conv.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, conv)
}
