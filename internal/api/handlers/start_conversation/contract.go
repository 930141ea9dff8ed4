package start_conversation

import (
	"context"

	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations/models"
)

type ConversationService interface {
	Start(ctx context.Context, req *models.StartConversationRequest) (*models.ConversationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
