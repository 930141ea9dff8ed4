package send_message

import (
	"context"

	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations/models"
)

type ConversationService interface {
	HandleMessage(ctx context.Context, req *models.SendMessageRequest) (*models.MessageResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
