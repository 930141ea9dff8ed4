package get_transcript

import (
	"context"

	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations/models"
)

type ConversationService interface {
	GetTranscript(ctx context.Context, conversationID string) (*models.TranscriptResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
