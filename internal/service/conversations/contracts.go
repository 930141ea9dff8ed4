package conversations

import (
	"context"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/internal/usecase/handle_turn"
)

// ConversationRepository интерфейс репозитория бесед
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error)
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	AddMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error)
}

// StateRepository интерфейс репозитория снимков состояния диалога
type StateRepository interface {
	Upsert(ctx context.Context, conversationID string, s *domain.DialogueState) error
	GetByConversationID(ctx context.Context, conversationID string) (*domain.DialogueState, error)
}

// TurnHandler интерфейс use case обработки хода диалога
type TurnHandler interface {
	Execute(ctx context.Context, req *handle_turn.Request) (*handle_turn.Response, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
