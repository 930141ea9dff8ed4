package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
)

// StartConversationRequest запрос на создание беседы
type StartConversationRequest struct {
	UserID string
}

// ConversationResponse созданная беседа и первая реплика ассистента
type ConversationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Reply     string    `json:"reply"`
	Step      string    `json:"step"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest сообщение пользователя
type SendMessageRequest struct {
	ConversationID string
	Text           string
}

// MessageResponse ответ ассистента на один ход диалога
type MessageResponse struct {
	Reply string `json:"reply"`
	Step  string `json:"step"`
}

// MessageItem одно сообщение в выписке беседы
type MessageItem struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptResponse полная выписка беседы
type TranscriptResponse struct {
	ConversationID string        `json:"conversation_id"`
	UserID         string        `json:"user_id"`
	Messages       []MessageItem `json:"messages"`
}

// FromDomainMessages конвертирует сообщения домена в ответ API
func FromDomainMessages(conv *domain.Conversation, msgs []*domain.Message) *TranscriptResponse {
	items := make([]MessageItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, MessageItem{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return &TranscriptResponse{
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		Messages:       items,
	}
}
