package domain

import "time"

// MessageRole автор сообщения в диалоге
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleAgent MessageRole = "agent"
)

// Conversation одна беседа пациента с ассистентом
type Conversation struct {
	ID        string // uuid
	UserID    string // внешний идентификатор пользователя (opaque)
	CreatedAt time.Time
}

// Message одно сообщение в беседе
type Message struct {
	ID             int64
	ConversationID string
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}
