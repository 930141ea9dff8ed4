package conversations

import "errors"

var (
	// ErrConversationNotFound возвращается, когда беседа не найдена
	ErrConversationNotFound = errors.New("conversations.service: conversation not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("conversations.service: invalid input")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("conversations.service: internal error")
)
