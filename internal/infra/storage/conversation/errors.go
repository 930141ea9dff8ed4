package conversation

import "errors"

var (
	// ErrConversationNotFound возвращается, когда беседа не найдена
	ErrConversationNotFound = errors.New("conversation.repository: conversation not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("conversation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("conversation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("conversation.repository: failed to scan row")
)
