package handle_turn

import "errors"

var (
	// ErrNilState запрос без состояния диалога
	ErrNilState = errors.New("dialogue state is required")
)
