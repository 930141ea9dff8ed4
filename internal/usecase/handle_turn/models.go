package handle_turn

import "github.com/m04kA/SMC-SchedulingAgent/internal/domain"

// Request входные данные одного хода диалога
// State принадлежит вызывающему и мутируется use case'ом
type Request struct {
	State *domain.DialogueState
	Text  string
}

// Response результат хода: ответ ассистента и шаг после перехода
type Response struct {
	Reply string
	Step  domain.Step
}

// PaymentConfig параметры предоплаты консультации
type PaymentConfig struct {
	Value       float64
	Description string
}
