package handle_turn

import (
	"context"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
)

// UseCase use case обработки одного хода диалога
// Реализует линейную машину состояний записи на приём: выбор врача,
// даты и времени, идентификация или регистрация пациента, подтверждение
// записи и предложение предоплаты
type UseCase struct {
	agenda      AgendaProvider
	scheduler   SchedulingClient
	payments    PaymentClient
	interpreter Interpreter // может быть nil
	payment     PaymentConfig
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	agenda AgendaProvider,
	scheduler SchedulingClient,
	payments PaymentClient,
	interpreter Interpreter,
	payment PaymentConfig,
	logger Logger,
) *UseCase {
	return &UseCase{
		agenda:      agenda,
		scheduler:   scheduler,
		payments:    payments,
		interpreter: interpreter,
		payment:     payment,
		logger:      logger,
	}
}

// Execute выполняет один ход диалога: принимает текст пользователя,
// мутирует состояние и возвращает ответ ассистента.
// Сбои интеграций не являются ошибками хода: пользователь получает
// вежливое сообщение, шаг не продвигается. Ошибка возвращается только
// при некорректном запросе.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.State == nil {
		return nil, ErrNilState
	}
	state := req.State
	text := req.Text

	// 1. Защита от prompt injection: подозрительный ввод обнуляется,
	// текущий шаг переспросит как при нераспознанном ответе
	if looksLikeInjection(text) {
		uc.logger.Warn("HandleTurn: injection pattern detected, input discarded")
		text = ""
	}

	uc.logger.Info("HandleTurn: step=%s", state.CurrentStep)

	// 2. Диспетчеризация по текущему шагу
	var reply string
	switch state.CurrentStep {
	case domain.StepStart:
		reply = uc.stepStart(state)
	case domain.StepAskDoctorPreference:
		reply = uc.stepAskDoctorPreference(ctx, state, text)
	case domain.StepAskDoctor:
		reply = uc.stepAskDoctor(ctx, state, text)
	case domain.StepAskDate:
		reply = uc.stepAskDate(state, text)
	case domain.StepAskTime:
		reply = uc.stepAskTime(state, text)
	case domain.StepAskIdentify:
		reply = uc.stepAskIdentify(ctx, state, text)
	case domain.StepAskRegister:
		reply = uc.stepAskRegister(ctx, state, text)
	case domain.StepAskConfirmAppointment:
		reply = uc.stepAskConfirmAppointment(ctx, state, text)
	case domain.StepAskPrepay:
		reply = uc.stepAskPrepay(ctx, state, text)
	default:
		// END или неизвестный шаг: вежливый перезапуск диалога
		state.CurrentStep = domain.StepAskDoctorPreference
		reply = msgGreeting
	}

	return &Response{Reply: reply, Step: state.CurrentStep}, nil
}
