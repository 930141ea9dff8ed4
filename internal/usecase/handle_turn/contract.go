package handle_turn

import (
	"context"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/asaas"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/klingo"
)

// AgendaProvider интерфейс источника сокращенной агенды (кэш поверх Klingo)
type AgendaProvider interface {
	Reduced(ctx context.Context) (*domain.ReducedAgenda, error)
}

// SchedulingClient интерфейс клиента Klingo для работы с пациентами и записью
type SchedulingClient interface {
	IdentifyPatient(ctx context.Context, phone, birthDateISO string) (string, error)
	RegisterPatient(ctx context.Context, data klingo.RegisterData) (int64, error)
	LoginPatient(ctx context.Context, patientID int64) (string, error)
	CreateAppointment(ctx context.Context, token, slotID string) error
}

// PaymentClient интерфейс клиента Asaas для создания ссылки на оплату
type PaymentClient interface {
	CreatePaymentLink(ctx context.Context, req asaas.PaymentRequest) (*asaas.PaymentLink, error)
}

// Interpreter опциональный LLM-помощник для распознавания имени врача,
// когда детерминированное извлечение не сработало. Может быть nil.
type Interpreter interface {
	ResolveDoctorName(ctx context.Context, text string, candidates []string) (string, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
