package asaas

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("asaas client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("asaas client: invalid response")

	// ErrNoInvoiceURL возвращается, когда платеж создан, но ссылки на оплату нет
	ErrNoInvoiceURL = errors.New("asaas client: payment created without invoice url")
)
