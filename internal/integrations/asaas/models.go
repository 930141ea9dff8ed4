package asaas

// PaymentRequest данные для создания платежа
// Asaas вызывается без привязки к пациенту: платеж идентифицируется
// только суммой и описанием
type PaymentRequest struct {
	Value       float64
	Description string
}

// paymentBody тело запроса POST /payments
type paymentBody struct {
	BillingType      string  `json:"billingType"`
	ChargeType       string  `json:"chargeType"`
	Value            float64 `json:"value"`
	Description      string  `json:"description"`
	DueDateLimitDays int     `json:"dueDateLimitDays"`
}

// paymentResponse ответ Asaas на создание платежа
type paymentResponse struct {
	ID          string `json:"id"`
	InvoiceURL  string `json:"invoiceUrl"`
	BankSlipURL string `json:"bankSlipUrl"`
}

// PaymentLink созданный платеж: идентификатор и ссылка для оплаты
type PaymentLink struct {
	PaymentID  string
	InvoiceURL string
}
