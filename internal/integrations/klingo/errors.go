package klingo

import "errors"

var (
	// ErrPatientNotFound возвращается, когда пациент не найден по телефону
	// и дате рождения; контроллер диалога уходит в ветку регистрации
	ErrPatientNotFound = errors.New("klingo client: patient not found")

	// ErrRegistrationRejected возвращается, когда register не вернул id пациента
	ErrRegistrationRejected = errors.New("klingo client: registration rejected")

	// ErrLoginRejected возвращается, когда login не вернул access token
	ErrLoginRejected = errors.New("klingo client: login rejected")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("klingo client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("klingo client: invalid response")
)
