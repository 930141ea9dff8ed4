package domain

import "github.com/m04kA/SMC-SchedulingAgent/pkg/types"

// DialogueState накопленное состояние одного диалога
// Принадлежит контроллеру диалога на всё время жизни беседы; мутируется
// по мере сбора данных. Пустая строка означает "значение ещё не получено".
type DialogueState struct {
	CurrentStep Step

	// Данные пациента
	UserFullname  string
	UserPhone     string // только цифры, DDD + номер
	UserEmail     string
	UserDocument  string // CPF, только цифры
	UserBirthDate string // YYYY-MM-DD
	UserSex       string // "M" или "F"
	UserToken     string // opaque access token Klingo
	PaymentLink   string // ссылка на оплату Asaas

	// Выбор врача и слота
	DoctorID        string // внутренний id, не показывается пользователю
	DoctorName      string
	AppointmentDate string           // YYYY-MM-DD
	AppointmentTime types.TimeString // HH:MM
	SlotID          string           // внутренний id слота, не показывается

	// Кэши, заполняются один раз за диалог из сокращенной агенды
	Doctors *DoctorDirectory
	Agenda  *ReducedAgenda
}

// NewDialogueState создает состояние нового диалога
func NewDialogueState() *DialogueState {
	return &DialogueState{CurrentStep: StepStart}
}

// Directory возвращает справочник врачей из любого из двух кэшей
func (s *DialogueState) Directory() *DoctorDirectory {
	if s.Doctors != nil {
		return s.Doctors
	}
	if s.Agenda != nil {
		return s.Agenda.Doctors
	}
	return nil
}

// SelectedDoctor возвращает агенду выбранного врача, если он ещё в кэше
func (s *DialogueState) SelectedDoctor() (*DoctorAgenda, bool) {
	dir := s.Directory()
	if dir == nil || s.DoctorID == "" {
		return nil, false
	}
	return dir.Get(s.DoctorID)
}

// HasIdentity возвращает true, когда собраны дата рождения и телефон
func (s *DialogueState) HasIdentity() bool {
	return s.UserBirthDate != "" && s.UserPhone != ""
}

// ReadyToConfirm возвращает true, когда есть токен и выбранный слот
func (s *DialogueState) ReadyToConfirm() bool {
	return s.UserToken != "" && s.SlotID != ""
}
