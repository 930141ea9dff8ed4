package domain

// Step шаг диалоговой машины состояний
// Порядок переходов линейный, с повторными запросами на месте при
// нераспознанном вводе:
// START -> ASK_DOCTOR_PREFERENCE -> ASK_DOCTOR -> ASK_DATE -> ASK_TIME ->
// ASK_IDENTIFY -> ASK_REGISTER -> ASK_CONFIRM_APPOINTMENT -> ASK_PREPAY -> END
type Step string

const (
	StepStart                Step = "START"
	StepAskDoctorPreference  Step = "ASK_DOCTOR_PREFERENCE"
	StepAskDoctor            Step = "ASK_DOCTOR"
	StepAskDate              Step = "ASK_DATE"
	StepAskTime              Step = "ASK_TIME"
	StepAskIdentify          Step = "ASK_IDENTIFY"
	StepAskRegister          Step = "ASK_REGISTER"
	StepAskConfirmAppointment Step = "ASK_CONFIRM_APPOINTMENT"
	StepAskPrepay            Step = "ASK_PREPAY"
	StepEnd                  Step = "END"
)

// AllSteps все известные шаги; используется для проверки тотальности
// таблицы обработчиков
var AllSteps = []Step{
	StepStart,
	StepAskDoctorPreference,
	StepAskDoctor,
	StepAskDate,
	StepAskTime,
	StepAskIdentify,
	StepAskRegister,
	StepAskConfirmAppointment,
	StepAskPrepay,
	StepEnd,
}

// IsTerminal возвращает true для завершенного диалога
func (s Step) IsTerminal() bool {
	return s == StepEnd
}

// IsKnown возвращает true, если шаг входит в фиксированное множество
// Неизвестные шаги обрабатываются как END: диалог перезапускается
func (s Step) IsKnown() bool {
	for _, known := range AllSteps {
		if s == known {
			return true
		}
	}
	return false
}
