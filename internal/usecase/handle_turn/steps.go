package handle_turn

import (
	"context"
	"errors"
	"strings"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/asaas"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/klingo"
	"github.com/m04kA/SMC-SchedulingAgent/internal/textparse"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/brdoc"
)

// stepStart приветствие и переход к вопросу о предпочтениях
func (uc *UseCase) stepStart(state *domain.DialogueState) string {
	state.CurrentStep = domain.StepAskDoctorPreference
	return msgGreeting
}

// stepAskDoctorPreference первый содержательный шаг: загружает агенду,
// заполняет кэши состояния и либо сразу фиксирует врача, либо показывает список
func (uc *UseCase) stepAskDoctorPreference(ctx context.Context, state *domain.DialogueState, text string) string {
	txt := textparse.Normalize(text)

	reduced, err := uc.agenda.Reduced(ctx)
	if err != nil {
		uc.logger.Error("HandleTurn: failed to load agenda: %v", err)
		return msgAgendaUnavailable
	}
	state.Agenda = reduced
	state.Doctors = reduced.Doctors

	// Без предпочтений: показываем список врачей
	noPreference := textparse.IsNo(text) ||
		strings.Contains(txt, "primeira vez") ||
		strings.Contains(txt, "sem preferência") ||
		strings.Contains(txt, "sem preferencia")
	if noPreference {
		state.CurrentStep = domain.StepAskDoctor
		return renderDoctorOptions(state.Doctors) + "\n\n" + msgAskDoctor
	}

	// Назвал имя (или прислал id по собственной инициативе)
	if doc, ok := uc.resolveDoctor(ctx, text, state.Doctors); ok {
		return uc.selectDoctor(state, doc)
	}

	state.CurrentStep = domain.StepAskDoctor
	return renderDoctorOptions(state.Doctors) + "\n\n" + msgAskDoctor
}

// stepAskDoctor выбор врача из показанного списка
func (uc *UseCase) stepAskDoctor(ctx context.Context, state *domain.DialogueState, text string) string {
	dir := state.Directory()
	if dir == nil {
		// Кэши пустые (диалог восстановлен из снимка): перечитываем агенду
		reduced, err := uc.agenda.Reduced(ctx)
		if err != nil {
			uc.logger.Error("HandleTurn: failed to reload agenda: %v", err)
			return msgAgendaUnavailable
		}
		state.Agenda = reduced
		state.Doctors = reduced.Doctors
		dir = reduced.Doctors
	}

	doc, ok := uc.resolveDoctor(ctx, text, dir)
	if !ok {
		return msgDoctorNotRecognized + "\n" + renderDoctorOptions(dir) + "\n\n" + msgAskDoctor
	}
	return uc.selectDoctor(state, doc)
}

// selectDoctor фиксирует врача и переводит диалог к выбору даты
func (uc *UseCase) selectDoctor(state *domain.DialogueState, doc *domain.DoctorAgenda) string {
	state.DoctorID = doc.ID
	state.DoctorName = doc.Name
	state.CurrentStep = domain.StepAskDate
	return renderDates(doc.Name, doc) + "\n\n" + msgAskDate
}

// stepAskDate выбор даты приёма
// Дата вне предложенного списка не отклоняется здесь: на следующем шаге
// список горизонтов окажется пустым, и пациент выберет заново
func (uc *UseCase) stepAskDate(state *domain.DialogueState, text string) string {
	dateISO, ok := textparse.ExtractDate(text)
	if !ok {
		doc, _ := state.SelectedDoctor()
		return msgDateNotRecognized + "\n" + renderDates(state.DoctorName, doc)
	}

	state.AppointmentDate = dateISO
	state.CurrentStep = domain.StepAskTime

	doc, _ := state.SelectedDoctor()
	return renderTimes(doc, dateISO) + "\n\n" + msgAskTime
}

// stepAskTime выбор времени и сопоставление с внутренним слотом
func (uc *UseCase) stepAskTime(state *domain.DialogueState, text string) string {
	t, ok := textparse.ExtractTime(text)
	if !ok {
		doc, _ := state.SelectedDoctor()
		return msgTimeNotRecognized + "\n" + renderTimes(doc, state.AppointmentDate)
	}

	doc, ok := state.SelectedDoctor()
	if !ok {
		state.CurrentStep = domain.StepAskDoctor
		return msgDoctorReferenceLost
	}

	slotID, ok := doc.FindSlotID(state.AppointmentDate, t)
	if !ok {
		return msgTimeUnavailable + "\n" + renderTimes(doc, state.AppointmentDate) + "\n\n" + msgAskTime
	}

	state.AppointmentTime = t
	state.SlotID = slotID // внутренний, пользователю не показывается
	state.CurrentStep = domain.StepAskIdentify
	return msgAskIdentify
}

// stepAskIdentify сбор даты рождения и телефона, попытка найти кадастр
func (uc *UseCase) stepAskIdentify(ctx context.Context, state *domain.DialogueState, text string) string {
	if dateISO, ok := textparse.ExtractDate(text); ok {
		state.UserBirthDate = dateISO
	}
	if phone := brdoc.SanitizeDigits(text); brdoc.IsValidPhone(phone) {
		state.UserPhone = phone
	}

	if state.UserBirthDate == "" {
		return msgAskBirthDate
	}
	if state.UserPhone == "" {
		return msgAskPhone
	}

	token, err := uc.scheduler.IdentifyPatient(ctx, state.UserPhone, state.UserBirthDate)
	if err == nil && token != "" {
		state.UserToken = token
		state.CurrentStep = domain.StepAskConfirmAppointment
		return "Cadastro encontrado! Posso confirmar o agendamento?\n" +
			renderSummary(state) + "\n- Confirma? (sim/não)"
	}
	if err != nil && !errors.Is(err, klingo.ErrPatientNotFound) {
		uc.logger.Warn("HandleTurn: identify failed, falling back to registration: %v", err)
	}

	// Не нашли: собираем данные для регистрации
	state.CurrentStep = domain.StepAskRegister
	return msgAskRegister
}

// stepAskRegister сбор данных нового пациента, регистрация и логин
// Поля извлекаются по мере поступления: пациент может прислать всё одним
// сообщением или по одному полю за ход
func (uc *UseCase) stepAskRegister(ctx context.Context, state *domain.DialogueState, text string) string {
	if email, ok := textparse.ExtractEmail(text); ok {
		state.UserEmail = email
	}
	if cpf, ok := textparse.ExtractCPF(text); ok {
		state.UserDocument = cpf
	}
	if name, ok := textparse.GuessFullName(text); ok {
		state.UserFullname = name
	}
	if sex, ok := textparse.ParseSex(text); ok {
		state.UserSex = sex
	}

	// Обязательные поля: переспрашиваем по одному
	if state.UserFullname == "" {
		return msgAskFullname
	}
	if state.UserEmail == "" || !strings.Contains(state.UserEmail, "@") {
		return msgAskEmail
	}
	if state.UserDocument == "" || !brdoc.IsValidCPF(state.UserDocument) {
		return msgAskCPF
	}
	if state.UserSex != domain.SexMale && state.UserSex != domain.SexFemale {
		return msgAskSex
	}

	patientID, err := uc.scheduler.RegisterPatient(ctx, klingo.RegisterData{
		Fullname:  state.UserFullname,
		Email:     state.UserEmail,
		CPF:       state.UserDocument,
		BirthDate: state.UserBirthDate,
		Phone:     state.UserPhone,
		Sex:       state.UserSex,
	})
	if err != nil {
		uc.logger.Error("HandleTurn: registration failed: %v", err)
		return msgRegisterFailed
	}

	token, err := uc.scheduler.LoginPatient(ctx, patientID)
	if err != nil || token == "" {
		uc.logger.Error("HandleTurn: login after registration failed: %v", err)
		return msgLoginFailed
	}

	state.UserToken = token
	state.CurrentStep = domain.StepAskConfirmAppointment
	return "Cadastro criado! Posso confirmar o agendamento?\n" +
		renderSummary(state) + "\n- Confirma? (sim/não)"
}

// stepAskConfirmAppointment подтверждение записи в Klingo
func (uc *UseCase) stepAskConfirmAppointment(ctx context.Context, state *domain.DialogueState, text string) string {
	if textparse.IsNo(text) {
		state.CurrentStep = domain.StepEnd
		return msgDeclinedAppointment
	}
	if !textparse.IsYes(text) {
		return msgYesOrNo
	}

	if !state.ReadyToConfirm() {
		state.CurrentStep = domain.StepAskIdentify
		return msgNeedIdentity
	}

	if err := uc.scheduler.CreateAppointment(ctx, state.UserToken, state.SlotID); err != nil {
		uc.logger.Error("HandleTurn: create appointment failed: %v", err)
		return msgAppointmentFailed
	}

	state.CurrentStep = domain.StepAskPrepay
	return "Agendamento confirmado! ✅\n" + renderSummary(state) +
		"\n\nDeseja antecipar o pagamento da consulta? (sim/não)"
}

// stepAskPrepay предложение предоплаты через Asaas
func (uc *UseCase) stepAskPrepay(ctx context.Context, state *domain.DialogueState, text string) string {
	if textparse.IsNo(text) {
		state.CurrentStep = domain.StepEnd
		return msgDeclinedPrepay
	}
	if !textparse.IsYes(text) {
		return msgYesOrNo
	}

	link, err := uc.payments.CreatePaymentLink(ctx, asaas.PaymentRequest{
		Value:       uc.payment.Value,
		Description: uc.payment.Description,
	})
	if err != nil {
		uc.logger.Error("HandleTurn: payment link creation failed: %v", err)
		return msgPaymentFailed
	}

	state.PaymentLink = link.InvoiceURL
	state.CurrentStep = domain.StepEnd
	return "Aqui está seu link de pagamento antecipado:\n- " + link.InvoiceURL +
		"\n\nAssim que o pagamento for confirmado, eu aviso você. Foi um prazer ajudar! 🙌"
}

// resolveDoctor извлекает врача из текста: сначала детерминированно, затем,
// если настроен интерпретатор, через LLM по списку кандидатов.
// Сбой интерпретатора не фатален: врач просто считается нераспознанным
func (uc *UseCase) resolveDoctor(ctx context.Context, text string, dir *domain.DoctorDirectory) (*domain.DoctorAgenda, bool) {
	if doc, ok := textparse.ExtractDoctor(text, dir); ok {
		return doc, true
	}
	if uc.interpreter == nil || dir == nil || strings.TrimSpace(text) == "" {
		return nil, false
	}

	name, err := uc.interpreter.ResolveDoctorName(ctx, text, dir.Names(domain.MaxDoctorsListed))
	if err != nil {
		uc.logger.Warn("HandleTurn: interpreter failed to resolve doctor: %v", err)
		return nil, false
	}
	for _, doc := range dir.All() {
		if strings.EqualFold(doc.Name, name) {
			return doc, true
		}
	}
	return nil, false
}
