package handle_turn

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/internal/textparse"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/brdoc"
)

// renderDoctorOptions список врачей для выбора (до MaxDoctorsListed имён)
func renderDoctorOptions(dir *domain.DoctorDirectory) string {
	var names []string
	if dir != nil {
		names = dir.Names(domain.MaxDoctorsListed)
	}
	return textparse.Bullets("Médicos:", names)
}

// renderDates даты врача в бразильском формате
func renderDates(name string, doc *domain.DoctorAgenda) string {
	var dates []string
	if doc != nil {
		for _, iso := range doc.DatesISO(domain.MaxDatesPerDoctor) {
			dates = append(dates, brdoc.ISOToBR(iso))
		}
	}
	return textparse.Bullets(fmt.Sprintf("Datas para %s:", name), dates)
}

// renderTimes слоты врача на дату
func renderTimes(doc *domain.DoctorAgenda, dateISO string) string {
	var times []string
	if doc != nil {
		for _, slot := range doc.TimesForDate(dateISO, domain.MaxTimesPerDate) {
			times = append(times, slot.Time.String())
		}
	}
	return textparse.Bullets(fmt.Sprintf("Horários em %s:", brdoc.ISOToBR(dateISO)), times)
}

// renderSummary сводка записи для подтверждения
func renderSummary(state *domain.DialogueState) string {
	return fmt.Sprintf(
		"- Médico: %s\n- Data: %s\n- Horário: %s",
		state.DoctorName,
		brdoc.ISOToBR(state.AppointmentDate),
		state.AppointmentTime,
	)
}
