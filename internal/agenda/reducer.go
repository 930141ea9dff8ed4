package agenda

import (
	"regexp"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/klingo"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/types"
)

var dateISORe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dateAccum промежуточная агрегация слотов врача по датам
type dateAccum struct {
	name  string
	order []string
	times map[string][]domain.AgendaTime
}

// Reduce строит сокращенную агенду из сырого payload Klingo:
// группировка врач → дата → слоты, без сегодняшнего дня, воскресений и
// праздников; не более domain.MaxDatesPerDoctor дат по возрастанию и
// domain.MaxTimesPerDate слотов на дату (в порядке следования в payload).
// Врачи без выживших дат отбрасываются. Некорректные элементы payload
// молча пропускаются. Чистая функция: payload не мутируется.
func Reduce(payload *klingo.AgendaPayload, now time.Time) *domain.ReducedAgenda {
	doctorOrder := make([]string, 0)
	perDoctor := make(map[string]*dateAccum)

	for _, entry := range payload.Entries {
		doctorID := entry.Professional.ID.String()
		if doctorID == "" || !dateISORe.MatchString(entry.Date) {
			continue
		}
		if domain.IsToday(entry.Date, now) || domain.IsSunday(entry.Date) || domain.IsBRHoliday(entry.Date) {
			continue
		}

		slots := collectTimes(entry.Times, domain.MaxTimesPerDate)
		if len(slots) == 0 {
			continue
		}

		acc, ok := perDoctor[doctorID]
		if !ok {
			acc = &dateAccum{name: entry.Professional.Name, times: make(map[string][]domain.AgendaTime)}
			perDoctor[doctorID] = acc
			doctorOrder = append(doctorOrder, doctorID)
		}
		if _, seen := acc.times[entry.Date]; !seen {
			acc.order = append(acc.order, entry.Date)
		}
		acc.times[entry.Date] = append(acc.times[entry.Date], slots...)
	}

	directory := domain.NewDoctorDirectory()
	for _, doctorID := range doctorOrder {
		acc := perDoctor[doctorID]

		dates := ascendingDates(acc.order)
		if len(dates) > domain.MaxDatesPerDoctor {
			dates = dates[:domain.MaxDatesPerDoctor]
		}

		doc := &domain.DoctorAgenda{ID: doctorID, Name: acc.name}
		for _, d := range dates {
			slots := acc.times[d]
			if len(slots) > domain.MaxTimesPerDate {
				slots = slots[:domain.MaxTimesPerDate]
			}
			doc.Dates = append(doc.Dates, domain.AgendaDate{Date: d, Times: slots})
		}
		if len(doc.Dates) == 0 {
			continue
		}
		directory.Add(doc)
	}

	return &domain.ReducedAgenda{Doctors: directory}
}

// collectTimes берёт первые max валидных слотов даты в порядке payload
func collectTimes(raw klingo.SlotTimes, max int) []domain.AgendaTime {
	out := make([]domain.AgendaTime, 0, max)
	for _, st := range raw {
		if len(out) >= max {
			break
		}
		t, err := types.NewTimeStringFromString(st.Time)
		if err != nil {
			continue
		}
		out = append(out, domain.AgendaTime{SlotID: st.SlotID, Time: t})
	}
	return out
}

// ascendingDates сортирует ISO-даты по возрастанию (лексикографически ==
// хронологически для формата YYYY-MM-DD)
func ascendingDates(dates []string) []string {
	sorted := make([]string, len(dates))
	copy(sorted, dates)
	sort.Strings(sorted)
	return sorted
}
