package domain

import "github.com/m04kA/SMC-SchedulingAgent/pkg/types"

// AgendaTime один доступный слот: внутренний идентификатор Klingo и время
// SlotID никогда не показывается пользователю
type AgendaTime struct {
	SlotID string
	Time   types.TimeString
}

// AgendaDate дата приёма с доступными слотами (не более MaxTimesPerDate)
type AgendaDate struct {
	Date  string // YYYY-MM-DD
	Times []AgendaTime
}

// DoctorAgenda врач и его доступные даты (не более MaxDatesPerDoctor,
// по возрастанию даты)
type DoctorAgenda struct {
	ID    string // внутренний идентификатор Klingo, не показывается
	Name  string
	Dates []AgendaDate
}

// DatesISO возвращает до max дат врача в ISO-формате
func (d *DoctorAgenda) DatesISO(max int) []string {
	dates := make([]string, 0, len(d.Dates))
	for _, e := range d.Dates {
		if len(dates) >= max {
			break
		}
		dates = append(dates, e.Date)
	}
	return dates
}

// TimesForDate возвращает до max слотов врача на указанную дату
func (d *DoctorAgenda) TimesForDate(dateISO string, max int) []AgendaTime {
	for _, e := range d.Dates {
		if e.Date != dateISO {
			continue
		}
		if len(e.Times) <= max {
			return e.Times
		}
		return e.Times[:max]
	}
	return nil
}

// FindSlotID ищет идентификатор слота по дате и времени
func (d *DoctorAgenda) FindSlotID(dateISO string, t types.TimeString) (string, bool) {
	for _, e := range d.Dates {
		if e.Date != dateISO {
			continue
		}
		for _, slot := range e.Times {
			if slot.Time == t {
				return slot.SlotID, true
			}
		}
	}
	return "", false
}

// DoctorDirectory упорядоченный справочник врачей
// Порядок вставки сохраняется явно: он определяет результат при
// неоднозначном совпадении имени
type DoctorDirectory struct {
	order []string
	byID  map[string]*DoctorAgenda
}

// NewDoctorDirectory создает пустой справочник
func NewDoctorDirectory() *DoctorDirectory {
	return &DoctorDirectory{byID: make(map[string]*DoctorAgenda)}
}

// Add добавляет врача; повторное добавление того же id игнорируется
func (d *DoctorDirectory) Add(doc *DoctorAgenda) {
	if _, ok := d.byID[doc.ID]; ok {
		return
	}
	d.order = append(d.order, doc.ID)
	d.byID[doc.ID] = doc
}

// Get возвращает врача по внутреннему идентификатору
func (d *DoctorDirectory) Get(id string) (*DoctorAgenda, bool) {
	doc, ok := d.byID[id]
	return doc, ok
}

// All возвращает врачей в порядке вставки
func (d *DoctorDirectory) All() []*DoctorAgenda {
	docs := make([]*DoctorAgenda, 0, len(d.order))
	for _, id := range d.order {
		docs = append(docs, d.byID[id])
	}
	return docs
}

// Len возвращает количество врачей в справочнике
func (d *DoctorDirectory) Len() int {
	return len(d.order)
}

// Names возвращает до max различных имён врачей, сохраняя порядок
func (d *DoctorDirectory) Names(max int) []string {
	seen := make(map[string]struct{}, len(d.order))
	names := make([]string, 0, len(d.order))
	for _, id := range d.order {
		name := d.byID[id].Name
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		if len(names) >= max {
			break
		}
	}
	return names
}

// ReducedAgenda сокращенная агенда: результат работы фильтра слотов
// После создания структура не мутируется, поэтому её можно безопасно
// разделять между диалогами
type ReducedAgenda struct {
	Doctors *DoctorDirectory
}
