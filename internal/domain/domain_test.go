package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingAgent/pkg/types"
)

func TestIsBRHoliday(t *testing.T) {
	assert.True(t, IsBRHoliday("2025-12-25"))
	assert.True(t, IsBRHoliday("2025-10-12"))
	assert.False(t, IsBRHoliday("2025-10-13"))
	assert.False(t, IsBRHoliday(""))
}

func TestIsSunday(t *testing.T) {
	assert.True(t, IsSunday("2025-10-05"))
	assert.False(t, IsSunday("2025-10-06"))
	// Некорректная дата не считается воскресеньем
	assert.False(t, IsSunday("not-a-date"))
}

func TestIsToday(t *testing.T) {
	now := time.Date(2025, 10, 1, 23, 30, 0, 0, time.UTC)
	assert.True(t, IsToday("2025-10-01", now))
	assert.False(t, IsToday("2025-10-02", now))
}

func TestStepIsKnown(t *testing.T) {
	for _, s := range AllSteps {
		assert.True(t, s.IsKnown(), "шаг %s должен быть известен", s)
	}
	assert.False(t, Step("ASK_SOMETHING_ELSE").IsKnown())
	assert.False(t, Step("").IsKnown())
}

func TestStepIsTerminal(t *testing.T) {
	assert.True(t, StepEnd.IsTerminal())
	assert.False(t, StepAskDate.IsTerminal())
}

func TestDoctorDirectoryOrderAndDedup(t *testing.T) {
	dir := NewDoctorDirectory()
	dir.Add(&DoctorAgenda{ID: "2", Name: "Dra. Ana Souza"})
	dir.Add(&DoctorAgenda{ID: "1", Name: "Dr. Carlos Borba"})
	dir.Add(&DoctorAgenda{ID: "2", Name: "дубликат игнорируется"})
	dir.Add(&DoctorAgenda{ID: "3", Name: "Dra. Ana Souza"})

	assert.Equal(t, 3, dir.Len())

	got, ok := dir.Get("2")
	assert.True(t, ok)
	assert.Equal(t, "Dra. Ana Souza", got.Name)

	all := dir.All()
	assert.Equal(t, []string{"2", "1", "3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	// Имена дедуплицируются с сохранением порядка вставки
	assert.Equal(t, []string{"Dra. Ana Souza", "Dr. Carlos Borba"}, dir.Names(5))
	assert.Equal(t, []string{"Dra. Ana Souza"}, dir.Names(1))
}

func TestDoctorAgendaLookups(t *testing.T) {
	doc := &DoctorAgenda{
		ID:   "1",
		Name: "Dr. Carlos Borba",
		Dates: []AgendaDate{
			{Date: "2025-10-02", Times: []AgendaTime{
				{SlotID: "s1", Time: types.TimeString("08:00")},
				{SlotID: "s2", Time: types.TimeString("09:00")},
			}},
			{Date: "2025-10-03", Times: []AgendaTime{
				{SlotID: "s3", Time: types.TimeString("10:00")},
			}},
		},
	}

	assert.Equal(t, []string{"2025-10-02", "2025-10-03"}, doc.DatesISO(3))
	assert.Equal(t, []string{"2025-10-02"}, doc.DatesISO(1))

	times := doc.TimesForDate("2025-10-02", 1)
	assert.Len(t, times, 1)
	assert.Equal(t, "s1", times[0].SlotID)
	assert.Nil(t, doc.TimesForDate("2025-10-04", 5))

	id, ok := doc.FindSlotID("2025-10-03", types.TimeString("10:00"))
	assert.True(t, ok)
	assert.Equal(t, "s3", id)

	_, ok = doc.FindSlotID("2025-10-03", types.TimeString("11:00"))
	assert.False(t, ok)
}
