package domain

// Лимиты отображения агенды пользователю
const (
	// MaxDatesPerDoctor максимум дат на врача в сокращенной агенде
	MaxDatesPerDoctor = 3
	// MaxTimesPerDate максимум временных слотов на дату
	MaxTimesPerDate = 5
	// MaxDoctorsListed максимум врачей в списке выбора
	MaxDoctorsListed = 10
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Sex допустимые значения пола пациента (формат Klingo)
const (
	SexMale   = "M"
	SexFemale = "F"
)
