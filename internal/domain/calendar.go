package domain

import "time"

// BRHolidays2025 федеральные праздники Бразилии на 2025 год
// Слоты на эти даты никогда не предлагаются
var BRHolidays2025 = map[string]struct{}{
	"2025-01-01": {}, // Confraternização Universal
	"2025-04-18": {}, // Sexta-feira Santa
	"2025-04-21": {}, // Tiradentes
	"2025-05-01": {}, // Dia do Trabalhador
	"2025-09-07": {}, // Independência
	"2025-10-12": {}, // Nossa Senhora Aparecida
	"2025-11-02": {}, // Finados
	"2025-11-15": {}, // Proclamação da República
	"2025-12-25": {}, // Natal
}

// IsBRHoliday проверяет, входит ли дата в фиксированный набор праздников
func IsBRHoliday(dateISO string) bool {
	_, ok := BRHolidays2025[dateISO]
	return ok
}

// IsSunday проверяет, что дата приходится на воскресенье
// Некорректная дата трактуется как "не воскресенье"
func IsSunday(dateISO string) bool {
	d, err := time.Parse(DateFormat, dateISO)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Sunday
}

// IsToday сравнивает календарную дату (UTC) с текущим днём
func IsToday(dateISO string, now time.Time) bool {
	return dateISO == now.UTC().Format(DateFormat)
}
