// Package brdoc валидация и нормализация бразильских пользовательских данных:
// CPF, телефон с DDD, даты в формате dd/mm/yyyy и ISO.
package brdoc

import (
	"errors"
	"regexp"
	"time"
)

// ErrInvalidDate возвращается, когда строка не является корректной датой
var ErrInvalidDate = errors.New("brdoc: invalid date, expected dd/mm/yyyy or yyyy-mm-dd")

var (
	nonDigitRe = regexp.MustCompile(`\D+`)
	cpfRe      = regexp.MustCompile(`^\d{11}$`)
	phoneRe    = regexp.MustCompile(`^\d{11,}$`)
	dateISORe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Нефиксированный layout: принимает и "5/10/2025", и "05/10/2025"
const dateBRLayout = "2/1/2006"

// SanitizeDigits удаляет из строки все символы, кроме цифр
func SanitizeDigits(value string) string {
	return nonDigitRe.ReplaceAllString(value, "")
}

// IsValidPhone проверяет телефон: только цифры, минимум 11 (DDD + номер)
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(SanitizeDigits(phone))
}

// IsValidCPF проверяет CPF: 11 цифр и два контрольных разряда
// Контрольный разряд: сумма цифр с весами (len+1)..2, затем (s*10)%11,
// остаток 10 трактуется как 0
func IsValidCPF(cpf string) bool {
	cpf = SanitizeDigits(cpf)
	if !cpfRe.MatchString(cpf) {
		return false
	}
	return checkDigit(cpf[:9]) == int(cpf[9]-'0') && checkDigit(cpf[:10]) == int(cpf[10]-'0')
}

func checkDigit(slice string) int {
	sum := 0
	weight := len(slice) + 1
	for _, d := range slice {
		sum += int(d-'0') * weight
		weight--
	}
	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}

// ToISODate нормализует дату к формату yyyy-mm-dd
// Принимает dd/mm/yyyy (с проверкой календаря) или уже готовый ISO-формат
func ToISODate(dateStr string) (string, error) {
	if dateISORe.MatchString(dateStr) {
		return dateStr, nil
	}
	d, err := time.Parse(dateBRLayout, dateStr)
	if err != nil {
		return "", ErrInvalidDate
	}
	return d.Format("2006-01-02"), nil
}

// ISOToBR переводит yyyy-mm-dd в dd/mm/yyyy для отображения пользователю
// Строки неожиданной длины возвращаются как есть
func ISOToBR(dateISO string) string {
	if len(dateISO) != 10 || !dateISORe.MatchString(dateISO) {
		return dateISO
	}
	return dateISO[8:10] + "/" + dateISO[5:7] + "/" + dateISO[0:4]
}
