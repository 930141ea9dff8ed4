// Package textparse детерминированное извлечение данных из свободного
// текста пациента: намерение да/нет, врач, дата, время, пол, e-mail, CPF.
// Все функции чистые; "не распознано" — нормальный результат, который
// контроллер диалога обрабатывает повторным вопросом.
package textparse

import (
	"regexp"
	"strings"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/brdoc"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/types"
)

var (
	yesWords = []string{"sim", "claro", "ok", "pode", "confirmo", "isso", "quero", "vamos"}
	noWords  = []string{"nao", "não", "no", "negativo", "prefiro não", "depois"}

	doctorIDRe = regexp.MustCompile(`\b(\d{1,6})\b`)
	dateISORe  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	dateBRRe   = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
	timeRe     = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	emailRe    = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w{2,}`)
	cpfRunRe   = regexp.MustCompile(`\d{11}`)
	digitRe    = regexp.MustCompile(`\d`)

	drPrefixReplacer = strings.NewReplacer("dr ", "", "dra ", "", "dr.", "", "dra.", "")
)

// Normalize обрезает пробелы и приводит текст к нижнему регистру
func Normalize(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// IsYes распознаёт утвердительный ответ по фиксированному набору слов
// IsYes и IsNo могут одновременно вернуть false: вызывающий обязан
// обработать "ни то ни другое"
func IsYes(t string) bool {
	return containsAny(Normalize(t), yesWords)
}

// IsNo распознаёт отрицательный ответ
func IsNo(t string) bool {
	return containsAny(Normalize(t), noWords)
}

// ExtractDoctor ищет врача в тексте: сначала добровольно введённый
// внутренний id (1–6 цифр, совпадающий с ключом справочника), затем
// подстроку имени (с отброшенными префиксами dr/dra), затем нестрогое
// совпадение по отдельным словам. Возвращается первый врач в порядке
// справочника — порядок вставки явно разрешает неоднозначности
func ExtractDoctor(text string, dir *domain.DoctorDirectory) (*domain.DoctorAgenda, bool) {
	if dir == nil {
		return nil, false
	}
	txt := Normalize(text)

	// Id принимаем, если пользователь прислал его сам (мы не показываем)
	for _, id := range doctorIDRe.FindAllString(txt, -1) {
		if doc, ok := dir.Get(id); ok {
			return doc, true
		}
	}

	words := strings.Fields(txt)
	for _, doc := range dir.All() {
		name := Normalize(doc.Name)
		nameClean := drPrefixReplacer.Replace(name)
		if strings.Contains(txt, name) || strings.Contains(txt, nameClean) {
			return doc, true
		}
		for _, w := range words {
			if w != "" && strings.Contains(name, w) {
				return doc, true
			}
		}
	}

	return nil, false
}

// ExtractDate ищет дату в ISO- или бразильском формате и нормализует к ISO
// ISO-паттерн имеет приоритет; некорректная календарная дата трактуется
// как отсутствие даты
func ExtractDate(text string) (string, bool) {
	match := dateISORe.FindString(text)
	if match == "" {
		match = dateBRRe.FindString(text)
	}
	if match == "" {
		return "", false
	}
	iso, err := brdoc.ToISODate(match)
	if err != nil {
		return "", false
	}
	return iso, true
}

// ExtractTime ищет время H:MM/HH:MM и нормализует к HH:MM
func ExtractTime(text string) (types.TimeString, bool) {
	match := timeRe.FindString(text)
	if match == "" {
		return "", false
	}
	t, err := types.NewTimeStringFromString(match)
	if err != nil {
		return "", false
	}
	return t, true
}

// ParseSex распознаёт пол по ключевым словам или одиночной букве
// Нераспознанный текст — нормальный случай, вызывающий переспросит
func ParseSex(text string) (string, bool) {
	t := Normalize(text)
	if containsAny(t, []string{"feminino", "mulher", "femea", "fêmea"}) || t == "f" {
		return domain.SexFemale, true
	}
	if containsAny(t, []string{"masculino", "homem", "macho"}) || t == "m" {
		return domain.SexMale, true
	}
	return "", false
}

// ExtractEmail ищет первый e-mail в тексте
func ExtractEmail(text string) (string, bool) {
	match := emailRe.FindString(text)
	return match, match != ""
}

// ExtractCPF ищет первую последовательность из 11 цифр и проверяет
// контрольные разряды
func ExtractCPF(text string) (string, bool) {
	match := cpfRunRe.FindString(text)
	if match == "" || !brdoc.IsValidCPF(match) {
		return "", false
	}
	return match, true
}

// GuessFullName извлекает вероятное полное имя: текст без e-mail и цифр
// Принимается, только если осталось хотя бы два слова
func GuessFullName(text string) (string, bool) {
	cleaned := emailRe.ReplaceAllString(text, "")
	cleaned = digitRe.ReplaceAllString(cleaned, "")
	fields := strings.Fields(cleaned)
	if len(fields) < 2 {
		return "", false
	}
	return strings.Join(fields, " "), true
}

// Bullets форматирует список вариантов маркированным списком
func Bullets(title string, items []string) string {
	if len(items) == 0 {
		return title + "\n- (sem opções disponíveis)"
	}
	var sb strings.Builder
	sb.WriteString(title)
	for _, it := range items {
		sb.WriteString("\n- ")
		sb.WriteString(it)
	}
	return sb.String()
}
