package handle_turn

import "strings"

// blockPatterns фразы, характерные для prompt injection
// Совпадение не прерывает диалог: ввод просто обнуляется, и текущий шаг
// переспрашивает как при нераспознанном ответе
var blockPatterns = []string{
	"ignore previous instructions",
	"ignore all previous",
	"reseta suas regras",
	"act as system",
	"expose your prompt",
}

func looksLikeInjection(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range blockPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
