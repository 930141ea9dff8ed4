package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUnavailable возвращается, когда обе модели не дали ответ
var ErrUnavailable = errors.New("llm adapter: no model produced a response")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Adapter вспомогательный интерпретатор свободного текста поверх OpenAI
// Используется контроллером диалога только как запасной распознаватель,
// когда детерминированное извлечение не дало результата; ошибки адаптера
// деградируют до обычного повторного вопроса пользователю
type Adapter struct {
	client        *openai.Client
	model         string
	fallbackModel string
	log           Logger
}

// NewAdapter создает адаптер с основной и резервной моделью
func NewAdapter(apiKey, model, fallbackModel string, log Logger) *Adapter {
	return &Adapter{
		client:        openai.NewClient(apiKey),
		model:         model,
		fallbackModel: fallbackModel,
		log:           log,
	}
}

// askJSON запрашивает строгий JSON у основной модели, при ошибке — у резервной
func (a *Adapter) askJSON(ctx context.Context, system, user string, out interface{}) error {
	models := []string{a.model}
	if a.fallbackModel != "" && a.fallbackModel != a.model {
		models = append(models, a.fallbackModel)
	}

	var lastErr error
	for _, model := range models {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Temperature: 0,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user + "\n\nResponda apenas com um JSON válido."},
			},
		})
		if err != nil {
			a.log.Warn("LLM: model %s failed: %v", model, err)
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("%w: model %s returned no choices", ErrUnavailable, model)
			continue
		}
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
			lastErr = fmt.Errorf("%w: model %s returned invalid JSON: %v", ErrUnavailable, model, err)
			continue
		}
		return nil
	}

	if lastErr == nil {
		lastErr = ErrUnavailable
	}
	return lastErr
}

// ResolveDoctorName просит модель сопоставить свободный текст пациента
// с одним из имён справочника; пустая строка означает "не распознано"
func (a *Adapter) ResolveDoctorName(ctx context.Context, text string, candidates []string) (string, error) {
	system := "Você é um assistente que identifica qual médico o paciente mencionou. " +
		"Responda com JSON no formato {\"doctor_name\": \"<nome exato da lista ou string vazia>\"}."
	user := fmt.Sprintf("Mensagem do paciente: %q\nMédicos disponíveis:\n- %s",
		text, strings.Join(candidates, "\n- "))

	var result struct {
		DoctorName string `json:"doctor_name"`
	}
	if err := a.askJSON(ctx, system, user, &result); err != nil {
		return "", err
	}

	// Принимаем только имя из списка кандидатов
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(result.DoctorName), c) {
			return c, nil
		}
	}
	return "", nil
}
