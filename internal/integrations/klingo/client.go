package klingo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config параметры подключения к Klingo API
type Config struct {
	BaseURL       string
	AppToken      string
	RegisterToken string // отдельный токен register/login; пустой = AppToken
	Timeout       time.Duration

	// Коды клиники для выборки агенды
	Specialty string
	Exam      string
	Plan      string
}

// Client клиент для работы с Klingo API (агенда, пациенты, записи)
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	log        Logger
}

// NewClient создает новый экземпляр клиента Klingo
// Исходящие запросы ограничены rate limiter'ом, чтобы не упереться
// в лимиты внешнего API
func NewClient(cfg Config, log Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		log:     log,
	}
}

// registerToken возвращает токен для register/login
func (c *Client) registerToken() string {
	if c.cfg.RegisterToken != "" {
		return c.cfg.RegisterToken
	}
	return c.cfg.AppToken
}

// doJSON выполняет запрос с JSON-телом и стандартными заголовками Klingo
func (c *Client) doJSON(ctx context.Context, method, path, token, bearer string, body interface{}) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrInternal, err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode request body: %v", ErrInternal, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("X-APP-TOKEN", token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	return resp, nil
}

// GetAgenda получает сырую агенду клиники
// Любой не-200 ответ — жёсткая ошибка: без агенды диалог вести нечем
func (c *Client) GetAgenda(ctx context.Context) (*AgendaPayload, error) {
	path := fmt.Sprintf("/agenda/horarios?especialidade=%s&exame=%s&plano=%s",
		url.QueryEscape(c.cfg.Specialty), url.QueryEscape(c.cfg.Exam), url.QueryEscape(c.cfg.Plan))

	resp, err := c.doJSON(ctx, http.MethodGet, path, c.cfg.AppToken, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: agenda: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var payload AgendaPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: agenda: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("Klingo: fetched agenda with %d entries", len(payload.Entries))
	return &payload, nil
}

// IdentifyPatient ищет пациента по телефону и дате рождения
// Возвращает access token; отсутствие пациента — ErrPatientNotFound,
// которое контроллер трактует как переход к регистрации
func (c *Client) IdentifyPatient(ctx context.Context, phone, birthDateISO string) (string, error) {
	body := identifyRequest{Phone: phone, BirthDate: birthDateISO, CPF: ""}

	resp, err := c.doJSON(ctx, http.MethodPost, "/paciente/identificar", c.cfg.AppToken, "", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return "", ErrPatientNotFound
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: identify: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var ident identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return "", fmt.Errorf("%w: identify: failed to decode response: %v", ErrInvalidResponse, err)
	}

	// 200 без токена — пациента нет
	if ident.AccessToken == "" {
		return "", ErrPatientNotFound
	}

	return ident.AccessToken, nil
}

// RegisterPatient регистрирует нового пациента и возвращает его id
func (c *Client) RegisterPatient(ctx context.Context, data RegisterData) (int64, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/externo/register", c.registerToken(), "", registerPayload(data))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: register: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var reg registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		return 0, fmt.Errorf("%w: register: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if reg.ID.String() == "" {
		return 0, ErrRegistrationRejected
	}
	id, err := reg.ID.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: register: non-numeric patient id %q", ErrInvalidResponse, reg.ID.String())
	}

	c.log.Info("Klingo: registered patient id=%d", id)
	return id, nil
}

// LoginPatient выполняет вход зарегистрированного пациента
func (c *Client) LoginPatient(ctx context.Context, patientID int64) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/externo/login", c.registerToken(), "", map[string]interface{}{"id": patientID})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: login: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", fmt.Errorf("%w: login: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if login.AccessToken == "" {
		return "", ErrLoginRejected
	}

	return login.AccessToken, nil
}

// CreateAppointment создает запись на приём для выбранного слота
// Тело ответа контроллером не используется, важен только успех
func (c *Client) CreateAppointment(ctx context.Context, token, slotID string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/agenda/horario", c.cfg.AppToken, token, appointmentPayload(slotID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: appointment: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	c.log.Info("Klingo: appointment created for slot=%s", slotID)
	return nil
}
