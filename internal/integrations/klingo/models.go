package klingo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AgendaPayload ответ Klingo /agenda/horarios
type AgendaPayload struct {
	Entries []AgendaEntry `json:"horarios"`
}

// AgendaEntry один элемент агенды: дата, врач и доступные слоты
type AgendaEntry struct {
	Date         string       `json:"data"` // YYYY-MM-DD
	Professional Professional `json:"profissional"`
	Times        SlotTimes    `json:"horarios"`
}

// FlexID идентификатор Klingo: в разных ответах приходит то числом,
// то строкой
type FlexID string

// UnmarshalJSON принимает и число, и строку
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string {
	return string(f)
}

// Int64 числовое значение идентификатора
func (f FlexID) Int64() (int64, error) {
	return strconv.ParseInt(string(f), 10, 64)
}

// Professional врач в ответе Klingo; id бывает числом и строкой
type Professional struct {
	ID   FlexID `json:"id"`
	Name string `json:"nome"`
}

// SlotTime пара (идентификатор слота, время "HH:MM")
type SlotTime struct {
	SlotID string
	Time   string
}

// SlotTimes слоты даты в порядке следования в JSON-документе
// Обычный map потерял бы порядок ключей, а правило "первые 5 слотов"
// определено именно порядком payload, поэтому декодируем токенами
type SlotTimes []SlotTime

// UnmarshalJSON декодирует объект {"slot_id": "HH:MM", ...}, сохраняя
// порядок ключей документа
func (st *SlotTimes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("klingo: horarios: expected object, got %v", tok)
	}

	out := make(SlotTimes, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("klingo: horarios: expected string key, got %v", keyTok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out = append(out, SlotTime{SlotID: key, Time: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*st = out
	return nil
}

// identifyRequest тело запроса /paciente/identificar
type identifyRequest struct {
	Phone     string `json:"telefone"`
	BirthDate string `json:"dt_nascimento"`
	CPF       string `json:"cpf"`
}

// identifyResponse ответ идентификации
type identifyResponse struct {
	AccessToken string `json:"access_token"`
}

// RegisterData данные нового пациента для /externo/register
type RegisterData struct {
	Fullname  string
	Email     string
	CPF       string
	BirthDate string // YYYY-MM-DD
	Phone     string
	Sex       string // "M" или "F"
}

// registerResponse ответ регистрации
type registerResponse struct {
	ID FlexID `json:"id"`
}

// loginResponse ответ /externo/login
type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// registerPayload полное тело регистрации в формате Klingo
// Поля, которые ассистент не собирает, заполняются принятыми значениями
func registerPayload(d RegisterData) map[string]interface{} {
	sex := d.Sex
	if sex != "M" && sex != "F" {
		sex = "M"
	}

	return map[string]interface{}{
		"paciente": map[string]interface{}{
			"id_origem": 1234,
			"nome":      d.Fullname,
			"sexo":      sex,
			"dt_nasc":   d.BirthDate,
			"mae":       "NA",
			"docs": map[string]interface{}{
				"cpf": d.CPF,
				"rg":  "",
			},
			"contatos": map[string]interface{}{
				"celular":  d.Phone,
				"telefone": "",
				"email":    d.Email,
			},
			"endereco": map[string]interface{}{
				"cep":         "00000000",
				"endereco":    "",
				"numero":      "",
				"complemento": "",
				"bairro":      "",
				"cidade":      "",
				"uf":          "BA",
			},
			"convenio": map[string]interface{}{
				"id":        "01",
				"reg_ans":   "",
				"matricula": "",
				"validade":  "2030-12-31",
				"id_plano":  "01",
			},
		},
	}
}

// appointmentPayload тело создания записи /agenda/horario
func appointmentPayload(slotID string) map[string]interface{} {
	return map[string]interface{}{
		"procedimento":    "1000",
		"id":              slotID,
		"plano":           1,
		"email":           true,
		"teleatendimento": false,
		"revisao":         false,
		"ordem_chegada":   false,
		"lista":           []int{123},
		"solicitante": map[string]interface{}{
			"conselho": "CRM",
			"uf":       "BA",
			"numero":   17137,
			"nome":     "Dr. Carlos Borba",
			"cbos":     "225265",
		},
		"confirmado": "",
		"id_externo": "",
		"obs":        "Agendado pelo assistente virtual",
		"duracao":    10,
		"id_ampliar": 0,
	}
}
