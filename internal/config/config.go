package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса (config.toml)
type Config struct {
	Server   Server   `toml:"server"`
	Logs     Logs     `toml:"logs"`
	Metrics  Metrics  `toml:"metrics"`
	Database Database `toml:"database"`
	Klingo   Klingo   `toml:"klingo"`
	Asaas    Asaas    `toml:"asaas"`
	LLM      LLM      `toml:"llm"`
	Agenda   Agenda   `toml:"agenda"`
	Payment  Payment  `toml:"payment"`
}

// Server настройки HTTP сервера
type Server struct {
	HTTPPort     int `toml:"http_port"`
	ReadTimeout  int `toml:"read_timeout"`  // секунды
	WriteTimeout int `toml:"write_timeout"` // секунды
	IdleTimeout  int `toml:"idle_timeout"`  // секунды

	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// Logs настройки логирования
type Logs struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Metrics настройки Prometheus метрик
type Metrics struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Database настройки подключения к PostgreSQL
type Database struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения для lib/pq
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Klingo настройки интеграции с API клиники
type Klingo struct {
	BaseURL       string `toml:"base_url"`
	AppToken      string `toml:"app_token"`
	RegisterToken string `toml:"register_token"` // опционально, по умолчанию AppToken
	Timeout       int    `toml:"timeout"`        // секунды
	Specialty     string `toml:"specialty"`
	Exam          string `toml:"exam"`
	Plan          string `toml:"plan"`
}

// Asaas настройки интеграции с платежным API
type Asaas struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout int    `toml:"timeout"` // секунды
}

// LLM настройки опционального LLM-интерпретатора
type LLM struct {
	Enabled       bool   `toml:"enabled"`
	APIKey        string `toml:"api_key"`
	Model         string `toml:"model"`
	FallbackModel string `toml:"fallback_model"`
}

// Agenda настройки кэша агенды
type Agenda struct {
	CacheTTL int `toml:"cache_ttl"` // секунды
}

// Payment параметры предоплаты консультации
type Payment struct {
	Value       float64 `toml:"value"`
	Description string  `toml:"description"`
}

// Load читает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort == 0 {
		return fmt.Errorf("server.http_port is required")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("database.host and database.dbname are required")
	}
	if c.Klingo.BaseURL == "" || c.Klingo.AppToken == "" {
		return fmt.Errorf("klingo.base_url and klingo.app_token are required")
	}
	if c.Asaas.BaseURL == "" || c.Asaas.APIKey == "" {
		return fmt.Errorf("asaas.base_url and asaas.api_key are required")
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required when llm is enabled")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Logs.File == "" {
		c.Logs.File = "logs/app.log"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Klingo.Timeout == 0 {
		c.Klingo.Timeout = 30
	}
	if c.Asaas.Timeout == 0 {
		c.Asaas.Timeout = 30
	}
	if c.Agenda.CacheTTL == 0 {
		c.Agenda.CacheTTL = 60
	}
	if c.Payment.Value == 0 {
		c.Payment.Value = 200.0
	}
	if c.Payment.Description == "" {
		c.Payment.Description = "Consulta particular OtorrinoMed"
	}
}
