package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
[server]
http_port = 8080
read_timeout = 15
write_timeout = 15
idle_timeout = 60

[logs]
file = "logs/test.log"
level = "debug"

[metrics]
enabled = true
service_name = "scheduling-agent"

[database]
host = "localhost"
port = 5432
user = "postgres"
password = "postgres"
dbname = "scheduling"
sslmode = "disable"

[klingo]
base_url = "https://api-hml.klingo.app/api"
app_token = "token-123"
specialty = "225265"
exam = "consulta"
plan = "01"

[asaas]
base_url = "https://sandbox.asaas.com/api/v3"
api_key = "asaas-key"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "debug", cfg.Logs.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "token-123", cfg.Klingo.AppToken)

	// Значения по умолчанию
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30, cfg.Klingo.Timeout)
	assert.Equal(t, 60, cfg.Agenda.CacheTTL)
	assert.Equal(t, 200.0, cfg.Payment.Value)
	assert.Equal(t, "Consulta particular OtorrinoMed", cfg.Payment.Description)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "без порта", body: "[database]\nhost = \"localhost\"\ndbname = \"x\""},
		{name: "без базы данных", body: "[server]\nhttp_port = 8080"},
		{
			name: "без токена klingo",
			body: "[server]\nhttp_port = 8080\n[database]\nhost = \"h\"\ndbname = \"d\"\n[klingo]\nbase_url = \"https://x\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	d := Database{Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "db", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=db sslmode=disable", d.DSN())
}
