package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.DB.Driver)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 5, cfg.Ledger.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.Ledger.BackoffBase())
	assert.Equal(t, 200*time.Millisecond, cfg.Ledger.BackoffMax())
	assert.Equal(t, 30, cfg.Alerts.WarningDays)
	assert.Equal(t, 7, cfg.Alerts.CriticalDays)
	assert.Equal(t, 24*time.Hour, cfg.Alerts.JobInterval())
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Sobrescrituras(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("LEDGER_MAX_ATTEMPTS", "8")
	v.Set("ALERT_WARNING_DAYS", "45")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_AUTO_MIGRATE", "false")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StorageDriverMemory, cfg.DB.Driver)
	assert.Equal(t, 8, cfg.Ledger.MaxAttempts)
	assert.Equal(t, 45, cfg.Alerts.WarningDays)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.DB.AutoMigrate)
}

func TestFromViper_Invalida(t *testing.T) {
	cases := map[string]map[string]any{
		"driver desconocido":     {"STORAGE_DRIVER": "mysql"},
		"sin intentos":           {"LEDGER_MAX_ATTEMPTS": 0},
		"umbrales invertidos":    {"ALERT_WARNING_DAYS": 3, "ALERT_CRITICAL_DAYS": 7},
		"zona horaria invalida":  {"ALERT_TIMEZONE": "Marte/Olympus"},
		"produccion sin secreto": {"APP_ENV": "production"},
		"ttl cero":               {"IDEMPOTENCY_TTL_MINUTES": 0},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range values {
				v.Set(k, val)
			}
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "dotacion", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/dotacion?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
