package config

import (
	"testing"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("PGSQL_URL", "postgres://localhost/fincontrol")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/fincontrol", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, domain.FailOpen, cfg.MissingCodePolicy)
	assert.True(t, decimal.RequireFromString("0.0001").Equal(cfg.BalanceTolerance))
	assert.Equal(t, time.UTC, cfg.AuditLocation)
	assert.Equal(t, 7, cfg.AuditDaysPerPage)
	assert.Equal(t, "300-M", cfg.RateLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("PERMISSION_MISSING_CODE_POLICY", "FAIL-CLOSED")
	t.Setenv("LEDGER_BALANCE_TOLERANCE", "0.005")
	t.Setenv("AUDIT_TIMEZONE", "Asia/Kolkata")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, domain.FailClosed, cfg.MissingCodePolicy)
	assert.True(t, decimal.RequireFromString("0.005").Equal(cfg.BalanceTolerance))
	assert.Equal(t, "Asia/Kolkata", cfg.AuditLocation.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	viper.Reset()
	t.Setenv("PERMISSION_MISSING_CODE_POLICY", "sometimes")
	t.Setenv("LEDGER_BALANCE_TOLERANCE", "-1")
	t.Setenv("AUDIT_TIMEZONE", "Mars/Olympus")
	t.Setenv("AUDIT_DAYS_PER_PAGE", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, domain.FailOpen, cfg.MissingCodePolicy)
	assert.True(t, decimal.RequireFromString("0.0001").Equal(cfg.BalanceTolerance))
	assert.Equal(t, time.UTC, cfg.AuditLocation)
	assert.Equal(t, 7, cfg.AuditDaysPerPage)
}
