package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ROW_STORE", "EXCEL_PATH", "DATABASE_URL", "POLL_SECONDS",
		"PORTAL_URL", "PORTAL_HEADLESS", "CHROME_BIN", "PORTAL_STEP_SECONDS",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
		"EMAIL_FROM", "EMAIL_TO", "SECRETS_KEY", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "excel", cfg.Store)
	require.Equal(t, "bookings.xlsx", cfg.ExcelPath)
	require.Equal(t, 60*time.Second, cfg.PollInterval)
	require.Equal(t, 20*time.Second, cfg.StepTimeout)
	require.True(t, cfg.Headless)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "booking_logs.log", cfg.LogFile)
}

func TestFromEnvRejectsBadPollSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLL_SECONDS", "0")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("POLL_SECONDS", "soon")
	_, err = FromEnv()
	require.Error(t, err)
}

func TestFromEnvRejectsUnknownStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROW_STORE", "sqlite")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvPostgresRequiresKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROW_STORE", "postgres")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("SECRETS_KEY", base64.StdEncoding.EncodeToString(make([]byte, 32)))
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Len(t, cfg.SecretsKey, 32)
}

func TestFromEnvHeadlessToggle(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORTAL_HEADLESS", "false")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.False(t, cfg.Headless)
}
