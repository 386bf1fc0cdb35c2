package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProductionConfig {
	return &ProductionConfig{
		Database: DatabaseConfig{Host: "localhost", Port: 5432, Name: "db", User: "u", Password: "p"},
		Server:   ServerConfig{Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second},
		Security: SecurityConfig{BcryptCost: 12},
		JWT: JWTConfig{
			SecretKey:       "test-secret-key-for-jwt-signing-32-chars",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: time.Hour,
			Issuer:          "i",
			Audience:        "a",
		},
		Logging: LoggingConfig{Level: "info", Output: "stdout"},
		Lookup:  LookupConfig{BaseURL: "http://lookup", Debounce: 500 * time.Millisecond},
		Forms:   FormsConfig{IdleTTL: time.Minute, ReaperInterval: time.Second},
	}
}

func TestValidateProductionConfig(t *testing.T) {
	require.NoError(t, ValidateProductionConfig(validConfig()))

	tests := []struct {
		name     string
		mutate   func(*ProductionConfig)
		contains string
	}{
		{"short jwt secret", func(c *ProductionConfig) { c.JWT.SecretKey = "short" }, "JWT_SECRET_KEY"},
		{"bad log output", func(c *ProductionConfig) { c.Logging.Output = "syslog" }, "LOG_OUTPUT"},
		{"file logging without path", func(c *ProductionConfig) { c.Logging.Output = "file" }, "LOG_FILE_PATH"},
		{"zero debounce", func(c *ProductionConfig) { c.Lookup.Debounce = 0 }, "LOOKUP_DEBOUNCE"},
		{"missing lookup url", func(c *ProductionConfig) { c.Lookup.BaseURL = "" }, "LOOKUP_BASE_URL"},
		{"zero idle ttl", func(c *ProductionConfig) { c.Forms.IdleTTL = 0 }, "FORMS_IDLE_TTL"},
		{"bcrypt cost", func(c *ProductionConfig) { c.Security.BcryptCost = 4 }, "BCRYPT_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateProductionConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nOROCHI_TEST_A=\"quoted\"\nOROCHI_TEST_B = plain\nOROCHI_TEST_C=keep\nnot a pair\n"), 0o644))
	t.Setenv("OROCHI_TEST_C", "existing")
	t.Setenv("OROCHI_TEST_A", "")
	t.Setenv("OROCHI_TEST_B", "")

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "quoted", os.Getenv("OROCHI_TEST_A"))
	assert.Equal(t, "plain", os.Getenv("OROCHI_TEST_B"))
	assert.Equal(t, "existing", os.Getenv("OROCHI_TEST_C"))

	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("OROCHI_TEST_DURATION", "750ms")
	t.Setenv("OROCHI_TEST_SLICE", "a, b,,c")
	t.Setenv("OROCHI_TEST_INT", "nope")

	assert.Equal(t, 750*time.Millisecond, getEnvDuration("OROCHI_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, getEnvStringSlice("OROCHI_TEST_SLICE", nil))
	assert.Equal(t, 7, getEnvInt("OROCHI_TEST_INT", 7))
	assert.Nil(t, getEnvStringSlice("OROCHI_TEST_UNSET", nil))
}
