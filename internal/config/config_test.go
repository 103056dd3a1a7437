package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validProductionConfig() *Config {
	return &Config{
		Env:           "production",
		Port:          "8460",
		JWTSecret:     "secure-secret-at-least-32-chars-long",
		DBPassword:    "secure-password",
		DBSSLMode:     "require",
		GeminiAPIKey:  "test-api-key",
		ReplyQueueKey: "starhaven:reply_jobs",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid production config", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"default JWT secret in production", func(c *Config) { c.JWTSecret = "your-secret-key-change-in-production" }, true},
		{"short JWT secret in production", func(c *Config) { c.JWTSecret = "short" }, true},
		{"default DB password in production", func(c *Config) { c.DBPassword = "password" }, true},
		{"missing Gemini key in production", func(c *Config) { c.GeminiAPIKey = "" }, true},
		{"missing queue key", func(c *Config) { c.ReplyQueueKey = "" }, true},
		{"missing Gemini key in development", func(c *Config) { c.Env = "development"; c.GeminiAPIKey = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validProductionConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_DurationHelpers(t *testing.T) {
	c := &Config{OracleTimeoutSeconds: 20, WorkerPollIntervalMS: 250}
	assert.Equal(t, 20*time.Second, c.OracleTimeout())
	assert.Equal(t, 250*time.Millisecond, c.WorkerPollInterval())

	zero := &Config{}
	assert.Equal(t, 15*time.Second, zero.OracleTimeout())
	assert.Equal(t, time.Second, zero.WorkerPollInterval())
}
