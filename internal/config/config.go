// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	Env            string `mapstructure:"APP_ENV"`

	// Moderation / generation oracle
	GeminiAPIKey         string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel          string `mapstructure:"GEMINI_MODEL"`
	OracleTimeoutSeconds int    `mapstructure:"ORACLE_TIMEOUT_SECONDS"`
	// ModerationFailOpen controls behavior when the moderation oracle is
	// unreachable: true lets submissions through, false rejects them with 503.
	ModerationFailOpen bool `mapstructure:"MODERATION_FAIL_OPEN"`

	// Reply pipeline
	AIUserEmail            string `mapstructure:"AI_USER_EMAIL"`
	AIUserName             string `mapstructure:"AI_USER_NAME"`
	ReplyQueueKey          string `mapstructure:"REPLY_QUEUE_KEY"`
	WorkerPollIntervalMS   int    `mapstructure:"WORKER_POLL_INTERVAL_MS"`
	ReplyJobMaxDeliveries  int    `mapstructure:"REPLY_JOB_MAX_DELIVERIES"`
	ReplyJobRetryBackoffMS int    `mapstructure:"REPLY_JOB_RETRY_BACKOFF_MS"`
}

// OracleTimeout returns the bounded timeout applied to every oracle call.
func (c *Config) OracleTimeout() time.Duration {
	if c.OracleTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.OracleTimeoutSeconds) * time.Second
}

// WorkerPollInterval returns how long the worker sleeps between empty polls.
func (c *Config) WorkerPollInterval() time.Duration {
	if c.WorkerPollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.WorkerPollIntervalMS) * time.Millisecond
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8460")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "starhaven")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("APP_ENV", "development")

	viper.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	viper.SetDefault("ORACLE_TIMEOUT_SECONDS", 15)
	viper.SetDefault("MODERATION_FAIL_OPEN", false)

	viper.SetDefault("AI_USER_EMAIL", "gemini@starhaven.local")
	viper.SetDefault("AI_USER_NAME", "Gemini")
	viper.SetDefault("REPLY_QUEUE_KEY", "starhaven:reply_jobs")
	viper.SetDefault("WORKER_POLL_INTERVAL_MS", 1000)
	viper.SetDefault("REPLY_JOB_MAX_DELIVERIES", 5)
	viper.SetDefault("REPLY_JOB_RETRY_BACKOFF_MS", 5000)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.ReplyQueueKey == "" {
		return errors.New("REPLY_QUEUE_KEY is required")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.ModerationFailOpen {
			log.Println("WARNING: MODERATION_FAIL_OPEN is enabled in production. Content will be accepted unmoderated while the oracle is down.")
		}
	} else {
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
