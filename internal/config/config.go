package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FCM          FCMConfig
	Notification NotificationConfig
	Selection    SelectionConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port             string
	Environment      string
	AllowedOrigins   string
	LogLevel         string
	DocumentStoreDir string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host                   string
	Port                   string
	User                   string
	Password               string
	Name                   string
	SSLMode                string
	Timezone               string
	MaxIdleConns           int
	MaxOpenConns           int
	ConnMaxLifetimeMinutes int
	LogLevel               string
}

// RedisConfig holds Redis-related configuration.
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// JWTConfig holds token-related configuration.
type JWTConfig struct {
	SecretKey            string
	AccessTokenDuration  int // in minutes, default 24h
	RefreshTokenDuration int // in hours, default 7d
	Issuer               string
}

// FCMConfig holds Firebase Cloud Messaging configuration for the push
// notification sink.
type FCMConfig struct {
	CredentialsFile string
	ProjectID       string
}

// NotificationConfig holds configuration for the notification worker.
type NotificationConfig struct {
	QueueKey          string
	MaxRetries        int
	BaseBackoffSeconds int
}

// SelectionConfig holds tunables for the selection pipeline.
type SelectionConfig struct {
	// ScoreTieTolerance is loaded from SELECTION_SCORE_TIE_TOLERANCE but not
	// read anywhere; scoring compares scores with its own scoring.Tolerance
	// constant, and ranking breaks ties by created_at and id.
	ScoreTieTolerance float64
	// PasswordResetTTLMinutes is the lifetime of a ForgotPassword token.
	PasswordResetTTLMinutes int
	// EmailVerificationTTLHours is loaded from EMAIL_VERIFICATION_TTL_HOURS
	// but not read anywhere; Register's verification token has no expiry.
	EmailVerificationTTLHours int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnv("SERVER_PORT", "8080"),
			Environment:      getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:   getEnv("ALLOWED_ORIGINS", "*"),
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			DocumentStoreDir: getEnv("DOCUMENT_STORE_DIR", "./data/documents"),
		},
		Database: DatabaseConfig{
			Host:                   getEnv("DB_HOST", "localhost"),
			Port:                   getEnv("DB_PORT", "5432"),
			User:                   getEnv("DB_USER", "postgres"),
			Password:               getEnv("DB_PASSWORD", "postgres"),
			Name:                   getEnv("DB_NAME", "ppdb_admissions"),
			SSLMode:                getEnv("DB_SSL_MODE", "disable"),
			Timezone:               getEnv("DB_TIMEZONE", "Asia/Jakarta"),
			MaxIdleConns:           getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:           getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			ConnMaxLifetimeMinutes: getEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 60),
			LogLevel:               getEnv("DB_LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			SecretKey:            getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			AccessTokenDuration:  getEnvAsInt("JWT_ACCESS_TOKEN_DURATION", 24*60), // 24h
			RefreshTokenDuration: getEnvAsInt("JWT_REFRESH_TOKEN_DURATION", 168),  // 7 days
			Issuer:               getEnv("JWT_ISSUER", "ppdb-admissions-api"),
		},
		FCM: FCMConfig{
			CredentialsFile: getEnv("FCM_CREDENTIALS_FILE", ""),
			ProjectID:       getEnv("FCM_PROJECT_ID", ""),
		},
		Notification: NotificationConfig{
			QueueKey:           getEnv("NOTIFICATION_QUEUE_KEY", "ppdb:notifications"),
			MaxRetries:         getEnvAsInt("NOTIFICATION_MAX_RETRIES", 5),
			BaseBackoffSeconds: getEnvAsInt("NOTIFICATION_BASE_BACKOFF_SECONDS", 2),
		},
		Selection: SelectionConfig{
			ScoreTieTolerance:         getEnvAsFloat("SELECTION_SCORE_TIE_TOLERANCE", 1e-6),
			PasswordResetTTLMinutes:   getEnvAsInt("PASSWORD_RESET_TTL_MINUTES", 60),
			EmailVerificationTTLHours: getEnvAsInt("EMAIL_VERIFICATION_TTL_HOURS", 24),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Server.Environment == "production" {
		if c.JWT.SecretKey == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET_KEY must be changed in production")
		}
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
