package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups every setting the service reads at startup.
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Sales   SalesConfig
	Session SessionConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	Timezone string
	LogLevel string
}

// Location resolves the shop time zone, falling back to UTC-3 when the
// tz database is not available in the container.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// DBConfig holds PostgreSQL settings. DatabaseURL wins when set.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString returns DATABASE_URL if present, otherwise the DSN built from parts.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN builds a postgres URL, escaping special characters in the password.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig configures the login attempt limiter. Empty Addr disables it.
type RedisConfig struct {
	Addr             string
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// KafkaConfig configures sale event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	SalesTopic string
}

// SalesConfig toggles how a sale and its stock decrements are written.
type SalesConfig struct {
	AtomicStock bool
}

// SessionConfig controls idle expiry. Zero disables the check.
type SessionConfig struct {
	IdleTimeout time.Duration
}

// Load reads configuration from the environment and, if present, a .env file
// in the working directory. Environment variables take precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "Deposito de Bebidas"),
			Timezone: getString(v, "APP_TIMEZONE", "America/Sao_Paulo"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "deposito"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:          getString(v, "JWT_SECRET", ""),
			ExpirationHours: getInt(v, "JWT_EXPIRATION_HOURS", 24),
			Issuer:          getString(v, "JWT_ISSUER", "deposito-pos"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 3000),
		},
		Redis: RedisConfig{
			Addr:             getString(v, "REDIS_ADDR", ""),
			LoginMaxAttempts: getInt(v, "LOGIN_MAX_ATTEMPTS", 5),
			LoginWindow:      time.Duration(getInt(v, "LOGIN_WINDOW_MINUTES", 15)) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:    splitCSV(getString(v, "KAFKA_BROKERS", "")),
			SalesTopic: getString(v, "KAFKA_SALES_TOPIC", "sales.recorded"),
		},
		Sales: SalesConfig{
			AtomicStock: getBool(v, "SALES_ATOMIC_STOCK", true),
		},
		Session: SessionConfig{
			IdleTimeout: time.Duration(getInt(v, "SESSION_IDLE_MINUTES", 0)) * time.Minute,
		},
	}

	if cfg.JWT.Secret == "" {
		if cfg.App.Env == "production" {
			return nil, fmt.Errorf("config: JWT_SECRET is required in production")
		}
		cfg.JWT.Secret = "dev-secret-change-me"
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
