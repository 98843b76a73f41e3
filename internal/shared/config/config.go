package config

import (
	"strconv"
	"strings"
	"time"

	"skincare-backend/internal/shared/telemetry"
)

const (
	defaultCORSOrigins  = "http://localhost:8081,http://localhost:19006,exp://localhost:8081"
	defaultMaxBodyBytes = 10 << 20
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	CORSAllowOrigin []string
	LogLevel        string
	MaxBodyBytes    int64

	DatabaseURL string
	AutoMigrate bool
	DB          DBConfig

	AIProvider      string
	AITimeout       time.Duration
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	AIRatePerMinute float64
	AIRateBurst     int

	AuthPublicKeyPEM string
	AuthIssuer       string
	JWTSecret        string
}

// DBConfig holds pool overrides. Zero values keep the driver defaults chosen
// in the db package.
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration. Sources in increasing precedence: built-in
// defaults, the YAML file named by CONFIG_FILE, then environment variables.
// .env files are loaded into the environment first.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	src := newSource(lookupEnv("CONFIG_FILE"))
	env := normalizeEnv(src.get("ENV", "dev"))
	dbURL := src.get("DATABASE_URL", "")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Env:             env,
		Port:            src.get("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(src.get("CORS_ALLOW_ORIGINS", defaultCORSOrigins)),
		LogLevel:        src.get("LOG_LEVEL", ""),
		MaxBodyBytes:    int64(src.getInt("MAX_BODY_BYTES", defaultMaxBodyBytes)),

		DatabaseURL: dbURL,
		AutoMigrate: src.getBool("AUTO_MIGRATE", env != "production"),
		DB: DBConfig{
			MaxOpenConns:    src.getInt("DB_MAX_OPEN_CONNS", 0),
			MaxIdleConns:    src.getInt("DB_MAX_IDLE_CONNS", 0),
			ConnMaxLifetime: src.getDuration("DB_CONN_MAX_LIFETIME", 0),
			ConnMaxIdleTime: src.getDuration("DB_CONN_MAX_IDLE_TIME", 0),
			PingTimeout:     src.getDuration("DB_PING_TIMEOUT", 0),
		},

		AIProvider:      normalizeProvider(src.get("AI_PROVIDER", "gemini")),
		AITimeout:       src.getDuration("AI_TIMEOUT", 90*time.Second),
		GeminiAPIKey:    src.get("GEMINI_API_KEY", ""),
		GeminiModel:     src.get("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:    src.get("OPENAI_API_KEY", ""),
		OpenAIModel:     src.get("OPENAI_MODEL", "gpt-4o-mini"),
		AIRatePerMinute: src.getFloat("AI_RATE_PER_MINUTE", 10),
		AIRateBurst:     src.getInt("AI_RATE_BURST", 3),

		AuthPublicKeyPEM: src.get("AUTH_JWT_PUBLIC_KEY", ""),
		AuthIssuer:       src.get("AUTH_ISSUER", ""),
		JWTSecret:        src.get("JWT_SECRET", ""),
	}
}

func (s source) getInt(key string, def int) int {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func (s source) getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func (s source) getBool(key string, def bool) bool {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid_bool", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func (s source) getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// Bare integers are seconds.
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}
