package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"petrack/internal/platform/logger"
)

const devSigningKey = "dev-signing-key-change-me"

type Config struct {
	Port string

	DBDSN       string
	AutoMigrate bool

	JWTSigningKey string
	JWTIssuer     string
	JWTTTL        time.Duration
	AuthDevMode   bool

	RedisURL string

	KafkaBrokers []string
	KafkaTopic   string

	Log logger.Options
}

// Load lee .env si existe y después el entorno.
func Load() Config {
	_ = godotenv.Load()

	app := getEnv("APP_NAME", "petrack")

	return Config{
		Port:          getEnv("PORT", "8080"),
		DBDSN:         getEnv("DB_DSN", ""),
		AutoMigrate:   getBool("AUTO_MIGRATE", false),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", devSigningKey),
		JWTIssuer:     getEnv("JWT_ISSUER", app),
		JWTTTL:        getDuration("JWT_TTL", 24*time.Hour),
		AuthDevMode:   getBool("AUTH_DEV_MODE", false),
		RedisURL:      getEnv("REDIS_URL", ""),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "petrack.notifications"),
		Log: logger.Options{
			Level:  logger.ParseLevel(os.Getenv("LOG_LEVEL")),
			Format: logger.ParseFormat(os.Getenv("LOG_FORMAT")),
			App:    app,
		},
	}
}

// UsesDevSigningKey avisa si nadie configuró JWT_SIGNING_KEY.
func (c Config) UsesDevSigningKey() bool {
	return c.JWTSigningKey == devSigningKey
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
