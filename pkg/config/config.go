package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/gilanghuda/crewhub-backend/pkg/logger"
)

var config *Config

// Config holds every runtime setting of the service. Nothing outside this
// package should read the environment directly.
type Config struct {
	AppEnv  string `env:"APP_ENV,default=dev"`
	AppName string `env:"APP_NAME,default=crewhub"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8000"`
	HttpAllowOrigins   string        `env:"HTTP_ALLOW_ORIGINS,default=http://localhost:3000"`
	HttpReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT,default=10s"`
	HttpWriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT,default=10s"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=30s"`

	DBHost     string `env:"DB_HOST,default=localhost"`
	DBPort     string `env:"DB_PORT,default=5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBMigrate  bool   `env:"DB_MIGRATE,default=true"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASS"`
	RedisDatabase  int           `env:"REDIS_DATABASE,default=0"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX,default=crewhub:"`
	PriceCacheTTL  time.Duration `env:"PRICE_CACHE_TTL,default=10m"`

	KafkaBrokers      []string      `env:"KAFKA_BROKERS"`
	KafkaOrderTopic   string        `env:"KAFKA_ORDER_TOPIC,default=crewhub.orders"`
	KafkaWriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT,default=5s"`

	PaystackBaseURL   string        `env:"PAYSTACK_BASE_URL,default=https://api.paystack.co"`
	PaystackSecretKey string        `env:"PAYSTACK_SECRET_KEY"`
	PaystackTimeout   time.Duration `env:"PAYSTACK_TIMEOUT,default=10s"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	JWTSecret string `env:"JWT_SECRET"`
	CronKey   string `env:"CRON_KEY"`

	BookingTimezone   string        `env:"BOOKING_TIMEZONE,default=+01:00"`
	ChatSessionLength time.Duration `env:"CHAT_SESSION_LENGTH,default=1h"`
	SweepGrace        time.Duration `env:"SWEEP_GRACE,default=5m"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL,default=0s"`
	AdminEmail        string        `env:"ADMIN_EMAIL"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Load reads an optional dotenv file and maps the environment onto Config.
func Load(path string) error {
	if path != "" {
		logger.Info("loading env file", "path", path)
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	} else {
		_ = godotenv.Load()
	}

	c := &Config{}
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return errors.Wrap(err, "failed to map env variables to Config")
	}
	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		panic("config is not initialized")
	}
	return config
}

// Set replaces the active configuration. Tests use it to avoid touching the environment.
func Set(c *Config) {
	config = c
}

// Location resolves BookingTimezone, which is either an IANA name or a fixed
// offset such as "+01:00".
func (c *Config) Location() (*time.Location, error) {
	return ParseLocation(c.BookingTimezone)
}

func ParseLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC, nil
	}
	if tz[0] == '+' || tz[0] == '-' {
		parts := strings.SplitN(tz[1:], ":", 2)
		h, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, errors.Errorf("invalid offset %q", tz)
		}
		m := 0
		if len(parts) == 2 {
			if m, err = strconv.Atoi(parts[1]); err != nil {
				return nil, errors.Errorf("invalid offset %q", tz)
			}
		}
		secs := h*3600 + m*60
		if tz[0] == '-' {
			secs = -secs
		}
		return time.FixedZone(fmt.Sprintf("UTC%s", tz), secs), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown time zone %q", tz)
	}
	return loc, nil
}
