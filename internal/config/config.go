package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Every field is bound to an
// environment variable through its mapstructure tag.
type Config struct {
	Server   Server   `mapstructure:",squash"`
	Database Database `mapstructure:",squash"`
	Redis    Redis    `mapstructure:",squash"`
	Auth     Auth     `mapstructure:",squash"`
	OTP      OTP      `mapstructure:",squash"`
	Mail     Mail     `mapstructure:",squash"`
	Kafka    Kafka    `mapstructure:",squash"`
	Log      Log      `mapstructure:",squash"`
	Client   Client   `mapstructure:",squash"`
}

type Server struct {
	AppName       string `mapstructure:"APP_NAME" default:"Laboratory Inventory v1.0"`
	Port          string `mapstructure:"PORT" default:"3000"`
	Env           string `mapstructure:"ENV" default:"dev"`
	UploadDir     string `mapstructure:"UPLOAD_DIR" default:"./uploads"`
	BodyLimitMB   int    `mapstructure:"BODY_LIMIT_MB" default:"20"`
	WorkerPool    int    `mapstructure:"WORKER_POOL_SIZE" default:"64"`
	AllowOrigins  string `mapstructure:"CORS_ALLOW_ORIGINS" default:"*"`
	RateLimit     int    `mapstructure:"RATE_LIMIT" default:"20"`
	RateLimitSecs int    `mapstructure:"RATE_LIMIT_WINDOW_SECONDS" default:"60"`
}

type Database struct {
	URL      string `mapstructure:"DATABASE_URL"`
	Host     string `mapstructure:"DB_HOST" default:"localhost"`
	Port     int    `mapstructure:"DB_PORT" default:"5432"`
	User     string `mapstructure:"DB_USER" default:"postgres"`
	Password string `mapstructure:"DB_PASSWORD" default:"postgres"`
	Name     string `mapstructure:"DB_NAME" default:"lab_inventory"`
	TimeZone string `mapstructure:"DB_TIMEZONE" default:"UTC"`
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the parts.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.TimeZone,
	)
}

type Redis struct {
	Addr     string `mapstructure:"REDIS_ADDR" default:"localhost:6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
}

type Auth struct {
	JWTSecret     string `mapstructure:"JWT_SECRET" default:"change-me-in-production"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS" default:"24"`
	IdleMinutes   int    `mapstructure:"SESSION_IDLE_MINUTES" default:"30"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD" default:"admin123"`
}

func (a Auth) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// IdleTimeout is zero when inactivity expiry is disabled.
func (a Auth) IdleTimeout() time.Duration {
	return time.Duration(a.IdleMinutes) * time.Minute
}

type OTP struct {
	TTLMinutes  int `mapstructure:"OTP_TTL_MINUTES" default:"10"`
	MaxAttempts int `mapstructure:"OTP_MAX_ATTEMPTS" default:"5"`
}

func (o OTP) TTL() time.Duration {
	return time.Duration(o.TTLMinutes) * time.Minute
}

type Mail struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT" default:"587"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM" default:"no-reply@lab-inventory.local"`
}

type Kafka struct {
	Brokers string `mapstructure:"KAFKA_BROKERS"`
	Topic   string `mapstructure:"KAFKA_TOPIC" default:"lab-inventory-events"`
}

// BrokerList splits the comma separated KAFKA_BROKERS value.
func (k Kafka) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type Log struct {
	Level string `mapstructure:"LOG_LEVEL" default:"info"`
	Path  string `mapstructure:"LOG_PATH"`
}

type Client struct {
	BaseURL     string `mapstructure:"LABINV_API_URL" default:"http://localhost:3000/api/v1"`
	SessionFile string `mapstructure:"LABINV_SESSION_FILE"`
}

// IsDevelopment reports whether the service runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// Load reads .env (if present) and the process environment into a defaulted Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	conf := &Config{}
	if err := defaults.Set(conf); err != nil {
		return nil, fmt.Errorf("set config defaults: %w", err)
	}

	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.AutomaticEnv()
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return conf, nil
}
