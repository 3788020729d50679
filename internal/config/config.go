package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrReadConfig возвращается, когда файл конфигурации не удалось прочитать
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig возвращается при некорректных значениях конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Booking  BookingConfig  `toml:"booking"`
	Features FeaturesConfig `toml:"features"`
	Payments PaymentsConfig `toml:"payments"`
	Mail     MailConfig     `toml:"mail"`
	Redis    RedisConfig    `toml:"redis"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig правила бронирования
type BookingConfig struct {
	// SerializeConflictCheck выполнять проверку пересечений и вставку в SERIALIZABLE транзакции.
	// При false между проверкой и вставкой остается окно гонки.
	SerializeConflictCheck  bool `toml:"serialize_conflict_check"`
	CancellationWindowHours int  `toml:"cancellation_window_hours"`
}

// FeaturesConfig скрытие демо-контента
type FeaturesConfig struct {
	HideDemoContent   bool     `toml:"hide_demo_content"`
	DemoServiceTitles []string `toml:"demo_service_titles"`
	DemoImageMarker   string   `toml:"demo_image_marker"`
	DemoEmailDomain   string   `toml:"demo_email_domain"`
}

type PaymentsConfig struct {
	StripeSecretKey         string `toml:"stripe_secret_key"`
	StripeWebhookSecret     string `toml:"stripe_webhook_secret"`
	WebhookToleranceSeconds int    `toml:"webhook_tolerance_seconds"`
	AllowUnsignedWebhooks   bool   `toml:"allow_unsigned_webhooks"`
	Currency                string `toml:"currency"`
	SuccessURL              string `toml:"success_url"`
	CancelURL               string `toml:"cancel_url"`
}

// Enabled true, если задан секретный ключ платежного провайдера
func (c PaymentsConfig) Enabled() bool {
	return strings.TrimSpace(c.StripeSecretKey) != ""
}

type MailConfig struct {
	SMTPHost    string `toml:"smtp_host"`
	SMTPPort    int    `toml:"smtp_port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	From        string `toml:"from"`
	Environment string `toml:"environment"`
}

// Enabled true, если настроен SMTP
func (c MailConfig) Enabled() bool {
	return strings.TrimSpace(c.SMTPHost) != ""
}

type RedisConfig struct {
	Enabled        bool   `toml:"enabled"`
	Addr           string `toml:"addr"`
	Password       string `toml:"password"`
	DB             int    `toml:"db"`
	LockTTLSeconds int    `toml:"lock_ttl_seconds"`
	// BookingRateLimit число созданий записи на пользователя в минуту, 0 - без ограничения
	BookingRateLimit int `toml:"booking_rate_limit"`
}

// Load читает конфигурацию из TOML-файла, применяет значения по умолчанию
// и переопределения секретов из окружения
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "appointment_service"
	}
	if c.Booking.CancellationWindowHours == 0 {
		c.Booking.CancellationWindowHours = 24
	}
	if c.Features.DemoServiceTitles == nil {
		c.Features.DemoServiceTitles = []string{"Wash & Style", "Color Treatment", "Cut & Trim"}
	}
	if c.Features.DemoImageMarker == "" {
		c.Features.DemoImageMarker = "via.placeholder.com"
	}
	if c.Features.DemoEmailDomain == "" {
		c.Features.DemoEmailDomain = "meechlocs.test"
	}
	if c.Payments.WebhookToleranceSeconds == 0 {
		c.Payments.WebhookToleranceSeconds = 300
	}
	if c.Payments.Currency == "" {
		c.Payments.Currency = "usd"
	}
	if c.Mail.SMTPPort == 0 {
		c.Mail.SMTPPort = 587
	}
	if c.Mail.Environment == "" {
		c.Mail.Environment = "development"
	}
	if c.Redis.LockTTLSeconds == 0 {
		c.Redis.LockTTLSeconds = 30
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := getenv("STRIPE_SECRET_KEY"); v != "" {
		c.Payments.StripeSecretKey = v
	}
	if v := getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		c.Payments.StripeWebhookSecret = v
	}
	if v := getenv("SMTP_PASSWORD"); v != "" {
		c.Mail.Password = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

// Validate проверяет обязательные значения
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database host and dbname are required", ErrInvalidConfig)
	}
	if c.Booking.CancellationWindowHours < 0 {
		return fmt.Errorf("%w: booking.cancellation_window_hours must not be negative", ErrInvalidConfig)
	}
	if c.Payments.Enabled() && (c.Payments.SuccessURL == "" || c.Payments.CancelURL == "") {
		return fmt.Errorf("%w: payments.success_url and payments.cancel_url are required when stripe is enabled", ErrInvalidConfig)
	}
	if c.Redis.BookingRateLimit < 0 {
		return fmt.Errorf("%w: redis.booking_rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	return nil
}
