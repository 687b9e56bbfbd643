package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Gateway      GatewayConfig
	Frontend     FrontendConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MKP_APP_ENV" required:"true"`
	Port         string `envconfig:"MKP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MKP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MKP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MKP_DB_DSN"`
	Driver string `envconfig:"MKP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MKP_DB_HOST"`
	Port     int    `envconfig:"MKP_DB_PORT" default:"5432"`
	User     string `envconfig:"MKP_DB_USER"`
	Password string `envconfig:"MKP_DB_PASSWORD"`
	Name     string `envconfig:"MKP_DB_NAME"`
	SSLMode  string `envconfig:"MKP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MKP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MKP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MKP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MKP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MKP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MKP_REDIS_ADDR"`
	Password     string        `envconfig:"MKP_REDIS_PASSWORD"`
	DB           int           `envconfig:"MKP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MKP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MKP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MKP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MKP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MKP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MKP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MKP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MKP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MKP_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MKP_GCP_PROJECT_ID" required:"true"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"MKP_PUBSUB_NOTIFICATION_TOPIC" default:"mkp-notification-events"`
	NotificationSubscription string `envconfig:"MKP_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MKP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MKP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MKP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// GatewayConfig carries the external payment gateway parameters. Every field is
// round-tripped verbatim into the signed redirect URL.
type GatewayConfig struct {
	Version   string `envconfig:"MKP_GATEWAY_VERSION" required:"true"`
	TmnCode   string `envconfig:"MKP_GATEWAY_TMN_CODE" required:"true"`
	Locale    string `envconfig:"MKP_GATEWAY_LOCALE" required:"true"`
	CurrCode  string `envconfig:"MKP_GATEWAY_CURR_CODE" required:"true"`
	ReturnURL string `envconfig:"MKP_GATEWAY_RETURN_URL" required:"true"`
	Secret    string `envconfig:"MKP_GATEWAY_HASH_SECRET" required:"true"`
	BaseURL   string `envconfig:"MKP_GATEWAY_URL" required:"true"`
}

type FrontendConfig struct {
	BaseURL string `envconfig:"MKP_FRONTEND_URL" required:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"MKP_DB_HOST": db.Host,
		"MKP_DB_USER": db.User,
		"MKP_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either MKP_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
