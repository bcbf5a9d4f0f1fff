package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "SCHEMEDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SCHEMEDESK_DB_DSN"
	EnvDBHost = "SCHEMEDESK_DB_HOST"
	EnvDBUser = "SCHEMEDESK_DB_USER"
	EnvDBName = "SCHEMEDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Settlement   SettlementConfig
	TargetWorker TargetWorkerConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Settlement.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SCHEMEDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"SCHEMEDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SCHEMEDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCHEMEDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SCHEMEDESK_DB_DSN"`
	Driver string `envconfig:"SCHEMEDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCHEMEDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"SCHEMEDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCHEMEDESK_DB_USER"`
	LegacyPassword string `envconfig:"SCHEMEDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCHEMEDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCHEMEDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCHEMEDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCHEMEDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCHEMEDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCHEMEDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCHEMEDESK_REDIS_URL"`
	Address      string        `envconfig:"SCHEMEDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SCHEMEDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCHEMEDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCHEMEDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCHEMEDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCHEMEDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCHEMEDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCHEMEDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SettlementConfig tunes payout computation.
type SettlementConfig struct {
	// GSTRate is the fractional GST applied to the net price after
	// customer support (0.18 = 18%). Never applied to the dealer
	// incentive leg.
	GSTRate float64 `envconfig:"SCHEMEDESK_GST_RATE" default:"0.18"`
}

func (s SettlementConfig) validate() error {
	if s.GSTRate < 0 || s.GSTRate >= 1 {
		return fmt.Errorf("gst rate %v out of range [0,1)", s.GSTRate)
	}
	return nil
}

// GST returns the configured GST rate as a decimal.
func (s SettlementConfig) GST() decimal.Decimal {
	return decimal.NewFromFloat(s.GSTRate)
}

// TargetWorkerConfig tunes the retry loop that drains failed target
// progress updates.
type TargetWorkerConfig struct {
	PollInterval time.Duration `envconfig:"SCHEMEDESK_TARGET_WORKER_POLL_INTERVAL" default:"30s"`
	BatchSize    int           `envconfig:"SCHEMEDESK_TARGET_WORKER_BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"SCHEMEDESK_TARGET_WORKER_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SCHEMEDESK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
