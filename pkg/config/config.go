package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "cruzremodel"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CRUZREMODEL_DB_DSN"
	EnvDBHost = "CRUZREMODEL_DB_HOST"
	EnvDBUser = "CRUZREMODEL_DB_USER"
	EnvDBName = "CRUZREMODEL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
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
	Env          string `envconfig:"CRUZREMODEL_APP_ENV" required:"true"`
	Port         string `envconfig:"CRUZREMODEL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CRUZREMODEL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRUZREMODEL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CRUZREMODEL_DB_DSN"`
	Driver string `envconfig:"CRUZREMODEL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CRUZREMODEL_DB_HOST"`
	LegacyPort     int    `envconfig:"CRUZREMODEL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRUZREMODEL_DB_USER"`
	LegacyPassword string `envconfig:"CRUZREMODEL_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRUZREMODEL_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRUZREMODEL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRUZREMODEL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRUZREMODEL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRUZREMODEL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRUZREMODEL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRUZREMODEL_REDIS_URL" required:"true"`
	Password     string        `envconfig:"CRUZREMODEL_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRUZREMODEL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRUZREMODEL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRUZREMODEL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRUZREMODEL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRUZREMODEL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRUZREMODEL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CRUZREMODEL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CRUZREMODEL_AUTO_MIGRATE" default:"false"`
}

type PricingConfig struct {
	// MetricsCacheTTL bounds how long derived business metrics stay in the
	// cache before a recompute, independent of explicit invalidation.
	MetricsCacheTTL time.Duration `envconfig:"CRUZREMODEL_PRICING_METRICS_CACHE_TTL" default:"1h"`
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
