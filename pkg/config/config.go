package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	ERP          ERPConfig
	Staging      StagingConfig
	Analytics    AnalyticsConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREOPS_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREOPS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREOPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREOPS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREOPS_DB_DSN"`
	Driver string `envconfig:"STOREOPS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREOPS_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREOPS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREOPS_DB_USER"`
	LegacyPassword string `envconfig:"STOREOPS_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREOPS_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREOPS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREOPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREOPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREOPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREOPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREOPS_REDIS_URL"`
	Address      string        `envconfig:"STOREOPS_REDIS_ADDR"`
	Password     string        `envconfig:"STOREOPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREOPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREOPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREOPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREOPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREOPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREOPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ERPConfig points the service at the inventory backend that owns the
// stock ledger, item catalog, and invoice extraction.
type ERPConfig struct {
	BaseURL       string        `envconfig:"STOREOPS_ERP_BASE_URL" required:"true"`
	Timeout       time.Duration `envconfig:"STOREOPS_ERP_TIMEOUT" default:"30s"`
	UploadTimeout time.Duration `envconfig:"STOREOPS_ERP_UPLOAD_TIMEOUT" default:"60s"`
}

type StagingConfig struct {
	SessionTTL  time.Duration `envconfig:"STOREOPS_STAGING_SESSION_TTL" default:"30m"`
	MaxUploadMB int           `envconfig:"STOREOPS_STAGING_MAX_UPLOAD_MB" default:"20"`
}

type AnalyticsConfig struct {
	CacheTTL time.Duration `envconfig:"STOREOPS_ANALYTICS_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREOPS_AUTO_MIGRATE" default:"false"`
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
