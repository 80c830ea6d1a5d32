package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Worker       WorkerConfig
	Dashboard    DashboardConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PFMETRICS_APP_ENV" required:"true"`
	Port         string `envconfig:"PFMETRICS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PFMETRICS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PFMETRICS_LOG_WARN_STACK" default:"false"`

	CORSOrigins    []string      `envconfig:"PFMETRICS_CORS_ORIGINS" default:"http://localhost:3000"`
	RequestTimeout time.Duration `envconfig:"PFMETRICS_REQUEST_TIMEOUT" default:"30s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PFMETRICS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PFMETRICS_DB_DSN" required:"true"`
	Driver string `envconfig:"PFMETRICS_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"PFMETRICS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PFMETRICS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PFMETRICS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PFMETRICS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// DriverKind returns the normalized driver enum.
func (d DBConfig) DriverKind() enums.DBDriver {
	return enums.DBDriver(strings.ToLower(strings.TrimSpace(d.Driver)))
}

type RedisConfig struct {
	URL          string        `envconfig:"PFMETRICS_REDIS_URL"`
	Address      string        `envconfig:"PFMETRICS_REDIS_ADDR"`
	Password     string        `envconfig:"PFMETRICS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PFMETRICS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PFMETRICS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PFMETRICS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PFMETRICS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PFMETRICS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PFMETRICS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CacheConfig struct {
	Store           string        `envconfig:"PFMETRICS_CACHE_STORE" default:"redis"`
	Prefix          string        `envconfig:"PFMETRICS_CACHE_PREFIX" default:"pfm"`
	DefaultTTL      time.Duration `envconfig:"PFMETRICS_CACHE_DEFAULT_TTL" default:"5m"`
	SingleFlight    bool          `envconfig:"PFMETRICS_CACHE_SINGLE_FLIGHT" default:"true"`
	WarmConcurrency int           `envconfig:"PFMETRICS_CACHE_WARM_CONCURRENCY" default:"4"`
	WarmRanges      []string      `envconfig:"PFMETRICS_CACHE_WARM_RANGES" default:"TODAY,30,MTD"`
	WarmTimezones   []string      `envconfig:"PFMETRICS_CACHE_WARM_TIMEZONES" default:"UTC"`
}

// StoreKind returns the normalized cache store enum.
func (c CacheConfig) StoreKind() enums.CacheStoreKind {
	return enums.CacheStoreKind(strings.ToLower(strings.TrimSpace(c.Store)))
}

type WorkerConfig struct {
	Interval time.Duration `envconfig:"PFMETRICS_WARM_INTERVAL" default:"10m"`
	LockTTL  time.Duration `envconfig:"PFMETRICS_WARM_LOCK_TTL" default:"15m"`
}

type DashboardConfig struct {
	Table            string `envconfig:"PFMETRICS_DASHBOARD_TABLE" default:"orders"`
	RevenueGoalCents int64  `envconfig:"PFMETRICS_DASHBOARD_REVENUE_GOAL_CENTS" default:"10000000"`
	Currency         string `envconfig:"PFMETRICS_DASHBOARD_CURRENCY" default:"USD"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool   `envconfig:"PFMETRICS_AUTO_MIGRATE" default:"false"`
	MigrationsDir string `envconfig:"PFMETRICS_MIGRATIONS_DIR" default:"pkg/migrate/migrations"`
}

func (c *Config) validate() error {
	if !c.DB.DriverKind().IsValid() {
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, c.DB.Driver)
	}
	store := c.Cache.StoreKind()
	if !store.IsValid() {
		return fmt.Errorf("unsupported %s %q", EnvCacheStore, c.Cache.Store)
	}
	if store == enums.CacheStoreRedis && c.Redis.URL == "" && c.Redis.Address == "" {
		return fmt.Errorf("either %s or %s is required when %s=redis", EnvRedisURL, EnvRedisAddr, EnvCacheStore)
	}
	if c.Cache.WarmConcurrency <= 0 {
		c.Cache.WarmConcurrency = 1
	}
	return nil
}
