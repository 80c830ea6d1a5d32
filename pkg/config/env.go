package config

const (
	EnvPrefix = "PFMETRICS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "PFMETRICS_APP_ENV"
	EnvPort       = "PFMETRICS_APP_PORT"
	EnvLogLevel   = "PFMETRICS_LOG_LEVEL"
	EnvDBDSN      = "PFMETRICS_DB_DSN"
	EnvDBDriver   = "PFMETRICS_DB_DRIVER"
	EnvRedisURL   = "PFMETRICS_REDIS_URL"
	EnvRedisAddr  = "PFMETRICS_REDIS_ADDR"
	EnvCacheStore = "PFMETRICS_CACHE_STORE"
	EnvWarmRanges = "PFMETRICS_CACHE_WARM_RANGES"
	EnvWarmZones  = "PFMETRICS_CACHE_WARM_TIMEZONES"
)
