package config

const (
	EnvPrefix = "QUOTEWISE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SourceModeDB     = "db"
	SourceModeRemote = "remote"

	EnvAppEnv          = "QUOTEWISE_APP_ENV"
	EnvPort            = "QUOTEWISE_APP_PORT"
	EnvDBDSN           = "QUOTEWISE_DB_DSN"
	EnvDBHost          = "QUOTEWISE_DB_HOST"
	EnvDBUser          = "QUOTEWISE_DB_USER"
	EnvDBName          = "QUOTEWISE_DB_NAME"
	EnvDBPassword      = "QUOTEWISE_DB_PASSWORD"
	EnvRedisURL        = "QUOTEWISE_REDIS_URL"
	EnvUseSQLite       = "QUOTEWISE_USE_SQLITE"
	EnvCacheTTL        = "QUOTEWISE_CACHE_TTL"
	EnvSourceMode      = "QUOTEWISE_SOURCE_MODE"
	EnvUpstreamBaseURL = "QUOTEWISE_UPSTREAM_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
