package config

// EnvPrefix scopes every storefront environment variable.
const EnvPrefix = "SHOPHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv       = "SHOPHUB_APP_ENV"
	EnvLogLevel     = "SHOPHUB_LOG_LEVEL"
	EnvLogWarnStack = "SHOPHUB_LOG_WARN_STACK"

	EnvCatalogBaseURL = "SHOPHUB_CATALOG_BASE_URL"
	EnvCatalogTimeout = "SHOPHUB_CATALOG_TIMEOUT"

	EnvStorageBackend = "SHOPHUB_STORAGE_BACKEND"
	EnvStorageDir     = "SHOPHUB_STORAGE_DIR"
	EnvSQLitePath     = "SHOPHUB_SQLITE_PATH"

	EnvRedisURL  = "SHOPHUB_REDIS_URL"
	EnvRedisAddr = "SHOPHUB_REDIS_ADDR"

	EnvJWTSecret  = "SHOPHUB_JWT_SECRET"
	EnvJWTIssuer  = "SHOPHUB_JWT_ISSUER"
	EnvJWTExpMins = "SHOPHUB_JWT_EXPIRATION_MINUTES"
)
