package config

// EnvPrefix is handed to envconfig; individual fields carry explicit
// LEARNLOOP_ tags so the prefix stays informational.
const EnvPrefix = "learnloop"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv      = "LEARNLOOP_APP_ENV"
	EnvPort        = "LEARNLOOP_APP_PORT"
	EnvSiteBaseURL = "LEARNLOOP_SITE_BASE_URL"
	EnvDBDSN       = "LEARNLOOP_DB_DSN"
	EnvDBHost      = "LEARNLOOP_DB_HOST"
	EnvDBUser      = "LEARNLOOP_DB_USER"
	EnvDBName      = "LEARNLOOP_DB_NAME"
	EnvRedisURL    = "LEARNLOOP_REDIS_URL"
	EnvJWTSecret   = "LEARNLOOP_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
