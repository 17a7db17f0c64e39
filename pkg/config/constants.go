package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "tillpoint"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv      = "TILLPOINT_APP_ENV"
	EnvPort        = "TILLPOINT_APP_PORT"
	EnvDBDSN       = "TILLPOINT_DB_DSN"
	EnvDBHost      = "TILLPOINT_DB_HOST"
	EnvDBUser      = "TILLPOINT_DB_USER"
	EnvDBName      = "TILLPOINT_DB_NAME"
	EnvRedisURL    = "TILLPOINT_REDIS_URL"
	EnvTaxRate     = "TILLPOINT_CHECKOUT_TAX_RATE"
	EnvUseSQLite   = "TILLPOINT_USE_SQLITE"
	EnvAutoMigrate = "TILLPOINT_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
