package config

// EnvPrefix is passed to envconfig; variable names carry the MINPAKU_ prefix
// explicitly, so no additional prefix is applied.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "MINPAKU_DB_DSN"
	EnvDBHost = "MINPAKU_DB_HOST"
	EnvDBUser = "MINPAKU_DB_USER"
	EnvDBName = "MINPAKU_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
