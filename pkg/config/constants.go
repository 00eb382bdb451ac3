package config

// EnvPrefix is the envconfig prefix shared by every BeatSpace variable.
const EnvPrefix = "BEATSPACE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags.
const (
	EnvAppEnv = "BEATSPACE_APP_ENV"
	EnvPort   = "BEATSPACE_APP_PORT"
	EnvDBDSN  = "BEATSPACE_DB_DSN"
	EnvDBHost = "BEATSPACE_DB_HOST"
	EnvDBUser = "BEATSPACE_DB_USER"
	EnvDBName = "BEATSPACE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
