package config

const (
	EnvPrefix = "STOREOPS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STOREOPS_DB_DSN"
	EnvDBHost = "STOREOPS_DB_HOST"
	EnvDBUser = "STOREOPS_DB_USER"
	EnvDBName = "STOREOPS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
