package config

const (
	EnvPrefix = "CHRONOMART"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv    = "CHRONOMART_APP_ENV"
	EnvPort      = "CHRONOMART_APP_PORT"
	EnvDBDSN     = "CHRONOMART_DB_DSN"
	EnvDBHost    = "CHRONOMART_DB_HOST"
	EnvDBUser    = "CHRONOMART_DB_USER"
	EnvDBName    = "CHRONOMART_DB_NAME"
	EnvRedisURL  = "CHRONOMART_REDIS_URL"
	EnvJWTSecret = "CHRONOMART_JWT_SECRET"
	EnvJWTIssuer = "CHRONOMART_JWT_ISSUER"

	EnvGatewaySecret    = "CHRONOMART_GATEWAY_SECRET"
	EnvGatewayBaseURL   = "CHRONOMART_GATEWAY_BASE_URL"
	EnvGCPProjectID     = "CHRONOMART_GCP_PROJECT_ID"
	EnvPubSubOrderTopic = "CHRONOMART_PUBSUB_ORDER_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
