package config

const (
	EnvPrefix = "HAMPERHOUSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EventingDriverNone   = "none"
	EventingDriverPubSub = "pubsub"
	EventingDriverKafka  = "kafka"
)

const (
	EnvAppEnv       = "HAMPERHOUSE_APP_ENV"
	EnvPort         = "HAMPERHOUSE_APP_PORT"
	EnvDBDSN        = "HAMPERHOUSE_DB_DSN"
	EnvDBHost       = "HAMPERHOUSE_DB_HOST"
	EnvDBUser       = "HAMPERHOUSE_DB_USER"
	EnvDBName       = "HAMPERHOUSE_DB_NAME"
	EnvDBPassword   = "HAMPERHOUSE_DB_PASSWORD"
	EnvRedisURL     = "HAMPERHOUSE_REDIS_URL"
	EnvMongoURI     = "HAMPERHOUSE_MONGO_URI"
	EnvJWTSecret    = "HAMPERHOUSE_JWT_SECRET"
	EnvJWTIssuer    = "HAMPERHOUSE_JWT_ISSUER"
	EnvJWTExpMins   = "HAMPERHOUSE_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID = "HAMPERHOUSE_GCP_PROJECT_ID"
	EnvKafkaBrokers = "HAMPERHOUSE_KAFKA_BROKERS"

	EnvEventingDriver        = "HAMPERHOUSE_EVENTING_DRIVER"
	EnvFreeShippingThreshold = "HAMPERHOUSE_PRICING_FREE_SHIPPING_THRESHOLD"
	EnvExtraDiscountPercent  = "HAMPERHOUSE_PRICING_EXTRA_DISCOUNT_PERCENTAGE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
