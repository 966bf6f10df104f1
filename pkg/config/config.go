package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Hamper       HamperConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Kafka        KafkaConfig
	BigQuery     BigQueryConfig
	Storefront   StorefrontConfig
	RateLimit    RateLimitConfig
	Maintenance  MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Eventing.validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"HAMPERHOUSE_APP_ENV" required:"true"`
	Port         string   `envconfig:"HAMPERHOUSE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"HAMPERHOUSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"HAMPERHOUSE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"HAMPERHOUSE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HAMPERHOUSE_DB_DSN"`
	Driver string `envconfig:"HAMPERHOUSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HAMPERHOUSE_DB_HOST"`
	LegacyPort     int    `envconfig:"HAMPERHOUSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HAMPERHOUSE_DB_USER"`
	LegacyPassword string `envconfig:"HAMPERHOUSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"HAMPERHOUSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"HAMPERHOUSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HAMPERHOUSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HAMPERHOUSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HAMPERHOUSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HAMPERHOUSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HAMPERHOUSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HAMPERHOUSE_REDIS_ADDR"`
	Password     string        `envconfig:"HAMPERHOUSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"HAMPERHOUSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HAMPERHOUSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HAMPERHOUSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HAMPERHOUSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HAMPERHOUSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HAMPERHOUSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// MongoConfig points at the document store holding hamper drafts.
type MongoConfig struct {
	URI              string        `envconfig:"HAMPERHOUSE_MONGO_URI" required:"true"`
	Database         string        `envconfig:"HAMPERHOUSE_MONGO_DATABASE" default:"hamperhouse"`
	DraftsCollection string        `envconfig:"HAMPERHOUSE_MONGO_DRAFTS_COLLECTION" default:"hamper_drafts"`
	ConnectTimeout   time.Duration `envconfig:"HAMPERHOUSE_MONGO_CONNECT_TIMEOUT" default:"10s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HAMPERHOUSE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HAMPERHOUSE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HAMPERHOUSE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HAMPERHOUSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HAMPERHOUSE_AUTO_MIGRATE" default:"false"`
}

// PricingConfig holds the platform fallback used when no settings row exists.
type PricingConfig struct {
	FreeShippingThreshold   decimal.Decimal `envconfig:"HAMPERHOUSE_PRICING_FREE_SHIPPING_THRESHOLD" default:"399"`
	ExtraDiscountThreshold  decimal.Decimal `envconfig:"HAMPERHOUSE_PRICING_EXTRA_DISCOUNT_THRESHOLD" default:"799"`
	ExtraDiscountPercentage decimal.Decimal `envconfig:"HAMPERHOUSE_PRICING_EXTRA_DISCOUNT_PERCENTAGE" default:"0.10"`
	FreeGiftThreshold       decimal.Decimal `envconfig:"HAMPERHOUSE_PRICING_FREE_GIFT_THRESHOLD" default:"999"`
	FlatShippingCost        decimal.Decimal `envconfig:"HAMPERHOUSE_PRICING_FLAT_SHIPPING_COST" default:"49"`
	FreeGiftName            string          `envconfig:"HAMPERHOUSE_PRICING_FREE_GIFT_NAME" default:"Complimentary gift"`
	SettingsCacheTTL        time.Duration   `envconfig:"HAMPERHOUSE_PRICING_SETTINGS_CACHE_TTL" default:"10m"`
}

// Validate rejects configurations the calculator cannot price consistently.
func (p PricingConfig) Validate() error {
	return ValidatePricing(
		p.FreeShippingThreshold,
		p.ExtraDiscountThreshold,
		p.ExtraDiscountPercentage,
		p.FreeGiftThreshold,
		p.FlatShippingCost,
	)
}

// ValidatePricing checks raw threshold values; shared with admin updates.
func ValidatePricing(freeShipping, extraThreshold, extraPercentage, freeGift, flatShipping decimal.Decimal) error {
	checks := map[string]decimal.Decimal{
		"free shipping threshold":  freeShipping,
		"extra discount threshold": extraThreshold,
		"free gift threshold":      freeGift,
		"flat shipping cost":       flatShipping,
	}
	for name, value := range checks {
		if value.IsNegative() {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	if extraPercentage.IsNegative() || extraPercentage.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("extra discount percentage must be between 0 and 1")
	}
	return nil
}

type HamperConfig struct {
	AutosaveDebounce time.Duration `envconfig:"HAMPERHOUSE_HAMPER_AUTOSAVE_DEBOUNCE" default:"1s"`
	DraftTTL         time.Duration `envconfig:"HAMPERHOUSE_HAMPER_DRAFT_TTL" default:"720h"`
	RoseProductID    string        `envconfig:"HAMPERHOUSE_HAMPER_ROSE_PRODUCT_ID"`
}

// MaintenanceConfig drives the maintenance worker.
type MaintenanceConfig struct {
	Interval      time.Duration `envconfig:"HAMPERHOUSE_MAINTENANCE_INTERVAL" default:"1h"`
	LockTTL       time.Duration `envconfig:"HAMPERHOUSE_MAINTENANCE_LOCK_TTL" default:"55m"`
	CartRetention time.Duration `envconfig:"HAMPERHOUSE_MAINTENANCE_CART_RETENTION" default:"720h"`
}

type EventingConfig struct {
	Driver string `envconfig:"HAMPERHOUSE_EVENTING_DRIVER" default:"none"`
	// DedupeTTL is how long consumers remember an event id.
	DedupeTTL time.Duration `envconfig:"HAMPERHOUSE_EVENTING_DEDUPE_TTL" default:"168h"`
}

func (e EventingConfig) validate(cfg Config) error {
	switch e.Normalized() {
	case EventingDriverNone:
		return nil
	case EventingDriverPubSub:
		if strings.TrimSpace(cfg.GCP.ProjectID) == "" {
			return fmt.Errorf("%s is required for the pubsub driver", EnvGCPProjectID)
		}
		return nil
	case EventingDriverKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("%s is required for the kafka driver", EnvKafkaBrokers)
		}
		return nil
	}
	return fmt.Errorf("unknown eventing driver %q", e.Driver)
}

// Normalized returns the lower-cased driver name.
func (e EventingConfig) Normalized() string {
	driver := strings.ToLower(strings.TrimSpace(e.Driver))
	if driver == "" {
		return EventingDriverNone
	}
	return driver
}

type GCPConfig struct {
	ProjectID              string `envconfig:"HAMPERHOUSE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"HAMPERHOUSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic           string `envconfig:"HAMPERHOUSE_PUBSUB_ORDERS_TOPIC" default:"hh-order-events"`
	TelemetryTopic        string `envconfig:"HAMPERHOUSE_PUBSUB_TELEMETRY_TOPIC" default:"hh-telemetry-events"`
	OrdersSubscription    string `envconfig:"HAMPERHOUSE_PUBSUB_ORDERS_SUBSCRIPTION" default:"hh-order-events-analytics"`
	TelemetrySubscription string `envconfig:"HAMPERHOUSE_PUBSUB_TELEMETRY_SUBSCRIPTION" default:"hh-telemetry-events-analytics"`
}

type KafkaConfig struct {
	Brokers        []string      `envconfig:"HAMPERHOUSE_KAFKA_BROKERS"`
	OrdersTopic    string        `envconfig:"HAMPERHOUSE_KAFKA_ORDERS_TOPIC" default:"hh.orders"`
	TelemetryTopic string        `envconfig:"HAMPERHOUSE_KAFKA_TELEMETRY_TOPIC" default:"hh.telemetry"`
	WriteTimeout   time.Duration `envconfig:"HAMPERHOUSE_KAFKA_WRITE_TIMEOUT" default:"5s"`
	ConsumerGroup  string        `envconfig:"HAMPERHOUSE_KAFKA_CONSUMER_GROUP" default:"hh-analytics"`
}

// BigQueryConfig names the warehouse tables the analytics worker streams into.
type BigQueryConfig struct {
	Dataset              string `envconfig:"HAMPERHOUSE_BIGQUERY_DATASET" default:"storefront"`
	OrderEventsTable     string `envconfig:"HAMPERHOUSE_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
	TelemetryEventsTable string `envconfig:"HAMPERHOUSE_BIGQUERY_TELEMETRY_EVENTS_TABLE" default:"telemetry_events"`
}

// RateLimitConfig throttles the public write surfaces. A zero limit disables it.
type RateLimitConfig struct {
	TrackWindow      time.Duration `envconfig:"HAMPERHOUSE_RATE_LIMIT_TRACK_WINDOW" default:"1m"`
	TrackIPLimit     int           `envconfig:"HAMPERHOUSE_RATE_LIMIT_TRACK_IP" default:"120"`
	ReviewWindow     time.Duration `envconfig:"HAMPERHOUSE_RATE_LIMIT_REVIEW_WINDOW" default:"1h"`
	ReviewUserLimit  int           `envconfig:"HAMPERHOUSE_RATE_LIMIT_REVIEW_USER" default:"10"`
	PlaceOrderWindow time.Duration `envconfig:"HAMPERHOUSE_RATE_LIMIT_PLACE_ORDER_WINDOW" default:"1m"`
	PlaceOrderUser   int           `envconfig:"HAMPERHOUSE_RATE_LIMIT_PLACE_ORDER_USER" default:"5"`
}

// StorefrontConfig configures the Go client SDK used by tooling and tests.
type StorefrontConfig struct {
	BaseURL string        `envconfig:"HAMPERHOUSE_STOREFRONT_BASE_URL" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"HAMPERHOUSE_STOREFRONT_TIMEOUT" default:"10s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
