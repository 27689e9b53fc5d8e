package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Idempotency   IdempotencyConfig
	Gateway       GatewayConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CHRONOMART_APP_ENV" required:"true"`
	Port         string `envconfig:"CHRONOMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHRONOMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHRONOMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CHRONOMART_DB_DSN"`
	Driver string `envconfig:"CHRONOMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHRONOMART_DB_HOST"`
	LegacyPort     int    `envconfig:"CHRONOMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHRONOMART_DB_USER"`
	LegacyPassword string `envconfig:"CHRONOMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHRONOMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHRONOMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHRONOMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHRONOMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHRONOMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHRONOMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHRONOMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CHRONOMART_REDIS_ADDR"`
	Password     string        `envconfig:"CHRONOMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHRONOMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHRONOMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHRONOMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHRONOMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHRONOMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHRONOMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret          string `envconfig:"CHRONOMART_JWT_SECRET" required:"true"`
	Issuer          string `envconfig:"CHRONOMART_JWT_ISSUER" required:"true"`
	ExpirationHours int    `envconfig:"CHRONOMART_JWT_EXPIRATION_HOURS" default:"168"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(j.ExpirationHours) * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CHRONOMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CHRONOMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CHRONOMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CHRONOMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CHRONOMART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CHRONOMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CHRONOMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CHRONOMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CHRONOMART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CHRONOMART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CHRONOMART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	ResponseTTL time.Duration `envconfig:"CHRONOMART_IDEMPOTENCY_RESPONSE_TTL" default:"24h"`
	CallbackTTL time.Duration `envconfig:"CHRONOMART_IDEMPOTENCY_CALLBACK_TTL" default:"720h"`
}

type GatewayConfig struct {
	BaseURL        string        `envconfig:"CHRONOMART_GATEWAY_BASE_URL"`
	AppID          string        `envconfig:"CHRONOMART_GATEWAY_APP_ID"`
	Secret         string        `envconfig:"CHRONOMART_GATEWAY_SECRET"`
	ReturnURL      string        `envconfig:"CHRONOMART_GATEWAY_RETURN_URL"`
	RequestTimeout time.Duration `envconfig:"CHRONOMART_GATEWAY_REQUEST_TIMEOUT" default:"10s"`
	RetryMax       int           `envconfig:"CHRONOMART_GATEWAY_RETRY_MAX" default:"3"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CHRONOMART_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CHRONOMART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CHRONOMART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrderTopic string `envconfig:"CHRONOMART_PUBSUB_ORDER_TOPIC" default:"cm-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CHRONOMART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CHRONOMART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CHRONOMART_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CHRONOMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CHRONOMART_AUTO_MIGRATE" default:"false"`
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
