package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config aggregates every deployment-time setting the platform consumes.
type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GoogleMaps    GoogleMapsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Offers        OffersConfig
	Realtime      RealtimeConfig
	Stats         StatsConfig
	Notifications NotificationsConfig
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BEATSPACE_APP_ENV" required:"true"`
	Port         string `envconfig:"BEATSPACE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BEATSPACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BEATSPACE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BEATSPACE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BEATSPACE_DB_DSN"`
	Driver string `envconfig:"BEATSPACE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BEATSPACE_DB_HOST"`
	LegacyPort     int    `envconfig:"BEATSPACE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BEATSPACE_DB_USER"`
	LegacyPassword string `envconfig:"BEATSPACE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BEATSPACE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BEATSPACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BEATSPACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BEATSPACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BEATSPACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BEATSPACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BEATSPACE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BEATSPACE_REDIS_ADDR"`
	Password     string        `envconfig:"BEATSPACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BEATSPACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BEATSPACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BEATSPACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BEATSPACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BEATSPACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BEATSPACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BEATSPACE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BEATSPACE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BEATSPACE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BEATSPACE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BEATSPACE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BEATSPACE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BEATSPACE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BEATSPACE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BEATSPACE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BEATSPACE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BEATSPACE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BEATSPACE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BEATSPACE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BEATSPACE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BEATSPACE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BEATSPACE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BEATSPACE_AUTO_MIGRATE" default:"false"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"BEATSPACE_GOOGLE_MAPS_API_KEY"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BEATSPACE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"BEATSPACE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BEATSPACE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OffersTopic              string `envconfig:"BEATSPACE_PUBSUB_OFFERS_TOPIC" default:"bs-offer-events"`
	OffersSubscription       string `envconfig:"BEATSPACE_PUBSUB_OFFERS_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"BEATSPACE_PUBSUB_NOTIFICATION_TOPIC" default:"bs-notification-events"`
	NotificationSubscription string `envconfig:"BEATSPACE_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BEATSPACE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BEATSPACE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BEATSPACE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type OffersConfig struct {
	PageSize          int `envconfig:"BEATSPACE_OFFERS_PAGE_SIZE" default:"10"`
	EnrichConcurrency int `envconfig:"BEATSPACE_OFFERS_ENRICH_CONCURRENCY" default:"8"`
}

type RealtimeConfig struct {
	RefreshQuietPeriod time.Duration `envconfig:"BEATSPACE_REALTIME_REFRESH_QUIET_PERIOD" default:"2s"`
	SendBuffer         int           `envconfig:"BEATSPACE_REALTIME_SEND_BUFFER" default:"32"`
	PingInterval       time.Duration `envconfig:"BEATSPACE_REALTIME_PING_INTERVAL" default:"30s"`
	WriteTimeout       time.Duration `envconfig:"BEATSPACE_REALTIME_WRITE_TIMEOUT" default:"10s"`
}

type StatsConfig struct {
	RefreshInterval time.Duration `envconfig:"BEATSPACE_STATS_REFRESH_INTERVAL" default:"30s"`
	CacheTTL        time.Duration `envconfig:"BEATSPACE_STATS_CACHE_TTL" default:"2m"`
}

type NotificationsConfig struct {
	RetentionDays int `envconfig:"BEATSPACE_NOTIFICATIONS_RETENTION_DAYS" default:"90"`
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
