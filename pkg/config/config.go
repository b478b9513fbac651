package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "ALUGAFACIL"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "ALUGAFACIL_DB_DSN"
	EnvDBHost = "ALUGAFACIL_DB_HOST"
	EnvDBUser = "ALUGAFACIL_DB_USER"
	EnvDBName = "ALUGAFACIL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	AuthRate     AuthRateLimitConfig
	FeatureFlags FeatureFlagsConfig
	MercadoPago  MercadoPagoConfig
	Sendgrid     SendgridConfig
	Booking      BookingConfig
	Reconcile    ReconcileConfig
}

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
	Env          string   `envconfig:"ALUGAFACIL_APP_ENV" required:"true"`
	Port         string   `envconfig:"ALUGAFACIL_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"ALUGAFACIL_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ALUGAFACIL_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ALUGAFACIL_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ALUGAFACIL_DB_DSN"`
	Driver string `envconfig:"ALUGAFACIL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ALUGAFACIL_DB_HOST"`
	LegacyPort     int    `envconfig:"ALUGAFACIL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ALUGAFACIL_DB_USER"`
	LegacyPassword string `envconfig:"ALUGAFACIL_DB_PASSWORD"`
	LegacyName     string `envconfig:"ALUGAFACIL_DB_NAME"`
	LegacySSLMode  string `envconfig:"ALUGAFACIL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ALUGAFACIL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ALUGAFACIL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ALUGAFACIL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ALUGAFACIL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ALUGAFACIL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ALUGAFACIL_REDIS_ADDR"`
	Password     string        `envconfig:"ALUGAFACIL_REDIS_PASSWORD"`
	DB           int           `envconfig:"ALUGAFACIL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ALUGAFACIL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ALUGAFACIL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ALUGAFACIL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ALUGAFACIL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ALUGAFACIL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ALUGAFACIL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ALUGAFACIL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ALUGAFACIL_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ALUGAFACIL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ALUGAFACIL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ALUGAFACIL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ALUGAFACIL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ALUGAFACIL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ALUGAFACIL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ALUGAFACIL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ALUGAFACIL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ALUGAFACIL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ALUGAFACIL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ALUGAFACIL_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ALUGAFACIL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ALUGAFACIL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ALUGAFACIL_AUTO_MIGRATE" default:"false"`
}

type MercadoPagoConfig struct {
	AccessToken     string        `envconfig:"ALUGAFACIL_MP_ACCESS_TOKEN"`
	BaseURL         string        `envconfig:"ALUGAFACIL_MP_BASE_URL" default:"https://api.mercadopago.com"`
	WebhookSecret   string        `envconfig:"ALUGAFACIL_MP_WEBHOOK_SECRET"`
	NotificationURL string        `envconfig:"ALUGAFACIL_MP_NOTIFICATION_URL"`
	HTTPTimeout     time.Duration `envconfig:"ALUGAFACIL_MP_HTTP_TIMEOUT" default:"10s"`
	PixReuseWindow  time.Duration `envconfig:"ALUGAFACIL_MP_PIX_REUSE_WINDOW" default:"24h"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"ALUGAFACIL_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"ALUGAFACIL_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"ALUGAFACIL_SENDGRID_FROM_NAME" default:"AlugaFacil"`
}

type BookingConfig struct {
	ClientFeePercent int `envconfig:"ALUGAFACIL_CLIENT_FEE_PERCENT" default:"10"`
	OwnerFeePercent  int `envconfig:"ALUGAFACIL_OWNER_FEE_PERCENT" default:"4"`
}

type ReconcileConfig struct {
	Interval    time.Duration `envconfig:"ALUGAFACIL_RECONCILE_INTERVAL" default:"5m"`
	LockTTL     time.Duration `envconfig:"ALUGAFACIL_RECONCILE_LOCK_TTL" default:"4m"`
	MinAge      time.Duration `envconfig:"ALUGAFACIL_RECONCILE_MIN_AGE" default:"2m"`
	BatchSize   int           `envconfig:"ALUGAFACIL_RECONCILE_BATCH_SIZE" default:"50"`
	MetricsPort string        `envconfig:"ALUGAFACIL_RECONCILE_METRICS_PORT" default:"9102"`
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
