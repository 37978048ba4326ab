package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Reconcile    ReconcileConfig
	Source       SourceConfig
	Upstream     UpstreamConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Source.validate(cfg.Upstream); err != nil {
		return nil, err
	}
	// Remote mode reads everything through the upstream API.
	if !cfg.Source.IsRemote() {
		if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"QUOTEWISE_APP_ENV" required:"true"`
	Port         string   `envconfig:"QUOTEWISE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"QUOTEWISE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"QUOTEWISE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"QUOTEWISE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"QUOTEWISE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"QUOTEWISE_DB_DSN"`
	Driver string `envconfig:"QUOTEWISE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUOTEWISE_DB_HOST"`
	LegacyPort     int    `envconfig:"QUOTEWISE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUOTEWISE_DB_USER"`
	LegacyPassword string `envconfig:"QUOTEWISE_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUOTEWISE_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUOTEWISE_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"QUOTEWISE_SQLITE_PATH" default:"quotewise.db"`

	MaxOpenConns    int           `envconfig:"QUOTEWISE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUOTEWISE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTEWISE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTEWISE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	Enabled      bool          `envconfig:"QUOTEWISE_REDIS_ENABLED" default:"true"`
	URL          string        `envconfig:"QUOTEWISE_REDIS_URL"`
	Address      string        `envconfig:"QUOTEWISE_REDIS_ADDR"`
	Password     string        `envconfig:"QUOTEWISE_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUOTEWISE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUOTEWISE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTEWISE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTEWISE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTEWISE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTEWISE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CacheConfig controls the reconciliation cache tiers.
type CacheConfig struct {
	TTL    time.Duration `envconfig:"QUOTEWISE_CACHE_TTL" default:"5m"`
	Shared bool          `envconfig:"QUOTEWISE_CACHE_SHARED" default:"false"`
}

// ReconcileConfig tunes the batching used while loading reconciliation inputs.
type ReconcileConfig struct {
	BindingBatchSize   int `envconfig:"QUOTEWISE_RECONCILE_BINDING_BATCH_SIZE" default:"50"`
	BindingConcurrency int `envconfig:"QUOTEWISE_RECONCILE_BINDING_CONCURRENCY" default:"4"`
	UPCChunkSize       int `envconfig:"QUOTEWISE_RECONCILE_UPC_CHUNK_SIZE" default:"500"`
}

type SourceConfig struct {
	Mode string `envconfig:"QUOTEWISE_SOURCE_MODE" default:"db"`
}

// IsRemote reports whether reconciliation inputs come from the upstream backend.
func (s SourceConfig) IsRemote() bool {
	return strings.EqualFold(strings.TrimSpace(s.Mode), SourceModeRemote)
}

func (s SourceConfig) validate(up UpstreamConfig) error {
	mode := strings.ToLower(strings.TrimSpace(s.Mode))
	switch mode {
	case "", SourceModeDB:
		return nil
	case SourceModeRemote:
		if strings.TrimSpace(up.BaseURL) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvUpstreamBaseURL, EnvSourceMode, SourceModeRemote)
		}
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvSourceMode, s.Mode)
}

type UpstreamConfig struct {
	BaseURL    string        `envconfig:"QUOTEWISE_UPSTREAM_BASE_URL"`
	Token      string        `envconfig:"QUOTEWISE_UPSTREAM_TOKEN"`
	Timeout    time.Duration `envconfig:"QUOTEWISE_UPSTREAM_TIMEOUT" default:"20s"`
	RetryCount int           `envconfig:"QUOTEWISE_UPSTREAM_RETRY_COUNT" default:"2"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"QUOTEWISE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"QUOTEWISE_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"QUOTEWISE_CRON_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
