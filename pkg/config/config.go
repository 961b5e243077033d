package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full runtime configuration for the minpaku backend.
type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Availability AvailabilityConfig
}

// Load reads configuration from the environment.
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
	Env          string `envconfig:"MINPAKU_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"MINPAKU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MINPAKU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"MINPAKU_DB_DSN"`

	Host     string `envconfig:"MINPAKU_DB_HOST"`
	Port     int    `envconfig:"MINPAKU_DB_PORT" default:"5432"`
	User     string `envconfig:"MINPAKU_DB_USER"`
	Password string `envconfig:"MINPAKU_DB_PASSWORD"`
	Name     string `envconfig:"MINPAKU_DB_NAME"`
	SSLMode  string `envconfig:"MINPAKU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MINPAKU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MINPAKU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MINPAKU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MINPAKU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MINPAKU_REDIS_URL"`
	Address      string        `envconfig:"MINPAKU_REDIS_ADDR"`
	Password     string        `envconfig:"MINPAKU_REDIS_PASSWORD"`
	DB           int           `envconfig:"MINPAKU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MINPAKU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MINPAKU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MINPAKU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MINPAKU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MINPAKU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The
// availability cache degrades to direct queries when it is not.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type AvailabilityConfig struct {
	CacheTTL time.Duration `envconfig:"MINPAKU_AVAILABILITY_CACHE_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if required[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
