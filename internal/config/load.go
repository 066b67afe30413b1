package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/swapi-mirror/internal/platform/envutil"
)

var ErrMissingDatabaseConfig = errors.New("missing required database configuration (user/password/db_name)")

// Load resolves configuration from defaults, an optional YAML file, an optional .env
// file and the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := defaultConfig()

	envPath := strings.TrimSpace(os.Getenv("SWAPI_ENV_FILE"))
	if envPath == "" {
		envPath = ".env"
	}
	if _, err := os.Stat(envPath); err == nil {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	cfgPath := strings.TrimSpace(os.Getenv("SWAPI_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		if err := loadFile(cfgPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.ShutdownTimeout = envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	if origins := envutil.String("CORS_ORIGINS", ""); origins != "" {
		cfg.HTTP.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.HTTP.CORSOrigins = append(cfg.HTTP.CORSOrigins, o)
			}
		}
	}

	db := &cfg.Database
	db.Driver = envutil.String("DB_DRIVER", db.Driver)
	db.Host = envutil.String("DB_HOST", db.Host)
	db.Port = envutil.Int("DB_PORT", db.Port)
	db.User = envutil.String("DB_USER", db.User)
	db.Password = envutil.String("DB_PASSWORD", db.Password)
	db.Name = envutil.String("DB_NAME", db.Name)
	db.RootUser = envutil.String("DB_ROOT_USER", db.RootUser)
	db.RootPassword = envutil.String("DB_ROOT_PASSWORD", db.RootPassword)

	cfg.Swapi.BaseURL = envutil.String("SWAPI_BASE_URL", cfg.Swapi.BaseURL)
	cfg.Swapi.Retries = envutil.Int("SWAPI_RETRIES", cfg.Swapi.Retries)
	cfg.Swapi.RetryDelay = envutil.Duration("SWAPI_RETRY_DELAY", cfg.Swapi.RetryDelay)
	cfg.Swapi.Timeout = envutil.Duration("SWAPI_TIMEOUT", cfg.Swapi.Timeout)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.LockTTL = envutil.Duration("SYNC_LOCK_TTL", cfg.Redis.LockTTL)

	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.LogFetchedObjects = envutil.Bool("LOG_FETCHED_OBJECTS", cfg.LogFetchedObjects)
	cfg.AutoMigrate = envutil.Bool("DB_AUTO_MIGRATE", cfg.AutoMigrate)
}

func (c *Config) normalize() {
	if c.Env == "" {
		c.Env = "development"
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		c.HTTP.Addr = ":8080"
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Port <= 0 {
		switch c.Database.Driver {
		case DriverMySQL:
			c.Database.Port = 3306
		case DriverPostgres:
			c.Database.Port = 5432
		}
	}
	c.Swapi.BaseURL = strings.TrimRight(strings.TrimSpace(c.Swapi.BaseURL), "/")
	if c.Swapi.Retries < 1 {
		c.Swapi.Retries = 1
	}
	if c.Swapi.RetryDelay < 0 {
		c.Swapi.RetryDelay = 0
	}
	if c.Swapi.Timeout <= 0 {
		c.Swapi.Timeout = defaultConfig().Swapi.Timeout
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = defaultConfig().HTTP.ShutdownTimeout
	}
}

// Validate checks that the store can be initialised from this configuration.
// Networked drivers need user, password and database name; sqlite needs only a name.
func (c *Config) Validate() error {
	db := c.Database
	switch db.Driver {
	case DriverSQLite:
		if strings.TrimSpace(db.Name) == "" {
			return ErrMissingDatabaseConfig
		}
	case DriverPostgres, DriverMySQL:
		if strings.TrimSpace(db.User) == "" || db.Password == "" || strings.TrimSpace(db.Name) == "" {
			return ErrMissingDatabaseConfig
		}
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
	if c.Swapi.BaseURL == "" {
		return errors.New("swapi base url is required")
	}
	return nil
}
