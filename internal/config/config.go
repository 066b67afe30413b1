package config

import "time"

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	// CORSOrigins lists allowed browser origins; empty allows any origin.
	CORSOrigins       []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	// Name is the database name, or the file path for sqlite (":memory:" allowed).
	Name string `yaml:"name"`

	// Root credentials are only used by swapictl create-db / drop-db.
	RootUser     string `yaml:"root_user"`
	RootPassword string `yaml:"root_password"`
}

type SwapiConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Timeout    time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Swapi    SwapiConfig    `yaml:"swapi"`
	Redis    RedisConfig    `yaml:"redis"`

	MetricsEnabled    bool `yaml:"metrics_enabled"`
	LogFetchedObjects bool `yaml:"log_fetched_objects"`
	// AutoMigrate creates missing tables when the server starts.
	AutoMigrate       bool `yaml:"auto_migrate"`
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Name:     "swapi_db",
			User:     "swapi_user",
			RootUser: "root",
		},
		Swapi: SwapiConfig{
			BaseURL:    "https://swapi.info/api",
			Retries:    3,
			RetryDelay: 2 * time.Second,
			Timeout:    10 * time.Second,
		},
		Redis: RedisConfig{
			LockTTL: 10 * time.Minute,
		},
		MetricsEnabled:    true,
		LogFetchedObjects: true,
		AutoMigrate:       true,
	}
}

// Default returns the built-in configuration without consulting files or the environment.
func Default() *Config { return defaultConfig() }
