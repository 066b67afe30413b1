package db

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/swapi-mirror/internal/config"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Store owns the gorm handle. It is built once and injected into repos and services.
type Store struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func Open(cfg config.DatabaseConfig, logg *logger.Logger) (*Store, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == config.DriverSQLite {
		// A single connection keeps ":memory:" databases shared and serialises sqlite writers.
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return &Store{db: gdb, driver: cfg.Driver, log: logg.With("service", "Store")}, nil
}

// Wrap adopts an existing handle, used by tests.
func Wrap(gdb *gorm.DB, driver string, logg *logger.Logger) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{db: gdb, driver: driver, log: logg.With("service", "Store")}
}

func (s *Store) DB() *gorm.DB    { return s.db }
func (s *Store) Driver() string { return s.driver }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig() *gorm.Config {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(postgresDSN(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)), nil
	case config.DriverMySQL:
		return mysql.Open(mysqlDSN(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.Name), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

func postgresDSN(host string, port int, user, password, name string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		user,
		password,
		net.JoinHostPort(host, strconv.Itoa(port)),
		name,
	)
}

// mysqlDSN leaves name empty to connect to the server without selecting a database.
func mysqlDSN(host string, port int, user, password, name string) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user,
		password,
		net.JoinHostPort(host, strconv.Itoa(port)),
		name,
	)
}
