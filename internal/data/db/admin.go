package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/config"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

func checkIdent(kind, v string) error {
	if !identRe.MatchString(v) {
		return fmt.Errorf("invalid %s %q", kind, v)
	}
	return nil
}

func quoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// openServer connects with the root credentials without selecting the target database.
func openServer(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var d gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		d = postgres.Open(postgresDSN(cfg.Host, cfg.Port, cfg.RootUser, cfg.RootPassword, "postgres"))
	case config.DriverMySQL:
		d = mysql.Open(mysqlDSN(cfg.Host, cfg.Port, cfg.RootUser, cfg.RootPassword, ""))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
	gdb, err := gorm.Open(d, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s as %s: %w", cfg.Driver, cfg.RootUser, err)
	}
	return gdb, nil
}

func closeGorm(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// CreateDatabase creates the database and the application user and grants the user
// full privileges on it. Existing objects are left in place.
func CreateDatabase(ctx context.Context, cfg config.DatabaseConfig, logg *logger.Logger) error {
	if logg == nil {
		logg = logger.Nop()
	}
	if cfg.Driver == config.DriverSQLite {
		st, err := Open(cfg, logg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.DB().WithContext(ctx).Exec("SELECT 1").Error; err != nil {
			return err
		}
		logg.Info("Database created or already exists", "db_name", cfg.Name)
		return nil
	}
	if err := checkIdent("database name", cfg.Name); err != nil {
		return err
	}
	if err := checkIdent("user", cfg.User); err != nil {
		return err
	}

	gdb, err := openServer(cfg)
	if err != nil {
		return err
	}
	defer closeGorm(gdb)
	tx := gdb.WithContext(ctx)

	switch cfg.Driver {
	case config.DriverMySQL:
		stmts := []string{
			fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.Name),
			fmt.Sprintf("CREATE USER IF NOT EXISTS %s@'%%' IDENTIFIED BY %s", quoteLiteral(cfg.User), quoteLiteral(cfg.Password)),
			fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO %s@'%%'", cfg.Name, quoteLiteral(cfg.User)),
			"FLUSH PRIVILEGES",
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
	case config.DriverPostgres:
		var n int64
		if err := tx.Raw("SELECT COUNT(*) FROM pg_roles WHERE rolname = ?", cfg.User).Scan(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Exec(fmt.Sprintf(`CREATE USER "%s" WITH PASSWORD %s`, cfg.User, quoteLiteral(cfg.Password))).Error; err != nil {
				return err
			}
		}
		logg.Info("User created or already exists", "db_user", cfg.User)
		if err := tx.Raw("SELECT COUNT(*) FROM pg_database WHERE datname = ?", cfg.Name).Scan(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			// CREATE DATABASE cannot run inside a transaction block; gorm's Exec does not open one.
			if err := tx.Exec(fmt.Sprintf(`CREATE DATABASE "%s" OWNER "%s"`, cfg.Name, cfg.User)).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec(fmt.Sprintf(`GRANT ALL PRIVILEGES ON DATABASE "%s" TO "%s"`, cfg.Name, cfg.User)).Error; err != nil {
			return err
		}
	}
	logg.Info("Database created or already exists", "db_name", cfg.Name)
	logg.Info("Privileges granted", "db_user", cfg.User, "db_name", cfg.Name)
	return nil
}

// DropDatabase removes the database if it exists. The application user is kept.
func DropDatabase(ctx context.Context, cfg config.DatabaseConfig, logg *logger.Logger) error {
	if logg == nil {
		logg = logger.Nop()
	}
	if cfg.Driver == config.DriverSQLite {
		if cfg.Name == "" || strings.Contains(cfg.Name, ":memory:") {
			return nil
		}
		if err := os.Remove(cfg.Name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		logg.Info("Database dropped successfully (if it existed)", "db_name", cfg.Name)
		return nil
	}
	if err := checkIdent("database name", cfg.Name); err != nil {
		return err
	}
	gdb, err := openServer(cfg)
	if err != nil {
		return err
	}
	defer closeGorm(gdb)

	stmt := fmt.Sprintf(`DROP DATABASE IF EXISTS "%s"`, cfg.Name)
	if cfg.Driver == config.DriverMySQL {
		stmt = fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", cfg.Name)
	}
	if err := gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
		return err
	}
	logg.Info("Database dropped successfully (if it existed)", "db_name", cfg.Name)
	return nil
}
