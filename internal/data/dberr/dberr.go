package dberr

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/data/db"
	"github.com/yungbote/swapi-mirror/internal/domain/catalog"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type Kind string

const (
	KindConnectivity     Kind = "connectivity"
	KindSchemaMissing    Kind = "schema_missing"
	KindSchemaPermission Kind = "schema_permission"
	KindIntegrity        Kind = "integrity"
	KindDriverMissing    Kind = "driver_missing"
	KindStore            Kind = "store"
	KindUnknown          Kind = "unknown"
)

// Error is a classified storage failure. Op names what was being attempted.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func IsKind(err error, k Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == k
	}
	return Classify(err) == k
}

func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgres(pgErr.Code)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return classifyMySQL(myErr.Number)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(liteErr)
	}

	switch {
	case errors.Is(err, db.ErrUnsupportedDriver):
		return KindDriverMissing
	case strings.Contains(err.Error(), "sql: unknown driver"):
		return KindDriverMissing
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, catalog.ErrMissingKey):
		return KindIntegrity
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, mysql.ErrInvalidConn):
		return KindConnectivity
	}
	var pgConnErr *pgconn.ConnectError
	if errors.As(err, &pgConnErr) {
		return KindConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	if isGormError(err) {
		return KindStore
	}
	return KindUnknown
}

func classifyPostgres(code string) Kind {
	switch {
	case code == "42P01":
		return KindSchemaMissing
	case code == "3D000":
		return KindConnectivity
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "28"):
		return KindConnectivity
	case strings.HasPrefix(code, "42"):
		return KindSchemaPermission
	case strings.HasPrefix(code, "23"):
		return KindIntegrity
	}
	return KindStore
}

func classifyMySQL(n uint16) Kind {
	switch n {
	case 1044, 1045, 1049, 2002, 2003, 2006, 2013:
		return KindConnectivity
	case 1146:
		return KindSchemaMissing
	case 1142, 1143, 1227:
		return KindSchemaPermission
	case 1062, 1451, 1452, 1048:
		return KindIntegrity
	}
	return KindStore
}

func classifySQLite(e sqlite3.Error) Kind {
	if strings.Contains(strings.ToLower(e.Error()), "no such table") {
		return KindSchemaMissing
	}
	switch e.Code {
	case sqlite3.ErrConstraint:
		return KindIntegrity
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB:
		return KindConnectivity
	case sqlite3.ErrAuth, sqlite3.ErrReadonly, sqlite3.ErrPerm:
		return KindSchemaPermission
	case sqlite3.ErrError:
		return KindSchemaPermission
	}
	return KindStore
}

var gormSentinels = []error{
	gorm.ErrRecordNotFound,
	gorm.ErrInvalidTransaction,
	gorm.ErrNotImplemented,
	gorm.ErrMissingWhereClause,
	gorm.ErrUnsupportedRelation,
	gorm.ErrPrimaryKeyRequired,
	gorm.ErrModelValueRequired,
	gorm.ErrInvalidData,
	gorm.ErrUnsupportedDriver,
	gorm.ErrRegistered,
	gorm.ErrInvalidField,
	gorm.ErrEmptySlice,
	gorm.ErrDryRunModeUnsupported,
	gorm.ErrInvalidDB,
	gorm.ErrInvalidValue,
	gorm.ErrInvalidValueOfLength,
	gorm.ErrPreloadNotAllowed,
}

func isGormError(err error) bool {
	for _, s := range gormSentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// Handle classifies err, logs a remediation hint and returns the classified error.
// A missing table is logged and swallowed: Handle returns nil for it.
func Handle(log *logger.Logger, err error, op string) error {
	if err == nil {
		return nil
	}
	if log == nil {
		log = logger.Nop()
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	if op == "" {
		op = "database operation"
	}
	kind := Classify(err)
	switch kind {
	case KindConnectivity:
		log.Error(fmt.Sprintf("Could not connect during %s. Check if the database exists and credentials are correct.", op))
	case KindSchemaMissing:
		log.Error(fmt.Sprintf("%s: table not found. The database tables have not been created yet. Run `swapictl create-tables`.", op))
		log.Debug("Full error", "error", err)
		return nil
	case KindSchemaPermission:
		log.Error(fmt.Sprintf("Permission error during %s. Database user may lack required privileges.", op))
	case KindIntegrity:
		log.Error(fmt.Sprintf("Integrity error during %s. Possible duplicate keys or constraint violation.", op))
	case KindDriverMissing:
		log.Error(fmt.Sprintf("Database driver not found during %s. Check DB_DRIVER.", op))
	case KindStore:
		log.Error(fmt.Sprintf("Unexpected database error during %s.", op))
	default:
		log.Error(fmt.Sprintf("Unknown error during %s.", op))
	}
	log.Debug("Full error", "error", err)
	return &Error{Kind: kind, Op: op, Err: err}
}

// Wrap logs like Handle but never swallows: a missing table is returned as a
// KindSchemaMissing error. Used on read paths, where there is nothing to skip.
func Wrap(log *logger.Logger, err error, op string) error {
	if err == nil {
		return nil
	}
	if h := Handle(log, err, op); h != nil {
		return h
	}
	if op == "" {
		op = "database operation"
	}
	return &Error{Kind: KindSchemaMissing, Op: op, Err: err}
}
