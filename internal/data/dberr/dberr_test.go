package dberr

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/swapi-mirror/internal/data/db"
	"github.com/yungbote/swapi-mirror/internal/domain/catalog"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"pg undefined table", &pgconn.PgError{Code: "42P01"}, KindSchemaMissing},
		{"pg insufficient privilege", &pgconn.PgError{Code: "42501"}, KindSchemaPermission},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, KindIntegrity},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, KindConnectivity},
		{"pg auth failure", &pgconn.PgError{Code: "28P01"}, KindConnectivity},
		{"pg unknown database", &pgconn.PgError{Code: "3D000"}, KindConnectivity},
		{"pg other", &pgconn.PgError{Code: "53100"}, KindStore},
		{"mysql missing table", &mysql.MySQLError{Number: 1146, Message: "Table 'swapi.character' doesn't exist"}, KindSchemaMissing},
		{"mysql access denied", &mysql.MySQLError{Number: 1045}, KindConnectivity},
		{"mysql command denied", &mysql.MySQLError{Number: 1142}, KindSchemaPermission},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, KindIntegrity},
		{"mysql invalid conn", mysql.ErrInvalidConn, KindConnectivity},
		{"missing natural key", fmt.Errorf("project: %w", catalog.ErrMissingKey), KindIntegrity},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, KindIntegrity},
		{"sqlite cant open", sqlite3.Error{Code: sqlite3.ErrCantOpen}, KindConnectivity},
		{"sqlite readonly", sqlite3.Error{Code: sqlite3.ErrReadonly}, KindSchemaPermission},
		{"wrapped pg", fmt.Errorf("store: %w", &pgconn.PgError{Code: "23505"}), KindIntegrity},
		{"unsupported driver", fmt.Errorf("%w: oracle", db.ErrUnsupportedDriver), KindDriverMissing},
		{"unknown sql driver", errors.New(`sql: unknown driver "oracle" (forgotten import?)`), KindDriverMissing},
		{"gorm duplicate", gorm.ErrDuplicatedKey, KindIntegrity},
		{"gorm invalid tx", gorm.ErrInvalidTransaction, KindStore},
		{"net", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, KindConnectivity},
		{"other", errors.New("boom"), KindUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}

func TestHandle(t *testing.T) {
	log := logger.Nop()

	if err := Handle(log, nil, "store"); err != nil {
		t.Fatalf("nil: want=nil got=%v", err)
	}
	if err := Handle(log, &pgconn.PgError{Code: "42P01"}, "store characters"); err != nil {
		t.Fatalf("missing table should be swallowed, got=%v", err)
	}

	cause := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	err := Handle(log, cause, "store characters")
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("want *Error got=%T", err)
	}
	if de.Kind != KindIntegrity || de.Op != "store characters" {
		t.Fatalf("classified: got=%+v", de)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must stay reachable through Unwrap")
	}
	if again := Handle(log, err, "other op"); again != err {
		t.Fatalf("already handled errors are returned as-is")
	}
	if !IsKind(err, KindIntegrity) || IsKind(err, KindConnectivity) {
		t.Fatalf("IsKind mismatch")
	}

	unknown := Handle(log, errors.New("boom"), "")
	if !errors.As(unknown, &de) || de.Kind != KindUnknown || de.Op != "database operation" {
		t.Fatalf("unknown: got=%v", unknown)
	}
}

func TestClassifySQLiteMissingTable(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	var n int64
	qErr := gdb.Table("character").Count(&n).Error
	if qErr == nil {
		t.Fatalf("expected error querying a missing table")
	}
	if got := Classify(qErr); got != KindSchemaMissing {
		t.Fatalf("want=%s got=%s (%v)", KindSchemaMissing, got, qErr)
	}
	if err := Handle(logger.Nop(), qErr, "list characters"); err != nil {
		t.Fatalf("missing table should be swallowed, got=%v", err)
	}
}

func TestWrapKeepsMissingTable(t *testing.T) {
	err := Wrap(logger.Nop(), &pgconn.PgError{Code: "42P01"}, "list characters")
	if !IsKind(err, KindSchemaMissing) {
		t.Fatalf("want schema_missing got=%v", err)
	}
	if Wrap(logger.Nop(), nil, "x") != nil {
		t.Fatalf("nil must stay nil")
	}
}
