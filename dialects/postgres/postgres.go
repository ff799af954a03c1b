package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	// pgx database/sql driver, registered as "pgx"
	_ "github.com/jackc/pgx/v5/stdlib"

	"gorm.io/morph/dialect"
)

// DriverName name the driver registers with database/sql
const DriverName = "pgx"

type Dialector struct {
	dialect.Postgres
	DSN         string
	PingTimeout time.Duration
}

func Open(dsn string) *Dialector {
	return &Dialector{DSN: dsn, PingTimeout: 5 * time.Second}
}

func (dialector Dialector) Name() string {
	return "postgres"
}

// Initialize open and ping the connection pool
func (dialector Dialector) Initialize(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dialector.DSN)
	if err != nil {
		return nil, err
	}

	if dialector.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dialector.PingTimeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (dialector Dialector) DataTypeOf(kind string) string {
	switch kind {
	case "bool":
		return "boolean"
	case "int8", "int16", "uint8":
		return "smallint"
	case "int32", "uint16":
		return "integer"
	case "int", "int64", "uint", "uint32", "uint64":
		return "bigint"
	case "float32":
		return "real"
	case "float64":
		return "double precision"
	case "[]byte":
		return "bytea"
	case "time":
		return "timestamptz"
	case "uuid":
		return "uuid"
	default:
		return "text"
	}
}

var errCodes = map[string]error{
	"23505": dialect.ErrDuplicatedKey,
	"23503": dialect.ErrForeignKeyViolated,
}

// Translate wraps unique and foreign key violations with the dialect sentinels
func (dialector Dialector) Translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if translated, found := errCodes[pgErr.Code]; found {
			return fmt.Errorf("%w: %w", translated, err)
		}
	}
	return err
}
