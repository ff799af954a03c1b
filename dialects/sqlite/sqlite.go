package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gorm.io/morph/clause"
	"gorm.io/morph/dialect"
	// pure go sqlite driver, registered as "sqlite"
	_ "modernc.org/sqlite"
)

// DriverName name the driver registers with database/sql
const DriverName = "sqlite"

type Dialector struct {
	DSN          string
	MaxOpenConns int
	PingTimeout  time.Duration
}

// Open sqlite dialector for dsn, in memory databases are pinned to a single connection
func Open(dsn string) *Dialector {
	dialector := &Dialector{DSN: dsn, PingTimeout: 3 * time.Second}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		dialector.MaxOpenConns = 1
	}
	return dialector
}

func (dialector Dialector) Name() string {
	return DriverName
}

// Initialize open and ping the connection pool
func (dialector Dialector) Initialize(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dialector.DSN)
	if err != nil {
		return nil, err
	}

	if dialector.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dialector.MaxOpenConns)
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

func (dialector Dialector) QuoteTo(writer clause.Writer, str string) {
	dialect.Common{}.QuoteTo(writer, str) // `name`
}

func (dialector Dialector) BindVarTo(writer clause.Writer, index int, v interface{}) {
	writer.WriteByte('?')
}

// DataTypeOf sqlite column type of a go kind name
func (dialector Dialector) DataTypeOf(kind string) string {
	switch kind {
	case "bool":
		return "numeric"
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return "integer"
	case "float32", "float64":
		return "real"
	case "[]byte":
		return "blob"
	default:
		return "text"
	}
}
