package morph

import (
	"context"
	"database/sql"

	"gorm.io/morph/schema"
)

// ConnPool db conns pool interface
type ConnPool interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// TxBeginner tx beginner
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ schema.Querier    = (*DB)(nil)
	_ schema.Transactor = (*DB)(nil)
)
