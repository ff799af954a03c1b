package tests

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gorm.io/morph"
	"gorm.io/morph/builder"
	"gorm.io/morph/dialects/sqlite"
	"gorm.io/morph/logger"
	"gorm.io/morph/schema"
)

// OpenDB in memory sqlite database with the comment schema built and its tables created
func OpenDB(t *testing.T, opts ...morph.ConfigOption) (*morph.DB, *Fixtures) {
	t.Helper()

	db, err := morph.Open(sqlite.Open(":memory:"), append([]morph.ConfigOption{morph.WithLogger(logger.Discard)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fixtures, err := Build(context.Background(), db.Registry)
	require.NoError(t, err)

	require.NoError(t, CreateTables(context.Background(), db))
	return db, fixtures
}

// CreateTables creates the tables and indexes of every registered meta
func CreateTables(ctx context.Context, db *morph.DB) error {
	return db.Migrator().CreateTable(ctx, db.Registry.All()...)
}

// Insert inserts a row of attributes into the table of meta and returns it as a persisted record
func Insert(t *testing.T, db *morph.DB, meta *schema.Meta, attributes map[string]interface{}) *schema.Record {
	t.Helper()

	var (
		dialector = sqlite.Dialector{}
		stmt      strings.Builder
		columns   []string
		vars      []interface{}
	)

	for _, field := range meta.Fields {
		if column, ok := field.(schema.ColumnField); ok {
			native := column.Attribute().Native
			if value, ok := attributes[native]; ok {
				columns = append(columns, native)
				vars = append(vars, value)
			}
		}
	}

	stmt.WriteString("INSERT INTO ")
	dialector.QuoteTo(&stmt, meta.Table)
	stmt.WriteString(" (")
	for idx, column := range columns {
		if idx > 0 {
			stmt.WriteByte(',')
		}
		dialector.QuoteTo(&stmt, column)
	}
	stmt.WriteString(") VALUES (")
	stmt.WriteString(strings.TrimSuffix(strings.Repeat("?,", len(columns)), ","))
	stmt.WriteString(")")

	executor := db.ConnPool.(builder.Executor)
	_, err := executor.ExecContext(context.Background(), stmt.String(), vars...)
	require.NoError(t, err)

	record := meta.New(attributes)
	record.Persisted = true
	return record
}

// Pluck values of column of the rows of meta's table matching where, ordered by primary key
func Pluck(t *testing.T, db *morph.DB, meta *schema.Meta, column, where string, vars ...interface{}) []interface{} {
	t.Helper()

	var (
		dialector = sqlite.Dialector{}
		stmt      strings.Builder
		values    []interface{}
	)

	stmt.WriteString("SELECT ")
	dialector.QuoteTo(&stmt, column)
	stmt.WriteString(" FROM ")
	dialector.QuoteTo(&stmt, meta.Table)
	if where != "" {
		stmt.WriteString(" WHERE " + where)
	}
	stmt.WriteString(" ORDER BY ")
	dialector.QuoteTo(&stmt, meta.PrimaryColumn())

	pool, ok := db.ConnPool.(*sql.DB)
	require.True(t, ok, "connection pool should be a *sql.DB")

	rows, err := pool.QueryContext(context.Background(), stmt.String(), vars...)
	require.NoError(t, err)
	defer rows.Close()

	for rows.Next() {
		var value interface{}
		require.NoError(t, rows.Scan(&value))
		values = append(values, value)
	}
	require.NoError(t, rows.Err())
	return values
}
