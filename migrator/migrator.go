package migrator

import (
	"context"
	"fmt"
	"time"

	"gorm.io/morph/builder"
	"gorm.io/morph/clause"
	"gorm.io/morph/dialect"
	"gorm.io/morph/logger"
	"gorm.io/morph/schema"
)

// Migrator migrator struct
type Migrator struct {
	Config
}

// Config schema config
type Config struct {
	CheckExistsBeforeDropping bool
	Dialector                 dialect.Dialector
	Executor                  builder.Executor
	Logger                    logger.Interface
}

// New migrator executing its statements on executor
func New(config Config) *Migrator {
	if config.Dialector == nil {
		config.Dialector = dialect.Common{}
	}
	if config.Logger == nil {
		config.Logger = logger.Discard
	}
	return &Migrator{Config: config}
}

// CreateTableSQL `CREATE TABLE` statement of meta, meta must be finalized
func (m Migrator) CreateTableSQL(meta *schema.Meta) (string, error) {
	if meta.State() != schema.Finalized {
		return "", fmt.Errorf("%w: table of %s created before the schema is built", schema.ErrState, meta.Name)
	}

	columns := ColumnTypes(m.Dialector, meta)
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: %s has no column", schema.ErrConfiguration, meta.Name)
	}

	var primaries []string
	for _, column := range columns {
		if column.PrimaryKey() {
			primaries = append(primaries, column.Name())
		}
	}

	stmt := builder.NewStatement(m.Dialector, meta.Table, meta.PrimaryColumn())
	stmt.WriteString("CREATE TABLE ")
	stmt.WriteQuoted(clause.Table{Name: meta.Table})
	stmt.WriteString(" (")
	for idx, column := range columns {
		if idx > 0 {
			stmt.WriteByte(',')
		}
		stmt.WriteQuoted(clause.Column{Name: column.Name()})
		stmt.WriteByte(' ')
		stmt.WriteString(column.DatabaseTypeName())
		if column.PrimaryKey() && len(primaries) == 1 {
			stmt.WriteString(" PRIMARY KEY")
		}
	}

	if len(primaries) > 1 {
		stmt.WriteString(",PRIMARY KEY (")
		for idx, name := range primaries {
			if idx > 0 {
				stmt.WriteByte(',')
			}
			stmt.WriteQuoted(clause.Column{Name: name})
		}
		stmt.WriteByte(')')
	}
	stmt.WriteByte(')')
	return stmt.String(), nil
}

// CreateIndexSQL `CREATE INDEX` statement of idx
func (m Migrator) CreateIndexSQL(idx Index) string {
	stmt := builder.NewStatement(m.Dialector, idx.Table(), "")
	stmt.WriteString("CREATE ")
	if idx.Unique() {
		stmt.WriteString("UNIQUE ")
	}
	stmt.WriteString("INDEX ")
	stmt.WriteQuoted(idx.Name())
	stmt.WriteString(" ON ")
	stmt.WriteQuoted(clause.Table{Name: idx.Table()})
	stmt.WriteString(" (")
	for i, column := range idx.Columns() {
		if i > 0 {
			stmt.WriteByte(',')
		}
		stmt.WriteQuoted(clause.Column{Name: column})
	}
	stmt.WriteByte(')')
	return stmt.String()
}

// CreateTable create table and indexes of metas
func (m Migrator) CreateTable(ctx context.Context, metas ...*schema.Meta) error {
	for _, meta := range metas {
		sql, err := m.CreateTableSQL(meta)
		if err != nil {
			return err
		}
		if err := m.exec(ctx, sql); err != nil {
			return fmt.Errorf("create table %s: %w", meta.Table, err)
		}

		for _, idx := range Indexes(meta) {
			if err := m.exec(ctx, m.CreateIndexSQL(idx)); err != nil {
				return fmt.Errorf("create index %s: %w", idx.Name(), err)
			}
		}
	}
	return nil
}

// DropTable drop table of metas, indexes are dropped with their table
func (m Migrator) DropTable(ctx context.Context, metas ...*schema.Meta) error {
	for i := len(metas) - 1; i >= 0; i-- {
		stmt := builder.NewStatement(m.Dialector, metas[i].Table, "")
		stmt.WriteString("DROP TABLE ")
		if m.CheckExistsBeforeDropping {
			stmt.WriteString("IF EXISTS ")
		}
		stmt.WriteQuoted(clause.Table{Name: metas[i].Table})

		if err := m.exec(ctx, stmt.String()); err != nil {
			return fmt.Errorf("drop table %s: %w", metas[i].Table, err)
		}
	}
	return nil
}

func (m Migrator) exec(ctx context.Context, sql string) error {
	if m.Executor == nil {
		return builder.ErrNoExecutor
	}

	begin := time.Now()
	_, err := m.Executor.ExecContext(ctx, sql)
	m.Logger.Trace(ctx, begin, func() (string, int64) { return sql, 0 }, err)
	if err != nil {
		return dialect.Translate(m.Dialector, err)
	}
	return nil
}
