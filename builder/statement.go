package builder

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"gorm.io/morph/clause"
	"gorm.io/morph/dialect"
)

// Statement collects the SQL and vars of one statement, it implements clause.Builder
type Statement struct {
	Dialector  dialect.Dialector
	Table      string
	PrimaryKey string
	SQL        strings.Builder
	Vars       []interface{}
}

// NewStatement new statement for table, a nil dialector means dialect.Common
func NewStatement(dialector dialect.Dialector, table, primaryKey string) *Statement {
	if dialector == nil {
		dialector = dialect.Common{}
	}
	return &Statement{Dialector: dialector, Table: table, PrimaryKey: primaryKey}
}

// WriteString write string
func (stmt *Statement) WriteString(str string) (int, error) {
	return stmt.SQL.WriteString(str)
}

// WriteByte write byte
func (stmt *Statement) WriteByte(c byte) error {
	return stmt.SQL.WriteByte(c)
}

// WriteQuoted write quoted value
func (stmt *Statement) WriteQuoted(value interface{}) {
	stmt.QuoteTo(&stmt.SQL, value)
}

// QuoteTo write quoted value to writer
func (stmt *Statement) QuoteTo(writer clause.Writer, field interface{}) {
	switch v := field.(type) {
	case clause.Table:
		if v.Name == clause.CurrentTable {
			stmt.Dialector.QuoteTo(writer, stmt.Table)
		} else if v.Raw {
			writer.WriteString(v.Name)
		} else {
			stmt.Dialector.QuoteTo(writer, v.Name)
		}

		if v.Alias != "" {
			writer.WriteString(" AS ")
			stmt.Dialector.QuoteTo(writer, v.Alias)
		}
	case clause.Column:
		if v.Table != "" {
			if v.Table == clause.CurrentTable {
				stmt.Dialector.QuoteTo(writer, stmt.Table)
			} else {
				stmt.Dialector.QuoteTo(writer, v.Table)
			}
			writer.WriteByte('.')
		}

		if v.Name == clause.PrimaryKey {
			stmt.Dialector.QuoteTo(writer, stmt.PrimaryKey)
		} else if v.Raw {
			writer.WriteString(v.Name)
		} else {
			stmt.Dialector.QuoteTo(writer, v.Name)
		}

		if v.Alias != "" {
			writer.WriteString(" AS ")
			stmt.Dialector.QuoteTo(writer, v.Alias)
		}
	case []clause.Column:
		writer.WriteByte('(')
		for idx, d := range v {
			if idx > 0 {
				writer.WriteByte(',')
			}
			stmt.QuoteTo(writer, d)
		}
		writer.WriteByte(')')
	case string:
		stmt.Dialector.QuoteTo(writer, v)
	default:
		stmt.Dialector.QuoteTo(writer, fmt.Sprint(field))
	}
}

// Quote returns quoted value
func (stmt *Statement) Quote(field interface{}) string {
	var builder strings.Builder
	stmt.QuoteTo(&builder, field)
	return builder.String()
}

// AddVar add var, expressions are built inline so subqueries share the statement's vars
func (stmt *Statement) AddVar(writer clause.Writer, vars ...interface{}) {
	for idx, v := range vars {
		if idx > 0 {
			writer.WriteByte(',')
		}

		switch v := v.(type) {
		case clause.Column, clause.Table:
			stmt.QuoteTo(writer, v)
		case clause.Expression:
			v.Build(stmt)
		case driver.Valuer:
			stmt.Vars = append(stmt.Vars, v)
			stmt.Dialector.BindVarTo(writer, len(stmt.Vars), v)
		case []interface{}:
			if len(v) > 0 {
				writer.WriteByte('(')
				stmt.AddVar(writer, v...)
				writer.WriteByte(')')
			} else {
				writer.WriteString("(NULL)")
			}
		default:
			stmt.Vars = append(stmt.Vars, v)
			stmt.Dialector.BindVarTo(writer, len(stmt.Vars), v)
		}
	}
}

// String the built SQL
func (stmt *Statement) String() string {
	return stmt.SQL.String()
}
