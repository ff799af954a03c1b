package clause

import "strings"

const (
	PrimaryKey   string = "@@@primary_key@@@"
	CurrentTable string = "@@@table@@@"
)

var (
	// PrimaryColumn is the primary key column of the current table
	PrimaryColumn = Column{Table: CurrentTable, Name: PrimaryKey}
)

// Writer writer interface
type Writer interface {
	WriteByte(byte) error
	WriteString(string) (int, error)
}

// Builder builder interface
type Builder interface {
	Writer
	WriteQuoted(field interface{})
	AddVar(Writer, ...interface{})
}

// Expression expression interface
type Expression interface {
	Build(builder Builder)
}

// NegationExpressionBuilder negation expression builder
type NegationExpressionBuilder interface {
	NegationBuild(builder Builder)
}

// Column quote with name
type Column struct {
	Table string
	Name  string
	Alias string
	Raw   bool
}

// Table quote with name
type Table struct {
	Name  string
	Alias string
	Raw   bool
}

// Expr raw expression, every `?` is replaced by the next var
type Expr struct {
	SQL  string
	Vars []interface{}
}

// Build build raw expression
func (expr Expr) Build(builder Builder) {
	var idx int
	for _, v := range []byte(expr.SQL) {
		if v == '?' && len(expr.Vars) > idx {
			builder.AddVar(builder, expr.Vars[idx])
			idx++
		} else {
			builder.WriteByte(v)
		}
	}
}

func (expr Expr) wrapped() bool {
	sql := strings.ToLower(expr.SQL)
	return strings.Contains(sql, " and ") || strings.Contains(sql, " or ")
}
