package builder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/morph/clause"
)

var (
	// ErrMissingWhereClause update or delete without any condition
	ErrMissingWhereClause = errors.New("WHERE conditions required")
	// ErrInvalidOperator operator not supported for the value
	ErrInvalidOperator = errors.New("invalid operator")
	// ErrNoExecutor statement executed without connection
	ErrNoExecutor = errors.New("no executor")
)

// Boolean how a condition joins the previous ones
type Boolean string

const (
	And Boolean = "and"
	Or  Boolean = "or"
)

// Need what kind of value an operator expects
type Need int

const (
	NeedValue Need = iota
	NeedCollection
	NeedNothing
)

// Operator comparison operator of a where condition
type Operator string

const (
	Equal        Operator = "="
	NotEqual     Operator = "!="
	Greater      Operator = ">"
	GreaterEqual Operator = ">="
	Less         Operator = "<"
	LessEqual    Operator = "<="
	Like         Operator = "like"
	NotLike      Operator = "not like"
	In           Operator = "in"
	NotIn        Operator = "not in"
	Null         Operator = "null"
	NotNull      Operator = "not null"
)

// Needs returns the kind of value the operator expects
func (op Operator) Needs() Need {
	switch op {
	case In, NotIn:
		return NeedCollection
	case Null, NotNull:
		return NeedNothing
	default:
		return NeedValue
	}
}

// Negated reports whether the operator is the negative form of another one
func (op Operator) Negated() bool {
	switch op {
	case NotEqual, NotLike, NotIn, NotNull:
		return true
	}
	return false
}

// Expression builds the clause expression of `column op value`
func (op Operator) Expression(column string, value interface{}) (clause.Expression, error) {
	col := clause.Column{Name: column}

	switch Operator(strings.ToLower(string(op))) {
	case Equal, "==":
		return clause.Eq{Column: col, Value: value}, nil
	case NotEqual, "<>":
		return clause.Neq{Column: col, Value: value}, nil
	case Greater:
		return clause.Gt{Column: col, Value: value}, nil
	case GreaterEqual:
		return clause.Gte{Column: col, Value: value}, nil
	case Less:
		return clause.Lt{Column: col, Value: value}, nil
	case LessEqual:
		return clause.Lte{Column: col, Value: value}, nil
	case Like:
		return clause.Like{Column: col, Value: value}, nil
	case NotLike:
		return clause.Not(clause.Like{Column: col, Value: value}), nil
	case Null:
		return clause.Eq{Column: col}, nil
	case NotNull:
		return clause.Neq{Column: col}, nil
	case In, NotIn:
		values, ok := value.([]interface{})
		if !ok {
			values = []interface{}{value}
		}
		if op == NotIn {
			return clause.Not(clause.IN{Column: col, Values: values}), nil
		}
		return clause.IN{Column: col, Values: values}, nil
	}

	return nil, fmt.Errorf("%w: %q on column %s", ErrInvalidOperator, op, column)
}

// Builder the query building capability morph fields need from the host ORM
type Builder interface {
	clause.Expression
	Where(column string, op Operator, value interface{}, boolean Boolean) Builder
	WhereIn(column string, values []interface{}, boolean Boolean, not bool) Builder
	WhereNull(column string, boolean Boolean, not bool) Builder
	WhereGroup(fc func(Builder) Builder, boolean Boolean, not bool) Builder
	Select(columns ...string) Builder
	Update(ctx context.Context, values map[string]interface{}) (int64, error)
	Delete(ctx context.Context) (int64, error)
	AddError(err error) error
	GetError() error
}

// Executor executes statements, satisfied by *sql.DB, *sql.Conn and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// TxBeginner starts transactions, satisfied by *sql.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
