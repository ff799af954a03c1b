package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/morph/clause"
	"gorm.io/morph/dialect"
	"gorm.io/morph/logger"
)

// Query default Builder, conditions are kept as a clause.Where and rendered on demand
type Query struct {
	Table      string
	PrimaryKey string
	Columns    []string
	Conditions clause.Where
	Dialector  dialect.Dialector
	Executor   Executor
	Logger     logger.Interface
	Error      error
}

// New query on table, executor may be nil for queries that are only rendered
func New(table string, executor Executor, dialector dialect.Dialector, log logger.Interface) *Query {
	if dialector == nil {
		dialector = dialect.Common{}
	}
	if log == nil {
		log = logger.Discard
	}
	return &Query{Table: table, Dialector: dialector, Executor: executor, Logger: log}
}

func (q *Query) clone() *Query {
	query := *q
	query.Columns = append([]string(nil), q.Columns...)
	query.Conditions.Exprs = append([]clause.Expression(nil), q.Conditions.Exprs...)
	return &query
}

func (q *Query) addCondition(expr clause.Expression, boolean Boolean) *Query {
	query := q.clone()
	if expr == nil {
		return query
	}

	if boolean == Or && len(query.Conditions.Exprs) > 0 {
		expr = clause.Or(expr)
	}
	query.Conditions.Exprs = append(query.Conditions.Exprs, expr)
	return query
}

// Where add `column op value`
func (q *Query) Where(column string, op Operator, value interface{}, boolean Boolean) Builder {
	expr, err := op.Expression(column, value)
	if err != nil {
		query := q.clone()
		query.AddError(err)
		return query
	}
	return q.addCondition(expr, boolean)
}

// WhereIn add `column IN (values)`, or NOT IN
func (q *Query) WhereIn(column string, values []interface{}, boolean Boolean, not bool) Builder {
	var expr clause.Expression = clause.IN{Column: clause.Column{Name: column}, Values: values}
	if not {
		expr = clause.Not(expr)
	}
	return q.addCondition(expr, boolean)
}

// WhereNull add `column IS NULL`, or IS NOT NULL
func (q *Query) WhereNull(column string, boolean Boolean, not bool) Builder {
	if not {
		return q.addCondition(clause.Neq{Column: clause.Column{Name: column}}, boolean)
	}
	return q.addCondition(clause.Eq{Column: clause.Column{Name: column}}, boolean)
}

// WhereGroup add the conditions built by fc between parentheses
func (q *Query) WhereGroup(fc func(Builder) Builder, boolean Boolean, not bool) Builder {
	group := fc(&Query{Table: q.Table, PrimaryKey: q.PrimaryKey, Dialector: q.Dialector})
	query := q.clone()
	if err := group.GetError(); err != nil {
		query.AddError(err)
		return query
	}

	g, ok := group.(*Query)
	if !ok {
		query.AddError(fmt.Errorf("%w: unsupported group builder %T", ErrInvalidOperator, group))
		return query
	}

	if len(g.Conditions.Exprs) == 0 {
		return query
	}

	return query.addCondition(Group{Exprs: g.Conditions.Exprs, Not: not}, boolean)
}

// Group conditions rendered between parentheses, prefixed by NOT when negated
type Group struct {
	Exprs []clause.Expression
	Not   bool
}

func (group Group) Build(builder clause.Builder) {
	if group.Not {
		builder.WriteString("NOT ")
	}
	builder.WriteByte('(')
	clause.Where{Exprs: append([]clause.Expression(nil), group.Exprs...)}.Build(builder)
	builder.WriteByte(')')
}

func (group Group) NegationBuild(builder clause.Builder) {
	Group{Exprs: group.Exprs, Not: !group.Not}.Build(builder)
}

// conditions copy of the where clause, Build may reorder the expressions
func (q *Query) conditions() clause.Where {
	return clause.Where{Exprs: append([]clause.Expression(nil), q.Conditions.Exprs...)}
}

// Select columns of the query, used when the query is a subquery
func (q *Query) Select(columns ...string) Builder {
	query := q.clone()
	query.Columns = columns
	return query
}

// AddError add error to query
func (q *Query) AddError(err error) error {
	if q.Error == nil {
		q.Error = err
	} else if err != nil {
		q.Error = fmt.Errorf("%v; %w", q.Error, err)
	}
	return q.Error
}

// GetError returns the first errors met while building
func (q *Query) GetError() error {
	return q.Error
}

// Build writes `SELECT columns FROM table WHERE ...`
func (q *Query) Build(builder clause.Builder) {
	builder.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		builder.WriteByte('*')
	}
	for idx, column := range q.Columns {
		if idx > 0 {
			builder.WriteByte(',')
		}
		builder.WriteQuoted(clause.Column{Name: column})
	}

	builder.WriteString(" FROM ")
	builder.WriteQuoted(clause.Table{Name: q.Table})

	if len(q.Conditions.Exprs) > 0 {
		builder.WriteString(" WHERE ")
		q.conditions().Build(builder)
	}
}

// ToSQL renders the select statement
func (q *Query) ToSQL() (string, []interface{}) {
	stmt := NewStatement(q.Dialector, q.Table, q.PrimaryKey)
	q.Build(stmt)
	return stmt.String(), stmt.Vars
}

// UpdateSQL renders `UPDATE table SET ... WHERE ...`
func (q *Query) UpdateSQL(values map[string]interface{}) (string, []interface{}, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("%w: no column to update on %s", ErrInvalidOperator, q.Table)
	}
	if len(q.Conditions.Exprs) == 0 {
		return "", nil, ErrMissingWhereClause
	}

	stmt := NewStatement(q.Dialector, q.Table, q.PrimaryKey)
	stmt.WriteString("UPDATE ")
	stmt.WriteQuoted(clause.Table{Name: q.Table})
	stmt.WriteString(" SET ")
	clause.Assignments(values).Build(stmt)
	stmt.WriteString(" WHERE ")
	q.conditions().Build(stmt)

	return stmt.String(), stmt.Vars, nil
}

// DeleteSQL renders `DELETE FROM table WHERE ...`
func (q *Query) DeleteSQL() (string, []interface{}, error) {
	if len(q.Conditions.Exprs) == 0 {
		return "", nil, ErrMissingWhereClause
	}

	stmt := NewStatement(q.Dialector, q.Table, q.PrimaryKey)
	stmt.WriteString("DELETE FROM ")
	stmt.WriteQuoted(clause.Table{Name: q.Table})
	stmt.WriteString(" WHERE ")
	q.conditions().Build(stmt)

	return stmt.String(), stmt.Vars, nil
}

// Update executes the update on every row matching the conditions
func (q *Query) Update(ctx context.Context, values map[string]interface{}) (int64, error) {
	if q.Error != nil {
		return 0, q.Error
	}

	sql, vars, err := q.UpdateSQL(values)
	if err != nil {
		return 0, err
	}
	return q.exec(ctx, "update", sql, vars)
}

// Delete executes the delete of every row matching the conditions
func (q *Query) Delete(ctx context.Context) (int64, error) {
	if q.Error != nil {
		return 0, q.Error
	}

	sql, vars, err := q.DeleteSQL()
	if err != nil {
		return 0, err
	}
	return q.exec(ctx, "delete", sql, vars)
}

func (q *Query) exec(ctx context.Context, action, sql string, vars []interface{}) (int64, error) {
	if q.Executor == nil {
		return 0, ErrNoExecutor
	}

	var (
		begin              = time.Now()
		rowsAffected int64 = -1
	)
	result, err := q.Executor.ExecContext(ctx, sql, vars...)
	if err == nil {
		rowsAffected, err = result.RowsAffected()
	}

	q.Logger.Trace(ctx, begin, func() (string, int64) {
		return logger.Explain(q.Dialector.Name(), sql, vars...), rowsAffected
	}, err)

	if err != nil {
		return 0, errors.Join(fmt.Errorf("%s %s", action, q.Table), dialect.Translate(q.Dialector, err))
	}
	return rowsAffected, nil
}
