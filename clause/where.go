package clause

// Where where clause
type Where struct {
	Exprs []Expression
}

// Name where clause name
func (where Where) Name() string {
	return "WHERE"
}

// Build build where clause
func (where Where) Build(builder Builder) {
	// Switch position if the first query expression is a single Or condition
	for idx, expr := range where.Exprs {
		if v, ok := expr.(OrConditions); !ok || len(v.Exprs) > 1 {
			if idx != 0 {
				where.Exprs[0], where.Exprs[idx] = where.Exprs[idx], where.Exprs[0]
			}
			break
		}
	}

	buildExprs(where.Exprs, builder, " AND ")
}

func buildExprs(exprs []Expression, builder Builder, joinCond string) {
	for idx, expr := range exprs {
		if idx > 0 {
			if v, ok := expr.(OrConditions); ok && len(v.Exprs) == 1 {
				builder.WriteString(" OR ")
			} else {
				builder.WriteString(joinCond)
			}
		}

		if e, ok := expr.(Expr); ok && len(exprs) > 1 && e.wrapped() {
			builder.WriteByte('(')
			expr.Build(builder)
			builder.WriteByte(')')
		} else {
			expr.Build(builder)
		}
	}
}

// And joins expressions with AND, a single expression is returned as is
func And(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}

	if len(exprs) == 1 {
		if _, ok := exprs[0].(OrConditions); !ok {
			return exprs[0]
		}
	}

	return AndConditions{Exprs: exprs}
}

type AndConditions struct {
	Exprs []Expression
}

func (and AndConditions) Build(builder Builder) {
	if len(and.Exprs) > 1 {
		builder.WriteByte('(')
		buildExprs(and.Exprs, builder, " AND ")
		builder.WriteByte(')')
	} else {
		buildExprs(and.Exprs, builder, " AND ")
	}
}

// NegationBuild builds NOT (a AND b) as (NOT a OR NOT b)
func (and AndConditions) NegationBuild(builder Builder) {
	negated := make([]Expression, len(and.Exprs))
	for idx, expr := range and.Exprs {
		negated[idx] = Not(expr)
	}
	OrConditions{Exprs: negated}.Build(builder)
}

// Or marks expressions to be joined with OR
func Or(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	return OrConditions{Exprs: exprs}
}

type OrConditions struct {
	Exprs []Expression
}

func (or OrConditions) Build(builder Builder) {
	if len(or.Exprs) > 1 {
		builder.WriteByte('(')
		buildExprs(or.Exprs, builder, " OR ")
		builder.WriteByte(')')
	} else {
		buildExprs(or.Exprs, builder, " OR ")
	}
}

// NegationBuild builds NOT (a OR b) as (NOT a AND NOT b)
func (or OrConditions) NegationBuild(builder Builder) {
	negated := make([]Expression, len(or.Exprs))
	for idx, expr := range or.Exprs {
		negated[idx] = Not(expr)
	}
	AndConditions{Exprs: negated}.Build(builder)
}

// Not negates expressions, several expressions are joined with AND
func Not(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	return NotConditions{Exprs: exprs}
}

type NotConditions struct {
	Exprs []Expression
}

func (not NotConditions) Build(builder Builder) {
	if len(not.Exprs) > 1 {
		builder.WriteByte('(')
	}

	for idx, c := range not.Exprs {
		if idx > 0 {
			builder.WriteString(" AND ")
		}

		if negationBuilder, ok := c.(NegationExpressionBuilder); ok {
			negationBuilder.NegationBuild(builder)
		} else {
			builder.WriteString("NOT ")
			e, wrapInParentheses := c.(Expr)
			if wrapInParentheses {
				wrapInParentheses = e.wrapped()
			}

			if wrapInParentheses {
				builder.WriteByte('(')
			}

			c.Build(builder)

			if wrapInParentheses {
				builder.WriteByte(')')
			}
		}
	}

	if len(not.Exprs) > 1 {
		builder.WriteByte(')')
	}
}

// NegationBuild double negation
func (not NotConditions) NegationBuild(builder Builder) {
	And(not.Exprs...).Build(builder)
}
