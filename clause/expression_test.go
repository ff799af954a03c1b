package clause_test

import (
	"fmt"
	"testing"

	"gorm.io/morph/builder"
	"gorm.io/morph/clause"
	"gorm.io/morph/dialect"
)

func TestExpr(t *testing.T) {
	results := []struct {
		SQL    string
		Result string
		Vars   []interface{}
	}{{
		SQL:    "create table ? (? ?, ? ?)",
		Vars:   []interface{}{clause.Table{Name: "users"}, clause.Column{Name: "id"}, clause.Expr{SQL: "int"}, clause.Column{Name: "name"}, clause.Expr{SQL: "text"}},
		Result: "create table `users` (`id` int, `name` text)",
	}, {
		SQL:    "? = ?",
		Vars:   []interface{}{clause.Column{Table: clause.CurrentTable, Name: "commentable_type"}, "post"},
		Result: "`users`.`commentable_type` = ?",
	}}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v", idx), func(t *testing.T) {
			stmt := builder.NewStatement(nil, "users", "id")
			clause.Expr{SQL: result.SQL, Vars: result.Vars}.Build(stmt)
			if stmt.SQL.String() != result.Result {
				t.Errorf("generated SQL is not equal, expects %v, but got %v", result.Result, stmt.SQL.String())
			}
		})
	}
}

func TestPostgresBindVars(t *testing.T) {
	stmt := builder.NewStatement(dialect.Postgres{}, "comments", "id")
	clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: "commentable_type", Value: "post"},
		clause.IN{Column: "commentable_id", Values: []interface{}{1, 2}},
	}}.Build(stmt)

	if result := `"commentable_type" = $1 AND "commentable_id" IN ($2,$3)`; stmt.SQL.String() != result {
		t.Errorf("generated SQL is not equal, expects %v, but got %v", result, stmt.SQL.String())
	}
}
