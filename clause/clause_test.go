package clause_test

import (
	"reflect"
	"testing"

	"gorm.io/morph/builder"
	"gorm.io/morph/clause"
)

func checkBuildClauses(t *testing.T, exprs []clause.Expression, result string, vars []interface{}) {
	stmt := builder.NewStatement(nil, "users", "id")
	clause.Where{Exprs: exprs}.Build(stmt)

	if stmt.SQL.String() != result {
		t.Errorf("SQL expects %v got %v", result, stmt.SQL.String())
	}

	if !reflect.DeepEqual(stmt.Vars, vars) {
		t.Errorf("Vars expects %+v got %v", vars, stmt.Vars)
	}
}
