package migrator

import (
	"gorm.io/morph/dialect"
	"gorm.io/morph/schema"
)

// ColumnType column of a meta table
type ColumnType struct {
	NameValue       string
	DataTypeValue   string
	PrimaryKeyValue bool
}

// Name returns the name of the column.
func (ct ColumnType) Name() string {
	return ct.NameValue
}

// DatabaseTypeName returns the database type of the column, like `integer` or `text`
func (ct ColumnType) DatabaseTypeName() string {
	return ct.DataTypeValue
}

// PrimaryKey returns the column is primary key or not.
func (ct ColumnType) PrimaryKey() bool {
	return ct.PrimaryKeyValue
}

// ColumnTypes columns of meta, one per column field in declaration order
func ColumnTypes(dialector dialect.Dialector, meta *schema.Meta) []ColumnType {
	var columns []ColumnType
	for _, field := range meta.Fields {
		column, ok := field.(schema.ColumnField)
		if !ok {
			continue
		}

		ct := ColumnType{NameValue: column.Attribute().Native}
		switch f := field.(type) {
		case *schema.ModelEnum:
			ct.DataTypeValue = dataTypeOf(dialector, "string")
		case *schema.AttributeField:
			switch f.Kind {
			case "primary":
				ct.DataTypeValue, ct.PrimaryKeyValue = dataTypeOf(dialector, "int64"), true
			case "morph_id":
				ct.DataTypeValue = dataTypeOf(dialector, "int64")
			default:
				ct.DataTypeValue = dataTypeOf(dialector, f.Kind)
			}
		default:
			ct.DataTypeValue = dataTypeOf(dialector, "string")
		}
		columns = append(columns, ct)
	}
	return columns
}

func dataTypeOf(dialector dialect.Dialector, kind string) string {
	if typer, ok := dialector.(dialect.DataTyper); ok {
		return typer.DataTypeOf(kind)
	}
	return "text"
}
