package migrator

import "gorm.io/morph/schema"

// Index index created next to a meta table
type Index struct {
	TableName   string
	NameValue   string
	ColumnList  []string
	UniqueValue bool
}

// Table return the table name of the index.
func (idx Index) Table() string {
	return idx.TableName
}

// Name return the name  of the index.
func (idx Index) Name() string {
	return idx.NameValue
}

// Columns return the columns fo the index
func (idx Index) Columns() []string {
	return idx.ColumnList
}

// Unique returns whether the index is unique or not.
func (idx Index) Unique() bool {
	return idx.UniqueValue
}

// Indexes indexes backing the constraints of meta.
// Morph constraints are indexed on their discriminator and identifier columns, primary keys are part of
// the table and morph indexes only point at the primary keys of other tables.
func Indexes(meta *schema.Meta) []Index {
	var indexes []Index
	for _, constraint := range meta.Constraints().All() {
		switch constraint.Type() {
		case schema.UniqueKind, schema.IndexKind, schema.MorphKind:
		default:
			continue
		}

		idx := Index{TableName: meta.Table, NameValue: constraint.GetName(), UniqueValue: constraint.Type() == schema.UniqueKind}
		for _, attr := range constraint.GetAttributes() {
			idx.ColumnList = append(idx.ColumnList, attr.Native)
		}
		indexes = append(indexes, idx)
	}
	return indexes
}
