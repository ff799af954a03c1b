package clause

import "sort"

type Set []Assignment

type Assignment struct {
	Column Column
	Value  interface{}
}

func (set Set) Name() string {
	return "SET"
}

func (set Set) Build(builder Builder) {
	for idx, assignment := range set {
		if idx > 0 {
			builder.WriteByte(',')
		}
		builder.WriteQuoted(assignment.Column)
		builder.WriteByte('=')
		builder.AddVar(builder, assignment.Value)
	}
}

// Assignments builds a Set from a column map, ordered by column name
func Assignments(values map[string]interface{}) Set {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assignments := make([]Assignment, len(keys))
	for idx, key := range keys {
		assignments[idx] = Assignment{Column: Column{Name: key}, Value: values[key]}
	}
	return assignments
}
