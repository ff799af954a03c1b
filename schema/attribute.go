package schema

// Attribute one column of a model
type Attribute struct {
	Name   string
	Native string
	Model  string
}

func (attr Attribute) String() string {
	return attr.Model + "." + attr.Name
}

func natives(attrs []Attribute) []string {
	columns := make([]string, len(attrs))
	for idx, attr := range attrs {
		columns[idx] = attr.Native
	}
	return columns
}
