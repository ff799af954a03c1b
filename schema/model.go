package schema

// Model runtime instance of a registered model, attributes are keyed by native column
type Model interface {
	ModelName() string
	GetAttribute(native string) interface{}
	SetAttribute(native string, value interface{})
	HasAttribute(native string) bool
	UnsetAttribute(native string)
	GetRelation(name string) (interface{}, bool)
	SetRelation(name string, value interface{})
	UnsetRelation(name string)
	Exists() bool
}

// Record default Model implementation
type Record struct {
	Name       string
	Attributes map[string]interface{}
	Relations  map[string]interface{}
	Persisted  bool
}

// NewRecord record of model with attributes
func NewRecord(model string, attributes map[string]interface{}) *Record {
	record := &Record{Name: model, Attributes: map[string]interface{}{}, Relations: map[string]interface{}{}}
	for key, value := range attributes {
		record.Attributes[key] = value
	}
	return record
}

func (r *Record) ModelName() string { return r.Name }

func (r *Record) GetAttribute(native string) interface{} {
	return r.Attributes[native]
}

func (r *Record) SetAttribute(native string, value interface{}) {
	if r.Attributes == nil {
		r.Attributes = map[string]interface{}{}
	}
	r.Attributes[native] = value
}

func (r *Record) HasAttribute(native string) bool {
	_, ok := r.Attributes[native]
	return ok
}

func (r *Record) UnsetAttribute(native string) {
	delete(r.Attributes, native)
}

func (r *Record) GetRelation(name string) (interface{}, bool) {
	value, ok := r.Relations[name]
	return value, ok
}

func (r *Record) SetRelation(name string, value interface{}) {
	if r.Relations == nil {
		r.Relations = map[string]interface{}{}
	}
	r.Relations[name] = value
}

func (r *Record) UnsetRelation(name string) {
	delete(r.Relations, name)
}

func (r *Record) Exists() bool { return r.Persisted }

// Collection ordered list of models
type Collection []Model

// Keys values of native for every model
func (c Collection) Keys(native string) []interface{} {
	keys := make([]interface{}, 0, len(c))
	for _, model := range c {
		if model != nil {
			keys = append(keys, model.GetAttribute(native))
		}
	}
	return keys
}
