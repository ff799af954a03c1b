package schema

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/morph/config"
	"gorm.io/morph/utils"
)

// Meta schema of one registered model
type Meta struct {
	Name         string
	Table        string
	ModelType    reflect.Type
	Capabilities []string
	Pivot        bool
	// MorphValue discriminator of the model in morph relations, the naming strategy's when empty
	MorphValue string
	// ReversedName name of the fields generated on this model by morph relations
	ReversedName string
	PrimaryKey   []string
	Fields       []Field
	FieldsByName map[string]Field

	constraints *ConstraintHandler
	registry    *Registry
	state       State
	err         error
}

// MetaOption configures a meta on registration
type MetaOption func(*Meta)

// WithTable overrides the table name
func WithTable(table string) MetaOption {
	return func(meta *Meta) { meta.Table = table }
}

// WithModelType Go type of the model, used to resolve interface capabilities
func WithModelType(model interface{}) MetaOption {
	return func(meta *Meta) {
		if rt, ok := model.(reflect.Type); ok {
			meta.ModelType = rt
			return
		}
		meta.ModelType = reflect.TypeOf(model)
	}
}

// WithCapabilities named capabilities satisfied by the model
func WithCapabilities(capabilities ...string) MetaOption {
	return func(meta *Meta) { meta.Capabilities = append(meta.Capabilities, capabilities...) }
}

// AsPivot marks the model as an internal join model
func AsPivot() MetaOption {
	return func(meta *Meta) { meta.Pivot = true }
}

func WithMorphValue(value string) MetaOption {
	return func(meta *Meta) { meta.MorphValue = value }
}

func WithReversedName(name string) MetaOption {
	return func(meta *Meta) { meta.ReversedName = name }
}

// WithPrimaryKey primary key fields, `id` by default
func WithPrimaryKey(names ...string) MetaOption {
	return func(meta *Meta) { meta.PrimaryKey = names }
}

func (meta *Meta) namer() Namer {
	if meta.registry != nil && meta.registry.namer != nil {
		return meta.registry.namer
	}
	return NamingStrategy{}
}

func (meta *Meta) config() *config.Config {
	if meta.registry != nil && meta.registry.config != nil {
		return meta.registry.config
	}
	return config.Default()
}

func (meta *Meta) addError(err error) error {
	if meta.err == nil {
		meta.err = err
	} else if err != nil {
		meta.err = fmt.Errorf("%v; %w", meta.err, err)
	}
	return meta.err
}

// Err errors met while declaring the meta or its fields
func (meta *Meta) Err() error {
	return meta.err
}

// State lifecycle state of the meta
func (meta *Meta) State() State {
	return meta.state
}

// Registry registry the meta belongs to
func (meta *Meta) Registry() *Registry {
	return meta.registry
}

// AddField declares field under name
func (meta *Meta) AddField(name string, field Field) error {
	if err := meta.state.needsBuilding("meta " + meta.Name); err != nil {
		return meta.addError(err)
	}

	if _, ok := meta.FieldsByName[name]; ok {
		return meta.addError(fmt.Errorf("%w: field %s already exists on %s", ErrDuplicateName, name, meta.Name))
	}

	if err := field.declare(meta, name); err != nil {
		return meta.addError(err)
	}

	meta.Fields = append(meta.Fields, field)
	meta.FieldsByName[name] = field
	return nil
}

// Attribute declares an attribute field and returns it
func (meta *Meta) Attribute(name, kind string, options ...Option) *AttributeField {
	field := NewAttribute(kind, options...)
	meta.AddField(name, field)
	return field
}

// MorphToOne declares a morph relation field and returns it
func (meta *Meta) MorphToOne(name string) *MorphToOne {
	field := NewMorphToOne()
	meta.AddField(name, field)
	return field
}

// Field field by name
func (meta *Meta) Field(name string) (Field, error) {
	if field, ok := meta.FieldsByName[name]; ok {
		return field, nil
	}
	return nil, fmt.Errorf("%w: field %s on %s", ErrNotFound, name, meta.Name)
}

// Constraints constraint handler of the meta
func (meta *Meta) Constraints() *ConstraintHandler {
	return meta.constraints
}

// PrimaryFields attribute fields of the primary key
func (meta *Meta) PrimaryFields() []*AttributeField {
	fields := make([]*AttributeField, 0, len(meta.PrimaryKey))
	for _, name := range meta.PrimaryKey {
		if field, ok := meta.FieldsByName[name].(*AttributeField); ok {
			fields = append(fields, field)
		}
	}
	return fields
}

// PrimaryColumn column of the first primary key field
func (meta *Meta) PrimaryColumn() string {
	if fields := meta.PrimaryFields(); len(fields) > 0 {
		return fields[0].Native
	}
	return ""
}

// Key primary key value of model, the first key field of composite keys
func (meta *Meta) Key(model Model) interface{} {
	if model == nil {
		return nil
	}
	return model.GetAttribute(meta.PrimaryColumn())
}

// New transient record of the meta
func (meta *Meta) New(attributes map[string]interface{}) *Record {
	return NewRecord(meta.Name, attributes)
}

// Fill sets values on model through their fields, values of fields that are not fillable are ignored
func (meta *Meta) Fill(ctx context.Context, q Querier, model Model, values map[string]interface{}) error {
	for name := range values {
		if _, ok := meta.FieldsByName[name]; !ok {
			return fmt.Errorf("%w: field %s on %s", ErrNotFound, name, meta.Name)
		}
	}

	for _, field := range meta.Fields {
		value, ok := values[field.GetName()]
		if !ok || !field.GetOptions().Has(Fillable) {
			continue
		}

		switch f := field.(type) {
		case RelationField:
			if err := f.Set(ctx, q, model, value); err != nil {
				return err
			}
		case ColumnField:
			f.Set(model, value)
		}
	}

	return nil
}

// Serialize visible fields of model, loaded relations are serialized with their own metas
func (meta *Meta) Serialize(model Model) map[string]interface{} {
	result := map[string]interface{}{}
	for _, field := range meta.Fields {
		if !field.GetOptions().Has(Visible) {
			continue
		}

		switch f := field.(type) {
		case RelationField:
			if value, ok := model.GetRelation(f.GetName()); ok {
				result[f.GetName()] = meta.serializeValue(value)
			}
		case ColumnField:
			result[f.GetName()] = f.Get(model)
		}
	}
	return result
}

func (meta *Meta) serializeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case Model:
		if meta.registry != nil {
			if related, err := meta.registry.Lookup(v.ModelName()); err == nil {
				return related.Serialize(v)
			}
		}
		return v
	case Collection:
		values := make([]interface{}, len(v))
		for idx, model := range v {
			values[idx] = meta.serializeValue(model)
		}
		return values
	}
	return value
}

// Validate checks every required field holds a value
func (meta *Meta) Validate(model Model) error {
	for _, field := range meta.Fields {
		if !field.GetOptions().Has(Required) {
			continue
		}

		var value interface{}
		switch f := field.(type) {
		case RelationField:
			value, _ = f.Get(model)
		case ColumnField:
			value = f.Get(model)
		}

		if value == nil {
			return fmt.Errorf("%w: %s.%s is required", ErrValidation, meta.Name, field.GetName())
		}
	}
	return nil
}

// Implements reports whether the model satisfies marker, a capability name or an interface pointer such as (*Commentable)(nil)
func (meta *Meta) Implements(marker interface{}) bool {
	switch m := marker.(type) {
	case string:
		return utils.Contains(meta.Capabilities, m)
	case reflect.Type:
		return meta.implementsType(m)
	case nil:
		return false
	}

	rt := reflect.TypeOf(marker)
	if rt.Kind() == reflect.Ptr && rt.Elem().Kind() == reflect.Interface {
		return meta.implementsType(rt.Elem())
	}
	return false
}

func (meta *Meta) implementsType(iface reflect.Type) bool {
	if meta.ModelType == nil || iface.Kind() != reflect.Interface {
		return false
	}

	if meta.ModelType.Implements(iface) {
		return true
	}
	return meta.ModelType.Kind() != reflect.Ptr && reflect.PtrTo(meta.ModelType).Implements(iface)
}

func (meta *Meta) finalize() {
	meta.state = Finalized
}
