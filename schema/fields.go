package schema

import (
	"fmt"

	"gorm.io/morph/utils"
)

// ColumnField field stored in a column of the model itself
type ColumnField interface {
	Field
	Attribute() Attribute
	Get(model Model) interface{}
	Set(model Model, value interface{})
	Changed(model Model, value interface{}) bool
}

// AttributeField field stored in one column
type AttributeField struct {
	Name    string
	Native  string
	Kind    string
	Default interface{}
	Options Options

	meta *Meta
}

// NewAttribute attribute field with the given options
func NewAttribute(kind string, options ...Option) *AttributeField {
	return &AttributeField{Kind: kind, Options: Options(nil).Add(options...)}
}

func (field *AttributeField) GetName() string     { return field.Name }
func (field *AttributeField) GetMeta() *Meta      { return field.meta }
func (field *AttributeField) GetOptions() Options { return field.Options }

func (field *AttributeField) declare(meta *Meta, name string) error {
	if field.meta != nil {
		return fmt.Errorf("%w: field %s already belongs to %s", ErrState, field.Name, field.meta.Name)
	}

	field.meta, field.Name = meta, name
	if field.Native == "" {
		field.Native = meta.namer().ColumnName(meta.Table, name)
	}
	return nil
}

func (field *AttributeField) own(*Registry) error { return nil }

// Attribute column of the field
func (field *AttributeField) Attribute() Attribute {
	var model string
	if field.meta != nil {
		model = field.meta.Name
	}
	return Attribute{Name: field.Name, Native: field.Native, Model: model}
}

// Get stored value, the default when unset
func (field *AttributeField) Get(model Model) interface{} {
	if model.HasAttribute(field.Native) {
		return model.GetAttribute(field.Native)
	}
	return field.Default
}

// Set store value
func (field *AttributeField) Set(model Model, value interface{}) {
	model.SetAttribute(field.Native, value)
}

// Changed reports whether value differs from the stored value
func (field *AttributeField) Changed(model Model, value interface{}) bool {
	return model.HasAttribute(field.Native) && !utils.AssertEqual(model.GetAttribute(field.Native), value)
}

// ModelEnum discriminator field, its values are the discriminators of the resolved elements
type ModelEnum struct {
	AttributeField
	Elements []*ModelElement
}

// Element element of the model's runtime meta
func (field *ModelEnum) Element(model Model) (*ModelElement, error) {
	for _, element := range field.Elements {
		if element.Model == model.ModelName() {
			return element, nil
		}
	}
	return nil, fmt.Errorf("%w: model %s is not a target of %s", ErrType, model.ModelName(), field.Name)
}

// ElementByValue element of discriminator value
func (field *ModelEnum) ElementByValue(value interface{}) (*ModelElement, error) {
	for _, element := range field.Elements {
		if utils.AssertEqual(element.Value, value) {
			return element, nil
		}
	}
	return nil, fmt.Errorf("%w: discriminator %v of %s", ErrNotFound, value, field.Name)
}
