package schema

import (
	"context"
	"fmt"

	"gorm.io/morph/builder"
	"gorm.io/morph/config"
)

// MorphToOne relation pointing at one model among several, stored as a discriminator and an identifier column
type MorphToOne struct {
	Name string

	meta         *Meta
	options      Options
	optionsSet   bool
	scope        TargetScope
	onSelf       bool
	nullable     bool
	reversedName string
	relationName string
	indexName    string
	when         func(*Relationship, Model) *Relationship

	typeField  *ModelEnum
	idField    *AttributeField
	elements   []*ModelElement
	reversed   map[string]*HasManyMorph
	keys       []string
	morphIndex *MorphIndex
	morph      *Morph
	state      State
	err        error
}

// NewMorphToOne unowned morph relation field
func NewMorphToOne() *MorphToOne {
	return &MorphToOne{reversed: map[string]*HasManyMorph{}}
}

func (field *MorphToOne) GetName() string     { return field.Name }
func (field *MorphToOne) GetMeta() *Meta      { return field.meta }
func (field *MorphToOne) GetOptions() Options { return field.options }

// Err errors met while declaring or owning the field
func (field *MorphToOne) Err() error {
	return field.err
}

func (field *MorphToOne) addError(err error) {
	if field.err == nil {
		field.err = err
	} else if err != nil {
		field.err = fmt.Errorf("%v; %w", field.err, err)
	}
}

func (field *MorphToOne) subject() string {
	if field.meta != nil {
		return "morph field " + field.meta.Name + "." + field.Name
	}
	return "morph field " + field.Name
}

// unlocked records a state error when the field is already owned
func (field *MorphToOne) unlocked() bool {
	if err := field.state.needsBuilding(field.subject()); err != nil {
		field.addError(err)
		return false
	}
	return true
}

func (field *MorphToOne) owned() error {
	return field.state.needsFinalized(field.subject())
}

func (field *MorphToOne) declare(meta *Meta, name string) error {
	if field.meta != nil {
		return fmt.Errorf("%w: field %s already belongs to %s", ErrState, field.Name, field.meta.Name)
	}

	field.meta, field.Name = meta, name
	if !field.optionsSet {
		field.options = ParseOptions(meta.config().Options(config.MorphToOne))
	}
	if field.onSelf || field.nullable {
		field.options = field.options.Add(Nullable).Remove(Required)
	}
	return nil
}

// On declares the targets, names are the optional reversed field name and relation constraint name
func (field *MorphToOne) On(scope TargetScope, names ...string) *MorphToOne {
	if !field.unlocked() {
		return field
	}

	if scope.IsZero() {
		field.addError(fmt.Errorf("%w: empty target scope on %s", ErrConfiguration, field.subject()))
		return field
	}

	field.scope = scope
	field.onSelf = scope.Kind == ScopeSelf
	if field.onSelf {
		field.options = field.options.Add(Nullable).Remove(Required)
	}

	if len(names) > 0 {
		field.reversedName = names[0]
	}
	if len(names) > 1 {
		field.relationName = names[1]
	}
	return field
}

// OnSelf targets the model declaring the field
func (field *MorphToOne) OnSelf(names ...string) *MorphToOne {
	return field.On(Self(), names...)
}

// IsOnSelf reports whether the only target is the model declaring the field
func (field *MorphToOne) IsOnSelf() bool {
	if field.onSelf {
		return true
	}

	if field.state == Finalized {
		return len(field.elements) == 1 && field.elements[0].Meta == field.meta
	}
	return field.scope.Kind == ScopeModels && len(field.scope.Models) == 1 && field.meta != nil && field.scope.Models[0] == field.meta.Name
}

func (field *MorphToOne) ReversedName(name string) *MorphToOne {
	if field.unlocked() {
		field.reversedName = name
	}
	return field
}

func (field *MorphToOne) RelationName(name string) *MorphToOne {
	if field.unlocked() {
		field.relationName = name
	}
	return field
}

func (field *MorphToOne) IndexName(name string) *MorphToOne {
	if field.unlocked() {
		field.indexName = name
	}
	return field
}

// Options replaces the options of the field
func (field *MorphToOne) Options(options ...Option) *MorphToOne {
	if field.unlocked() {
		field.options, field.optionsSet = Options(nil).Add(options...), true
	}
	return field
}

// Nullable allows the relation to point at nothing
func (field *MorphToOne) Nullable() *MorphToOne {
	if field.unlocked() {
		field.options, field.nullable = field.options.Add(Nullable).Remove(Required), true
	}
	return field
}

// When registers a callback applied to every relationship built by Relate
func (field *MorphToOne) When(fc func(*Relationship, Model) *Relationship) *MorphToOne {
	if field.unlocked() {
		field.when = fc
	}
	return field
}

func (field *MorphToOne) own(registry *Registry) error {
	if err := field.state.needsBuilding(field.subject()); err != nil {
		return err
	}
	if field.err != nil {
		return field.err
	}
	if field.scope.IsZero() {
		return fmt.Errorf("%w: %s has no target, call On first", ErrConfiguration, field.subject())
	}

	scope := field.scope
	if scope.Kind == ScopeSelf {
		scope = OnModels(field.meta.Name)
	}

	elements, err := ResolveTargets(scope, field.meta, registry)
	if err != nil {
		return err
	}

	typeName, err := field.subFieldName(registry.config, config.TemplateType)
	if err != nil {
		return err
	}
	idName, err := field.subFieldName(registry.config, config.TemplateID)
	if err != nil {
		return err
	}

	var subOptions Options
	if field.options.Has(Visible) {
		subOptions = subOptions.Add(Visible)
	}
	if field.options.Has(Nullable) {
		subOptions = subOptions.Add(Nullable)
	}

	typeField := &ModelEnum{AttributeField: AttributeField{Kind: "morph_type", Options: subOptions}, Elements: elements}
	idField := NewAttribute("morph_id", subOptions...)
	if err := field.meta.AddField(typeName, typeField); err != nil {
		return err
	}
	if err := field.meta.AddField(idName, idField); err != nil {
		return err
	}
	field.typeField, field.idField = typeField, idField

	indexes := make([]IndexableConstraint, 0, len(elements))
	for _, element := range elements {
		name, err := field.reversedFieldName(element)
		if err != nil {
			return err
		}

		reversed := newHasManyMorph(field, element, registry)
		if err := element.Meta.AddField(name, reversed); err != nil {
			return fmt.Errorf("%w: reversed field of %s on %s: %w", ErrConfiguration, field.subject(), element.Model, err)
		}

		key := "reversed_" + element.Value
		field.reversed[key] = reversed
		field.keys = append(field.keys, key)

		primary := element.Meta.constraints.Primary()
		if primary == nil {
			return fmt.Errorf("%w: %s has no primary key", ErrConfiguration, element.Model)
		}
		indexes = append(indexes, primary)
	}

	morphIndex, err := field.meta.constraints.CreateMorphIndex(field.indexName, indexes...)
	if err != nil {
		return err
	}

	constraint, err := field.meta.constraints.Create(MorphKind, field.relationName, typeField.Attribute(), idField.Attribute())
	if err != nil {
		return err
	}

	morph := constraint.(*Morph)
	if err := morph.SetTarget(morphIndex); err != nil {
		return err
	}

	field.elements, field.morphIndex, field.morph = elements, morphIndex, morph
	field.state = Finalized
	return nil
}

func (field *MorphToOne) subFieldName(cfg *config.Config, key string) (string, error) {
	template := cfg.Template(config.MorphToOne, key)
	if template == "" {
		template = "${name}_${identifier}"
	}

	identifier := key
	if fc, ok := cfg.Field(config.MorphToOne); ok && fc.Identifiers[key] != "" {
		identifier = fc.Identifiers[key]
	}

	return Render(template, map[string]string{"name": field.Name, "identifier": identifier})
}

// reversedFieldName explicit name, then the target's override, then the configured template
func (field *MorphToOne) reversedFieldName(element *ModelElement) (string, error) {
	if field.reversedName != "" {
		return field.reversedName, nil
	}
	if element.ReversedName != "" {
		return element.ReversedName, nil
	}

	cfg := field.meta.config()
	key, fallback := config.TemplateReversed, "+{modelname}"
	if field.IsOnSelf() {
		key, fallback = config.TemplateSelfReversed, "reversed_+{name}"
	}

	template := cfg.Template(config.MorphToOne, key)
	if template == "" {
		template = fallback
	}

	return Render(template, map[string]string{
		"modelname":  toDBName(field.meta.Name),
		"name":       field.Name,
		"identifier": element.Value,
	})
}

// Elements resolved targets in resolution order
func (field *MorphToOne) Elements() ([]*ModelElement, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}
	return field.elements, nil
}

// TargetModels names of the resolved target models
func (field *MorphToOne) TargetModels() ([]string, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}

	models := make([]string, len(field.elements))
	for idx, element := range field.elements {
		models[idx] = element.Model
	}
	return models, nil
}

// TypeField discriminator sub field
func (field *MorphToOne) TypeField() (*ModelEnum, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}
	return field.typeField, nil
}

// IDField identifier sub field
func (field *MorphToOne) IDField() (*AttributeField, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}
	return field.idField, nil
}

// Source morph constraint over the sub fields
func (field *MorphToOne) Source() (*Morph, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}
	return field.morph, nil
}

// Target morph index, or the primary index of model when a model name is given
func (field *MorphToOne) Target(model ...string) (IndexableConstraint, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}

	if len(model) == 0 || model[0] == "" {
		return field.morphIndex, nil
	}
	return field.morphIndex.GetIndex(model[0])
}

// Targets member indexes of the morph index
func (field *MorphToOne) Targets() ([]IndexableConstraint, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}
	return field.morphIndex.Indexes(), nil
}

// ReversedField reversed field generated on model
func (field *MorphToOne) ReversedField(model string) (*HasManyMorph, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}

	for _, element := range field.elements {
		if element.Model == model {
			return field.reversed["reversed_"+element.Value], nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no reversed field on %s", ErrNotFound, field.subject(), model)
}

// ReversedFields generated reversed fields, one per element
func (field *MorphToOne) ReversedFields() ([]*HasManyMorph, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}

	fields := make([]*HasManyMorph, len(field.keys))
	for idx, key := range field.keys {
		fields[idx] = field.reversed[key]
	}
	return fields, nil
}

// Cast passes models, raw mappings and collections through, a scalar identifier becomes a transient record of the single target
func (field *MorphToOne) Cast(value interface{}) (interface{}, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}

	switch value.(type) {
	case nil, Model, map[string]interface{}, Collection:
		return value, nil
	}

	if len(field.elements) != 1 {
		return nil, fmt.Errorf("%w: identifier %v of %s is ambiguous among %d targets", ErrType, value, field.subject(), len(field.elements))
	}

	meta := field.elements[0].Meta
	return meta.New(map[string]interface{}{meta.PrimaryColumn(): value}), nil
}

// fromMapping record built from attributes, the discriminator column picks the target when there are several
func (field *MorphToOne) fromMapping(values map[string]interface{}) (Model, error) {
	element := field.elements[0]
	if len(field.elements) > 1 {
		var err error
		if element, err = field.typeField.ElementByValue(values[field.typeField.Native]); err != nil {
			return nil, err
		}
	}
	return element.Meta.New(values), nil
}

// Reverbate writes the discriminator and identifier of value on model, both are nil when value is nil
func (field *MorphToOne) Reverbate(ctx context.Context, q Querier, model Model, value interface{}) (interface{}, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}

	if values, ok := value.(map[string]interface{}); ok {
		related, err := field.fromMapping(values)
		if err != nil {
			return nil, err
		}
		value = related
	}

	switch v := value.(type) {
	case nil:
		field.SetFieldValue(field.typeField, model, nil)
		field.SetFieldValue(field.idField, model, nil)
		return nil, nil
	case Model:
		element, err := field.typeField.Element(v)
		if err != nil {
			return nil, err
		}

		key := element.Meta.Key(v)
		if key == nil {
			return nil, fmt.Errorf("%w: %s instance related by %s has no key", ErrValidation, element.Model, field.subject())
		}

		field.SetFieldValue(field.typeField, model, element.Value)
		field.SetFieldValue(field.idField, model, key)
		return v, nil
	}

	return nil, fmt.Errorf("%w: %s cannot relate %T", ErrType, field.subject(), value)
}

// SetFieldValue sets a sub field, the relation is reset first when the stored value changes
func (field *MorphToOne) SetFieldValue(sub ColumnField, model Model, value interface{}) {
	if sub.Changed(model, value) {
		field.Reset(model)
	}
	sub.Set(model, value)
}

// Reset drops the cached relation and the identifier value
func (field *MorphToOne) Reset(model Model) {
	model.UnsetRelation(field.Name)
	if field.idField != nil {
		model.SetAttribute(field.idField.Native, nil)
	}
}

// Get related model, a transient record of the target is built from the sub fields when the relation is not loaded
func (field *MorphToOne) Get(model Model) (interface{}, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}

	if value, ok := model.GetRelation(field.Name); ok {
		return value, nil
	}

	discriminator, key := model.GetAttribute(field.typeField.Native), model.GetAttribute(field.idField.Native)
	if discriminator == nil || key == nil {
		return nil, nil
	}

	element, err := field.typeField.ElementByValue(discriminator)
	if err != nil {
		return nil, err
	}

	related := element.Meta.New(map[string]interface{}{element.Meta.PrimaryColumn(): key})
	model.SetRelation(field.Name, related)
	return related, nil
}

// Set casts value, writes the sub fields and caches the relation
func (field *MorphToOne) Set(ctx context.Context, q Querier, model Model, value interface{}) error {
	value, err := field.Cast(value)
	if err != nil {
		return err
	}

	related, err := field.Reverbate(ctx, q, model, value)
	if err != nil {
		return err
	}

	if related == nil {
		model.UnsetRelation(field.Name)
	} else {
		model.SetRelation(field.Name, related)
	}
	return nil
}

// Relate association from model to the row its sub fields point at
func (field *MorphToOne) Relate(model Model) (*Relationship, error) {
	if err := field.owned(); err != nil {
		return nil, err
	}

	element, err := field.typeField.ElementByValue(field.typeField.Get(model))
	if err != nil {
		return nil, err
	}

	primary := element.Meta.PrimaryFields()
	if len(primary) == 0 {
		return nil, fmt.Errorf("%w: %s has no primary key", ErrConfiguration, element.Model)
	}

	rel := &Relationship{
		Name:      field.Name,
		Type:      MorphTo,
		Meta:      field.meta,
		FieldMeta: element.Meta,
		Polymorphic: &Polymorphic{
			PolymorphicType: field.typeField.Attribute(),
			PolymorphicID:   field.idField.Attribute(),
			Value:           element.Value,
		},
		References: []Reference{{
			PrimaryKey:   primary[0].Attribute(),
			PrimaryValue: field.idField.Get(model),
			ForeignKey:   field.idField.Attribute(),
		}},
	}

	if field.when != nil {
		rel = field.when(rel, model)
	}
	return rel, nil
}

func withError(query builder.Builder, err error) builder.Builder {
	return query.WhereGroup(func(group builder.Builder) builder.Builder {
		group.AddError(err)
		return group
	}, builder.And, false)
}

// key discriminator and key of a relation value, raw identifiers need a single target
func (field *MorphToOne) key(value interface{}) (string, interface{}, error) {
	if model, ok := value.(Model); ok {
		element, err := field.typeField.Element(model)
		if err != nil {
			return "", nil, err
		}
		return element.Value, element.Meta.Key(model), nil
	}

	if len(field.elements) != 1 {
		return "", nil, fmt.Errorf("%w: identifier %v of %s is ambiguous among %d targets", ErrType, value, field.subject(), len(field.elements))
	}
	return field.elements[0].Value, value, nil
}

// Where compares the relation with value
func (field *MorphToOne) Where(query builder.Builder, op builder.Operator, value interface{}, boolean builder.Boolean) builder.Builder {
	if err := field.owned(); err != nil {
		return withError(query, err)
	}

	switch op.Needs() {
	case builder.NeedCollection:
		return field.WhereIn(query, toValues(value), boolean, op.Negated())
	case builder.NeedNothing:
		return field.WhereNull(query, boolean, op.Negated())
	}

	if value == nil && (op == builder.Equal || op == builder.NotEqual) {
		return field.WhereNull(query, boolean, op == builder.NotEqual)
	}

	discriminator, key, err := field.key(value)
	if err != nil {
		return withError(query, err)
	}

	typeColumn, idColumn := field.typeField.Native, field.idField.Native
	return query.WhereGroup(func(group builder.Builder) builder.Builder {
		if op == builder.NotEqual {
			return group.Where(typeColumn, builder.NotEqual, discriminator, builder.And).
				Where(idColumn, builder.NotEqual, key, builder.Or)
		}
		return group.Where(typeColumn, builder.Equal, discriminator, builder.And).
			Where(idColumn, op, key, builder.And)
	}, boolean, false)
}

// WhereNull both sub fields are null, or both are not null
func (field *MorphToOne) WhereNull(query builder.Builder, boolean builder.Boolean, not bool) builder.Builder {
	if err := field.owned(); err != nil {
		return withError(query, err)
	}

	typeColumn, idColumn := field.typeField.Native, field.idField.Native
	return query.WhereGroup(func(group builder.Builder) builder.Builder {
		return group.WhereNull(typeColumn, builder.And, not).WhereNull(idColumn, builder.And, not)
	}, boolean, false)
}

func (field *MorphToOne) WhereNotNull(query builder.Builder, boolean builder.Boolean) builder.Builder {
	return field.WhereNull(query, boolean, true)
}

type morphKeys struct {
	discriminator string
	keys          []interface{}
}

// WhereIn relation points at one of values, models are grouped by target and raw identifiers need a single target
// to be matched with its discriminator, otherwise they match any non null discriminator
func (field *MorphToOne) WhereIn(query builder.Builder, values []interface{}, boolean builder.Boolean, not bool) builder.Builder {
	if err := field.owned(); err != nil {
		return withError(query, err)
	}

	typeColumn, idColumn := field.typeField.Native, field.idField.Native
	if len(values) == 0 {
		if not {
			return query
		}
		return query.WhereIn(idColumn, nil, boolean, false)
	}

	var (
		groups []*morphKeys
		byType = map[string]*morphKeys{}
		raw    []interface{}
	)
	for _, value := range values {
		_, isModel := value.(Model)
		if !isModel && len(field.elements) > 1 {
			raw = append(raw, value)
			continue
		}

		discriminator, key, err := field.key(value)
		if err != nil {
			return withError(query, err)
		}

		group, ok := byType[discriminator]
		if !ok {
			group = &morphKeys{discriminator: discriminator}
			byType[discriminator] = group
			groups = append(groups, group)
		}
		group.keys = append(group.keys, key)
	}

	var parts []func(builder.Builder) builder.Builder
	for _, group := range groups {
		group := group
		parts = append(parts, func(b builder.Builder) builder.Builder {
			return b.Where(typeColumn, builder.Equal, group.discriminator, builder.And).
				WhereIn(idColumn, group.keys, builder.And, false)
		})
	}
	if len(raw) > 0 {
		parts = append(parts, func(b builder.Builder) builder.Builder {
			return b.WhereNull(typeColumn, builder.And, true).WhereIn(idColumn, raw, builder.And, false)
		})
	}

	if len(parts) == 1 {
		return query.WhereGroup(parts[0], boolean, not)
	}

	return query.WhereGroup(func(b builder.Builder) builder.Builder {
		for _, part := range parts {
			b = b.WhereGroup(part, builder.Or, false)
		}
		return b
	}, boolean, not)
}

func (field *MorphToOne) WhereNotIn(query builder.Builder, values []interface{}, boolean builder.Boolean) builder.Builder {
	return field.WhereIn(query, values, boolean, true)
}

func toValues(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	case Collection:
		values := make([]interface{}, len(v))
		for idx, model := range v {
			values[idx] = model
		}
		return values
	case []Model:
		return toValues(Collection(v))
	}
	return []interface{}{value}
}
