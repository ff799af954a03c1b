package schema

import (
	"context"
	"fmt"

	"gorm.io/morph/builder"
	"gorm.io/morph/config"
	"gorm.io/morph/utils"
)

// HasManyMorph reverse side of a MorphToOne on one of its targets, the forward field is looked up by name
type HasManyMorph struct {
	Name string
	// Default key written on rows leaving the relation, they are detached with NULL columns when nil
	Default interface{}

	meta        *Meta
	sourceModel string
	sourceField string
	value       string
	options     Options
	registry    *Registry
}

func newHasManyMorph(source *MorphToOne, element *ModelElement, registry *Registry) *HasManyMorph {
	cfg := registry.config
	fc, _ := cfg.Field(config.HasManyMorph)

	return &HasManyMorph{
		Default:     fc.Default,
		sourceModel: source.meta.Name,
		sourceField: source.Name,
		value:       element.Value,
		options:     ParseOptions(cfg.Options(config.HasManyMorph)),
		registry:    registry,
	}
}

func (field *HasManyMorph) GetName() string     { return field.Name }
func (field *HasManyMorph) GetMeta() *Meta      { return field.meta }
func (field *HasManyMorph) GetOptions() Options { return field.options }

// Value discriminator of the target this field is bound to
func (field *HasManyMorph) Value() string { return field.value }

func (field *HasManyMorph) declare(meta *Meta, name string) error {
	if field.meta != nil {
		return fmt.Errorf("%w: field %s already belongs to %s", ErrState, field.Name, field.meta.Name)
	}
	field.meta, field.Name = meta, name
	return nil
}

func (field *HasManyMorph) own(*Registry) error { return nil }

// Forward the MorphToOne this field was generated from
func (field *HasManyMorph) Forward() (*MorphToOne, error) {
	meta, err := field.registry.Lookup(field.sourceModel)
	if err != nil {
		return nil, err
	}

	f, err := meta.Field(field.sourceField)
	if err != nil {
		return nil, err
	}

	forward, ok := f.(*MorphToOne)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a morph relation", ErrType, field.sourceModel, field.sourceField)
	}

	if err := forward.owned(); err != nil {
		return nil, err
	}
	return forward, nil
}

// Source morph constraint of the forward field
func (field *HasManyMorph) Source() (*Morph, error) {
	forward, err := field.Forward()
	if err != nil {
		return nil, err
	}
	return forward.Source()
}

// Sources forward fields feeding this field
func (field *HasManyMorph) Sources() ([]*MorphToOne, error) {
	forward, err := field.Forward()
	if err != nil {
		return nil, err
	}
	return []*MorphToOne{forward}, nil
}

// SourceModels models holding the forward field
func (field *HasManyMorph) SourceModels() []string {
	return []string{field.sourceModel}
}

// Targets primary index of the bound target
func (field *HasManyMorph) Targets() ([]IndexableConstraint, error) {
	primary := field.meta.constraints.Primary()
	if primary == nil {
		return nil, fmt.Errorf("%w: %s has no primary key", ErrConfiguration, field.meta.Name)
	}
	return []IndexableConstraint{primary}, nil
}

// Cast normalizes value into a Collection, scalars are identifiers of related rows.
// Every model must be a record of the forward field's model.
func (field *HasManyMorph) Cast(value interface{}) (interface{}, error) {
	forward, err := field.Forward()
	if err != nil {
		return nil, err
	}
	source := forward.meta

	var items []interface{}
	switch v := value.(type) {
	case nil:
		return Collection{}, nil
	case Collection:
		items = make([]interface{}, len(v))
		for idx, model := range v {
			items[idx] = model
		}
	case []Model:
		items = make([]interface{}, len(v))
		for idx, model := range v {
			items[idx] = model
		}
	case []interface{}:
		items = v
	default:
		items = []interface{}{v}
	}

	collection := make(Collection, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
		case Model:
			if v.ModelName() != source.Name {
				return nil, fmt.Errorf("%w: %s.%s relates %s records, got %s", ErrType, field.meta.Name, field.Name, source.Name, v.ModelName())
			}
			collection = append(collection, v)
		default:
			collection = append(collection, source.New(map[string]interface{}{source.PrimaryColumn(): v}))
		}
	}
	return collection, nil
}

// Get loaded related models, nil when the relation is not loaded
func (field *HasManyMorph) Get(model Model) (interface{}, error) {
	if value, ok := model.GetRelation(field.Name); ok {
		return value, nil
	}
	return nil, nil
}

// Set casts value, reconciles the related rows and caches the collection
func (field *HasManyMorph) Set(ctx context.Context, q Querier, model Model, value interface{}) error {
	collection, err := field.Reverbate(ctx, q, model, value)
	if err != nil {
		return err
	}
	model.SetRelation(field.Name, collection)
	return nil
}

// morphWrite columns and values written on the rows of the forward model for one owner
type morphWrite struct {
	field    *HasManyMorph
	forward  *MorphToOne
	source   *Meta
	owner    Model
	ownerKey interface{}
	detached map[string]interface{}
}

func (field *HasManyMorph) writer(q Querier, model Model) (*morphWrite, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: reconciling %s.%s needs a querier", ErrConfiguration, field.meta.Name, field.Name)
	}

	forward, err := field.Forward()
	if err != nil {
		return nil, err
	}

	w := &morphWrite{
		field:    field,
		forward:  forward,
		source:   forward.meta,
		owner:    model,
		ownerKey: field.meta.Key(model),
		detached: map[string]interface{}{forward.typeField.Native: nil, forward.idField.Native: nil},
	}
	if field.Default != nil {
		w.detached = map[string]interface{}{forward.typeField.Native: field.value, forward.idField.Native: field.Default}
	}
	return w, nil
}

// owned rows currently pointing at the owner
func (w *morphWrite) owned(q Querier) builder.Builder {
	return q.Query(w.source).
		Where(w.forward.typeField.Native, builder.Equal, w.field.value, builder.And).
		Where(w.forward.idField.Native, builder.Equal, w.ownerKey, builder.And)
}

func (w *morphWrite) keys(collection Collection) []interface{} {
	var ids []interface{}
	for _, key := range collection.Keys(w.source.PrimaryColumn()) {
		if key != nil {
			ids = append(ids, key)
		}
	}
	return ids
}

// detach owned rows among ids, or outside of ids when except is set; an empty except list detaches every owned row
func (w *morphWrite) detach(ctx context.Context, q Querier, ids []interface{}, except bool) error {
	query := w.owned(q)
	if len(ids) > 0 {
		query = query.WhereIn(w.source.PrimaryColumn(), ids, builder.And, except)
	} else if !except {
		return nil
	}
	_, err := query.Update(ctx, w.detached)
	return err
}

func (w *morphWrite) attach(ctx context.Context, q Querier, ids []interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Query(w.source).
		WhereIn(w.source.PrimaryColumn(), ids, builder.And, false).
		Update(ctx, map[string]interface{}{w.forward.typeField.Native: w.field.value, w.forward.idField.Native: w.ownerKey})
	return err
}

// run fc in one transaction when q is a Transactor
func (w *morphWrite) run(ctx context.Context, q Querier, fc func(Querier) error) error {
	if tx, ok := q.(Transactor); ok {
		return tx.Transaction(ctx, fc)
	}
	return fc(q)
}

func (w *morphWrite) attached(members Collection) {
	for _, member := range members {
		w.forward.SetFieldValue(w.forward.typeField, member, w.field.value)
		w.forward.SetFieldValue(w.forward.idField, member, w.ownerKey)
		member.SetRelation(w.forward.Name, w.owner)
	}
}

// released detaches in memory the members still pointing at the owner
func (w *morphWrite) released(members Collection) {
	for _, member := range members {
		if !w.points(member) {
			continue
		}
		w.forward.SetFieldValue(w.forward.typeField, member, w.detached[w.forward.typeField.Native])
		w.forward.SetFieldValue(w.forward.idField, member, w.detached[w.forward.idField.Native])
		member.UnsetRelation(w.forward.Name)
	}
}

// points reports whether member currently points at the owner
func (w *morphWrite) points(member Model) bool {
	return utils.AssertEqual(member.GetAttribute(w.forward.typeField.Native), w.field.value) &&
		utils.AssertEqual(member.GetAttribute(w.forward.idField.Native), w.ownerKey)
}

// cached loaded collection of the owner
func (w *morphWrite) cached() Collection {
	if value, ok := w.owner.GetRelation(w.field.Name); ok {
		return toCollection(value)
	}
	return nil
}

func toCollection(value interface{}) Collection {
	if collection, ok := value.(Collection); ok {
		return collection
	}
	return nil
}

// Reverbate makes the rows of value exactly the rows pointing at a persisted model.
// Rows pointing at model but missing from value are detached first, then every row of value is attached,
// both updates run in one transaction when q is a Transactor.
// Loaded members leaving the relation are detached in memory too.
func (field *HasManyMorph) Reverbate(ctx context.Context, q Querier, model Model, value interface{}) (interface{}, error) {
	casted, err := field.Cast(value)
	if err != nil {
		return nil, err
	}
	collection := casted.(Collection)

	if !model.Exists() {
		return collection, nil
	}

	w, err := field.writer(q, model)
	if err != nil {
		return nil, err
	}

	ids := w.keys(collection)
	err = w.run(ctx, q, func(q Querier) error {
		if err := w.detach(ctx, q, ids, true); err != nil {
			return err
		}
		return w.attach(ctx, q, ids)
	})
	if err != nil {
		return nil, err
	}

	_, left := field.split(w.cached(), ids)
	w.released(left)
	w.attached(collection)
	return collection, nil
}

// Sync alias of Set
func (field *HasManyMorph) Sync(ctx context.Context, q Querier, model Model, value interface{}) error {
	return field.Set(ctx, q, model, value)
}

// Attach points the rows of value at model, rows already related stay related
func (field *HasManyMorph) Attach(ctx context.Context, q Querier, model Model, value interface{}) error {
	casted, err := field.Cast(value)
	if err != nil {
		return err
	}
	collection := casted.(Collection)

	if !model.Exists() {
		model.SetRelation(field.Name, field.merge(model, collection))
		return nil
	}

	w, err := field.writer(q, model)
	if err != nil {
		return err
	}

	ids := w.keys(collection)
	if err := w.run(ctx, q, func(q Querier) error { return w.attach(ctx, q, ids) }); err != nil {
		return err
	}

	w.attached(collection)
	if cached := w.cached(); cached != nil {
		model.SetRelation(field.Name, field.merge(model, collection))
	}
	return nil
}

// SyncWithoutDetaching alias of Attach
func (field *HasManyMorph) SyncWithoutDetaching(ctx context.Context, q Querier, model Model, value interface{}) error {
	return field.Attach(ctx, q, model, value)
}

// Detach releases the rows of value from model, every related row when value is nil
func (field *HasManyMorph) Detach(ctx context.Context, q Querier, model Model, value interface{}) error {
	casted, err := field.Cast(value)
	if err != nil {
		return err
	}
	collection := casted.(Collection)

	if !model.Exists() {
		if value == nil {
			model.SetRelation(field.Name, Collection{})
		} else if cached, ok := model.GetRelation(field.Name); ok {
			_, kept := field.split(toCollection(cached), collection.Keys(field.source().PrimaryColumn()))
			model.SetRelation(field.Name, append(Collection{}, kept...))
		}
		return nil
	}

	w, err := field.writer(q, model)
	if err != nil {
		return err
	}

	ids := w.keys(collection)
	all := value == nil
	if !all && len(ids) == 0 {
		return nil
	}

	if err := w.run(ctx, q, func(q Querier) error { return w.detach(ctx, q, ids, all) }); err != nil {
		return err
	}

	cached := w.cached()
	if all {
		w.released(cached)
		model.SetRelation(field.Name, Collection{})
		return nil
	}

	w.released(collection)
	if cached != nil {
		gone, kept := field.split(cached, ids)
		w.released(gone)
		model.SetRelation(field.Name, append(Collection{}, kept...))
	}
	return nil
}

// Toggle detaches the members of value pointing at model and attaches the others, in one transaction
func (field *HasManyMorph) Toggle(ctx context.Context, q Querier, model Model, value interface{}) error {
	casted, err := field.Cast(value)
	if err != nil {
		return err
	}
	collection := casted.(Collection)

	if !model.Exists() {
		return fmt.Errorf("%w: toggling %s.%s on an unsaved %s", ErrValidation, field.meta.Name, field.Name, field.meta.Name)
	}

	w, err := field.writer(q, model)
	if err != nil {
		return err
	}

	var on, off Collection
	for _, member := range collection {
		if w.points(member) {
			off = append(off, member)
		} else {
			on = append(on, member)
		}
	}

	offIDs, onIDs := w.keys(off), w.keys(on)
	err = w.run(ctx, q, func(q Querier) error {
		if len(offIDs) > 0 {
			if err := w.detach(ctx, q, offIDs, false); err != nil {
				return err
			}
		}
		return w.attach(ctx, q, onIDs)
	})
	if err != nil {
		return err
	}

	w.released(off)
	w.attached(on)
	if cached := w.cached(); cached != nil {
		_, kept := field.split(cached, offIDs)
		model.SetRelation(field.Name, append(Collection{}, kept...))
		model.SetRelation(field.Name, field.merge(model, on))
	}
	return nil
}

// Update writes values on every row pointing at model, loaded members are updated in memory
func (field *HasManyMorph) Update(ctx context.Context, q Querier, model Model, values map[string]interface{}) (int64, error) {
	if !model.Exists() {
		return 0, nil
	}

	w, err := field.writer(q, model)
	if err != nil {
		return 0, err
	}

	var rows int64
	err = w.run(ctx, q, func(q Querier) (err error) {
		rows, err = w.owned(q).Update(ctx, values)
		return err
	})
	if err != nil {
		return 0, err
	}

	for _, member := range w.cached() {
		for native, value := range values {
			member.SetAttribute(native, value)
		}
	}
	return rows, nil
}

// Delete deletes every row pointing at model and empties the loaded collection
func (field *HasManyMorph) Delete(ctx context.Context, q Querier, model Model) (int64, error) {
	if !model.Exists() {
		model.SetRelation(field.Name, Collection{})
		return 0, nil
	}

	w, err := field.writer(q, model)
	if err != nil {
		return 0, err
	}

	var rows int64
	err = w.run(ctx, q, func(q Querier) (err error) {
		rows, err = w.owned(q).Delete(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	for _, member := range w.cached() {
		if r, ok := member.(*Record); ok {
			r.Persisted = false
		}
		member.UnsetRelation(w.forward.Name)
	}
	model.SetRelation(field.Name, Collection{})
	return rows, nil
}

// merge cached collection of model with members, members already loaded are kept once
func (field *HasManyMorph) merge(model Model, members Collection) Collection {
	var merged Collection
	if value, ok := model.GetRelation(field.Name); ok {
		merged = append(merged, toCollection(value)...)
	}

	source := field.source()
	pk := source.PrimaryColumn()
	seen := make(map[string]bool, len(merged))
	for _, member := range merged {
		if key := member.GetAttribute(pk); key != nil {
			seen[utils.ToStringKey(key)] = true
		}
	}
	for _, member := range members {
		key := member.GetAttribute(pk)
		if key != nil && seen[utils.ToStringKey(key)] {
			continue
		}
		if key != nil {
			seen[utils.ToStringKey(key)] = true
		}
		merged = append(merged, member)
	}
	return merged
}

// split members of collection whose key is in ids and the others
func (field *HasManyMorph) split(collection Collection, ids []interface{}) (in, out Collection) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != nil {
			set[utils.ToStringKey(id)] = true
		}
	}

	pk := field.source().PrimaryColumn()
	for _, member := range collection {
		if key := member.GetAttribute(pk); key != nil && set[utils.ToStringKey(key)] {
			in = append(in, member)
		} else {
			out = append(out, member)
		}
	}
	return in, out
}

func (field *HasManyMorph) source() *Meta {
	forward, err := field.Forward()
	if err != nil {
		return nil
	}
	return forward.meta
}

// Relate association from model to the rows pointing at it
func (field *HasManyMorph) Relate(model Model) (*Relationship, error) {
	forward, err := field.Forward()
	if err != nil {
		return nil, err
	}

	primary := field.meta.PrimaryFields()
	if len(primary) == 0 {
		return nil, fmt.Errorf("%w: %s has no primary key", ErrConfiguration, field.meta.Name)
	}

	return &Relationship{
		Name:      field.Name,
		Type:      MorphMany,
		Meta:      field.meta,
		FieldMeta: forward.meta,
		Polymorphic: &Polymorphic{
			PolymorphicType: forward.typeField.Attribute(),
			PolymorphicID:   forward.idField.Attribute(),
			Value:           field.value,
		},
		References: []Reference{{
			PrimaryKey:    primary[0].Attribute(),
			PrimaryValue:  field.meta.Key(model),
			ForeignKey:    forward.idField.Attribute(),
			OwnPrimaryKey: true,
		}},
	}, nil
}

// related sub select of the forward identifiers pointing at this field's target, filtered by fc
func (field *HasManyMorph) related(fc func(builder.Builder) builder.Builder) (builder.Builder, error) {
	forward, err := field.Forward()
	if err != nil {
		return nil, err
	}

	sub := builder.New(forward.meta.Table, nil, nil, nil).
		Select(forward.idField.Native).
		Where(forward.typeField.Native, builder.Equal, field.value, builder.And)
	return fc(sub), nil
}

func (field *HasManyMorph) keys(values []interface{}) ([]interface{}, error) {
	forward, err := field.Forward()
	if err != nil {
		return nil, err
	}

	keys := make([]interface{}, 0, len(values))
	for _, value := range values {
		if model, ok := value.(Model); ok {
			keys = append(keys, forward.meta.Key(model))
		} else {
			keys = append(keys, value)
		}
	}
	return keys, nil
}

// Where owner is related to a row matching `key op value`
func (field *HasManyMorph) Where(query builder.Builder, op builder.Operator, value interface{}, boolean builder.Boolean) builder.Builder {
	switch op.Needs() {
	case builder.NeedCollection:
		return field.WhereIn(query, toValues(value), boolean, op.Negated())
	case builder.NeedNothing:
		return field.WhereNull(query, boolean, op.Negated())
	}

	if op == builder.Equal || op == builder.NotEqual {
		if value == nil {
			return field.WhereNull(query, boolean, op == builder.NotEqual)
		}
		return field.WhereIn(query, []interface{}{value}, boolean, op == builder.NotEqual)
	}

	keys, err := field.keys([]interface{}{value})
	if err != nil {
		return withError(query, err)
	}

	forward, _ := field.Forward()
	sub, err := field.related(func(b builder.Builder) builder.Builder {
		return b.Where(forward.meta.PrimaryColumn(), op, keys[0], builder.And)
	})
	if err != nil {
		return withError(query, err)
	}
	return query.WhereIn(field.meta.PrimaryColumn(), []interface{}{sub}, boolean, false)
}

// WhereIn owner is related to one of values, or to none of them
func (field *HasManyMorph) WhereIn(query builder.Builder, values []interface{}, boolean builder.Boolean, not bool) builder.Builder {
	keys, err := field.keys(values)
	if err != nil {
		return withError(query, err)
	}

	forward, _ := field.Forward()
	sub, err := field.related(func(b builder.Builder) builder.Builder {
		return b.WhereIn(forward.meta.PrimaryColumn(), keys, builder.And, false)
	})
	if err != nil {
		return withError(query, err)
	}
	return query.WhereIn(field.meta.PrimaryColumn(), []interface{}{sub}, boolean, not)
}

func (field *HasManyMorph) WhereNotIn(query builder.Builder, values []interface{}, boolean builder.Boolean) builder.Builder {
	return field.WhereIn(query, values, boolean, true)
}

// WhereNull owner has no related row, or at least one when not is set
func (field *HasManyMorph) WhereNull(query builder.Builder, boolean builder.Boolean, not bool) builder.Builder {
	forward, err := field.Forward()
	if err != nil {
		return withError(query, err)
	}

	sub, err := field.related(func(b builder.Builder) builder.Builder {
		return b.WhereNull(forward.idField.Native, builder.And, true)
	})
	if err != nil {
		return withError(query, err)
	}
	return query.WhereIn(field.meta.PrimaryColumn(), []interface{}{sub}, boolean, !not)
}

func (field *HasManyMorph) WhereNotNull(query builder.Builder, boolean builder.Boolean) builder.Builder {
	return field.WhereNull(query, boolean, true)
}
