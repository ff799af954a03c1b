package schema

import (
	"fmt"
)

// ConstraintType constraint kind
type ConstraintType string

const (
	PrimaryKind    ConstraintType = "primary"
	UniqueKind     ConstraintType = "unique"
	IndexKind      ConstraintType = "index"
	MorphIndexKind ConstraintType = "morph_index"
	ForeignKind    ConstraintType = "foreign"
	MorphKind      ConstraintType = "morph"
)

// Indexable reports whether constraints of this kind can be referenced by relations
func (kind ConstraintType) Indexable() bool {
	switch kind {
	case PrimaryKind, UniqueKind, IndexKind, MorphIndexKind:
		return true
	}
	return false
}

// Constraint named constraint over ordered attributes of one model
type Constraint interface {
	GetName() string
	Type() ConstraintType
	GetAttributes() []Attribute
	GetModel() string
	Locked() bool
	Lock() error
}

// IndexableConstraint constraint usable as a lookup key
type IndexableConstraint interface {
	Constraint
	Attribute() Attribute
}

// RelationalConstraint constraint whose attributes reference one indexable constraint
type RelationalConstraint interface {
	Constraint
	GetTarget() IndexableConstraint
	SetTarget(target Constraint) error
}

type baseConstraint struct {
	Name       string
	Kind       ConstraintType
	Attributes []Attribute
	Model      string
	locked     bool
}

func (c *baseConstraint) GetName() string            { return c.Name }
func (c *baseConstraint) Type() ConstraintType       { return c.Kind }
func (c *baseConstraint) GetAttributes() []Attribute { return c.Attributes }
func (c *baseConstraint) GetModel() string           { return c.Model }
func (c *baseConstraint) Locked() bool               { return c.locked }

// Attribute first attribute of the constraint
func (c *baseConstraint) Attribute() Attribute {
	if len(c.Attributes) == 0 {
		return Attribute{Model: c.Model}
	}
	return c.Attributes[0]
}

func (c *baseConstraint) needsUnlocked() error {
	if c.locked {
		return fmt.Errorf("%w: constraint %s is locked", ErrState, c.Name)
	}
	return nil
}

// Index primary, unique or plain index
type Index struct {
	baseConstraint
}

func newIndex(kind ConstraintType, name string, attrs []Attribute) (*Index, error) {
	if !kind.Indexable() || kind == MorphIndexKind {
		return nil, fmt.Errorf("%w: %s is not an index kind", ErrType, kind)
	}

	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: index %s requires at least one attribute", ErrConfiguration, name)
	}

	for _, attr := range attrs[1:] {
		if attr.Model != attrs[0].Model {
			return nil, fmt.Errorf("%w: index %s mixes attributes of %s and %s", ErrConfiguration, name, attrs[0].Model, attr.Model)
		}
	}

	return &Index{baseConstraint{Name: name, Kind: kind, Attributes: attrs, Model: attrs[0].Model}}, nil
}

func (idx *Index) Lock() error {
	idx.locked = true
	return nil
}

// MorphIndex one index per eligible target model, all uniformly shaped
type MorphIndex struct {
	baseConstraint
	indexes map[string]IndexableConstraint
	models  []string
}

func newMorphIndex(name, model string) *MorphIndex {
	return &MorphIndex{
		baseConstraint: baseConstraint{Name: name, Kind: MorphIndexKind, Model: model},
		indexes:        map[string]IndexableConstraint{},
	}
}

// On sets the member indexes, keyed by their owning model, attributes become the concatenation of every member
func (mi *MorphIndex) On(indexes ...IndexableConstraint) error {
	if err := mi.needsUnlocked(); err != nil {
		return err
	}

	members := make(map[string]IndexableConstraint, len(indexes))
	models := make([]string, 0, len(indexes))
	for _, index := range indexes {
		if index == nil {
			return fmt.Errorf("%w: nil member index for %s", ErrType, mi.Name)
		}

		if _, ok := members[index.GetModel()]; ok {
			return fmt.Errorf("%w: model %s has several indexes in %s", ErrDuplicateName, index.GetModel(), mi.Name)
		}
		members[index.GetModel()] = index
		models = append(models, index.GetModel())
	}

	var attrs []Attribute
	for _, model := range models {
		attrs = append(attrs, members[model].GetAttributes()...)
	}

	mi.indexes, mi.models, mi.Attributes = members, models, attrs
	return nil
}

// GetIndex member index of model
func (mi *MorphIndex) GetIndex(model string) (IndexableConstraint, error) {
	if index, ok := mi.indexes[model]; ok {
		return index, nil
	}
	return nil, fmt.Errorf("%w: no index for model %s in %s", ErrNotFound, model, mi.Name)
}

// Indexes member indexes in declaration order
func (mi *MorphIndex) Indexes() []IndexableConstraint {
	indexes := make([]IndexableConstraint, len(mi.models))
	for idx, model := range mi.models {
		indexes[idx] = mi.indexes[model]
	}
	return indexes
}

// Models member models in declaration order
func (mi *MorphIndex) Models() []string {
	return append([]string(nil), mi.models...)
}

// Lock checks every member carries len(attributes)/len(members) attributes
func (mi *MorphIndex) Lock() error {
	if mi.locked {
		return nil
	}

	if len(mi.models) == 0 {
		return &LockError{Constraint: mi.Name}
	}

	expected := len(mi.Attributes) / len(mi.models)
	for _, index := range mi.Indexes() {
		if got := len(index.GetAttributes()); got*len(mi.models) != len(mi.Attributes) {
			return &LockError{Constraint: mi.Name, Expected: expected, Got: got}
		}
	}

	mi.locked = true
	return nil
}

// Relation foreign key like constraint referencing one indexable constraint
type Relation struct {
	baseConstraint
	target IndexableConstraint
}

func newRelation(kind ConstraintType, name string, attrs []Attribute) (*Relation, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: relation %s requires at least one attribute", ErrConfiguration, name)
	}
	return &Relation{baseConstraint: baseConstraint{Name: name, Kind: kind, Attributes: attrs, Model: attrs[0].Model}}, nil
}

func (rel *Relation) GetTarget() IndexableConstraint {
	return rel.target
}

// SetTarget target must be indexable
func (rel *Relation) SetTarget(target Constraint) error {
	if err := rel.needsUnlocked(); err != nil {
		return err
	}

	indexable, ok := target.(IndexableConstraint)
	if !ok || !target.Type().Indexable() {
		return fmt.Errorf("%w: relation %s must target an indexable constraint, got %T", ErrType, rel.Name, target)
	}

	rel.target = indexable
	return nil
}

func (rel *Relation) Lock() error {
	if rel.target == nil {
		return fmt.Errorf("%w: relation %s has no target", ErrConfiguration, rel.Name)
	}
	rel.locked = true
	return nil
}

// Morph relation whose target is a MorphIndex, attributes are (discriminator, identifier...)
type Morph struct {
	Relation
}

func newMorph(name string, attrs []Attribute) (*Morph, error) {
	rel, err := newRelation(MorphKind, name, attrs)
	if err != nil {
		return nil, err
	}
	return &Morph{Relation: *rel}, nil
}

// SetTarget target must be a *MorphIndex
func (m *Morph) SetTarget(target Constraint) error {
	if err := m.needsUnlocked(); err != nil {
		return err
	}

	index, ok := target.(*MorphIndex)
	if !ok {
		return fmt.Errorf("%w: morph %s must target a morph index, got %T", ErrType, m.Name, target)
	}

	m.target = index
	return nil
}

// MorphIndex target of the morph
func (m *Morph) MorphIndex() *MorphIndex {
	index, _ := m.target.(*MorphIndex)
	return index
}

// IsComposed the key carries more than discriminator and identifier
func (m *Morph) IsComposed() bool {
	return len(m.Attributes) > 2
}

// Lock checks the source carries one discriminator plus one attribute per member key attribute
func (m *Morph) Lock() error {
	if m.locked {
		return nil
	}

	index := m.MorphIndex()
	if index == nil {
		return fmt.Errorf("%w: morph %s has no target", ErrConfiguration, m.Name)
	}

	if len(index.models) > 0 {
		if expected := len(index.Attributes)/len(index.models) + 1; expected != len(m.Attributes) {
			return &LockError{Constraint: m.Name, Expected: expected, Got: len(m.Attributes)}
		}
	}

	m.locked = true
	return nil
}
