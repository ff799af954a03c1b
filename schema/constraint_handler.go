package schema

import (
	"fmt"
)

// ConstraintHandler constraints of one model keyed by name, frozen once locked
type ConstraintHandler struct {
	Model string
	Table string

	namer       Namer
	constraints map[string]Constraint
	order       []string
	primary     *Index
	locked      bool
}

// NewConstraintHandler handler of model stored in table
func NewConstraintHandler(model, table string, namer Namer) *ConstraintHandler {
	if namer == nil {
		namer = NamingStrategy{}
	}
	return &ConstraintHandler{Model: model, Table: table, namer: namer, constraints: map[string]Constraint{}}
}

func (h *ConstraintHandler) needsUnlocked() error {
	if h.locked {
		return fmt.Errorf("%w: constraints of %s are locked", ErrState, h.Model)
	}
	return nil
}

func (h *ConstraintHandler) name(kind ConstraintType, name string, attrs []Attribute) string {
	if name != "" {
		return name
	}
	return h.namer.ConstraintName(h.Table, kind, natives(attrs)...)
}

func (h *ConstraintHandler) add(constraint Constraint) error {
	if _, ok := h.constraints[constraint.GetName()]; ok {
		return fmt.Errorf("%w: constraint %s already exists on %s", ErrDuplicateName, constraint.GetName(), h.Model)
	}
	h.constraints[constraint.GetName()] = constraint
	h.order = append(h.order, constraint.GetName())
	return nil
}

// Create creates a constraint of kind over attrs, an empty name is generated from the table, the columns and the kind
func (h *ConstraintHandler) Create(kind ConstraintType, name string, attrs ...Attribute) (Constraint, error) {
	if err := h.needsUnlocked(); err != nil {
		return nil, err
	}

	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: %s constraint on %s requires attributes", ErrConfiguration, kind, h.Model)
	}

	for _, attr := range attrs {
		if attr.Model != h.Model {
			return nil, fmt.Errorf("%w: attribute %s does not belong to %s", ErrConfiguration, attr, h.Model)
		}
	}

	var (
		constraint Constraint
		err        error
	)

	name = h.name(kind, name, attrs)
	switch kind {
	case PrimaryKind, UniqueKind, IndexKind:
		if kind == PrimaryKind && h.primary != nil {
			return nil, fmt.Errorf("%w: %s already has primary key %s", ErrConfiguration, h.Model, h.primary.Name)
		}
		constraint, err = newIndex(kind, name, attrs)
	case ForeignKind:
		constraint, err = newRelation(kind, name, attrs)
	case MorphKind:
		constraint, err = newMorph(name, attrs)
	case MorphIndexKind:
		return nil, fmt.Errorf("%w: morph indexes are created with CreateMorphIndex", ErrType)
	default:
		return nil, fmt.Errorf("%w: unknown constraint kind %q", ErrType, kind)
	}

	if err != nil {
		return nil, err
	}

	if err := h.add(constraint); err != nil {
		return nil, err
	}

	if kind == PrimaryKind {
		h.primary = constraint.(*Index)
	}
	return constraint, nil
}

// CreateMorphIndex creates a morph index over the member indexes, each member belongs to another model
func (h *ConstraintHandler) CreateMorphIndex(name string, indexes ...IndexableConstraint) (*MorphIndex, error) {
	if err := h.needsUnlocked(); err != nil {
		return nil, err
	}

	index := newMorphIndex("", h.Model)
	if err := index.On(indexes...); err != nil {
		return nil, err
	}

	if name == "" {
		columns := make([]string, 0, len(indexes))
		for _, member := range indexes {
			columns = append(columns, h.namer.MorphValue(member.GetModel()))
		}
		name = h.namer.ConstraintName(h.Table, MorphIndexKind, columns...)
	}
	index.Name = name

	if err := h.add(index); err != nil {
		return nil, err
	}
	return index, nil
}

// Get constraint by name
func (h *ConstraintHandler) Get(name string) (Constraint, error) {
	if constraint, ok := h.constraints[name]; ok {
		return constraint, nil
	}
	return nil, fmt.Errorf("%w: constraint %s on %s", ErrNotFound, name, h.Model)
}

// All constraints in creation order
func (h *ConstraintHandler) All() []Constraint {
	constraints := make([]Constraint, len(h.order))
	for idx, name := range h.order {
		constraints[idx] = h.constraints[name]
	}
	return constraints
}

// Primary primary key index, nil when the model has none
func (h *ConstraintHandler) Primary() *Index {
	return h.primary
}

// Lock locks every constraint, the first shape mismatch is returned and leaves the handler unlocked
func (h *ConstraintHandler) Lock() error {
	if h.locked {
		return nil
	}

	for _, constraint := range h.All() {
		if err := constraint.Lock(); err != nil {
			return err
		}
	}

	h.locked = true
	return nil
}

// Locked reports whether the handler is frozen
func (h *ConstraintHandler) Locked() bool {
	return h.locked
}
