package schema

import (
	"fmt"
	"reflect"
)

// ScopeKind kind of target scope
type ScopeKind int

const (
	ScopeModels ScopeKind = iota + 1
	ScopeCapability
	ScopeSelf
)

// TargetScope declared targets of a morph relation
type TargetScope struct {
	Kind   ScopeKind
	Models []string
	Marker interface{}
}

// OnModels concrete set of models, kept in declaration order
func OnModels(names ...string) TargetScope {
	return TargetScope{Kind: ScopeModels, Models: names}
}

// OnCapability every registered model satisfying marker, a capability name or an interface pointer
func OnCapability(marker interface{}) TargetScope {
	return TargetScope{Kind: ScopeCapability, Marker: marker}
}

// Self the model declaring the field
func Self() TargetScope {
	return TargetScope{Kind: ScopeSelf}
}

func (scope TargetScope) IsZero() bool {
	return scope.Kind == 0
}

func (scope TargetScope) String() string {
	switch scope.Kind {
	case ScopeModels:
		return fmt.Sprintf("models %v", scope.Models)
	case ScopeCapability:
		if rt := reflect.TypeOf(scope.Marker); rt != nil && rt.Kind() == reflect.Ptr {
			return "capability " + rt.Elem().String()
		}
		return fmt.Sprintf("capability %v", scope.Marker)
	case ScopeSelf:
		return "self"
	}
	return "undefined"
}

// ModelElement resolved target of a morph relation
type ModelElement struct {
	// Value discriminator stored in the type column
	Value        string
	Model        string
	Meta         *Meta
	ReversedName string
}

// ResolveTargets eligible target metas of scope, one element per meta with unique discriminators
func ResolveTargets(scope TargetScope, self *Meta, registry *Registry) ([]*ModelElement, error) {
	var metas []*Meta

	switch scope.Kind {
	case ScopeSelf:
		if self == nil {
			return nil, fmt.Errorf("%w: self scope without owning model", ErrConfiguration)
		}
		metas = append(metas, self)
	case ScopeModels:
		for _, name := range scope.Models {
			meta, err := registry.Lookup(name)
			if err != nil {
				return nil, err
			}
			metas = append(metas, meta)
		}
	case ScopeCapability:
		for _, meta := range registry.All() {
			if !meta.Pivot && meta.Implements(scope.Marker) {
				metas = append(metas, meta)
			}
		}
	default:
		return nil, fmt.Errorf("%w: no target scope", ErrConfiguration)
	}

	if len(metas) == 0 {
		return nil, fmt.Errorf("%w: %s matches no model", ErrConfiguration, scope)
	}

	var (
		elements = make([]*ModelElement, 0, len(metas))
		values   = map[string]string{}
	)
	for _, meta := range metas {
		value := meta.MorphValue
		if value == "" {
			value = registry.namer.MorphValue(meta.Name)
		}

		if other, ok := values[value]; ok {
			return nil, fmt.Errorf("%w: discriminator %q is shared by %s and %s", ErrConfiguration, value, other, meta.Name)
		}
		values[value] = meta.Name

		elements = append(elements, &ModelElement{Value: value, Model: meta.Name, Meta: meta, ReversedName: meta.ReversedName})
	}
	return elements, nil
}
