package schema

import (
	"context"

	"gorm.io/morph/builder"
)

// Field field declared on a meta
type Field interface {
	GetName() string
	GetMeta() *Meta
	GetOptions() Options
	declare(meta *Meta, name string) error
	own(registry *Registry) error
}

// RelationField field relating a model to models of other metas
type RelationField interface {
	Field
	Cast(value interface{}) (interface{}, error)
	Get(model Model) (interface{}, error)
	Set(ctx context.Context, q Querier, model Model, value interface{}) error
	Reverbate(ctx context.Context, q Querier, model Model, value interface{}) (interface{}, error)
	Relate(model Model) (*Relationship, error)
	Where(query builder.Builder, op builder.Operator, value interface{}, boolean builder.Boolean) builder.Builder
	WhereNull(query builder.Builder, boolean builder.Boolean, not bool) builder.Builder
	WhereIn(query builder.Builder, values []interface{}, boolean builder.Boolean, not bool) builder.Builder
}

// HasSourceConstraint field whose columns form a relational constraint
type HasSourceConstraint interface {
	Source() (*Morph, error)
}

// HasTargetConstraint field referencing indexes of other metas
type HasTargetConstraint interface {
	Targets() ([]IndexableConstraint, error)
}

// GeneratesReversedFields field adding reverse fields to the metas it targets
type GeneratesReversedFields interface {
	ReversedFields() ([]*HasManyMorph, error)
}

// Querier query factory of the persistence layer
type Querier interface {
	Query(meta *Meta) builder.Builder
}

// Transactor querier able to run fc in one transaction
type Transactor interface {
	Transaction(ctx context.Context, fc func(Querier) error) error
}
