package schema

import (
	"gorm.io/morph/builder"
)

// RelationshipType relationship type
type RelationshipType string

const (
	MorphTo   RelationshipType = "morph_to"   // MorphTo forward side, the owner stores discriminator and identifier
	MorphMany RelationshipType = "morph_many" // MorphMany reverse side, related rows store the owner's discriminator and key
)

// Relationship association descriptor handed to the persistence layer
type Relationship struct {
	Name        string
	Type        RelationshipType
	Meta        *Meta
	FieldMeta   *Meta
	Polymorphic *Polymorphic
	References  []Reference
	// Scopes extra conditions, usually added by a When callback
	Scopes []func(builder.Builder) builder.Builder
}

type Polymorphic struct {
	PolymorphicID   Attribute
	PolymorphicType Attribute
	Value           string
}

type Reference struct {
	PrimaryKey    Attribute
	PrimaryValue  interface{}
	ForeignKey    Attribute
	OwnPrimaryKey bool
}

// Scope adds conditions applied by ToQueryConditions
func (rel *Relationship) Scope(fc func(builder.Builder) builder.Builder) *Relationship {
	rel.Scopes = append(rel.Scopes, fc)
	return rel
}

// ToQueryConditions filters query, built on FieldMeta, to the related rows
func (rel *Relationship) ToQueryConditions(query builder.Builder) builder.Builder {
	if rel.Type == MorphMany && rel.Polymorphic != nil {
		query = query.Where(rel.Polymorphic.PolymorphicType.Native, builder.Equal, rel.Polymorphic.Value, builder.And)
	}

	for _, ref := range rel.References {
		if ref.OwnPrimaryKey {
			query = query.Where(ref.ForeignKey.Native, builder.Equal, ref.PrimaryValue, builder.And)
		} else {
			query = query.Where(ref.PrimaryKey.Native, builder.Equal, ref.PrimaryValue, builder.And)
		}
	}

	for _, scope := range rel.Scopes {
		query = scope(query)
	}
	return query
}
