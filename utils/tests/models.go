package tests

import (
	"context"

	"gorm.io/morph/schema"
)

// Commentable models comments can be attached to
type Commentable interface {
	Commentable()
}

// Post is commentable
type Post struct {
	ID    int64
	Title string
}

func (Post) Commentable() {}

// Video is commentable
type Video struct {
	ID  int64
	URL string
}

func (*Video) Commentable() {}

// Tag is not commentable
type Tag struct {
	ID   int64
	Name string
}

// Taggable join model between tags and posts, a pivot even though it is commentable
type Taggable struct {
	ID int64
}

func (Taggable) Commentable() {}

// Fixtures metas of the comment schema:
// Comment belongs to a Post or a Video (morph to one), Post and Video have many Comments (has many morph)
type Fixtures struct {
	Post        *schema.Meta
	Video       *schema.Meta
	Tag         *schema.Meta
	Taggable    *schema.Meta
	Comment     *schema.Meta
	Commentable *schema.MorphToOne
}

// Declare registers the comment schema on registry without building it
func Declare(registry *schema.Registry) (*Fixtures, error) {
	var (
		fixtures Fixtures
		err      error
	)

	if fixtures.Post, err = registry.Register("Post", schema.WithModelType(Post{})); err != nil {
		return nil, err
	}
	fixtures.Post.Attribute("title", "string", schema.Visible, schema.Fillable)

	if fixtures.Video, err = registry.Register("Video", schema.WithModelType(&Video{})); err != nil {
		return nil, err
	}
	fixtures.Video.Attribute("url", "string", schema.Visible, schema.Fillable)

	if fixtures.Tag, err = registry.Register("Tag", schema.WithModelType(Tag{})); err != nil {
		return nil, err
	}
	fixtures.Tag.Attribute("name", "string", schema.Visible, schema.Fillable)

	if fixtures.Taggable, err = registry.Register("Taggable", schema.WithModelType(Taggable{}), schema.AsPivot()); err != nil {
		return nil, err
	}

	if fixtures.Comment, err = registry.Register("Comment"); err != nil {
		return nil, err
	}
	fixtures.Comment.Attribute("body", "string", schema.Visible, schema.Fillable)
	fixtures.Commentable = fixtures.Comment.MorphToOne("commentable").On(schema.OnCapability((*Commentable)(nil)))

	return &fixtures, fixtures.Comment.Err()
}

// Build declares then builds the comment schema
func Build(ctx context.Context, registry *schema.Registry) (*Fixtures, error) {
	fixtures, err := Declare(registry)
	if err != nil {
		return nil, err
	}
	return fixtures, registry.Build(ctx)
}
