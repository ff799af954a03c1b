package schema_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/morph/config"
	"gorm.io/morph/logger"
	"gorm.io/morph/schema"
	"gorm.io/morph/utils/tests"
)

func TestRegister(t *testing.T) {
	registry := schema.NewRegistry(nil, nil, nil)

	post, err := registry.Register("BlogPost", schema.WithReversedName("notes"))
	require.NoError(t, err)
	assert.Equal(t, "blog_posts", post.Table)
	assert.Equal(t, []string{"id"}, post.PrimaryKey)
	assert.Equal(t, "id", post.PrimaryColumn())
	assert.Same(t, registry, post.Registry())
	assert.Equal(t, schema.Building, post.State())
	assert.Equal(t, "blog_posts_id_primary", post.Constraints().Primary().GetName())

	video, err := registry.Register("Video", schema.WithTable("clips"), schema.WithPrimaryKey("uuid"))
	require.NoError(t, err)
	assert.Equal(t, "clips", video.Table)
	assert.Equal(t, "uuid", video.PrimaryColumn())
	assert.Equal(t, "uuid", video.Key(video.New(map[string]interface{}{"uuid": "uuid"})))

	_, err = registry.Register("BlogPost")
	assert.ErrorIs(t, err, schema.ErrDuplicateName)

	found, err := registry.Lookup("Video")
	require.NoError(t, err)
	assert.Same(t, video, found)

	_, err = registry.Lookup("Image")
	assert.ErrorIs(t, err, schema.ErrNotFound)

	assert.Equal(t, []*schema.Meta{post, video}, registry.All())
}

func TestBuildLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewZerologLogger(zerolog.New(&buf), logger.Config{LogLevel: logger.Info})

	registry := schema.NewRegistry(nil, nil, log)
	_, err := tests.Build(context.Background(), registry)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "morph field Comment.commentable resolved to [post video]")

	buf.Reset()
	registry = schema.NewRegistry(nil, nil, log)
	comment, _ := registry.Register("Comment")
	comment.MorphToOne("commentable").On(schema.OnModels("Image"))
	assert.ErrorIs(t, registry.Build(context.Background()), schema.ErrNotFound)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "owning Comment.commentable failed")
}

func TestBuildOnce(t *testing.T) {
	registry := schema.NewRegistry(nil, nil, nil)
	fixtures, err := tests.Declare(registry)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = registry.Build(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	reversed, err := fixtures.Commentable.ReversedFields()
	require.NoError(t, err)
	assert.Len(t, reversed, 2, "concurrent builds own fields once")
}

func TestBuildMetaErrors(t *testing.T) {
	registry := schema.NewRegistry(nil, nil, nil)
	post, _ := registry.Register("Post")
	post.Attribute("title", "string")
	post.Attribute("title", "string")

	assert.ErrorIs(t, post.Err(), schema.ErrDuplicateName)
	assert.ErrorIs(t, registry.Build(context.Background()), schema.ErrDuplicateName)
}

func TestBuildTemplates(t *testing.T) {
	cfg, err := config.Load(bytes.NewBufferString(`
fields:
  morph_to_one:
    templates:
      type: "${name}_kind"
      reversed: "-{modelname}_entries"
`))
	require.NoError(t, err)

	registry := schema.NewRegistry(nil, cfg, nil)
	post, _ := registry.Register("Post")
	comment, _ := registry.Register("Comment")
	field := comment.MorphToOne("commentable").On(schema.OnModels("Post"))
	require.NoError(t, registry.Build(context.Background()))

	typeField, err := field.TypeField()
	require.NoError(t, err)
	assert.Equal(t, "commentable_kind", typeField.Native)

	idField, err := field.IDField()
	require.NoError(t, err)
	assert.Equal(t, "commentable_id", idField.Native)

	_, err = post.Field("comment_entries")
	assert.NoError(t, err)

	cfg, err = config.Load(bytes.NewBufferString(`
fields:
  morph_to_one:
    templates:
      id: "${name}_${owner}"
`))
	require.NoError(t, err)

	registry = schema.NewRegistry(nil, cfg, nil)
	registry.Register("Post")
	comment, _ = registry.Register("Comment")
	comment.MorphToOne("commentable").On(schema.OnModels("Post"))
	assert.ErrorIs(t, registry.Build(context.Background()), schema.ErrConfiguration, "unresolved tokens")
}
