package schema_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gorm.io/morph"
	"gorm.io/morph/builder"
	"gorm.io/morph/config"
	"gorm.io/morph/mocks"
	"gorm.io/morph/schema"
	"gorm.io/morph/utils/tests"
)

func postComments(t *testing.T, fixtures *tests.Fixtures) *schema.HasManyMorph {
	t.Helper()

	field, err := fixtures.Commentable.ReversedField("Post")
	require.NoError(t, err)
	return field
}

func TestHasManyMorphForward(t *testing.T) {
	fixtures := build(t)
	comments := postComments(t, fixtures)

	forward, err := comments.Forward()
	require.NoError(t, err)
	assert.Same(t, fixtures.Commentable, forward)
	assert.Equal(t, []string{"Comment"}, comments.SourceModels())
	assert.Equal(t, "post", comments.Value())
	assert.True(t, comments.GetOptions().Has(schema.Fillable))
	assert.False(t, comments.GetOptions().Has(schema.Required))

	source, err := comments.Source()
	require.NoError(t, err)
	expected, _ := fixtures.Commentable.Source()
	assert.Same(t, expected, source)

	targets, err := comments.Targets()
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Same(t, fixtures.Post.Constraints().Primary(), targets[0])
}

func TestHasManyMorphCast(t *testing.T) {
	fixtures := build(t)
	comments := postComments(t, fixtures)
	comment := fixtures.Comment.New(map[string]interface{}{"id": 2})

	casted, err := comments.Cast(nil)
	require.NoError(t, err)
	assert.Equal(t, schema.Collection{}, casted)

	casted, err = comments.Cast([]interface{}{1, nil, comment})
	require.NoError(t, err)
	collection := casted.(schema.Collection)
	require.Len(t, collection, 2)
	tests.AssertRecordEqual(t, collection[0], schema.NewRecord("Comment", map[string]interface{}{"id": 1}), "id")
	assert.Same(t, comment, collection[1])

	casted, err = comments.Cast(comment)
	require.NoError(t, err)
	assert.Equal(t, schema.Collection{comment}, casted)
}

func TestHasManyMorphRelate(t *testing.T) {
	fixtures := build(t)
	comments := postComments(t, fixtures)

	rel, err := comments.Relate(fixtures.Post.New(map[string]interface{}{"id": 1}))
	require.NoError(t, err)
	assert.Equal(t, schema.MorphMany, rel.Type)
	assert.Same(t, fixtures.Comment, rel.FieldMeta)
	assert.True(t, rel.References[0].OwnPrimaryKey)

	sql, vars := toSQL(t, rel.ToQueryConditions(builder.New("comments", nil, nil, nil)))
	assert.Equal(t, "SELECT * FROM `comments` WHERE `commentable_type` = ? AND `commentable_id` = ?", sql)
	tests.AssertEqual(t, vars, []interface{}{"post", 1})
}

func TestHasManyMorphWhere(t *testing.T) {
	fixtures := build(t)
	comments := postComments(t, fixtures)
	comment := fixtures.Comment.New(map[string]interface{}{"id": 1})

	results := []struct {
		Query  builder.Builder
		Result string
		Vars   []interface{}
	}{
		{
			comments.Where(builder.New("posts", nil, nil, nil), builder.Equal, comment, builder.And),
			"SELECT * FROM `posts` WHERE `id` IN (SELECT `commentable_id` FROM `comments` WHERE `commentable_type` = ? AND `id` = ?)",
			[]interface{}{"post", 1},
		},
		{
			comments.Where(builder.New("posts", nil, nil, nil), builder.In, []interface{}{1, 2}, builder.And),
			"SELECT * FROM `posts` WHERE `id` IN (SELECT `commentable_id` FROM `comments` WHERE `commentable_type` = ? AND `id` IN (?,?))",
			[]interface{}{"post", 1, 2},
		},
		{
			comments.Where(builder.New("posts", nil, nil, nil), builder.NotEqual, comment, builder.And),
			"SELECT * FROM `posts` WHERE `id` NOT IN (SELECT `commentable_id` FROM `comments` WHERE `commentable_type` = ? AND `id` = ?)",
			[]interface{}{"post", 1},
		},
		{
			comments.Where(builder.New("posts", nil, nil, nil), builder.Greater, 3, builder.And),
			"SELECT * FROM `posts` WHERE `id` IN (SELECT `commentable_id` FROM `comments` WHERE `commentable_type` = ? AND `id` > ?)",
			[]interface{}{"post", 3},
		},
		{
			comments.Where(builder.New("posts", nil, nil, nil), builder.Null, nil, builder.And),
			"SELECT * FROM `posts` WHERE `id` NOT IN (SELECT `commentable_id` FROM `comments` WHERE `commentable_type` = ? AND `commentable_id` IS NOT NULL)",
			[]interface{}{"post"},
		},
		{
			comments.WhereNotNull(builder.New("posts", nil, nil, nil), builder.And),
			"SELECT * FROM `posts` WHERE `id` IN (SELECT `commentable_id` FROM `comments` WHERE `commentable_type` = ? AND `commentable_id` IS NOT NULL)",
			[]interface{}{"post"},
		},
		{
			comments.Where(builder.New("posts", nil, nil, nil), builder.Equal, nil, builder.And),
			"SELECT * FROM `posts` WHERE `id` NOT IN (SELECT `commentable_id` FROM `comments` WHERE `commentable_type` = ? AND `commentable_id` IS NOT NULL)",
			[]interface{}{"post"},
		},
	}

	for idx, result := range results {
		sql, vars := toSQL(t, result.Query)
		if sql != result.Result {
			t.Errorf("%d: generated SQL is not equal, expects %v, but got %v", idx, result.Result, sql)
		}
		tests.AssertEqual(t, vars, result.Vars)
	}
}

type commentRows struct {
	post1, post2, a, b, c, d, e *schema.Record
}

func seedComments(t *testing.T, db *morph.DB, fixtures *tests.Fixtures) commentRows {
	t.Helper()

	var rows commentRows
	rows.post1 = tests.Insert(t, db, fixtures.Post, map[string]interface{}{"id": 1, "title": "first"})
	rows.post2 = tests.Insert(t, db, fixtures.Post, map[string]interface{}{"id": 2, "title": "second"})
	tests.Insert(t, db, fixtures.Video, map[string]interface{}{"id": 1, "url": "https://example.com/1"})

	rows.a = tests.Insert(t, db, fixtures.Comment, map[string]interface{}{"id": 1, "body": "a", "commentable_type": "post", "commentable_id": 1})
	rows.b = tests.Insert(t, db, fixtures.Comment, map[string]interface{}{"id": 2, "body": "b", "commentable_type": "post", "commentable_id": 1})
	rows.c = tests.Insert(t, db, fixtures.Comment, map[string]interface{}{"id": 3, "body": "c", "commentable_type": nil, "commentable_id": nil})
	rows.d = tests.Insert(t, db, fixtures.Comment, map[string]interface{}{"id": 4, "body": "d", "commentable_type": "post", "commentable_id": 2})
	rows.e = tests.Insert(t, db, fixtures.Comment, map[string]interface{}{"id": 5, "body": "e", "commentable_type": "video", "commentable_id": 1})
	return rows
}

func TestHasManyMorphReconcile(t *testing.T) {
	db, fixtures := tests.OpenDB(t)
	rows := seedComments(t, db, fixtures)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, rows.post1, "comments", schema.Collection{rows.b, rows.c}))

	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_type", ""), []interface{}{nil, "post", "post", "post", "video"})
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{nil, 1, 1, 2, 1})
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "id", "`commentable_type` = ? AND `commentable_id` = ?", "post", 1), []interface{}{2, 3})

	assert.Equal(t, "post", rows.c.GetAttribute("commentable_type"))
	assert.Equal(t, 1, rows.c.GetAttribute("commentable_id"))
	related, err := db.Get(rows.c, "commentable")
	require.NoError(t, err)
	assert.Same(t, rows.post1, related)

	loaded, err := db.Get(rows.post1, "comments")
	require.NoError(t, err)
	assert.Equal(t, schema.Collection{rows.b, rows.c}, loaded)

	// clearing the relation detaches every row pointing at the owner
	require.NoError(t, db.Set(ctx, rows.post1, "comments", nil))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{nil, nil, nil, 2, 1})
}

func TestHasManyMorphReconcileDefault(t *testing.T) {
	cfg := config.Default()
	fc := cfg.Fields[config.HasManyMorph]
	fc.Default = 0
	cfg.Fields[config.HasManyMorph] = fc

	db, fixtures := tests.OpenDB(t, morph.WithConfig(cfg))
	rows := seedComments(t, db, fixtures)

	require.NoError(t, db.Set(context.Background(), rows.post1, "comments", schema.Collection{rows.a}))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_type", ""), []interface{}{"post", "post", nil, "post", "video"})
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{1, 0, nil, 2, 1})
}

func TestHasManyMorphTransient(t *testing.T) {
	db, fixtures := tests.OpenDB(t)
	rows := seedComments(t, db, fixtures)
	comments := postComments(t, fixtures)

	post := fixtures.Post.New(map[string]interface{}{"id": 1})
	require.NoError(t, comments.Set(context.Background(), db, post, schema.Collection{rows.d}))

	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{1, 1, nil, 2, 1})
	loaded, _ := comments.Get(post)
	assert.Equal(t, schema.Collection{rows.d}, loaded, "transient owners only cache the collection")

	err := comments.Set(context.Background(), nil, rows.post1, nil)
	assert.ErrorIs(t, err, schema.ErrConfiguration, "persisted owners need a querier")
}

type mockQuerier struct {
	executor builder.Executor
}

func (q mockQuerier) Query(meta *schema.Meta) builder.Builder {
	return builder.New(meta.Table, q.executor, nil, nil)
}

func TestHasManyMorphReconcileExecutor(t *testing.T) {
	fixtures := build(t)
	comments := postComments(t, fixtures)
	ctx := context.Background()

	post := fixtures.Post.New(map[string]interface{}{"id": 1})
	post.Persisted = true
	b := fixtures.Comment.New(map[string]interface{}{"id": 2})
	c := fixtures.Comment.New(map[string]interface{}{"id": 3})

	executor := new(mocks.Executor)
	executor.On("ExecContext", mock.Anything,
		"UPDATE `comments` SET `commentable_id`=?,`commentable_type`=? WHERE `commentable_type` = ? AND `commentable_id` = ? AND `id` NOT IN (?,?)",
		nil, nil, "post", 1, 2, 3,
	).Return(driver.RowsAffected(1), nil).Once()
	executor.On("ExecContext", mock.Anything,
		"UPDATE `comments` SET `commentable_id`=?,`commentable_type`=? WHERE `id` IN (?,?)",
		1, "post", 2, 3,
	).Return(driver.RowsAffected(2), nil).Once()

	require.NoError(t, comments.Set(ctx, mockQuerier{executor}, post, []interface{}{b, c}))
	executor.AssertExpectations(t)
	assert.Equal(t, "post", c.GetAttribute("commentable_type"))

	errExec := errors.New("connection reset")
	executor = new(mocks.Executor)
	executor.On("ExecContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errExec).Once()

	err := comments.Set(ctx, mockQuerier{executor}, post, nil)
	assert.ErrorIs(t, err, errExec)
	executor.AssertNumberOfCalls(t, "ExecContext", 1)
}

func TestHasManyMorphCastType(t *testing.T) {
	fixtures := build(t)
	comments := postComments(t, fixtures)
	video := fixtures.Video.New(map[string]interface{}{"id": 5})

	for _, value := range []interface{}{video, schema.Collection{video}, []interface{}{1, video}, []schema.Model{video}} {
		if _, err := comments.Cast(value); !errors.Is(err, schema.ErrType) {
			t.Errorf("casting %v should fail with a type error, got %v", value, err)
		}
	}

	db, fixtures := tests.OpenDB(t)
	rows := seedComments(t, db, fixtures)
	video = tests.Insert(t, db, fixtures.Video, map[string]interface{}{"id": 5, "url": "https://example.com/5"})

	err := db.Set(context.Background(), rows.post1, "comments", schema.Collection{video})
	assert.ErrorIs(t, err, schema.ErrType)
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{1, 1, nil, 2, 1})
	assert.False(t, video.HasAttribute("commentable_type"))
}

func TestHasManyMorphReconcileReleases(t *testing.T) {
	db, fixtures := tests.OpenDB(t)
	rows := seedComments(t, db, fixtures)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, rows.post1, "comments", schema.Collection{rows.a, rows.b}))
	related, err := db.Get(rows.a, "commentable")
	require.NoError(t, err)
	assert.Same(t, rows.post1, related)

	require.NoError(t, db.Set(ctx, rows.post1, "comments", schema.Collection{rows.b}))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{nil, 1, nil, 2, 1})

	assert.Nil(t, rows.a.GetAttribute("commentable_type"))
	assert.Nil(t, rows.a.GetAttribute("commentable_id"))
	related, err = db.Get(rows.a, "commentable")
	require.NoError(t, err)
	assert.Nil(t, related, "detached rows no longer point at the owner")

	related, err = db.Get(rows.b, "commentable")
	require.NoError(t, err)
	assert.Same(t, rows.post1, related)
}

func TestHasManyMorphAttachDetach(t *testing.T) {
	db, fixtures := tests.OpenDB(t)
	rows := seedComments(t, db, fixtures)
	comments := postComments(t, fixtures)
	ctx := context.Background()

	require.NoError(t, comments.Attach(ctx, db, rows.post1, schema.Collection{rows.c, rows.e}))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_type", ""), []interface{}{"post", "post", "post", "post", "post"})
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{1, 1, 1, 2, 1})
	related, err := db.Get(rows.e, "commentable")
	require.NoError(t, err)
	assert.Same(t, rows.post1, related)

	loaded, _ := comments.Get(rows.post1)
	assert.Nil(t, loaded, "attaching does not load the relation")

	require.NoError(t, comments.Sync(ctx, db, rows.post1, schema.Collection{rows.a}))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{1, nil, nil, 2, nil})

	require.NoError(t, comments.SyncWithoutDetaching(ctx, db, rows.post1, []interface{}{rows.b, rows.a}))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{1, 1, nil, 2, nil})
	loaded, _ = comments.Get(rows.post1)
	assert.Equal(t, schema.Collection{rows.a, rows.b}, loaded)

	require.NoError(t, comments.Detach(ctx, db, rows.post1, rows.a))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{nil, 1, nil, 2, nil})
	loaded, _ = comments.Get(rows.post1)
	assert.Equal(t, schema.Collection{rows.b}, loaded)
	assert.Nil(t, rows.a.GetAttribute("commentable_id"))

	require.NoError(t, comments.Detach(ctx, db, rows.post1, []interface{}{4}))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{nil, 1, nil, 2, nil}) // rows of other owners are left alone

	require.NoError(t, comments.Detach(ctx, db, rows.post1, nil))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{nil, nil, nil, 2, nil})
	loaded, _ = comments.Get(rows.post1)
	assert.Equal(t, schema.Collection{}, loaded)
	assert.Nil(t, rows.b.GetAttribute("commentable_type"))

	assert.ErrorIs(t, comments.Attach(ctx, db, rows.post1, fixtures.Tag.New(map[string]interface{}{"id": 1})), schema.ErrType)
}

func TestHasManyMorphToggle(t *testing.T) {
	db, fixtures := tests.OpenDB(t)
	rows := seedComments(t, db, fixtures)
	comments := postComments(t, fixtures)
	ctx := context.Background()

	require.NoError(t, comments.Toggle(ctx, db, rows.post1, schema.Collection{rows.b, rows.c}))
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_type", ""), []interface{}{"post", nil, "post", "post", "video"})
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "commentable_id", ""), []interface{}{1, nil, 1, 2, 1})
	assert.Nil(t, rows.b.GetAttribute("commentable_id"))
	assert.Equal(t, "post", rows.c.GetAttribute("commentable_type"))

	err := comments.Toggle(ctx, db, fixtures.Post.New(map[string]interface{}{"id": 3}), schema.Collection{rows.a})
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestHasManyMorphUpdateDelete(t *testing.T) {
	db, fixtures := tests.OpenDB(t)
	rows := seedComments(t, db, fixtures)
	comments := postComments(t, fixtures)
	ctx := context.Background()

	require.NoError(t, comments.Sync(ctx, db, rows.post1, schema.Collection{rows.a, rows.b}))

	affected, err := comments.Update(ctx, db, rows.post1, map[string]interface{}{"body": "edited"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "body", ""), []interface{}{"edited", "edited", "c", "d", "e"})
	assert.Equal(t, "edited", rows.a.GetAttribute("body"))

	affected, err = comments.Update(ctx, db, fixtures.Post.New(map[string]interface{}{"id": 2}), map[string]interface{}{"body": "none"})
	require.NoError(t, err)
	assert.Zero(t, affected, "unsaved owners have no rows")

	affected, err = comments.Delete(ctx, db, rows.post1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)
	tests.AssertEqual(t, tests.Pluck(t, db, fixtures.Comment, "id", ""), []interface{}{3, 4, 5})
	assert.False(t, rows.a.Exists())

	loaded, _ := comments.Get(rows.post1)
	assert.Equal(t, schema.Collection{}, loaded)
}
