package sqlite_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/morph/dialect"
	"gorm.io/morph/dialects/sqlite"
)

func TestInitialize(t *testing.T) {
	dialector := sqlite.Open(":memory:")
	require.Equal(t, 1, dialector.MaxOpenConns)

	db, err := dialector.Initialize(context.Background())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE comments (id integer PRIMARY KEY, commentable_type text, commentable_id integer)")
	require.NoError(t, err)

	result, err := db.Exec("INSERT INTO comments (commentable_type, commentable_id) VALUES (?, ?)", "post", 1)
	require.NoError(t, err)

	rows, err := result.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM comments WHERE commentable_type = ?", "post").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestDialector(t *testing.T) {
	var (
		dialector dialect.Dialector = sqlite.Open("file:morph.db")
		builder   strings.Builder
	)

	assert.Equal(t, "sqlite", dialector.Name())

	dialector.QuoteTo(&builder, "comments.commentable_id")
	assert.Equal(t, "`comments`.`commentable_id`", builder.String())

	builder.Reset()
	dialector.BindVarTo(&builder, 2, "post")
	assert.Equal(t, "?", builder.String())

	assert.Equal(t, "integer", sqlite.Open("").DataTypeOf("uint"))
	assert.Equal(t, "text", sqlite.Open("").DataTypeOf("string"))
}

func TestTranslate(t *testing.T) {
	dialector := sqlite.Open(":memory:")
	db, err := dialector.Initialize(context.Background())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE images (id integer PRIMARY KEY, imageable_type text, imageable_id integer)")
	require.NoError(t, err)
	_, err = db.Exec("CREATE UNIQUE INDEX images_imageable_unique ON images (imageable_type, imageable_id)")
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO images (imageable_type, imageable_id) VALUES (?, ?), (?, ?)", "post", 1, "post", 1)
	require.Error(t, err)

	translated := dialector.Translate(err)
	assert.ErrorIs(t, translated, dialect.ErrDuplicatedKey)
	assert.ErrorIs(t, translated, err, "the driver error stays in the chain")
	assert.ErrorIs(t, dialect.Translate(dialector, err), dialect.ErrDuplicatedKey)

	other := errors.New("disk full")
	assert.Same(t, other, dialector.Translate(other))
	assert.Same(t, other, dialect.Translate(dialect.Common{}, other))
}
