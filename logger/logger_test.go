package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Silent, ParseLevel("silent"))
	assert.Equal(t, Error, ParseLevel(" ERROR "))
	assert.Equal(t, Info, ParseLevel("info"))
	assert.Equal(t, Warn, ParseLevel("warn"))
	assert.Equal(t, Warn, ParseLevel(""))
	assert.Equal(t, Warn, ParseLevel("verbose"))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("levels", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(log.New(&buf, "", 0), Config{LogLevel: Warn})

		l.Info(ctx, "reversed field %s created", "comments")
		assert.Empty(t, buf.String())

		l.Warn(ctx, "reversed field %s created", "comments")
		assert.Contains(t, buf.String(), "[warn] reversed field comments created")

		buf.Reset()
		l.LogMode(Info).Info(ctx, "morph type %s", "post")
		assert.Contains(t, buf.String(), "[info] morph type post")
	})

	t.Run("trace", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(log.New(&buf, "", 0), Config{LogLevel: Info, SlowThreshold: 100 * time.Millisecond})

		l.Trace(ctx, time.Now(), func() (string, int64) {
			return "UPDATE `comments` SET `commentable_id`=NULL", 2
		}, nil)
		assert.Contains(t, buf.String(), "[rows:2] UPDATE `comments` SET `commentable_id`=NULL")

		buf.Reset()
		l.Trace(ctx, time.Now().Add(-150*time.Millisecond), func() (string, int64) {
			return "UPDATE `comments`", -1
		}, nil)
		assert.Contains(t, buf.String(), "SLOW SQL >= 100ms")
		assert.Contains(t, buf.String(), "[rows:-]")

		buf.Reset()
		l.Trace(ctx, time.Now(), func() (string, int64) {
			return "UPDATE `missing`", 0
		}, errors.New("no such table: missing"))
		assert.Contains(t, buf.String(), "no such table: missing")
	})

	t.Run("silent", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(log.New(&buf, "", 0), Config{LogLevel: Silent})

		called := false
		l.Trace(ctx, time.Now(), func() (string, int64) {
			called = true
			return "", 0
		}, fmt.Errorf("failed"))
		l.Error(ctx, "failed")

		assert.False(t, called)
		assert.Empty(t, buf.String())
	})
}

func TestExplain(t *testing.T) {
	var (
		tt  = time.Date(2020, 2, 23, 11, 10, 10, 0, time.UTC)
		sql = "UPDATE `comments` SET `commentable_id`=?,`commentable_type`=? WHERE `id` IN (?,?) AND `body` = ? AND `created_at` < ?"
	)

	vars := []interface{}{nil, "post", 1, uint(2), "it's?", tt}
	assert.Equal(t,
		"UPDATE `comments` SET `commentable_id`=NULL,`commentable_type`='post' WHERE `id` IN (1,2) AND `body` = 'it\\'s?' AND `created_at` < '2020-02-23 11:10:10'",
		Explain("sqlite", sql, vars...),
	)
	assert.Equal(t, "post", vars[1], "vars should not be rewritten")

	assert.Equal(t,
		`UPDATE "comments" SET "commentable_type"='video' WHERE "id" IN (10,1)`,
		Explain("postgres", `UPDATE "comments" SET "commentable_type"=$1 WHERE "id" IN ($2,$3)`, "video", 10, 1),
	)

	assert.Equal(t, "SELECT 1.500000, true", ExplainSQL("SELECT ?, ?", nil, `"`, 1.5, true))
}
