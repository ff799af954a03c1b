package dialect

import (
	"strings"
	"testing"
)

func TestQuoteTo(t *testing.T) {
	cases := []struct {
		dialector Dialector
		str       string
		quoted    string
	}{
		{Common{}, "comments", "`comments`"},
		{Common{}, "comments.commentable_id", "`comments`.`commentable_id`"},
		{Common{}, "comments.*", "`comments`.*"},
		{Postgres{}, "comments.commentable_id", `"comments"."commentable_id"`},
		{New("pgx"), "videos", `"videos"`},
		{New("sqlite"), "videos", "`videos`"},
	}

	for _, c := range cases {
		var builder strings.Builder
		c.dialector.QuoteTo(&builder, c.str)
		if builder.String() != c.quoted {
			t.Errorf("%s quoted %v should be %v, but got %v", c.dialector.Name(), c.str, c.quoted, builder.String())
		}
	}
}

func TestBindVarTo(t *testing.T) {
	var builder strings.Builder
	Postgres{}.BindVarTo(&builder, 3, "post")
	Common{}.BindVarTo(&builder, 4, "post")

	if builder.String() != "$3?" {
		t.Errorf("bind vars should be $3?, but got %v", builder.String())
	}
}
