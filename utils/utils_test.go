package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestFileWithLineNum(t *testing.T) {
	t.Log("file line with num: ", FileWithLineNum())
}

func TestToStringKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	var nilPtr *int

	cases := []struct {
		values []interface{}
		key    string
	}{
		{[]interface{}{1, "post"}, "1_post"},
		{[]interface{}{int64(1)}, "1"},
		{[]interface{}{uint(7)}, "7"},
		{[]interface{}{[]byte("video")}, "video"},
		{[]interface{}{id}, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{[]interface{}{nil, nilPtr}, "<nil>_<nil>"},
	}

	for _, c := range cases {
		if key := ToStringKey(c.values...); key != c.key {
			t.Errorf("key of %v should be %v, but got %v", c.values, c.key, key)
		}
	}
}

func TestAssertEqual(t *testing.T) {
	cases := []struct {
		src, dst interface{}
		equal    bool
	}{
		{1, int64(1), true},
		{"post", "post", true},
		{"post", "video", false},
		{nil, nil, true},
		{nil, 0, false},
		{0, nil, false},
	}

	for _, c := range cases {
		if got := AssertEqual(c.src, c.dst); got != c.equal {
			t.Errorf("AssertEqual(%#v, %#v) should be %v", c.src, c.dst, c.equal)
		}
	}
}
