package tests

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"gorm.io/morph/schema"
	"gorm.io/morph/utils"
)

// AssertRecordEqual compares the attributes named natives of two models
func AssertRecordEqual(t *testing.T, r, e schema.Model, natives ...string) {
	t.Helper()

	if r.ModelName() != e.ModelName() {
		t.Errorf("%v: expect model %v, got %v", utils.FileWithLineNum(), e.ModelName(), r.ModelName())
		return
	}

	for _, native := range natives {
		got, expect := r.GetAttribute(native), e.GetAttribute(native)
		t.Run(native, func(t *testing.T) {
			AssertEqual(t, got, expect)
		})
	}
}

// AssertEqual compares values loosely: driver.Valuer values are resolved, integers of any width and
// their string forms compare equal, slices are compared element by element
func AssertEqual(t *testing.T, got, expect interface{}) {
	t.Helper()

	if reflect.DeepEqual(got, expect) {
		return
	}

	if valuer, ok := got.(driver.Valuer); ok {
		got, _ = valuer.Value()
	}

	if valuer, ok := expect.(driver.Valuer); ok {
		expect, _ = valuer.Value()
	}

	if got == nil || expect == nil {
		if got != expect {
			t.Errorf("%v: expect: %#v, got %#v", utils.FileWithLineNum(), expect, got)
		}
		return
	}

	gv, ev := reflect.Indirect(reflect.ValueOf(got)), reflect.Indirect(reflect.ValueOf(expect))
	if gv.Kind() == reflect.Slice && ev.Kind() == reflect.Slice {
		if gv.Len() != ev.Len() {
			t.Errorf("%v: expects length: %v, got %v (expects: %+v, got %+v)", utils.FileWithLineNum(), ev.Len(), gv.Len(), expect, got)
			return
		}

		for i := 0; i < gv.Len(); i++ {
			t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
				AssertEqual(t, gv.Index(i).Interface(), ev.Index(i).Interface())
			})
		}
		return
	}

	if !utils.AssertEqual(got, expect) {
		t.Errorf("%v: expect: %#v, got %#v", utils.FileWithLineNum(), expect, got)
	}
}

// SortedKeys string keys of values, sorted
func SortedKeys(values ...interface{}) []string {
	keys := make([]string, len(values))
	for idx, value := range values {
		keys[idx] = utils.ToStringKey(value)
	}
	sort.Strings(keys)
	return keys
}
