package utils

import (
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

var morphSourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	// compatible solution to get the module source directory with various operating systems
	morphSourceDir = sourceDir(file)
}

func sourceDir(file string) string {
	dir := filepath.Dir(file)
	dir = filepath.Dir(dir)

	s := filepath.Dir(dir)
	if filepath.Base(s) != "gorm.io" {
		s = dir
	}
	return filepath.ToSlash(s) + "/"
}

// FileWithLineNum return the file name and line number of the first caller outside of this module
func FileWithLineNum() string {
	// the second caller usually from morph internal, so set i start from 2
	for i := 2; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && (!strings.HasPrefix(file, morphSourceDir) || strings.HasSuffix(file, "_test.go")) {
			return file + ":" + strconv.FormatInt(int64(line), 10)
		}
	}

	return ""
}

// ToStringKey joins values into a comparable key, driver.Valuer values are resolved first
func ToStringKey(values ...interface{}) string {
	results := make([]string, len(values))

	for idx, value := range values {
		if valuer, ok := value.(driver.Valuer); ok {
			value, _ = valuer.Value()
		}

		switch v := value.(type) {
		case nil:
			results[idx] = "<nil>"
		case string:
			results[idx] = v
		case []byte:
			results[idx] = string(v)
		case uint:
			results[idx] = strconv.FormatUint(uint64(v), 10)
		case fmt.Stringer:
			results[idx] = v.String()
		default:
			if rv := reflect.Indirect(reflect.ValueOf(v)); rv.IsValid() {
				results[idx] = fmt.Sprint(rv.Interface())
			} else {
				results[idx] = "<nil>"
			}
		}
	}

	return strings.Join(results, "_")
}

// AssertEqual reports whether two stored values are the same, integers of different widths compare equal
func AssertEqual(src, dst interface{}) bool {
	if !reflect.DeepEqual(src, dst) {
		if valuer, ok := src.(driver.Valuer); ok {
			src, _ = valuer.Value()
		}

		if valuer, ok := dst.(driver.Valuer); ok {
			dst, _ = valuer.Value()
		}

		if src == nil || dst == nil {
			return src == nil && dst == nil
		}

		return reflect.DeepEqual(src, dst) || ToStringKey(src) == ToStringKey(dst)
	}
	return true
}

func Contains(elems []string, elem string) bool {
	for _, e := range elems {
		if elem == e {
			return true
		}
	}
	return false
}
