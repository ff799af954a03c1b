package logger

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

func isPrintable(s []byte) bool {
	for _, r := range s {
		if !unicode.IsPrint(rune(r)) {
			return false
		}
	}
	return true
}

var numericPlaceholder = regexp.MustCompile(`\$(\d+)`)

// Explain renders sql with its vars inlined, for logs only
func Explain(dialector string, sql string, vars ...interface{}) string {
	var placeholder *regexp.Regexp
	if dialector == "postgres" {
		placeholder = numericPlaceholder
	}
	return ExplainSQL(sql, placeholder, "'", append([]interface{}(nil), vars...)...)
}

// ExplainSQL replaces bind vars with the escaped vars, vars are rewritten in place
func ExplainSQL(sql string, numericPlaceholder *regexp.Regexp, escaper string, vars ...interface{}) string {
	for idx, v := range vars {
		if valuer, ok := v.(driver.Valuer); ok {
			v, _ = valuer.Value()
		}

		switch v := v.(type) {
		case bool:
			vars[idx] = fmt.Sprint(v)
		case time.Time:
			vars[idx] = escaper + v.Format("2006-01-02 15:04:05") + escaper
		case *time.Time:
			vars[idx] = escaper + v.Format("2006-01-02 15:04:05") + escaper
		case []byte:
			if isPrintable(v) {
				vars[idx] = escaper + strings.Replace(string(v), escaper, "\\"+escaper, -1) + escaper
			} else {
				vars[idx] = escaper + "<binary>" + escaper
			}
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			vars[idx] = fmt.Sprintf("%d", v)
		case float64, float32:
			vars[idx] = fmt.Sprintf("%.6f", v)
		case string:
			vars[idx] = escaper + strings.Replace(v, escaper, "\\"+escaper, -1) + escaper
		default:
			if v == nil {
				vars[idx] = "NULL"
			} else {
				vars[idx] = escaper + strings.Replace(fmt.Sprint(v), escaper, "\\"+escaper, -1) + escaper
			}
		}
	}

	if numericPlaceholder == nil {
		var (
			builder strings.Builder
			idx     int
		)
		for _, c := range []byte(sql) {
			if c == '?' && idx < len(vars) {
				builder.WriteString(vars[idx].(string))
				idx++
				continue
			}
			builder.WriteByte(c)
		}
		return builder.String()
	}

	sql = numericPlaceholder.ReplaceAllString(sql, "$$$$$1")
	for idx := len(vars) - 1; idx >= 0; idx-- {
		sql = strings.Replace(sql, "$$"+strconv.Itoa(idx+1), vars[idx].(string), 1)
	}
	return sql
}
