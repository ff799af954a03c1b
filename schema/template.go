package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// template tokens:
//
//	${key}  value as is
//	^{key}  title cased value
//	+{key}  plural value
//	-{key}  singular value
var templateToken = regexp.MustCompile(`([$^+\-])\{(\w+)\}`)

// Render substitutes every token of template with vars, an unknown key is a configuration error
func Render(template string, vars map[string]string) (string, error) {
	var (
		missing []string
		title   = cases.Title(language.Und, cases.NoLower)
	)

	result := templateToken.ReplaceAllStringFunc(template, func(token string) string {
		match := templateToken.FindStringSubmatch(token)
		value, ok := vars[match[2]]
		if !ok {
			missing = append(missing, token)
			return token
		}

		switch match[1] {
		case "^":
			return title.String(value)
		case "+":
			return inflection.Plural(value)
		case "-":
			return inflection.Singular(value)
		default:
			return value
		}
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: unresolved template token %s in %q", ErrConfiguration, strings.Join(missing, ", "), template)
	}
	return result, nil
}
