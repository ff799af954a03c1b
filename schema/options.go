package schema

import "strings"

// Option behaviour flag of a field
type Option string

const (
	Visible  Option = "visible"
	Fillable Option = "fillable"
	Required Option = "required"
	Nullable Option = "nullable"
)

// Options set of field options, kept in declaration order
type Options []Option

// ParseOptions options from their configured names, unknown names are kept as is
func ParseOptions(names []string) Options {
	var opts Options
	for _, name := range names {
		opts = opts.Add(Option(strings.ToLower(strings.TrimSpace(name))))
	}
	return opts
}

func (opts Options) Has(option Option) bool {
	for _, opt := range opts {
		if opt == option {
			return true
		}
	}
	return false
}

func (opts Options) Add(options ...Option) Options {
	result := append(Options(nil), opts...)
	for _, option := range options {
		if option != "" && !result.Has(option) {
			result = append(result, option)
		}
	}
	return result
}

func (opts Options) Remove(options ...Option) Options {
	result := make(Options, 0, len(opts))
	for _, opt := range opts {
		if !Options(options).Has(opt) {
			result = append(result, opt)
		}
	}
	return result
}
