package config

import (
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field type names
const (
	MorphRelation         = "morph_relation"
	ReversedMorphRelation = "reversed_morph_relation"
)

// Field names
const (
	MorphToOne   = "morph_to_one"
	HasManyMorph = "has_many_morph"
)

// Constraint names
const (
	MorphIndex = "morph_index"
	Morph      = "morph"
)

// Template keys of the morph_to_one field
const (
	TemplateType         = "type"
	TemplateID           = "id"
	TemplateReversed     = "reversed"
	TemplateSelfReversed = "self_reversed"
)

// Config declarative defaults consumed at schema build time
type Config struct {
	Types       map[string]Type       `yaml:"types"`
	Fields      map[string]Field      `yaml:"fields"`
	Constraints map[string]Constraint `yaml:"constraints"`
	LogLevel    string                `yaml:"log_level"`
}

// Type default options of a field type
type Type struct {
	Native         string   `yaml:"native"`
	DefaultOptions []string `yaml:"default_options"`
}

// Field configuration of one field kind
type Field struct {
	Type      string            `yaml:"type"`
	Options   []string          `yaml:"options"`
	Templates map[string]string `yaml:"templates"`
	// Identifiers sub field identifiers, substituted for ${identifier}
	Identifiers map[string]string `yaml:"identifiers"`
	Default     interface{}       `yaml:"default"`
}

// Constraint configuration of one constraint kind
type Constraint struct {
	Type string `yaml:"type"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Types: map[string]Type{
			MorphRelation: {
				Native:         MorphRelation,
				DefaultOptions: []string{"visible", "fillable", "required"},
			},
			ReversedMorphRelation: {
				Native:         ReversedMorphRelation,
				DefaultOptions: []string{"visible", "fillable"},
			},
		},
		Fields: map[string]Field{
			MorphToOne: {
				Type:    MorphRelation,
				Options: []string{"visible", "fillable", "required"},
				Templates: map[string]string{
					TemplateType:         "${name}_${identifier}",
					TemplateID:           "${name}_${identifier}",
					TemplateReversed:     "+{modelname}",
					TemplateSelfReversed: "reversed_+{name}",
				},
				Identifiers: map[string]string{
					TemplateType: "type",
					TemplateID:   "id",
				},
			},
			HasManyMorph: {
				Type:    ReversedMorphRelation,
				Options: []string{"visible", "fillable"},
			},
		},
		Constraints: map[string]Constraint{
			MorphIndex: {Type: MorphIndex},
			Morph:      {Type: Morph},
		},
		LogLevel: os.Getenv("MORPH_LOG_LEVEL"),
	}
}

// Load decodes YAML from r on top of the defaults, MORPH_LOG_LEVEL wins over the document
func Load(r io.Reader) (*Config, error) {
	var loaded Config
	if err := yaml.NewDecoder(r).Decode(&loaded); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	config := Default()
	config.merge(&loaded)

	if level := strings.TrimSpace(os.Getenv("MORPH_LOG_LEVEL")); level != "" {
		config.LogLevel = level
	}
	return config, nil
}

// LoadFile loads configuration from file
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Load(file)
}

// Field returns the configuration of a field kind
func (c *Config) Field(name string) (Field, bool) {
	field, ok := c.Fields[name]
	return field, ok
}

// Template returns a template of a field kind, empty when not configured
func (c *Config) Template(field, key string) string {
	return c.Fields[field].Templates[key]
}

// Options options of a field kind, falling back to its type default options
func (c *Config) Options(name string) []string {
	field := c.Fields[name]
	if field.Options != nil {
		return field.Options
	}
	return c.Types[field.Type].DefaultOptions
}

func (c *Config) merge(other *Config) {
	for name, t := range other.Types {
		current := c.Types[name]
		if t.Native != "" {
			current.Native = t.Native
		}
		if t.DefaultOptions != nil {
			current.DefaultOptions = t.DefaultOptions
		}
		c.Types[name] = current
	}

	for name, f := range other.Fields {
		current := c.Fields[name]
		if f.Type != "" {
			current.Type = f.Type
		}
		if f.Options != nil {
			current.Options = f.Options
		}
		if f.Default != nil {
			current.Default = f.Default
		}
		current.Templates = mergeStrings(current.Templates, f.Templates)
		current.Identifiers = mergeStrings(current.Identifiers, f.Identifiers)
		c.Fields[name] = current
	}

	for name, constraint := range other.Constraints {
		c.Constraints[name] = constraint
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

func mergeStrings(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}

	merged := make(map[string]string, len(dst)+len(src))
	for key, value := range dst {
		merged[key] = value
	}
	for key, value := range src {
		merged[key] = value
	}
	return merged
}
