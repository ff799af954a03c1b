package dialect

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"gorm.io/morph/clause"
)

// Dialector renders identifiers and bind variables for one database flavour
type Dialector interface {
	Name() string
	QuoteTo(writer clause.Writer, str string)
	BindVarTo(writer clause.Writer, index int, v interface{})
}

// Initializer dialector able to open its own connection pool
type Initializer interface {
	Initialize(ctx context.Context) (*sql.DB, error)
}

// ErrorTranslator dialector mapping driver errors to the sentinels below
type ErrorTranslator interface {
	Translate(err error) error
}

// DataTyper dialector naming the column type of a field kind
type DataTyper interface {
	DataTypeOf(kind string) string
}

var (
	// ErrDuplicatedKey unique constraint violated
	ErrDuplicatedKey = errors.New("duplicated key not allowed")
	// ErrForeignKeyViolated foreign key constraint violated
	ErrForeignKeyViolated = errors.New("violates foreign key constraint")
)

// Translate translates err with dialector when it is an ErrorTranslator
func Translate(dialector Dialector, err error) error {
	if translator, ok := dialector.(ErrorTranslator); ok && err != nil {
		return translator.Translate(err)
	}
	return err
}

// Common backtick quoting with `?` bind vars, understood by mysql and sqlite
type Common struct{}

func (Common) Name() string {
	return "common"
}

func (Common) QuoteTo(writer clause.Writer, str string) {
	quoteTo(writer, str, '`')
}

func (Common) BindVarTo(writer clause.Writer, index int, v interface{}) {
	writer.WriteByte('?')
}

// Postgres double quote quoting with `$n` bind vars
type Postgres struct{}

func (Postgres) Name() string {
	return "postgres"
}

func (Postgres) QuoteTo(writer clause.Writer, str string) {
	quoteTo(writer, str, '"')
}

func (Postgres) BindVarTo(writer clause.Writer, index int, v interface{}) {
	writer.WriteByte('$')
	writer.WriteString(strconv.Itoa(index))
}

// New returns the dialector registered for a driver name
func New(driver string) Dialector {
	switch driver {
	case "postgres", "pgx":
		return Postgres{}
	default:
		return Common{}
	}
}

func quoteTo(writer clause.Writer, str string, quote byte) {
	for idx, part := range strings.Split(str, ".") {
		if idx > 0 {
			writer.WriteByte('.')
		}
		if part == "*" {
			writer.WriteByte('*')
			continue
		}
		writer.WriteByte(quote)
		writer.WriteString(part)
		writer.WriteByte(quote)
	}
}
