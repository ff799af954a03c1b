package morph

import (
	"errors"

	"gorm.io/morph/builder"
	"gorm.io/morph/dialect"
	"gorm.io/morph/schema"
)

var (
	// ErrInvalidTransaction invalid transaction when you are trying to `Commit` or `Rollback`
	ErrInvalidTransaction = errors.New("no valid transaction")
	// ErrMissingWhereClause missing where clause
	ErrMissingWhereClause = builder.ErrMissingWhereClause
	// ErrDuplicatedKey occurs when there is a unique key constraint violation
	ErrDuplicatedKey = dialect.ErrDuplicatedKey
	// ErrForeignKeyViolated occurs when there is a foreign key constraint violation
	ErrForeignKeyViolated = dialect.ErrForeignKeyViolated
	// ErrConfiguration invalid target scope, empty target set or unresolved template token
	ErrConfiguration = schema.ErrConfiguration
	// ErrState declaration after the schema is built, or use before it is built
	ErrState = schema.ErrState
	// ErrType wrong constraint or value type
	ErrType = schema.ErrType
	// ErrSchemaLock non uniform morph index
	ErrSchemaLock = schema.ErrSchemaLock
	// ErrDuplicateName duplicate model, field or constraint name
	ErrDuplicateName = schema.ErrDuplicateName
	// ErrNotFound model, field or constraint not found
	ErrNotFound = schema.ErrNotFound
	// ErrValidation required value missing
	ErrValidation = schema.ErrValidation
)
