package sqlite

import (
	"errors"
	"fmt"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"gorm.io/morph/dialect"
)

var errCodes = map[int]error{
	sqlite3.SQLITE_CONSTRAINT_UNIQUE:     dialect.ErrDuplicatedKey,
	sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY: dialect.ErrDuplicatedKey,
	sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY: dialect.ErrForeignKeyViolated,
}

// Translate wraps sqlite constraint errors with the dialect sentinels, the driver error stays in the chain
func (dialector Dialector) Translate(err error) error {
	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) {
		if translated, found := errCodes[sqliteErr.Code()]; found {
			return fmt.Errorf("%w: %w", translated, err)
		}
	}
	return err
}
