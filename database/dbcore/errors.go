package dbcore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/redasGoluenko/Errando/common"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err is a unique-key violation from any supported driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a referential integrity failure.
func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		// ON DELETE RESTRICT is enforced by a trigger and reports 1811, not 787
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey ||
			(sqliteErr.Code == sqlite3.ErrConstraint && strings.Contains(sqliteErr.Error(), "FOREIGN KEY constraint failed"))
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1451 || mysqlErr.Number == 1452
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Translate maps store errors onto the common outcome errors. what names the
// entity for the message. Errors it does not recognise are returned wrapped.
func Translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case isOutcome(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", common.ErrNotFound, what)
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %s already exists", common.ErrConflict, what)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s is still referenced", common.ErrConflict, what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func isOutcome(err error) bool {
	for _, target := range []error{
		common.ErrUnauthenticated,
		common.ErrForbidden,
		common.ErrNotFound,
		common.ErrValidation,
		common.ErrConflict,
		common.ErrStaleVersion,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
