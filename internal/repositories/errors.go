package repositories

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Postgres SQLSTATE codes for integrity violations.
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
)

func isUniqueViolation(err error) bool {
	return matchConstraint(err, sqlite3.ErrConstraintUnique, pqUniqueViolation) ||
		matchConstraint(err, sqlite3.ErrConstraintPrimaryKey, pqUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return matchConstraint(err, sqlite3.ErrConstraintForeignKey, pqForeignKeyViolation)
}

func isCheckViolation(err error) bool {
	return matchConstraint(err, sqlite3.ErrConstraintCheck, pqCheckViolation)
}

func matchConstraint(err error, liteCode sqlite3.ErrNoExtended, pgCode pq.ErrorCode) bool {
	if err == nil {
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == liteCode
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCode
	}

	return false
}
