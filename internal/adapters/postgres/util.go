package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shivamDefault/ChatLive/internal/domain"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// uniqueViolation reports whether err is a unique-key conflict and, when the
// driver exposes it, which constraint fired.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

// asConflict maps a unique-key conflict to domain.ErrConflict and passes any
// other error through.
func asConflict(err error) error {
	constraint, ok := uniqueViolation(err)
	switch {
	case !ok:
		return err
	case constraint == "":
		return domain.ErrConflict
	default:
		return fmt.Errorf("%w: %s", domain.ErrConflict, constraint)
	}
}
