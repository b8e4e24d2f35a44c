package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/samber/oops"

	"musify/internal/domain"
)

// Constraint names from the migrations, mapped to the domain error they signal.
var uniqueConstraints = map[string]error{
	"accounts_username_key":        domain.ErrConflict,
	"playlist_tracks_pkey":         domain.ErrDuplicate,
	"playlist_tracks_position_key": domain.ErrPositionTaken,
}

// mapError converts driver errors into coded errors wrapping the matching
// domain sentinel. Errors without a domain meaning are wrapped with the
// DB_QUERY_FAILED code.
func mapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return oops.Code("DB_QUERY_FAILED").With("operation", operation).Wrap(err)
	}

	code := "DB_CONSTRAINT_VIOLATION"
	var sentinel error
	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		sentinel = uniqueConstraints[pqErr.Constraint]
	case pgerrcode.ForeignKeyViolation:
		sentinel = domain.ErrNotFound
	case pgerrcode.CheckViolation:
		sentinel = domain.ErrInvalidInput
	case pgerrcode.NumericValueOutOfRange, pgerrcode.CharacterNotInRepertoire:
		code = "DB_INVALID_VALUE"
		sentinel = domain.ErrInvalidInput
	}
	if sentinel == nil {
		return oops.Code("DB_QUERY_FAILED").
			With("operation", operation).
			With("sqlstate", string(pqErr.Code)).
			Wrap(err)
	}
	return oops.Code(code).
		With("operation", operation).
		With("constraint", pqErr.Constraint).
		Wrap(fmt.Errorf("%w: %s", sentinel, pqErr.Message))
}
