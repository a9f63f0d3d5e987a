package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "skillbridge-api/pkg/errors"
)

// insufficientPrivilege is the Postgres error code raised when row-level
// security rejects a statement.
const insufficientPrivilege = "42501"

// classifyReadError wraps a query failure so callers can distinguish RLS
// rejections (which role resolution degrades on) from everything else.
func classifyReadError(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == insufficientPrivilege {
		return apperrors.NewPermissionError(message, err)
	}
	return apperrors.NewExternalError(message, err)
}
