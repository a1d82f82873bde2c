package repo

import (
	"errors"

	"gamezone/shared/pkg/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func notFound(t apperr.Type) *apperr.Error { return apperr.New(t, "") }

// pgErr maps driver errors onto the catalog. A missing row becomes notFoundType.
func pgErr(err error, notFoundType apperr.Type) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(notFoundType)
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Database(err)
}

func isUniqueViolation(err error) bool {
	var pgE *pgconn.PgError
	return errors.As(err, &pgE) && pgE.Code == uniqueViolation
}
