package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Errores de persistencia que los servicios traducen a mensajes de usuario.
var (
	ErrDuplicateMember   = errors.New("member already exists for team")
	ErrDuplicateResponse = errors.New("response already exists for cycle")
	ErrNoActiveCycle     = errors.New("no active cycle for team")
	ErrCycleNotActive    = errors.New("cycle is not active")
	ErrActiveCycleExists = errors.New("team already has an active cycle")
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
