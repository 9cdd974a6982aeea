package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teamzen/internal/domain"
)

// CycleRepository define el contrato de persistencia para ciclos de evaluacion.
type CycleRepository interface {
	// Launch cierra el ciclo activo previo (si existe) y crea el nuevo,
	// ambas cosas en una sola transaccion.
	Launch(ctx context.Context, cycle domain.EvaluationCycle) error
	Close(ctx context.Context, teamID string, endedAt time.Time) (domain.EvaluationCycle, error)
	GetByID(ctx context.Context, id string) (domain.EvaluationCycle, error)
	GetActiveByTeam(ctx context.Context, teamID string) (domain.EvaluationCycle, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.EvaluationCycle, error)
}

type PgCycleRepository struct {
	pool *pgxpool.Pool
}

func NewPgCycleRepository(pool *pgxpool.Pool) *PgCycleRepository {
	return &PgCycleRepository{pool: pool}
}

const cycleColumns = `id, team_id, status, started_at, ended_at`

func (r *PgCycleRepository) Launch(ctx context.Context, cycle domain.EvaluationCycle) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const closePrev = `
		UPDATE evaluation_cycles
		SET status = $3, ended_at = $2
		WHERE team_id = $1 AND status = $4
	`
	if _, err := tx.Exec(ctx, closePrev, cycle.TeamID, cycle.StartedAt, domain.CycleStatusClosed, domain.CycleStatusActive); err != nil {
		return err
	}

	const insert = `
		INSERT INTO evaluation_cycles (id, team_id, status, started_at, ended_at)
		VALUES ($1, $2, $3, $4, NULL)
	`
	if _, err := tx.Exec(ctx, insert, cycle.ID, cycle.TeamID, cycle.Status, cycle.StartedAt); err != nil {
		// Un lanzamiento concurrente puede confirmar su ciclo entre
		// nuestro UPDATE y el INSERT; el indice parcial unico sobre
		// (team_id) WHERE status = 'active' rechaza al segundo.
		if isUniqueViolation(err) {
			return ErrActiveCycleExists
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgCycleRepository) Close(ctx context.Context, teamID string, endedAt time.Time) (domain.EvaluationCycle, error) {
	const query = `
		UPDATE evaluation_cycles
		SET status = $3, ended_at = $2
		WHERE team_id = $1 AND status = $4
		RETURNING ` + cycleColumns
	cycle, err := r.scanCycle(r.pool.QueryRow(ctx, query, teamID, endedAt, domain.CycleStatusClosed, domain.CycleStatusActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EvaluationCycle{}, ErrNoActiveCycle
	}
	return cycle, err
}

func (r *PgCycleRepository) GetByID(ctx context.Context, id string) (domain.EvaluationCycle, error) {
	const query = `SELECT ` + cycleColumns + ` FROM evaluation_cycles WHERE id = $1`
	return r.scanCycle(r.pool.QueryRow(ctx, query, id))
}

func (r *PgCycleRepository) GetActiveByTeam(ctx context.Context, teamID string) (domain.EvaluationCycle, error) {
	const query = `
		SELECT ` + cycleColumns + `
		FROM evaluation_cycles
		WHERE team_id = $1 AND status = $2
	`
	return r.scanCycle(r.pool.QueryRow(ctx, query, teamID, domain.CycleStatusActive))
}

func (r *PgCycleRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.EvaluationCycle, error) {
	const query = `
		SELECT ` + cycleColumns + `
		FROM evaluation_cycles
		WHERE team_id = $1
		ORDER BY started_at DESC
	`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []domain.EvaluationCycle
	for rows.Next() {
		cycle, err := r.scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, cycle)
	}
	return cycles, rows.Err()
}

func (r *PgCycleRepository) scanCycle(row rowScanner) (domain.EvaluationCycle, error) {
	var c domain.EvaluationCycle
	err := row.Scan(
		&c.ID,
		&c.TeamID,
		&c.Status,
		&c.StartedAt,
		&c.EndedAt,
	)
	if err != nil {
		return domain.EvaluationCycle{}, err
	}
	return c, nil
}
