package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teamzen/internal/domain"
)

// CycleScore une el puntaje con el autor de la respuesta, para agregados.
type CycleScore struct {
	UserID string
	Score  domain.Score
}

// ResponseRepository define el contrato de persistencia para respuestas,
// sus answers y su score derivado.
type ResponseRepository interface {
	// CreateWithAnswers inserta respuesta, 22 answers y score en una
	// transaccion. Si la respuesta apunta a un ciclo, revalida dentro de
	// la transaccion que el ciclo siga activo.
	CreateWithAnswers(ctx context.Context, response domain.Response, answers []domain.Answer, score domain.Score) error
	ExistsByUserCycle(ctx context.Context, userID, cycleID string) (bool, error)
	CountByCycle(ctx context.Context, cycleID string) (int, error)
	ListScoresByCycle(ctx context.Context, cycleID string) ([]CycleScore, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Response, error)
	GetScore(ctx context.Context, responseID string) (domain.Score, error)
	// LatestScoresByUser devuelve los scores del usuario, mas reciente
	// primero, acotados a limit.
	LatestScoresByUser(ctx context.Context, userID string, limit int) ([]domain.Score, error)
}

type PgResponseRepository struct {
	pool *pgxpool.Pool
}

func NewPgResponseRepository(pool *pgxpool.Pool) *PgResponseRepository {
	return &PgResponseRepository{pool: pool}
}

func (r *PgResponseRepository) CreateWithAnswers(ctx context.Context, response domain.Response, answers []domain.Answer, score domain.Score) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Revalidacion contra una carrera con Close: el ciclo pudo cerrarse
	// entre la lectura del caller y este insert.
	if response.CycleID != nil {
		const checkCycle = `SELECT status FROM evaluation_cycles WHERE id = $1`
		var status string
		err := tx.QueryRow(ctx, checkCycle, *response.CycleID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCycleNotActive
		}
		if err != nil {
			return err
		}
		if status != domain.CycleStatusActive {
			return ErrCycleNotActive
		}
	}

	const insertResponse = `
		INSERT INTO responses (id, user_id, team_id, cycle_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertResponse,
		response.ID,
		response.UserID,
		response.TeamID,
		response.CycleID,
		response.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateResponse
		}
		return err
	}

	const insertAnswer = `
		INSERT INTO answers (id, response_id, item, subscale, value)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, a := range answers {
		if _, err := tx.Exec(ctx, insertAnswer, a.ID, a.ResponseID, a.Item, a.Subscale, a.Value); err != nil {
			return err
		}
	}

	const insertScore = `
		INSERT INTO scores (response_id, ae, d, rp, wellbeing)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertScore, score.ResponseID, score.AE, score.D, score.RP, score.Wellbeing); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgResponseRepository) ExistsByUserCycle(ctx context.Context, userID, cycleID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM responses WHERE user_id = $1 AND cycle_id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, cycleID).Scan(&exists)
	return exists, err
}

func (r *PgResponseRepository) CountByCycle(ctx context.Context, cycleID string) (int, error) {
	const query = `SELECT COUNT(*) FROM responses WHERE cycle_id = $1`
	var count int
	err := r.pool.QueryRow(ctx, query, cycleID).Scan(&count)
	return count, err
}

func (r *PgResponseRepository) ListScoresByCycle(ctx context.Context, cycleID string) ([]CycleScore, error) {
	const query = `
		SELECT re.user_id, s.response_id, s.ae, s.d, s.rp, s.wellbeing
		FROM scores s
		JOIN responses re ON re.id = s.response_id
		WHERE re.cycle_id = $1
		ORDER BY re.created_at
	`
	rows, err := r.pool.Query(ctx, query, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []CycleScore
	for rows.Next() {
		var cs CycleScore
		if err := rows.Scan(&cs.UserID, &cs.Score.ResponseID, &cs.Score.AE, &cs.Score.D, &cs.Score.RP, &cs.Score.Wellbeing); err != nil {
			return nil, err
		}
		scores = append(scores, cs)
	}
	return scores, rows.Err()
}

func (r *PgResponseRepository) ListByUser(ctx context.Context, userID string) ([]domain.Response, error) {
	const query = `
		SELECT id, user_id, team_id, cycle_id, created_at
		FROM responses
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []domain.Response
	for rows.Next() {
		var re domain.Response
		if err := rows.Scan(&re.ID, &re.UserID, &re.TeamID, &re.CycleID, &re.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, re)
	}
	return responses, rows.Err()
}

func (r *PgResponseRepository) GetScore(ctx context.Context, responseID string) (domain.Score, error) {
	const query = `SELECT response_id, ae, d, rp, wellbeing FROM scores WHERE response_id = $1`
	var s domain.Score
	err := r.pool.QueryRow(ctx, query, responseID).Scan(&s.ResponseID, &s.AE, &s.D, &s.RP, &s.Wellbeing)
	if err != nil {
		return domain.Score{}, err
	}
	return s, nil
}

func (r *PgResponseRepository) LatestScoresByUser(ctx context.Context, userID string, limit int) ([]domain.Score, error) {
	const query = `
		SELECT s.response_id, s.ae, s.d, s.rp, s.wellbeing
		FROM scores s
		JOIN responses re ON re.id = s.response_id
		WHERE re.user_id = $1
		ORDER BY re.created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []domain.Score
	for rows.Next() {
		var s domain.Score
		if err := rows.Scan(&s.ResponseID, &s.AE, &s.D, &s.RP, &s.Wellbeing); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
