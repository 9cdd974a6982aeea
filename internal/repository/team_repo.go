package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"teamzen/internal/domain"
)

// TeamRepository define el contrato de persistencia para equipos y miembros.
type TeamRepository interface {
	Create(ctx context.Context, team domain.Team) error
	GetByID(ctx context.Context, id string) (domain.Team, error)
	GetByInviteCode(ctx context.Context, code string) (domain.Team, error)
	Update(ctx context.Context, team domain.Team) error
	ListByUser(ctx context.Context, userID string) ([]domain.Team, error)

	AddMember(ctx context.Context, member domain.TeamMember) error
	GetMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error)
	ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)
	UpdateMemberShare(ctx context.Context, teamID, userID string, share bool) error
}

type PgTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgTeamRepository(pool *pgxpool.Pool) *PgTeamRepository {
	return &PgTeamRepository{pool: pool}
}

const teamColumns = `id, name, description, include_leader_in_metrics, leader_id, invite_code, created_at`

func (r *PgTeamRepository) Create(ctx context.Context, team domain.Team) error {
	const query = `
		INSERT INTO teams (id, name, description, include_leader_in_metrics, leader_id, invite_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		team.ID,
		team.Name,
		team.Description,
		team.IncludeLeaderInMetrics,
		team.LeaderID,
		team.InviteCode,
		team.CreatedAt,
	)
	return err
}

func (r *PgTeamRepository) GetByID(ctx context.Context, id string) (domain.Team, error) {
	const query = `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanTeam(r.pool.QueryRow(ctx, query, id))
}

func (r *PgTeamRepository) GetByInviteCode(ctx context.Context, code string) (domain.Team, error) {
	const query = `SELECT ` + teamColumns + ` FROM teams WHERE invite_code = $1`
	return r.scanTeam(r.pool.QueryRow(ctx, query, code))
}

func (r *PgTeamRepository) Update(ctx context.Context, team domain.Team) error {
	const query = `
		UPDATE teams
		SET name = $2, description = $3, include_leader_in_metrics = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		team.ID,
		team.Name,
		team.Description,
		team.IncludeLeaderInMetrics,
	)
	return err
}

// ListByUser devuelve los equipos donde el usuario es lider o miembro.
func (r *PgTeamRepository) ListByUser(ctx context.Context, userID string) ([]domain.Team, error) {
	const query = `
		SELECT DISTINCT t.id, t.name, t.description, t.include_leader_in_metrics, t.leader_id, t.invite_code, t.created_at
		FROM teams t
		LEFT JOIN team_members m ON m.team_id = t.id
		WHERE t.leader_id = $1 OR m.user_id = $1
		ORDER BY t.created_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		team, err := r.scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *PgTeamRepository) AddMember(ctx context.Context, member domain.TeamMember) error {
	const query = `
		INSERT INTO team_members (id, team_id, user_id, share_results_with_leader, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		member.ID,
		member.TeamID,
		member.UserID,
		member.ShareResultsWithLeader,
		member.JoinedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateMember
	}
	return err
}

func (r *PgTeamRepository) GetMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error) {
	const query = `
		SELECT id, team_id, user_id, share_results_with_leader, joined_at
		FROM team_members
		WHERE team_id = $1 AND user_id = $2
	`
	var m domain.TeamMember
	err := r.pool.QueryRow(ctx, query, teamID, userID).Scan(
		&m.ID,
		&m.TeamID,
		&m.UserID,
		&m.ShareResultsWithLeader,
		&m.JoinedAt,
	)
	if err != nil {
		return domain.TeamMember{}, err
	}
	return m, nil
}

func (r *PgTeamRepository) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	const query = `
		SELECT id, team_id, user_id, share_results_with_leader, joined_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY joined_at
	`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.ShareResultsWithLeader, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PgTeamRepository) UpdateMemberShare(ctx context.Context, teamID, userID string, share bool) error {
	const query = `
		UPDATE team_members
		SET share_results_with_leader = $3
		WHERE team_id = $1 AND user_id = $2
	`
	_, err := r.pool.Exec(ctx, query, teamID, userID, share)
	return err
}

func (r *PgTeamRepository) scanTeam(row rowScanner) (domain.Team, error) {
	var t domain.Team
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.IncludeLeaderInMetrics,
		&t.LeaderID,
		&t.InviteCode,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.Team{}, err
	}
	return t, nil
}
