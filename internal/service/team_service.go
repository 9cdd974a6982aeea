package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"teamzen/internal/domain"
	"teamzen/internal/email"
	"teamzen/internal/repository"
)

// TeamService coordina reglas de negocio para equipos, miembros e invitaciones.
type TeamService struct {
	logger      *zap.Logger
	teams       repository.TeamRepository
	inviteEmail email.Sender
}

func NewTeamService(logger *zap.Logger, teams repository.TeamRepository, inviteEmail email.Sender) *TeamService {
	return &TeamService{
		logger:      logger,
		teams:       teams,
		inviteEmail: inviteEmail,
	}
}

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameEmpty      = errors.New("team name empty")
	ErrNotLeader          = errors.New("only the team leader can do this")
	ErrInviteCodeInvalid  = errors.New("invite code invalid")
	ErrAlreadyMember      = errors.New("user already belongs to the team")
	ErrNotMember          = errors.New("user does not belong to the team")
	ErrLeaderCannotJoin   = errors.New("leader is already part of the team")
	ErrMemberNotFound     = errors.New("member not found")
	ErrInviteNotAvailable = errors.New("invite delivery unavailable")
)

const inviteCodeLength = 6

var inviteCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateInviteCode produce un codigo aleatorio de 6 letras mayusculas.
func GenerateInviteCode() (string, error) {
	code := make([]rune, inviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

type CreateTeamInput struct {
	Name        string
	Description string
	LeaderID    string
}

// CreateTeam crea el equipo y su codigo de invitacion. El creador queda
// como lider; includeLeaderInMetrics arranca en true.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (domain.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Team{}, ErrTeamNameEmpty
	}

	code, err := GenerateInviteCode()
	if err != nil {
		return domain.Team{}, fmt.Errorf("generate invite code: %w", err)
	}

	team := domain.Team{
		ID:                     uuid.NewString(),
		Name:                   name,
		Description:            strings.TrimSpace(input.Description),
		IncludeLeaderInMetrics: true,
		LeaderID:               input.LeaderID,
		InviteCode:             code,
		CreatedAt:              time.Now().UTC(),
	}

	if err := s.teams.Create(ctx, team); err != nil {
		return domain.Team{}, err
	}
	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID string) (domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, ErrTeamNotFound
	}
	return team, err
}

// GetTeamAs devuelve el equipo solo a su lider o a sus miembros. El
// codigo de invitacion se omite para quien no es lider: repartirlo es
// decision del lider, no de cualquiera que conozca el id del equipo.
func (s *TeamService) GetTeamAs(ctx context.Context, teamID, actorID string) (domain.Team, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return domain.Team{}, err
	}
	if team.LeaderID == actorID {
		return team, nil
	}
	if _, err := s.teams.GetMember(ctx, teamID, actorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Team{}, ErrNotMember
		}
		return domain.Team{}, err
	}
	team.InviteCode = ""
	return team, nil
}

func (s *TeamService) ListTeams(ctx context.Context, userID string) ([]domain.Team, error) {
	teams, err := s.teams.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		if teams[i].LeaderID != userID {
			teams[i].InviteCode = ""
		}
	}
	return teams, nil
}

type UpdateTeamInput struct {
	Name                   *string
	Description            *string
	IncludeLeaderInMetrics *bool
}

// UpdateTeam aplica cambios parciales. Solo el lider puede mutar el equipo.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID, actorID string, input UpdateTeamInput) (domain.Team, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return domain.Team{}, err
	}
	if team.LeaderID != actorID {
		return domain.Team{}, ErrNotLeader
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.Team{}, ErrTeamNameEmpty
		}
		team.Name = name
	}
	if input.Description != nil {
		team.Description = strings.TrimSpace(*input.Description)
	}
	if input.IncludeLeaderInMetrics != nil {
		team.IncludeLeaderInMetrics = *input.IncludeLeaderInMetrics
	}

	if err := s.teams.Update(ctx, team); err != nil {
		return domain.Team{}, err
	}
	return team, nil
}

// JoinByCode canjea un codigo de invitacion. La unicidad (team, user) la
// garantiza el indice unico; un canje repetido devuelve ErrAlreadyMember.
func (s *TeamService) JoinByCode(ctx context.Context, userID, code string) (domain.TeamMember, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != inviteCodeLength {
		return domain.TeamMember{}, ErrInviteCodeInvalid
	}

	team, err := s.teams.GetByInviteCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TeamMember{}, ErrInviteCodeInvalid
	}
	if err != nil {
		return domain.TeamMember{}, err
	}
	if team.LeaderID == userID {
		return domain.TeamMember{}, ErrLeaderCannotJoin
	}

	member := domain.TeamMember{
		ID:                     uuid.NewString(),
		TeamID:                 team.ID,
		UserID:                 userID,
		ShareResultsWithLeader: false,
		JoinedAt:               time.Now().UTC(),
	}

	if err := s.teams.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateMember) {
			return domain.TeamMember{}, ErrAlreadyMember
		}
		return domain.TeamMember{}, err
	}
	return member, nil
}

// ListMembers expone el listado solo a lider y miembros.
func (s *TeamService) ListMembers(ctx context.Context, teamID, actorID string) ([]domain.TeamMember, error) {
	if _, err := s.GetTeamAs(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	return s.teams.ListMembers(ctx, teamID)
}

// SetShareResults actualiza la bandera de privacidad del propio miembro.
func (s *TeamService) SetShareResults(ctx context.Context, teamID, userID string, share bool) (domain.TeamMember, error) {
	if _, err := s.teams.GetMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TeamMember{}, ErrMemberNotFound
		}
		return domain.TeamMember{}, err
	}
	if err := s.teams.UpdateMemberShare(ctx, teamID, userID, share); err != nil {
		return domain.TeamMember{}, err
	}
	return s.teams.GetMember(ctx, teamID, userID)
}

// SendInvite envia el codigo del equipo por correo. Solo el lider.
func (s *TeamService) SendInvite(ctx context.Context, teamID, actorID, toEmail string) error {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.LeaderID != actorID {
		return ErrNotLeader
	}
	if err := s.inviteEmail.SendInviteCode(ctx, toEmail, team.Name, team.InviteCode); err != nil {
		s.logger.Warn("invite email failed", zap.Error(err), zap.String("team_id", teamID))
		return ErrInviteNotAvailable
	}
	return nil
}
