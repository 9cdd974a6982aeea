package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"teamzen/internal/domain"
	"teamzen/internal/events"
	"teamzen/internal/repository"
)

// CycleService gobierna el ciclo de vida de las evaluaciones: a lo sumo
// un ciclo activo por equipo, y lanzar cierra el anterior atomicamente.
type CycleService struct {
	logger   *zap.Logger
	teams    repository.TeamRepository
	cycles   repository.CycleRepository
	notifier events.Notifier
}

func NewCycleService(logger *zap.Logger, teams repository.TeamRepository, cycles repository.CycleRepository, notifier events.Notifier) *CycleService {
	if notifier == nil {
		notifier = events.NoopNotifier{}
	}
	return &CycleService{
		logger:   logger,
		teams:    teams,
		cycles:   cycles,
		notifier: notifier,
	}
}

var (
	ErrNoActiveCycle  = errors.New("team has no active cycle")
	ErrCycleNotFound  = errors.New("cycle not found")
	ErrLaunchConflict = errors.New("another launch is in progress, retry")
)

// Launch crea un ciclo activo para el equipo. El cierre del ciclo previo
// y el alta del nuevo viajan en la misma transaccion del repositorio, asi
// que el invariante "un activo por equipo" se sostiene aun ante carreras.
// Solo el lider puede lanzar.
func (s *CycleService) Launch(ctx context.Context, teamID, actorID string) (domain.EvaluationCycle, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EvaluationCycle{}, ErrTeamNotFound
	}
	if err != nil {
		return domain.EvaluationCycle{}, err
	}
	if team.LeaderID != actorID {
		return domain.EvaluationCycle{}, ErrNotLeader
	}

	cycle := domain.EvaluationCycle{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		Status:    domain.CycleStatusActive,
		StartedAt: time.Now().UTC(),
	}
	if err := s.cycles.Launch(ctx, cycle); err != nil {
		if errors.Is(err, repository.ErrActiveCycleExists) {
			return domain.EvaluationCycle{}, ErrLaunchConflict
		}
		return domain.EvaluationCycle{}, err
	}

	s.logger.Info("cycle launched", zap.String("team_id", teamID), zap.String("cycle_id", cycle.ID))
	s.notifier.Publish(ctx, events.Event{
		Type:    events.EventCycleLaunched,
		TeamID:  teamID,
		CycleID: cycle.ID,
		At:      cycle.StartedAt,
	})
	return cycle, nil
}

// Close cierra el ciclo activo del equipo estampando ended_at.
// Error si no hay ciclo activo. Solo el lider puede cerrar.
func (s *CycleService) Close(ctx context.Context, teamID, actorID string) (domain.EvaluationCycle, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EvaluationCycle{}, ErrTeamNotFound
	}
	if err != nil {
		return domain.EvaluationCycle{}, err
	}
	if team.LeaderID != actorID {
		return domain.EvaluationCycle{}, ErrNotLeader
	}

	endedAt := time.Now().UTC()
	cycle, err := s.cycles.Close(ctx, teamID, endedAt)
	if errors.Is(err, repository.ErrNoActiveCycle) {
		return domain.EvaluationCycle{}, ErrNoActiveCycle
	}
	if err != nil {
		return domain.EvaluationCycle{}, err
	}

	s.logger.Info("cycle closed", zap.String("team_id", teamID), zap.String("cycle_id", cycle.ID))
	s.notifier.Publish(ctx, events.Event{
		Type:    events.EventCycleClosed,
		TeamID:  teamID,
		CycleID: cycle.ID,
		At:      endedAt,
	})
	return cycle, nil
}

func (s *CycleService) GetActive(ctx context.Context, teamID string) (domain.EvaluationCycle, error) {
	cycle, err := s.cycles.GetActiveByTeam(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EvaluationCycle{}, ErrNoActiveCycle
	}
	return cycle, err
}

func (s *CycleService) List(ctx context.Context, teamID string) ([]domain.EvaluationCycle, error) {
	return s.cycles.ListByTeam(ctx, teamID)
}
