package service

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"teamzen/internal/mbi"
	"teamzen/internal/repository"
)

// MetricsService agrega resultados por ciclo respetando la privacidad:
// solo entran a los promedios los miembros que comparten resultados con
// el lider, mas el lider segun la bandera del equipo.
type MetricsService struct {
	logger    *zap.Logger
	teams     repository.TeamRepository
	cycles    repository.CycleRepository
	responses repository.ResponseRepository
}

func NewMetricsService(logger *zap.Logger, teams repository.TeamRepository, cycles repository.CycleRepository, responses repository.ResponseRepository) *MetricsService {
	return &MetricsService{
		logger:    logger,
		teams:     teams,
		cycles:    cycles,
		responses: responses,
	}
}

// Participation es el avance de un ciclo: respuestas sobre elegibles.
type Participation struct {
	CycleID   string `json:"cycle_id"`
	Responses int    `json:"responses"`
	Eligible  int    `json:"eligible"`
	Percent   int    `json:"percent"`
}

// TeamMetrics son los agregados visibles para el lider.
type TeamMetrics struct {
	CycleID       string         `json:"cycle_id"`
	Participation Participation  `json:"participation"`
	Shared        int            `json:"shared"`
	AvgAE         int            `json:"avg_ae"`
	AvgD          int            `json:"avg_d"`
	AvgRP         int            `json:"avg_rp"`
	AvgWellbeing  int            `json:"avg_wellbeing"`
	Categories    mbi.Categories `json:"categories"`
	Status        string         `json:"status"`
	StatusCounts  map[string]int `json:"status_counts"`
}

// CycleParticipation calcula respuestas/elegibles para un ciclo. Elegibles
// son los miembros del equipo mas el lider si include_leader_in_metrics.
func (s *MetricsService) CycleParticipation(ctx context.Context, cycleID string) (Participation, error) {
	cycle, err := s.cycles.GetByID(ctx, cycleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Participation{}, ErrCycleNotFound
	}
	if err != nil {
		return Participation{}, err
	}

	team, err := s.teams.GetByID(ctx, cycle.TeamID)
	if err != nil {
		return Participation{}, err
	}
	members, err := s.teams.ListMembers(ctx, cycle.TeamID)
	if err != nil {
		return Participation{}, err
	}

	eligible := len(members)
	if team.IncludeLeaderInMetrics {
		eligible++
	}

	count, err := s.responses.CountByCycle(ctx, cycleID)
	if err != nil {
		return Participation{}, err
	}

	percent := 0
	if eligible > 0 {
		percent = int(math.Round(float64(count) / float64(eligible) * 100))
	}
	return Participation{
		CycleID:   cycleID,
		Responses: count,
		Eligible:  eligible,
		Percent:   percent,
	}, nil
}

// TeamMetrics agrega el ciclo activo del equipo para el lider.
func (s *MetricsService) TeamMetrics(ctx context.Context, teamID, actorID string) (TeamMetrics, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return TeamMetrics{}, ErrTeamNotFound
	}
	if err != nil {
		return TeamMetrics{}, err
	}
	if team.LeaderID != actorID {
		return TeamMetrics{}, ErrNotLeader
	}

	cycle, err := s.cycles.GetActiveByTeam(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return TeamMetrics{}, ErrNoActiveCycle
	}
	if err != nil {
		return TeamMetrics{}, err
	}

	return s.metricsForCycle(ctx, team.ID, team.LeaderID, team.IncludeLeaderInMetrics, cycle.ID)
}

func (s *MetricsService) metricsForCycle(ctx context.Context, teamID, leaderID string, includeLeader bool, cycleID string) (TeamMetrics, error) {
	participation, err := s.CycleParticipation(ctx, cycleID)
	if err != nil {
		return TeamMetrics{}, err
	}

	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return TeamMetrics{}, err
	}
	sharing := make(map[string]bool, len(members)+1)
	for _, m := range members {
		sharing[m.UserID] = m.ShareResultsWithLeader
	}
	if includeLeader {
		sharing[leaderID] = true
	}

	scores, err := s.responses.ListScoresByCycle(ctx, cycleID)
	if err != nil {
		return TeamMetrics{}, err
	}

	metrics := TeamMetrics{
		CycleID:       cycleID,
		Participation: participation,
		StatusCounts:  make(map[string]int),
	}

	var sumAE, sumD, sumRP, sumWB int
	for _, cs := range scores {
		if !sharing[cs.UserID] {
			continue
		}
		metrics.Shared++
		sumAE += cs.Score.AE
		sumD += cs.Score.D
		sumRP += cs.Score.RP
		sumWB += cs.Score.Wellbeing

		cats := mbi.Classify(mbi.Totals{AE: cs.Score.AE, D: cs.Score.D, RP: cs.Score.RP})
		metrics.StatusCounts[mbi.ResolveStatus(cats)]++
	}

	if metrics.Shared > 0 {
		metrics.AvgAE = int(math.Round(float64(sumAE) / float64(metrics.Shared)))
		metrics.AvgD = int(math.Round(float64(sumD) / float64(metrics.Shared)))
		metrics.AvgRP = int(math.Round(float64(sumRP) / float64(metrics.Shared)))
		metrics.AvgWellbeing = int(math.Round(float64(sumWB) / float64(metrics.Shared)))
		metrics.Categories = mbi.Classify(mbi.Totals{AE: metrics.AvgAE, D: metrics.AvgD, RP: metrics.AvgRP})
		metrics.Status = mbi.ResolveStatus(metrics.Categories)
	}
	return metrics, nil
}
