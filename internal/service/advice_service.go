package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"teamzen/internal/domain"
	"teamzen/internal/llm"
	"teamzen/internal/repository"
)

// AdviceService orquesta la generacion de consejos: cache con fingerprint,
// cupo de llamadas externas, LLM con timeout y fallback heuristico. Nunca
// devuelve error por culpa del colaborador externo.
type AdviceService struct {
	logger    *zap.Logger
	llmClient llm.Client
	parser    AdviceParser
	heuristic HeuristicAdviceGenerator
	cache     AdviceCache
	limiter   AdviceRateLimiter
	metrics   *MetricsService
	teams     repository.TeamRepository
	cycles    repository.CycleRepository
	responses repository.ResponseRepository

	timeout  time.Duration
	cacheTTL time.Duration
}

func NewAdviceService(
	logger *zap.Logger,
	llmClient llm.Client,
	cache AdviceCache,
	limiter AdviceRateLimiter,
	metrics *MetricsService,
	teams repository.TeamRepository,
	cycles repository.CycleRepository,
	responses repository.ResponseRepository,
) *AdviceService {
	if cache == nil {
		cache = NewMemoryAdviceCache()
	}
	if limiter == nil {
		limiter = NewMemoryAdviceRateLimiter(10*time.Minute, 5)
	}
	return &AdviceService{
		logger:    logger,
		llmClient: llmClient,
		cache:     cache,
		limiter:   limiter,
		metrics:   metrics,
		teams:     teams,
		cycles:    cycles,
		responses: responses,
		timeout:   llm.DefaultTimeout,
		cacheTTL:  12 * time.Hour,
	}
}

// historyLimit acota cuantos periodos previos viajan al generador.
const historyLimit = 6

// TeamAdvice genera consejos para el ciclo activo del equipo. Solo lider.
func (s *AdviceService) TeamAdvice(ctx context.Context, teamID, actorID string) (domain.Advice, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Advice{}, ErrTeamNotFound
	}
	if err != nil {
		return domain.Advice{}, err
	}
	if team.LeaderID != actorID {
		return domain.Advice{}, ErrNotLeader
	}

	cycle, err := s.cycles.GetActiveByTeam(ctx, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Advice{}, ErrNoActiveCycle
	}
	if err != nil {
		return domain.Advice{}, err
	}

	input, err := s.buildTeamInput(ctx, team, cycle.ID)
	if err != nil {
		return domain.Advice{}, err
	}

	key := fmt.Sprintf("team:%s:%s", teamID, cycle.ID)
	return s.generate(ctx, key, input), nil
}

// IndividualAdvice genera consejos a partir de los ultimos envios del usuario.
func (s *AdviceService) IndividualAdvice(ctx context.Context, userID string) (domain.Advice, error) {
	scores, err := s.responses.LatestScoresByUser(ctx, userID, historyLimit+1)
	if err != nil {
		return domain.Advice{}, err
	}
	if len(scores) == 0 {
		return domain.Advice{}, ErrNoResponses
	}

	input := domain.AdviceInput{
		Current: metricsFromScore(scores[0]),
	}
	if len(scores) > 1 {
		prev := metricsFromScore(scores[1])
		input.Previous = &prev
		for _, sc := range scores[1:] {
			input.History = append(input.History, metricsFromScore(sc))
		}
	}

	key := "user:" + userID
	return s.generate(ctx, key, input), nil
}

var ErrNoResponses = errors.New("no responses submitted yet")

// generate es el camino comun: cache valida por fingerprint, cupo de
// llamadas, IA externa con timeout, parseo tolerante y heuristica final.
func (s *AdviceService) generate(ctx context.Context, key string, input domain.AdviceInput) domain.Advice {
	fingerprint := Fingerprint(input)

	if cached, ok, err := s.cache.Get(ctx, key, fingerprint); err == nil && ok {
		return cached
	} else if err != nil {
		s.logger.Warn("advice cache read failed", zap.Error(err), zap.String("key", key))
	}

	advice, ok := s.tryExternal(ctx, key, input)
	if !ok {
		advice = s.heuristic.Generate(input)
	}

	if err := s.cache.Set(ctx, key, fingerprint, advice, s.cacheTTL); err != nil {
		s.logger.Warn("advice cache write failed", zap.Error(err), zap.String("key", key))
	}
	return advice
}

func (s *AdviceService) tryExternal(ctx context.Context, key string, input domain.AdviceInput) (domain.Advice, bool) {
	if s.llmClient == nil {
		return domain.Advice{}, false
	}
	if !s.limiter.Allow(key) {
		s.logger.Info("advice llm rate limited", zap.String("key", key))
		return domain.Advice{}, false
	}

	prompt, err := buildAdvicePrompt(input)
	if err != nil {
		s.logger.Warn("advice prompt build failed", zap.Error(err))
		return domain.Advice{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("advice llm call failed, using heuristic", zap.Error(err), zap.String("key", key))
		return domain.Advice{}, false
	}

	advice, ok := s.parser.Parse(raw)
	if !ok {
		s.logger.Warn("advice llm response unparseable, using heuristic", zap.String("key", key))
		return domain.Advice{}, false
	}
	return advice, true
}

func buildAdvicePrompt(input domain.AdviceInput) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	prompt := `Eres un consultor de bienestar laboral. A partir de las metricas MBI
del equipo (ae 0-54, d 0-30, rp 0-48, wellbeing 0-100; rp invertido:
mas alto es mejor), devuelve SOLO un JSON con este formato:
{"summary": "...", "key_risks": ["..."], "actions": ["..."]}

Metricas:
` + string(payload)
	return prompt, nil
}

// buildTeamInput arma current/previous/history con los promedios de los
// ciclos del equipo, mas recientes primero.
func (s *AdviceService) buildTeamInput(ctx context.Context, team domain.Team, activeCycleID string) (domain.AdviceInput, error) {
	cycles, err := s.cycles.ListByTeam(ctx, team.ID)
	if err != nil {
		return domain.AdviceInput{}, err
	}

	input := domain.AdviceInput{TeamContext: team.Description}
	currentSet := false
	periods := 0
	for _, cycle := range cycles {
		if periods >= historyLimit {
			break
		}
		m, err := s.metrics.metricsForCycle(ctx, team.ID, team.LeaderID, team.IncludeLeaderInMetrics, cycle.ID)
		if err != nil {
			return domain.AdviceInput{}, err
		}
		if m.Shared == 0 {
			continue
		}
		metrics := domain.AdviceMetrics{AE: m.AvgAE, D: m.AvgD, RP: m.AvgRP, Wellbeing: m.AvgWellbeing}
		if cycle.ID == activeCycleID {
			input.Current = metrics
			currentSet = true
		} else {
			if input.Previous == nil {
				input.Previous = &metrics
			}
			input.History = append(input.History, metrics)
		}
		periods++
	}
	// Sin resultados compartidos en el ciclo activo no hay nada que
	// aconsejar; un Current en cero clasificaria RP como Alto.
	if !currentSet {
		return domain.AdviceInput{}, ErrNoResponses
	}
	return input, nil
}

func metricsFromScore(score domain.Score) domain.AdviceMetrics {
	return domain.AdviceMetrics{
		AE:        score.AE,
		D:         score.D,
		RP:        score.RP,
		Wellbeing: score.Wellbeing,
	}
}
