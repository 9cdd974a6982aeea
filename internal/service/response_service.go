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
	"teamzen/internal/mbi"
	"teamzen/internal/repository"
)

// ResponseService registra envios MBI: valida completitud, calcula el
// score al momento del envio y delega la atomicidad al repositorio.
type ResponseService struct {
	logger    *zap.Logger
	cycles    repository.CycleRepository
	responses repository.ResponseRepository
	notifier  events.Notifier
}

func NewResponseService(logger *zap.Logger, cycles repository.CycleRepository, responses repository.ResponseRepository, notifier events.Notifier) *ResponseService {
	if notifier == nil {
		notifier = events.NoopNotifier{}
	}
	return &ResponseService{
		logger:    logger,
		cycles:    cycles,
		responses: responses,
		notifier:  notifier,
	}
}

var (
	ErrAnswersIncomplete = errors.New("all 22 answers are required")
	ErrDuplicateResponse = errors.New("response already submitted for this cycle")
	ErrCycleClosed       = errors.New("cycle is closed, refresh and retry")
)

// SubmittedResponse agrupa lo persistido en un envio.
type SubmittedResponse struct {
	Response   domain.Response `json:"response"`
	Score      domain.Score    `json:"score"`
	Categories mbi.Categories  `json:"categories"`
	Status     string          `json:"status"`
}

// Submit registra una respuesta contra un ciclo. Valida localmente antes
// de tocar la base: 22 answers con valores 0-6. El ciclo debe estar activo
// en el momento de la lectura y el repositorio lo revalida dentro de la
// transaccion de insercion.
func (s *ResponseService) Submit(ctx context.Context, userID, cycleID string, answers map[int]int) (SubmittedResponse, error) {
	if !mbi.Complete(answers) {
		return SubmittedResponse{}, ErrAnswersIncomplete
	}

	cycle, err := s.cycles.GetByID(ctx, cycleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return SubmittedResponse{}, ErrCycleNotFound
	}
	if err != nil {
		return SubmittedResponse{}, err
	}
	if !cycle.IsActive() {
		return SubmittedResponse{}, ErrCycleClosed
	}

	response := domain.Response{
		ID:        uuid.NewString(),
		UserID:    userID,
		TeamID:    &cycle.TeamID,
		CycleID:   &cycle.ID,
		CreatedAt: time.Now().UTC(),
	}

	submitted, err := s.persist(ctx, response, answers)
	if err != nil {
		return SubmittedResponse{}, err
	}

	s.notifier.Publish(ctx, events.Event{
		Type:    events.EventResponseSubmitted,
		TeamID:  cycle.TeamID,
		CycleID: cycle.ID,
		At:      response.CreatedAt,
	})
	return submitted, nil
}

// SubmitIndividual registra una respuesta fuera de cualquier equipo/ciclo.
func (s *ResponseService) SubmitIndividual(ctx context.Context, userID string, answers map[int]int) (SubmittedResponse, error) {
	if !mbi.Complete(answers) {
		return SubmittedResponse{}, ErrAnswersIncomplete
	}

	response := domain.Response{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	return s.persist(ctx, response, answers)
}

func (s *ResponseService) persist(ctx context.Context, response domain.Response, answers map[int]int) (SubmittedResponse, error) {
	rows := make([]domain.Answer, 0, mbi.ItemCount)
	for item := 1; item <= mbi.ItemCount; item++ {
		rows = append(rows, domain.Answer{
			ID:         uuid.NewString(),
			ResponseID: response.ID,
			Item:       item,
			Subscale:   mbi.SubscaleOf(item),
			Value:      answers[item],
		})
	}

	totals := mbi.Aggregate(answers)
	score := domain.Score{
		ResponseID: response.ID,
		AE:         totals.AE,
		D:          totals.D,
		RP:         totals.RP,
		Wellbeing:  mbi.Wellbeing(totals),
	}

	err := s.responses.CreateWithAnswers(ctx, response, rows, score)
	switch {
	case errors.Is(err, repository.ErrDuplicateResponse):
		return SubmittedResponse{}, ErrDuplicateResponse
	case errors.Is(err, repository.ErrCycleNotActive):
		return SubmittedResponse{}, ErrCycleClosed
	case err != nil:
		return SubmittedResponse{}, err
	}

	categories := mbi.Classify(totals)
	return SubmittedResponse{
		Response:   response,
		Score:      score,
		Categories: categories,
		Status:     mbi.ResolveStatus(categories),
	}, nil
}

// ListMine devuelve las respuestas del usuario con su score.
func (s *ResponseService) ListMine(ctx context.Context, userID string) ([]SubmittedResponse, error) {
	responses, err := s.responses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SubmittedResponse, 0, len(responses))
	for _, r := range responses {
		score, err := s.responses.GetScore(ctx, r.ID)
		if err != nil {
			s.logger.Warn("score missing for response", zap.Error(err), zap.String("response_id", r.ID))
			continue
		}
		totals := mbi.Totals{AE: score.AE, D: score.D, RP: score.RP}
		categories := mbi.Classify(totals)
		out = append(out, SubmittedResponse{
			Response:   r,
			Score:      score,
			Categories: categories,
			Status:     mbi.ResolveStatus(categories),
		})
	}
	return out, nil
}
