package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"teamzen/internal/domain"
	"teamzen/internal/events"
	"teamzen/internal/mbi"
	"teamzen/internal/repository"
)

func answersAll(value int) map[int]int {
	answers := make(map[int]int, mbi.ItemCount)
	for item := 1; item <= mbi.ItemCount; item++ {
		answers[item] = value
	}
	return answers
}

func activeCycle(cycles *mockCycleRepo, teamID string) domain.EvaluationCycle {
	cycle := domain.EvaluationCycle{
		ID:        "cycle-1",
		TeamID:    teamID,
		Status:    domain.CycleStatusActive,
		StartedAt: time.Now().UTC(),
	}
	cycles.cycles[cycle.ID] = cycle
	return cycle
}

func TestSubmitComputesScore(t *testing.T) {
	cycles := newMockCycleRepo()
	responses := newMockResponseRepo(cycles)
	cycle := activeCycle(cycles, "team-1")
	notifier := &mockNotifier{}

	svc := NewResponseService(zap.NewNop(), cycles, responses, notifier)

	submitted, err := svc.Submit(context.Background(), "user-1", cycle.ID, answersAll(3))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Score.AE != 27 || submitted.Score.D != 15 || submitted.Score.RP != 24 {
		t.Fatalf("score = %+v, want AE=27 D=15 RP=24", submitted.Score)
	}
	if submitted.Status != mbi.StatusBurnout {
		t.Fatalf("status = %q, want %q", submitted.Status, mbi.StatusBurnout)
	}
	if submitted.Score.Wellbeing != 50 {
		t.Fatalf("wellbeing = %d, want 50", submitted.Score.Wellbeing)
	}

	stored, ok := responses.responses[submitted.Response.ID]
	if !ok {
		t.Fatal("response not persisted")
	}
	if len(stored.answers) != mbi.ItemCount {
		t.Fatalf("persisted %d answers, want %d", len(stored.answers), mbi.ItemCount)
	}

	published := notifier.published()
	if len(published) != 1 || published[0].Type != events.EventResponseSubmitted {
		t.Fatalf("events = %+v, want one response_submitted", published)
	}
}

func TestSubmitIncompleteAnswers(t *testing.T) {
	cycles := newMockCycleRepo()
	responses := newMockResponseRepo(cycles)
	cycle := activeCycle(cycles, "team-1")

	svc := NewResponseService(zap.NewNop(), cycles, responses, nil)

	answers := answersAll(3)
	delete(answers, 22)
	if _, err := svc.Submit(context.Background(), "user-1", cycle.ID, answers); !errors.Is(err, ErrAnswersIncomplete) {
		t.Fatalf("err = %v, want ErrAnswersIncomplete", err)
	}
	if len(responses.responses) != 0 {
		t.Fatal("nothing should be persisted on validation failure")
	}
}

func TestSubmitDuplicate(t *testing.T) {
	cycles := newMockCycleRepo()
	responses := newMockResponseRepo(cycles)
	cycle := activeCycle(cycles, "team-1")

	svc := NewResponseService(zap.NewNop(), cycles, responses, nil)

	if _, err := svc.Submit(context.Background(), "user-1", cycle.ID, answersAll(2)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "user-1", cycle.ID, answersAll(4)); !errors.Is(err, ErrDuplicateResponse) {
		t.Fatalf("err = %v, want ErrDuplicateResponse", err)
	}
	if len(responses.responses) != 1 {
		t.Fatalf("persisted %d responses, want 1", len(responses.responses))
	}
}

func TestSubmitClosedCycle(t *testing.T) {
	cycles := newMockCycleRepo()
	responses := newMockResponseRepo(cycles)
	endedAt := time.Now().UTC()
	cycles.cycles["cycle-1"] = domain.EvaluationCycle{
		ID:        "cycle-1",
		TeamID:    "team-1",
		Status:    domain.CycleStatusClosed,
		StartedAt: endedAt.Add(-time.Hour),
		EndedAt:   &endedAt,
	}

	svc := NewResponseService(zap.NewNop(), cycles, responses, nil)

	if _, err := svc.Submit(context.Background(), "user-1", "cycle-1", answersAll(1)); !errors.Is(err, ErrCycleClosed) {
		t.Fatalf("err = %v, want ErrCycleClosed", err)
	}
}

func TestSubmitCycleClosedInFlight(t *testing.T) {
	// El ciclo se lee activo pero el repositorio detecta el cierre dentro
	// de la transaccion de insercion.
	cycles := newMockCycleRepo()
	responses := newMockResponseRepo(cycles)
	cycle := activeCycle(cycles, "team-1")
	responses.failWith = repository.ErrCycleNotActive

	svc := NewResponseService(zap.NewNop(), cycles, responses, nil)

	if _, err := svc.Submit(context.Background(), "user-1", cycle.ID, answersAll(1)); !errors.Is(err, ErrCycleClosed) {
		t.Fatalf("err = %v, want ErrCycleClosed", err)
	}
}

func TestSubmitUnknownCycle(t *testing.T) {
	svc := NewResponseService(zap.NewNop(), newMockCycleRepo(), newMockResponseRepo(nil), nil)

	if _, err := svc.Submit(context.Background(), "user-1", "missing", answersAll(1)); !errors.Is(err, ErrCycleNotFound) {
		t.Fatalf("err = %v, want ErrCycleNotFound", err)
	}
}

func TestSubmitIndividual(t *testing.T) {
	responses := newMockResponseRepo(nil)

	svc := NewResponseService(zap.NewNop(), newMockCycleRepo(), responses, nil)

	submitted, err := svc.SubmitIndividual(context.Background(), "user-1", answersAll(0))
	if err != nil {
		t.Fatalf("submit individual: %v", err)
	}
	if submitted.Response.CycleID != nil || submitted.Response.TeamID != nil {
		t.Fatal("individual response must not reference team or cycle")
	}
	// Todo en cero deja RP=0, que clasifica Alto por la inversion: un
	// solo Alto resuelve a Riesgo.
	if submitted.Status != mbi.StatusRiesgo {
		t.Fatalf("status = %q, want %q", submitted.Status, mbi.StatusRiesgo)
	}

	// Repetir sin ciclo es valido: no aplica la unicidad por (user, cycle).
	if _, err := svc.SubmitIndividual(context.Background(), "user-1", answersAll(0)); err != nil {
		t.Fatalf("second individual submit: %v", err)
	}
}

func TestListMine(t *testing.T) {
	cycles := newMockCycleRepo()
	responses := newMockResponseRepo(cycles)
	cycle := activeCycle(cycles, "team-1")

	svc := NewResponseService(zap.NewNop(), cycles, responses, nil)

	if _, err := svc.Submit(context.Background(), "user-1", cycle.ID, answersAll(3)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.SubmitIndividual(context.Background(), "user-1", answersAll(0)); err != nil {
		t.Fatalf("submit individual: %v", err)
	}

	mine, err := svc.ListMine(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("listed %d responses, want 2", len(mine))
	}
	for _, entry := range mine {
		if entry.Status == "" {
			t.Fatal("expected a resolved status on each entry")
		}
	}
}
