package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"teamzen/internal/domain"
	"teamzen/internal/events"
	"teamzen/internal/repository"
)

func seedTeam(repo *mockTeamRepo, leaderID string) domain.Team {
	team := domain.Team{
		ID:                     "team-1",
		Name:                   "Plataforma",
		IncludeLeaderInMetrics: true,
		LeaderID:               leaderID,
		InviteCode:             "ABCDEF",
		CreatedAt:              time.Now().UTC(),
	}
	repo.teams[team.ID] = team
	return team
}

func TestCycleLaunchClosesPrevious(t *testing.T) {
	teams := newMockTeamRepo()
	cycles := newMockCycleRepo()
	team := seedTeam(teams, "leader-1")

	svc := NewCycleService(zap.NewNop(), teams, cycles, nil)

	first, err := svc.Launch(context.Background(), team.ID, "leader-1")
	if err != nil {
		t.Fatalf("first launch: %v", err)
	}
	second, err := svc.Launch(context.Background(), team.ID, "leader-1")
	if err != nil {
		t.Fatalf("second launch: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected a new cycle on relaunch")
	}
	if got := cycles.activeCount(team.ID); got != 1 {
		t.Fatalf("active cycles = %d, want 1", got)
	}

	closedFirst, err := cycles.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get first cycle: %v", err)
	}
	if closedFirst.Status != domain.CycleStatusClosed {
		t.Fatalf("first cycle status = %q, want closed", closedFirst.Status)
	}
	if closedFirst.EndedAt == nil {
		t.Fatal("expected ended_at on closed cycle")
	}
}

func TestCycleLaunchOnlyLeader(t *testing.T) {
	teams := newMockTeamRepo()
	cycles := newMockCycleRepo()
	team := seedTeam(teams, "leader-1")

	svc := NewCycleService(zap.NewNop(), teams, cycles, nil)

	if _, err := svc.Launch(context.Background(), team.ID, "member-1"); !errors.Is(err, ErrNotLeader) {
		t.Fatalf("err = %v, want ErrNotLeader", err)
	}
	if got := cycles.activeCount(team.ID); got != 0 {
		t.Fatalf("active cycles = %d, want 0", got)
	}
}

func TestCycleLaunchConcurrentConflict(t *testing.T) {
	// El indice parcial unico sobre (team_id) WHERE status='active'
	// rechaza al segundo lanzamiento concurrente; el servicio lo
	// traduce a un conflicto reintentable.
	teams := newMockTeamRepo()
	cycles := newMockCycleRepo()
	team := seedTeam(teams, "leader-1")
	cycles.launchErr = repository.ErrActiveCycleExists

	svc := NewCycleService(zap.NewNop(), teams, cycles, nil)

	if _, err := svc.Launch(context.Background(), team.ID, "leader-1"); !errors.Is(err, ErrLaunchConflict) {
		t.Fatalf("err = %v, want ErrLaunchConflict", err)
	}
}

func TestCycleLaunchTeamNotFound(t *testing.T) {
	svc := NewCycleService(zap.NewNop(), newMockTeamRepo(), newMockCycleRepo(), nil)

	if _, err := svc.Launch(context.Background(), "missing", "leader-1"); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("err = %v, want ErrTeamNotFound", err)
	}
}

func TestCycleCloseStampsEndedAt(t *testing.T) {
	teams := newMockTeamRepo()
	cycles := newMockCycleRepo()
	team := seedTeam(teams, "leader-1")
	notifier := &mockNotifier{}

	svc := NewCycleService(zap.NewNop(), teams, cycles, notifier)

	launched, err := svc.Launch(context.Background(), team.ID, "leader-1")
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	closed, err := svc.Close(context.Background(), team.ID, "leader-1")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.ID != launched.ID {
		t.Fatalf("closed cycle %q, want %q", closed.ID, launched.ID)
	}
	if closed.Status != domain.CycleStatusClosed || closed.EndedAt == nil {
		t.Fatalf("cycle not closed: status=%q ended_at=%v", closed.Status, closed.EndedAt)
	}

	published := notifier.published()
	if len(published) != 2 {
		t.Fatalf("published %d events, want 2", len(published))
	}
	if published[0].Type != events.EventCycleLaunched || published[1].Type != events.EventCycleClosed {
		t.Fatalf("event types = %q, %q", published[0].Type, published[1].Type)
	}
}

func TestCycleCloseWithoutActive(t *testing.T) {
	teams := newMockTeamRepo()
	team := seedTeam(teams, "leader-1")

	svc := NewCycleService(zap.NewNop(), teams, newMockCycleRepo(), nil)

	if _, err := svc.Close(context.Background(), team.ID, "leader-1"); !errors.Is(err, ErrNoActiveCycle) {
		t.Fatalf("err = %v, want ErrNoActiveCycle", err)
	}
}

func TestCycleGetActive(t *testing.T) {
	teams := newMockTeamRepo()
	cycles := newMockCycleRepo()
	team := seedTeam(teams, "leader-1")

	svc := NewCycleService(zap.NewNop(), teams, cycles, nil)

	if _, err := svc.GetActive(context.Background(), team.ID); !errors.Is(err, ErrNoActiveCycle) {
		t.Fatalf("err = %v, want ErrNoActiveCycle", err)
	}

	launched, err := svc.Launch(context.Background(), team.ID, "leader-1")
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	active, err := svc.GetActive(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != launched.ID {
		t.Fatalf("active cycle %q, want %q", active.ID, launched.ID)
	}
}
