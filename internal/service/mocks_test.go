package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"teamzen/internal/domain"
	"teamzen/internal/events"
	"teamzen/internal/repository"
)

// Mocks en memoria compartidos por los tests del paquete.

type mockTeamRepo struct {
	teams   map[string]domain.Team
	members map[string]domain.TeamMember // key team|user
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{
		teams:   make(map[string]domain.Team),
		members: make(map[string]domain.TeamMember),
	}
}

func memberKey(teamID, userID string) string { return teamID + "|" + userID }

func (m *mockTeamRepo) Create(_ context.Context, team domain.Team) error {
	m.teams[team.ID] = team
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (domain.Team, error) {
	team, ok := m.teams[id]
	if !ok {
		return domain.Team{}, pgx.ErrNoRows
	}
	return team, nil
}

func (m *mockTeamRepo) GetByInviteCode(_ context.Context, code string) (domain.Team, error) {
	for _, team := range m.teams {
		if team.InviteCode == code {
			return team, nil
		}
	}
	return domain.Team{}, pgx.ErrNoRows
}

func (m *mockTeamRepo) Update(_ context.Context, team domain.Team) error {
	if _, ok := m.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.teams[team.ID] = team
	return nil
}

func (m *mockTeamRepo) ListByUser(_ context.Context, userID string) ([]domain.Team, error) {
	var out []domain.Team
	for _, team := range m.teams {
		if team.LeaderID == userID {
			out = append(out, team)
			continue
		}
		if _, ok := m.members[memberKey(team.ID, userID)]; ok {
			out = append(out, team)
		}
	}
	return out, nil
}

func (m *mockTeamRepo) AddMember(_ context.Context, member domain.TeamMember) error {
	key := memberKey(member.TeamID, member.UserID)
	if _, ok := m.members[key]; ok {
		return repository.ErrDuplicateMember
	}
	m.members[key] = member
	return nil
}

func (m *mockTeamRepo) GetMember(_ context.Context, teamID, userID string) (domain.TeamMember, error) {
	member, ok := m.members[memberKey(teamID, userID)]
	if !ok {
		return domain.TeamMember{}, pgx.ErrNoRows
	}
	return member, nil
}

func (m *mockTeamRepo) ListMembers(_ context.Context, teamID string) ([]domain.TeamMember, error) {
	var out []domain.TeamMember
	for _, member := range m.members {
		if member.TeamID == teamID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *mockTeamRepo) UpdateMemberShare(_ context.Context, teamID, userID string, share bool) error {
	key := memberKey(teamID, userID)
	member, ok := m.members[key]
	if !ok {
		return pgx.ErrNoRows
	}
	member.ShareResultsWithLeader = share
	m.members[key] = member
	return nil
}

type mockCycleRepo struct {
	cycles    map[string]domain.EvaluationCycle
	launchErr error
}

func newMockCycleRepo() *mockCycleRepo {
	return &mockCycleRepo{cycles: make(map[string]domain.EvaluationCycle)}
}

func (m *mockCycleRepo) Launch(_ context.Context, cycle domain.EvaluationCycle) error {
	if m.launchErr != nil {
		return m.launchErr
	}
	for id, existing := range m.cycles {
		if existing.TeamID == cycle.TeamID && existing.Status == domain.CycleStatusActive {
			endedAt := cycle.StartedAt
			existing.Status = domain.CycleStatusClosed
			existing.EndedAt = &endedAt
			m.cycles[id] = existing
		}
	}
	m.cycles[cycle.ID] = cycle
	return nil
}

func (m *mockCycleRepo) Close(_ context.Context, teamID string, endedAt time.Time) (domain.EvaluationCycle, error) {
	for id, cycle := range m.cycles {
		if cycle.TeamID == teamID && cycle.Status == domain.CycleStatusActive {
			cycle.Status = domain.CycleStatusClosed
			cycle.EndedAt = &endedAt
			m.cycles[id] = cycle
			return cycle, nil
		}
	}
	return domain.EvaluationCycle{}, repository.ErrNoActiveCycle
}

func (m *mockCycleRepo) GetByID(_ context.Context, id string) (domain.EvaluationCycle, error) {
	cycle, ok := m.cycles[id]
	if !ok {
		return domain.EvaluationCycle{}, pgx.ErrNoRows
	}
	return cycle, nil
}

func (m *mockCycleRepo) GetActiveByTeam(_ context.Context, teamID string) (domain.EvaluationCycle, error) {
	for _, cycle := range m.cycles {
		if cycle.TeamID == teamID && cycle.Status == domain.CycleStatusActive {
			return cycle, nil
		}
	}
	return domain.EvaluationCycle{}, pgx.ErrNoRows
}

func (m *mockCycleRepo) ListByTeam(_ context.Context, teamID string) ([]domain.EvaluationCycle, error) {
	var out []domain.EvaluationCycle
	for _, cycle := range m.cycles {
		if cycle.TeamID == teamID {
			out = append(out, cycle)
		}
	}
	// Mas recientes primero, como el repositorio real.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartedAt.After(out[i].StartedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *mockCycleRepo) activeCount(teamID string) int {
	count := 0
	for _, cycle := range m.cycles {
		if cycle.TeamID == teamID && cycle.Status == domain.CycleStatusActive {
			count++
		}
	}
	return count
}

type storedResponse struct {
	response domain.Response
	answers  []domain.Answer
	score    domain.Score
}

type mockResponseRepo struct {
	cycles    *mockCycleRepo
	responses map[string]storedResponse
	failWith  error
}

func newMockResponseRepo(cycles *mockCycleRepo) *mockResponseRepo {
	return &mockResponseRepo{
		cycles:    cycles,
		responses: make(map[string]storedResponse),
	}
}

func (m *mockResponseRepo) CreateWithAnswers(_ context.Context, response domain.Response, answers []domain.Answer, score domain.Score) error {
	if m.failWith != nil {
		return m.failWith
	}
	if response.CycleID != nil {
		if m.cycles != nil {
			cycle, ok := m.cycles.cycles[*response.CycleID]
			if !ok || cycle.Status != domain.CycleStatusActive {
				return repository.ErrCycleNotActive
			}
		}
		for _, existing := range m.responses {
			if existing.response.UserID == response.UserID &&
				existing.response.CycleID != nil &&
				*existing.response.CycleID == *response.CycleID {
				return repository.ErrDuplicateResponse
			}
		}
	}
	m.responses[response.ID] = storedResponse{response: response, answers: answers, score: score}
	return nil
}

func (m *mockResponseRepo) ExistsByUserCycle(_ context.Context, userID, cycleID string) (bool, error) {
	for _, existing := range m.responses {
		if existing.response.UserID == userID && existing.response.CycleID != nil && *existing.response.CycleID == cycleID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockResponseRepo) CountByCycle(_ context.Context, cycleID string) (int, error) {
	count := 0
	for _, existing := range m.responses {
		if existing.response.CycleID != nil && *existing.response.CycleID == cycleID {
			count++
		}
	}
	return count, nil
}

func (m *mockResponseRepo) ListScoresByCycle(_ context.Context, cycleID string) ([]repository.CycleScore, error) {
	var out []repository.CycleScore
	for _, existing := range m.responses {
		if existing.response.CycleID != nil && *existing.response.CycleID == cycleID {
			out = append(out, repository.CycleScore{UserID: existing.response.UserID, Score: existing.score})
		}
	}
	return out, nil
}

func (m *mockResponseRepo) ListByUser(_ context.Context, userID string) ([]domain.Response, error) {
	var out []domain.Response
	for _, existing := range m.responses {
		if existing.response.UserID == userID {
			out = append(out, existing.response)
		}
	}
	return out, nil
}

func (m *mockResponseRepo) GetScore(_ context.Context, responseID string) (domain.Score, error) {
	existing, ok := m.responses[responseID]
	if !ok {
		return domain.Score{}, pgx.ErrNoRows
	}
	return existing.score, nil
}

func (m *mockResponseRepo) LatestScoresByUser(_ context.Context, userID string, limit int) ([]domain.Score, error) {
	responses, _ := m.ListByUser(context.Background(), userID)
	for i := 0; i < len(responses); i++ {
		for j := i + 1; j < len(responses); j++ {
			if responses[j].CreatedAt.After(responses[i].CreatedAt) {
				responses[i], responses[j] = responses[j], responses[i]
			}
		}
	}
	var out []domain.Score
	for _, re := range responses {
		if len(out) >= limit {
			break
		}
		out = append(out, m.responses[re.ID].score)
	}
	return out, nil
}

type mockNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *mockNotifier) Publish(_ context.Context, event events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockNotifier) Subscribe(_ context.Context, _ string) (<-chan events.Event, func()) {
	ch := make(chan events.Event)
	return ch, func() { close(ch) }
}

func (m *mockNotifier) published() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.Event(nil), m.events...)
}

type mockInviteSender struct {
	sent []string
	err  error
}

func (m *mockInviteSender) SendInviteCode(_ context.Context, toEmail, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

var errSenderDown = errors.New("smtp down")
