package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"teamzen/internal/domain"
	"teamzen/internal/repository"
	"teamzen/internal/service"
)

type mockCycleRepo struct {
	cycles map[string]domain.EvaluationCycle
}

func (m *mockCycleRepo) Launch(_ context.Context, cycle domain.EvaluationCycle) error {
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
	return out, nil
}

type mockResponseRepo struct {
	cycles    *mockCycleRepo
	responses map[string]domain.Response
	scores    map[string]domain.Score
}

func (m *mockResponseRepo) CreateWithAnswers(_ context.Context, response domain.Response, _ []domain.Answer, score domain.Score) error {
	if response.CycleID != nil {
		cycle, ok := m.cycles.cycles[*response.CycleID]
		if !ok || cycle.Status != domain.CycleStatusActive {
			return repository.ErrCycleNotActive
		}
		for _, existing := range m.responses {
			if existing.UserID == response.UserID && existing.CycleID != nil && *existing.CycleID == *response.CycleID {
				return repository.ErrDuplicateResponse
			}
		}
	}
	m.responses[response.ID] = response
	m.scores[response.ID] = score
	return nil
}

func (m *mockResponseRepo) ExistsByUserCycle(_ context.Context, userID, cycleID string) (bool, error) {
	for _, existing := range m.responses {
		if existing.UserID == userID && existing.CycleID != nil && *existing.CycleID == cycleID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockResponseRepo) CountByCycle(_ context.Context, cycleID string) (int, error) {
	count := 0
	for _, existing := range m.responses {
		if existing.CycleID != nil && *existing.CycleID == cycleID {
			count++
		}
	}
	return count, nil
}

func (m *mockResponseRepo) ListScoresByCycle(_ context.Context, cycleID string) ([]repository.CycleScore, error) {
	var out []repository.CycleScore
	for id, existing := range m.responses {
		if existing.CycleID != nil && *existing.CycleID == cycleID {
			out = append(out, repository.CycleScore{UserID: existing.UserID, Score: m.scores[id]})
		}
	}
	return out, nil
}

func (m *mockResponseRepo) ListByUser(_ context.Context, userID string) ([]domain.Response, error) {
	var out []domain.Response
	for _, existing := range m.responses {
		if existing.UserID == userID {
			out = append(out, existing)
		}
	}
	return out, nil
}

func (m *mockResponseRepo) GetScore(_ context.Context, responseID string) (domain.Score, error) {
	score, ok := m.scores[responseID]
	if !ok {
		return domain.Score{}, pgx.ErrNoRows
	}
	return score, nil
}

func (m *mockResponseRepo) LatestScoresByUser(_ context.Context, userID string, limit int) ([]domain.Score, error) {
	var out []domain.Score
	for id, existing := range m.responses {
		if existing.UserID == userID && len(out) < limit {
			out = append(out, m.scores[id])
		}
	}
	return out, nil
}

type responseTestEnv struct {
	router *gin.Engine
	jwtSvc *service.JWTService
	cycles *mockCycleRepo
}

func newResponseTestEnv(t *testing.T) *responseTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	cycles := &mockCycleRepo{cycles: make(map[string]domain.EvaluationCycle)}
	responses := &mockResponseRepo{
		cycles:    cycles,
		responses: make(map[string]domain.Response),
		scores:    make(map[string]domain.Score),
	}

	jwtSvc := service.NewJWTService("secreto-de-test", time.Minute, time.Hour)
	respServ := service.NewResponseService(logger, cycles, responses, nil)

	handler := NewResponseHandler(logger, respServ, nil)

	router := gin.New()
	authed := router.Group("/", JWTAuthMiddleware(jwtSvc))
	authed.POST("/cycles/:id/responses", handler.Submit)
	authed.POST("/responses", handler.SubmitIndividual)
	authed.GET("/me/responses", handler.ListMine)

	return &responseTestEnv{router: router, jwtSvc: jwtSvc, cycles: cycles}
}

func (env *responseTestEnv) token(t *testing.T, userID string) string {
	t.Helper()
	pair, err := env.jwtSvc.GeneratePair(domain.User{ID: userID, Email: userID + "@example.com"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return pair.AccessToken
}

func (env *responseTestEnv) seedActiveCycle(id, teamID string) {
	env.cycles.cycles[id] = domain.EvaluationCycle{
		ID:        id,
		TeamID:    teamID,
		Status:    domain.CycleStatusActive,
		StartedAt: time.Now().UTC(),
	}
}

func fullAnswersJSON(value int) []byte {
	answers := make(map[string]int, 22)
	for item := 1; item <= 22; item++ {
		answers[fmt.Sprintf("%d", item)] = value
	}
	payload, _ := json.Marshal(gin.H{"answers": answers})
	return payload
}

func doRequest(env *responseTestEnv, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitResponseEndpoint(t *testing.T) {
	env := newResponseTestEnv(t)
	env.seedActiveCycle("cycle-1", "team-1")
	token := env.token(t, "user-1")

	rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", token, fullAnswersJSON(3))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Score  domain.Score `json:"score"`
		Status string       `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Score.AE != 27 || body.Score.D != 15 || body.Score.RP != 24 {
		t.Fatalf("score = %+v", body.Score)
	}
	if body.Status != "Burnout" {
		t.Fatalf("status = %q, want Burnout", body.Status)
	}
}

func TestSubmitResponseDuplicateEndpoint(t *testing.T) {
	env := newResponseTestEnv(t)
	env.seedActiveCycle("cycle-1", "team-1")
	token := env.token(t, "user-1")

	if rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", token, fullAnswersJSON(2)); rec.Code != http.StatusCreated {
		t.Fatalf("first submit status = %d", rec.Code)
	}
	rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", token, fullAnswersJSON(2))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
}

func TestSubmitResponseValidation(t *testing.T) {
	env := newResponseTestEnv(t)
	env.seedActiveCycle("cycle-1", "team-1")
	token := env.token(t, "user-1")

	// Valor fuera de rango.
	payload, _ := json.Marshal(gin.H{"answers": gin.H{"1": 9}})
	if rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", token, payload); rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range status = %d, want 400", rec.Code)
	}

	// Item inexistente.
	payload, _ = json.Marshal(gin.H{"answers": gin.H{"23": 1}})
	if rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", token, payload); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown item status = %d, want 400", rec.Code)
	}

	// Incompleto: pasa el parseo pero falla la validacion de completitud.
	payload, _ = json.Marshal(gin.H{"answers": gin.H{"1": 1, "2": 2}})
	if rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", token, payload); rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete status = %d, want 400", rec.Code)
	}
}

func TestSubmitResponseClosedCycle(t *testing.T) {
	env := newResponseTestEnv(t)
	env.seedActiveCycle("cycle-1", "team-1")
	if _, err := env.cycles.Close(context.Background(), "team-1", time.Now().UTC()); err != nil {
		t.Fatalf("close: %v", err)
	}
	token := env.token(t, "user-1")

	rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", token, fullAnswersJSON(1))
	if rec.Code != http.StatusConflict {
		t.Fatalf("closed cycle status = %d, want 409", rec.Code)
	}
}

func TestSubmitResponseUnknownCycle(t *testing.T) {
	env := newResponseTestEnv(t)
	token := env.token(t, "user-1")

	rec := doRequest(env, http.MethodPost, "/cycles/missing/responses", token, fullAnswersJSON(1))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown cycle status = %d, want 404", rec.Code)
	}
}

func TestResponsesRequireAuth(t *testing.T) {
	env := newResponseTestEnv(t)
	env.seedActiveCycle("cycle-1", "team-1")

	if rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", "", fullAnswersJSON(1)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rec.Code)
	}
	if rec := doRequest(env, http.MethodPost, "/cycles/cycle-1/responses", "basura", fullAnswersJSON(1)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}
}

func TestListMineEndpoint(t *testing.T) {
	env := newResponseTestEnv(t)
	token := env.token(t, "user-1")

	if rec := doRequest(env, http.MethodPost, "/responses", token, fullAnswersJSON(0)); rec.Code != http.StatusCreated {
		t.Fatalf("individual submit status = %d", rec.Code)
	}

	rec := doRequest(env, http.MethodGet, "/me/responses", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var body struct {
		Responses []json.RawMessage `json:"responses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(body.Responses))
	}
}
