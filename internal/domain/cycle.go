package domain

import "time"

const (
	CycleStatusActive = "active"
	CycleStatusClosed = "closed"
)

// CycleAdvisoryDuration es la duracion sugerida de un ciclo.
// Solo informativa: ningun proceso cierra ciclos automaticamente.
const CycleAdvisoryDuration = 7 * 24 * time.Hour

// EvaluationCycle es un periodo en el que cada miembro del equipo
// puede enviar a lo sumo una respuesta MBI.
type EvaluationCycle struct {
	ID        string     `json:"id"`
	TeamID    string     `json:"team_id"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// ExpiresAt devuelve la fecha sugerida de cierre (inicio + 7 dias).
func (c EvaluationCycle) ExpiresAt() time.Time {
	return c.StartedAt.Add(CycleAdvisoryDuration)
}

func (c EvaluationCycle) IsActive() bool {
	return c.Status == CycleStatusActive
}
