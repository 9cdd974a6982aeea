package domain

const (
	AdviceSourceAI        = "ai"
	AdviceSourceHeuristic = "heuristic"
)

// AdviceMetrics son los totales de un periodo, insumo del generador de consejos.
type AdviceMetrics struct {
	AE        int `json:"ae"`
	D         int `json:"d"`
	RP        int `json:"rp"`
	Wellbeing int `json:"wellbeing"`
}

// AdviceInput es el payload normalizado que consume el generador
// (externo o heuristico).
type AdviceInput struct {
	Current     AdviceMetrics   `json:"current"`
	Previous    *AdviceMetrics  `json:"previous,omitempty"`
	History     []AdviceMetrics `json:"history,omitempty"`
	TeamContext string          `json:"team_context,omitempty"`
}

// Advice es la salida comun de ambos generadores; Source indica cual respondio.
type Advice struct {
	Summary  string   `json:"summary"`
	KeyRisks []string `json:"key_risks"`
	Actions  []string `json:"actions"`
	Source   string   `json:"source"`
}
