package domain

import "time"

// Response es un envio MBI de un usuario. TeamID y CycleID son nulos
// para respuestas individuales fuera de un equipo. Inmutable una vez creada.
type Response struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TeamID    *string   `json:"team_id,omitempty"`
	CycleID   *string   `json:"cycle_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer es el valor (0-6) dado a un item (1-22) del inventario.
type Answer struct {
	ID         string `json:"id"`
	ResponseID string `json:"response_id"`
	Item       int    `json:"item"`
	Subscale   string `json:"subscale"`
	Value      int    `json:"value"`
}

// Score son los totales por subescala derivados de una respuesta,
// calculados al momento del envio.
type Score struct {
	ResponseID string `json:"response_id"`
	AE         int    `json:"ae"`
	D          int    `json:"d"`
	RP         int    `json:"rp"`
	Wellbeing  int    `json:"wellbeing"`
}
