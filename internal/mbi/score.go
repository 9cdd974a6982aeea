package mbi

// Totals son las sumas crudas por subescala.
type Totals struct {
	AE int `json:"ae"`
	D  int `json:"d"`
	RP int `json:"rp"`
}

// Aggregate suma las respuestas presentes por subescala. Funcion pura:
// los items ausentes simplemente no aportan, lo que permite usarla para
// mostrar progreso parcial. La completitud se valida aparte con Complete.
func Aggregate(answers map[int]int) Totals {
	var t Totals
	for item, value := range answers {
		switch itemSubscale[item] {
		case SubscaleAE:
			t.AE += value
		case SubscaleD:
			t.D += value
		case SubscaleRP:
			t.RP += value
		}
	}
	return t
}

// Complete reporta si el mapa contiene los 22 items con valores validos.
// Un item ausente nunca cuenta como cero para efectos de envio.
func Complete(answers map[int]int) bool {
	if len(answers) < ItemCount {
		return false
	}
	for item := 1; item <= ItemCount; item++ {
		value, ok := answers[item]
		if !ok || !ValidValue(value) {
			return false
		}
	}
	return true
}
