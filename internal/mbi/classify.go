package mbi

// Categorias de severidad por subescala.
const (
	CategoryBajo  = "Bajo"
	CategoryMedio = "Medio"
	CategoryAlto  = "Alto"
)

// ClassifyAE categoriza el total de Agotamiento Emocional (0-54).
// Cortes inclusivos: 0-18 Bajo, 19-26 Medio, 27+ Alto.
func ClassifyAE(raw int) string {
	switch {
	case raw <= 18:
		return CategoryBajo
	case raw <= 26:
		return CategoryMedio
	default:
		return CategoryAlto
	}
}

// ClassifyD categoriza el total de Despersonalizacion (0-30).
// Cortes inclusivos: 0-6 Bajo, 7-9 Medio, 10+ Alto.
func ClassifyD(raw int) string {
	switch {
	case raw <= 6:
		return CategoryBajo
	case raw <= 9:
		return CategoryMedio
	default:
		return CategoryAlto
	}
}

// ClassifyRP categoriza el total de Realizacion Personal (0-48).
// La direccion esta invertida respecto a AE/D: un total ALTO de RP es
// severidad BAJA. 40-48 Bajo, 34-39 Medio, 0-33 Alto. Intencional.
func ClassifyRP(raw int) string {
	switch {
	case raw >= 40:
		return CategoryBajo
	case raw >= 34:
		return CategoryMedio
	default:
		return CategoryAlto
	}
}

// Categories son las tres categorias derivadas de unos totales.
type Categories struct {
	AE string `json:"ae"`
	D  string `json:"d"`
	RP string `json:"rp"`
}

// Classify aplica los tres clasificadores a la vez.
func Classify(t Totals) Categories {
	return Categories{
		AE: ClassifyAE(t.AE),
		D:  ClassifyD(t.D),
		RP: ClassifyRP(t.RP),
	}
}
