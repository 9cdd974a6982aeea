package mbi

import "math"

// Wellbeing proyecta los tres totales a un indice 0-100. Cada subescala
// se normaliza min-max contra su rango fijo; AE y D se invierten (menos
// es mas sano) y RP se usa directo (mas es mas sano); se promedia y se
// redondea al entero mas cercano.
func Wellbeing(t Totals) int {
	ae := 1 - float64(t.AE)/float64(MaxAE)
	d := 1 - float64(t.D)/float64(MaxD)
	rp := float64(t.RP) / float64(MaxRP)
	return int(math.Round((ae + d + rp) / 3 * 100))
}
