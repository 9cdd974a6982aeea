package mbi

// Estados ordinales de burnout, de menor a mayor severidad.
const (
	StatusSinIndicios = "Sin indicios"
	StatusRiesgo      = "Riesgo"
	StatusRiesgoAlto  = "Riesgo Alto"
	StatusBurnout     = "Burnout"
)

// ResolveStatus combina las tres categorias en un estado segun cuantas
// subescalas estan en Alto: 3 es Burnout, 2 es Riesgo Alto (con o sin AE;
// asi lo resuelve producto, aunque el copy de UI sugiera lo contrario),
// 1 es Riesgo y 0 Sin indicios.
func ResolveStatus(c Categories) string {
	count := 0
	for _, cat := range []string{c.AE, c.D, c.RP} {
		if cat == CategoryAlto {
			count++
		}
	}
	switch count {
	case 3:
		return StatusBurnout
	case 2:
		return StatusRiesgoAlto
	case 1:
		return StatusRiesgo
	default:
		return StatusSinIndicios
	}
}
