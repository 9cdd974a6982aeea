// Package mbi implementa el puntaje y la clasificacion del
// Maslach Burnout Inventory de 22 items: suma por subescala,
// categorias por umbral, estado de burnout e indice de bienestar.
package mbi

// Subescalas del inventario.
const (
	SubscaleAE = "AE" // Agotamiento Emocional
	SubscaleD  = "D"  // Despersonalizacion
	SubscaleRP = "RP" // Realizacion Personal (polaridad invertida)
)

const (
	ItemCount = 22
	MinValue  = 0
	MaxValue  = 6
)

// Rangos maximos por subescala (suma de items * 6).
const (
	MaxAE = 54 // 9 items
	MaxD  = 30 // 5 items
	MaxRP = 48 // 8 items
)

// itemSubscale es la particion fija item -> subescala del MBI-HSS.
// 9 items AE, 5 items D, 8 items RP; no se deriva, se declara.
var itemSubscale = map[int]string{
	1:  SubscaleAE,
	2:  SubscaleAE,
	3:  SubscaleAE,
	4:  SubscaleRP,
	5:  SubscaleD,
	6:  SubscaleAE,
	7:  SubscaleRP,
	8:  SubscaleAE,
	9:  SubscaleRP,
	10: SubscaleD,
	11: SubscaleD,
	12: SubscaleRP,
	13: SubscaleAE,
	14: SubscaleAE,
	15: SubscaleD,
	16: SubscaleAE,
	17: SubscaleRP,
	18: SubscaleRP,
	19: SubscaleRP,
	20: SubscaleAE,
	21: SubscaleRP,
	22: SubscaleD,
}

// SubscaleOf devuelve la subescala del item, o "" si el item no existe.
func SubscaleOf(item int) string {
	return itemSubscale[item]
}

// ValidItem reporta si el indice de item pertenece al inventario.
func ValidItem(item int) bool {
	_, ok := itemSubscale[item]
	return ok
}

// ValidValue reporta si el valor esta dentro de la escala Likert 0-6.
func ValidValue(value int) bool {
	return value >= MinValue && value <= MaxValue
}
