package mbi

import "testing"

func TestClassifyAEBoundaries(t *testing.T) {
	for raw := 0; raw <= MaxAE; raw++ {
		want := CategoryBajo
		switch {
		case raw >= 27:
			want = CategoryAlto
		case raw >= 19:
			want = CategoryMedio
		}
		if got := ClassifyAE(raw); got != want {
			t.Fatalf("ClassifyAE(%d)=%s, want %s", raw, got, want)
		}
	}
}

func TestClassifyDBoundaries(t *testing.T) {
	for raw := 0; raw <= MaxD; raw++ {
		want := CategoryBajo
		switch {
		case raw >= 10:
			want = CategoryAlto
		case raw >= 7:
			want = CategoryMedio
		}
		if got := ClassifyD(raw); got != want {
			t.Fatalf("ClassifyD(%d)=%s, want %s", raw, got, want)
		}
	}
}

// RP invierte la direccion: total alto = severidad baja.
func TestClassifyRPBoundariesInverted(t *testing.T) {
	for raw := 0; raw <= MaxRP; raw++ {
		want := CategoryAlto
		switch {
		case raw >= 40:
			want = CategoryBajo
		case raw >= 34:
			want = CategoryMedio
		}
		if got := ClassifyRP(raw); got != want {
			t.Fatalf("ClassifyRP(%d)=%s, want %s", raw, got, want)
		}
	}
}

func TestClassifyEdges(t *testing.T) {
	cases := []struct {
		fn   func(int) string
		raw  int
		want string
	}{
		{ClassifyAE, 18, CategoryBajo},
		{ClassifyAE, 19, CategoryMedio},
		{ClassifyAE, 26, CategoryMedio},
		{ClassifyAE, 27, CategoryAlto},
		{ClassifyD, 6, CategoryBajo},
		{ClassifyD, 7, CategoryMedio},
		{ClassifyD, 9, CategoryMedio},
		{ClassifyD, 10, CategoryAlto},
		{ClassifyRP, 40, CategoryBajo},
		{ClassifyRP, 39, CategoryMedio},
		{ClassifyRP, 34, CategoryMedio},
		{ClassifyRP, 33, CategoryAlto},
	}
	for _, c := range cases {
		if got := c.fn(c.raw); got != c.want {
			t.Fatalf("classify(%d)=%s, want %s", c.raw, got, c.want)
		}
	}
}
