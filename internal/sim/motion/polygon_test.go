package motion

import (
	"errors"
	"testing"
)

var unitSquare = Polygon{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func TestPointInPolygon_UnitSquare(t *testing.T) {
	cases := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 0.5, 0.5, true},
		{"far outside", 2, 2, false},
		{"below-left", -1, -1, false},
		{"top-right vertex", 1, 1, true},
		{"origin vertex", 0, 0, false},
		{"bottom-right vertex", 1, 0, false},
		{"top-left vertex", 0, 1, false},
		{"right edge", 1, 0.5, true},
		{"top edge", 0.5, 1, true},
		{"left edge", 0, 0.5, false},
		{"bottom edge", 0.5, 0, false},
		{"just right", 1.0000001, 0.5, false},
	}
	xs := make([]float64, len(cases))
	ys := make([]float64, len(cases))
	for i, c := range cases {
		xs[i], ys[i] = c.x, c.y
	}
	got, err := PointInPolygon(xs, ys, unitSquare)
	if err != nil {
		t.Fatalf("pip: %v", err)
	}
	for i, c := range cases {
		if got[i] != c.want {
			t.Fatalf("%s (%v,%v): got %v want %v", c.name, c.x, c.y, got[i], c.want)
		}
	}
}

func TestPointInPolygon_ThreePointScenario(t *testing.T) {
	got, err := PointInPolygon([]float64{0.5, -1, 1}, []float64{0.5, -1, 1}, unitSquare)
	if err != nil {
		t.Fatalf("pip: %v", err)
	}
	want := []bool{true, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func rotations(p Polygon) []Polygon {
	var out []Polygon
	for s := 0; s < len(p); s++ {
		r := make(Polygon, 0, len(p))
		r = append(r, p[s:]...)
		r = append(r, p[:s]...)
		out = append(out, r)

		rev := make(Polygon, len(r))
		for i := range r {
			rev[i] = r[len(r)-1-i]
		}
		out = append(out, rev)
	}
	return out
}

func TestPointInPolygon_StableUnderTraversalStart(t *testing.T) {
	shapes := map[string]Polygon{
		"square":   unitSquare,
		"triangle": {{0, 0}, {2, 0}, {1, 2}},
		"l-shape":  {{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}},
	}
	// Grid on quarter steps hits vertices, edges and interior points.
	var xs, ys []float64
	for i := -2; i <= 10; i++ {
		for j := -2; j <= 10; j++ {
			xs = append(xs, float64(i)/4)
			ys = append(ys, float64(j)/4)
		}
	}
	for name, poly := range shapes {
		base, err := PointInPolygon(xs, ys, poly)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		for ri, r := range rotations(poly) {
			got, err := PointInPolygon(xs, ys, r)
			if err != nil {
				t.Fatalf("%s rotation %d: %v", name, ri, err)
			}
			for k := range got {
				if got[k] != base[k] {
					t.Fatalf("%s rotation %d: point (%v,%v) flipped to %v", name, ri, xs[k], ys[k], got[k])
				}
			}
		}
	}
}

func TestPointInPolygon_Concave(t *testing.T) {
	// U shape opening upwards; the notch is x in (1,2), y > 1.
	u := Polygon{{0, 0}, {3, 0}, {3, 3}, {2, 3}, {2, 1}, {1, 1}, {1, 3}, {0, 3}}
	got, err := PointInPolygon(
		[]float64{0.5, 1.5, 2.5, 1.5, 4},
		[]float64{2.5, 2.5, 2.5, 0.5, 0.5},
		u,
	)
	if err != nil {
		t.Fatalf("pip: %v", err)
	}
	want := []bool{true, false, true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestPointInPolygon_SlantedEdges(t *testing.T) {
	diamond := Polygon{{1, 0}, {2, 1}, {1, 2}, {0, 1}}
	got, err := PointInPolygon(
		[]float64{1, 0.2, 1.7, 1.9},
		[]float64{1, 0.2, 1.2, 1.9},
		diamond,
	)
	if err != nil {
		t.Fatalf("pip: %v", err)
	}
	want := []bool{true, false, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestPointInPolygon_Errors(t *testing.T) {
	if _, err := PointInPolygon([]float64{0}, []float64{0}, Polygon{{0, 0}, {1, 1}}); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("two vertices: err=%v", err)
	}
	if _, err := PointInPolygon([]float64{0, 1}, []float64{0}, unitSquare); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("ragged coords: err=%v", err)
	}
	got, err := PointInPolygon(nil, nil, unitSquare)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty input: got=%v err=%v", got, err)
	}
}

func TestPolygonBounds(t *testing.T) {
	x, y := Polygon{{1, -2}, {4, 0}, {2, 5}}.Bounds()
	if x != (Interval{1, 4}) || y != (Interval{-2, 5}) {
		t.Fatalf("bounds x=%+v y=%+v", x, y)
	}
}
