package motion

import (
	"fmt"
	"math"
)

// Polygon is an ordered vertex ring. The last vertex connects back to the
// first; do not repeat the first vertex at the end.
type Polygon []Point

func (p Polygon) Validate() error {
	if len(p) < 3 {
		return fmt.Errorf("%w: polygon has %d vertices, need at least 3", ErrInvalidGeometry, len(p))
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (p Polygon) Bounds() (x, y Interval) {
	if len(p) == 0 {
		return Interval{}, Interval{}
	}
	x = Interval{Min: math.Inf(1), Max: math.Inf(-1)}
	y = Interval{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range p {
		x.Min = math.Min(x.Min, v.X)
		x.Max = math.Max(x.Max, v.X)
		y.Min = math.Min(y.Min, v.Y)
		y.Max = math.Max(y.Max, v.Y)
	}
	return x, y
}

// PointInPolygon classifies each (xs[i], ys[i]) with the even-odd crossing
// rule. A ray is cast towards +x and every edge it crosses flips the point's
// state. Edges own the half-open y range (min, max], so a ray through a shared
// vertex is counted once. For an axis-aligned rectangle this puts the top and
// right edges inside and the bottom and left edges outside, independent of
// which vertex the ring starts at.
func PointInPolygon(xs, ys []float64, poly Polygon) ([]bool, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x coordinates, %d y coordinates", ErrShapeMismatch, len(xs), len(ys))
	}
	if err := poly.Validate(); err != nil {
		return nil, err
	}

	inside := make([]bool, len(xs))
	idx := make([]int, 0, len(xs))
	n := len(poly)
	p1 := poly[0]
	for i := 1; i <= n; i++ {
		p2 := poly[i%n]
		if p1.Y == p2.Y {
			// Horizontal: (min, max] is empty, no point can cross it.
			p1 = p2
			continue
		}
		ylo, yhi := math.Min(p1.Y, p2.Y), math.Max(p1.Y, p2.Y)
		xhi := math.Max(p1.X, p2.X)

		idx = idx[:0]
		for k := range xs {
			if ys[k] > ylo && ys[k] <= yhi && xs[k] <= xhi {
				idx = append(idx, k)
			}
		}

		if p1.X == p2.X {
			for _, k := range idx {
				inside[k] = !inside[k]
			}
		} else {
			for _, k := range idx {
				xint := (ys[k]-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y) + p1.X
				if xs[k] <= xint {
					inside[k] = !inside[k]
				}
			}
		}
		p1 = p2
	}
	return inside, nil
}
