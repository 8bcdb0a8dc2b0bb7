package population

import (
	"fmt"

	"epimotion/internal/sim/motion"
)

// spawnInset keeps fresh agents off the world edge.
const spawnInset = 0.05

// Initialize creates n agents spread uniformly over the bounds (inset by
// spawnInset) with headings ~ N(0, 1/3) and speeds ~ N(speed, speed/3).
// Positions are drawn for all agents first, then headings, then speeds.
func Initialize(n int, xb, yb motion.Interval, speed float64, src motion.Source) (*motion.Table, error) {
	if n <= 0 {
		return nil, fmt.Errorf("population size %d", n)
	}
	xlo, xhi := xb.Min+spawnInset, xb.Max-spawnInset
	ylo, yhi := yb.Min+spawnInset, yb.Max-spawnInset
	if xhi <= xlo || yhi <= ylo {
		return nil, fmt.Errorf("%w: bounds x=%v y=%v too small for spawn inset", motion.ErrInvalidGeometry, xb, yb)
	}

	t := motion.NewTable(n)
	for i := range t.X {
		t.X[i] = xlo + (xhi-xlo)*src.Float64()
	}
	for i := range t.Y {
		t.Y[i] = ylo + (yhi-ylo)*src.Float64()
	}
	for i := range t.HX {
		t.HX[i] = src.NormFloat64() / 3
	}
	for i := range t.HY {
		t.HY[i] = src.NormFloat64() / 3
	}
	for i := range t.Speed {
		s := speed + speed/3*src.NormFloat64()
		if s < motion.MinSpeed {
			s = motion.MinSpeed
		}
		if s > motion.MaxSpeed {
			s = motion.MaxSpeed
		}
		t.Speed[i] = s
	}
	return t, nil
}

const maxPlaceRounds = 1000

// PlaceInPolygon moves every agent to a uniform random point inside poly by
// rejection sampling over its bounding box. Rejected agents are redrawn in
// rounds until all are inside.
func PlaceInPolygon(t *motion.Table, poly motion.Polygon, src motion.Source) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := poly.Validate(); err != nil {
		return err
	}
	bx, by := poly.Bounds()
	w, h := bx.Max-bx.Min, by.Max-by.Min
	if w == 0 || h == 0 {
		return fmt.Errorf("%w: degenerate bounding box", motion.ErrInvalidGeometry)
	}

	pending := make([]int, t.Len())
	for i := range pending {
		pending[i] = i
	}
	xs := make([]float64, 0, len(pending))
	ys := make([]float64, 0, len(pending))
	for round := 0; len(pending) > 0; round++ {
		if round == maxPlaceRounds {
			return fmt.Errorf("placement: %d agents still outside after %d rounds", len(pending), maxPlaceRounds)
		}
		xs, ys = xs[:0], ys[:0]
		for range pending {
			xs = append(xs, bx.Min+w*src.Float64())
			ys = append(ys, by.Min+h*src.Float64())
		}
		inside, err := motion.PointInPolygon(xs, ys, poly)
		if err != nil {
			return err
		}
		next := pending[:0]
		for k, i := range pending {
			if inside[k] {
				t.X[i], t.Y[i] = xs[k], ys[k]
				continue
			}
			next = append(next, i)
		}
		pending = next
	}
	return nil
}
