package motion

import "fmt"

// Repel points every agent outside poly at a uniformly random target inside
// the polygon's bounding box: heading = clamp(target - position, -1, 1) per
// axis. The target may itself lie outside a concave polygon; that agent is
// picked up again on a later tick. Rows inside the polygon are untouched.
//
// Target x values for all outside rows are drawn before any y value.
func Repel(t *Table, poly Polygon, src Source) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if err := poly.Validate(); err != nil {
		return 0, err
	}
	bx, by := poly.Bounds()
	w, h := bx.Max-bx.Min, by.Max-by.Min
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("%w: degenerate bounding box %gx%g", ErrInvalidGeometry, w, h)
	}

	mask, err := PointInPolygon(t.X, t.Y, poly)
	if err != nil {
		return 0, err
	}
	outside := selectRows(t.Len(), func(i int) bool { return !mask[i] })
	if len(outside) == 0 {
		return 0, nil
	}

	tx := make([]float64, len(outside))
	for k := range tx {
		tx[k] = w*src.Float64() + bx.Min
	}
	ty := make([]float64, len(outside))
	for k := range ty {
		ty[k] = h*src.Float64() + by.Min
	}

	for k, i := range outside {
		t.HX[i] = clamp(tx[k]-t.X[i], -1, 1)
		t.HY[i] = clamp(ty[k]-t.Y[i], -1, 1)
	}
	return len(outside), nil
}
