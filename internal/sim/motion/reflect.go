package motion

const (
	bounceMean = 0.5
	bounceStd  = 0.5 / 3
	bounceMin  = 0.05
	bounceMax  = 1.0
)

// Reflect turns agents that reached a bound while still heading outward back
// inside. The corrected heading component is resampled from
// N(0.5, 0.5/3) clamped to [0.05, 1] (negated and clamped to [-1, -0.05] on
// the high side); the other component is left alone. Cases run in the order
// x-low, x-high, y-low, y-high and each sees the writes of the previous one.
//
// It returns the number of heading components rewritten.
func Reflect(t *Table, b Bounds, src Source) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if err := b.check(t.Len()); err != nil {
		return 0, err
	}
	n := t.Len()
	total := 0

	// x
	total += bounceLow(t.HX, selectRows(n, func(i int) bool { return t.X[i] <= b.X[i].Min && t.HX[i] < 0 }), src)
	total += bounceHigh(t.HX, selectRows(n, func(i int) bool { return t.X[i] >= b.X[i].Max && t.HX[i] > 0 }), src)

	// y
	total += bounceLow(t.HY, selectRows(n, func(i int) bool { return t.Y[i] <= b.Y[i].Min && t.HY[i] < 0 }), src)
	total += bounceHigh(t.HY, selectRows(n, func(i int) bool { return t.Y[i] >= b.Y[i].Max && t.HY[i] > 0 }), src)

	return total, nil
}

func bounceLow(h []float64, idx []int, src Source) int {
	for _, i := range idx {
		h[i] = clamp(normal(src, bounceMean, bounceStd), bounceMin, bounceMax)
	}
	return len(idx)
}

func bounceHigh(h []float64, idx []int, src Source) int {
	for _, i := range idx {
		h[i] = clamp(-normal(src, bounceMean, bounceStd), -bounceMax, -bounceMin)
	}
	return len(idx)
}
