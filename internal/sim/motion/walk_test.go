package motion

import (
	"errors"
	"testing"
)

func TestPerturb_ClampsEverySpeed(t *testing.T) {
	tb := tableOf(
		[5]float64{0, 0, 0.1, 0.1, 1.0},
		[5]float64{0, 0, 0.1, 0.1, -1},
		[5]float64{0, 0, 0.1, 0.1, 0.02},
	)
	p := DefaultWalkParams()
	p.HeadingUpdateChance = 0
	src := &fixedSource{uniform: []float64{0.5}, norm: []float64{0}}
	st, err := Perturb(tb, 3, p, src)
	if err != nil {
		t.Fatalf("perturb: %v", err)
	}
	if st != (WalkStats{}) {
		t.Fatalf("stats=%+v want none resampled", st)
	}
	want := []float64{MaxSpeed, MinSpeed, 0.02}
	for i, w := range want {
		if tb.Speed[i] != w {
			t.Fatalf("row %d speed=%v want %v", i, tb.Speed[i], w)
		}
	}
}

func TestPerturb_SeededPopulationStaysInSpeedRange(t *testing.T) {
	src := NewSource(42)
	const n = 1000
	tb := NewTable(n)
	for i := range tb.Speed {
		tb.Speed[i] = 0.2 * (src.Float64() - 0.25)
	}
	p := DefaultWalkParams()
	p.HeadingUpdateChance = 0.5
	p.SpeedMultiplier = 8
	for tick := 0; tick < 5; tick++ {
		if _, err := Perturb(tb, n, p, src); err != nil {
			t.Fatalf("perturb: %v", err)
		}
		for i, s := range tb.Speed {
			if s < MinSpeed || s > MaxSpeed {
				t.Fatalf("tick %d row %d speed=%v out of range", tick, i, s)
			}
		}
	}
}

func TestPerturb_CertainUpdateResamplesEveryRow(t *testing.T) {
	tb := tableOf(
		[5]float64{0, 0, 0.9, 0.9, 0.04},
		[5]float64{0, 0, -0.9, -0.9, 0.04},
	)
	p := WalkParams{Speed: 0.01, HeadingUpdateChance: 1, HeadingMultiplier: 2, SpeedMultiplier: 3}
	// Standard normal 0.3 -> heading 0.1*2, speed (0.01+0.001)*3.
	src := &fixedSource{uniform: []float64{0.999}, norm: []float64{0.3}}
	st, err := Perturb(tb, 2, p, src)
	if err != nil {
		t.Fatalf("perturb: %v", err)
	}
	if st.HeadingX != 2 || st.HeadingY != 2 || st.Speed != 2 {
		t.Fatalf("stats=%+v", st)
	}
	for i := 0; i < 2; i++ {
		if !near(tb.HX[i], 0.2) || !near(tb.HY[i], 0.2) || !near(tb.Speed[i], 0.033) {
			t.Fatalf("row %d: heading=(%v,%v) speed=%v", i, tb.HX[i], tb.HY[i], tb.Speed[i])
		}
	}
}

func TestPerturb_ThresholdIsInclusive(t *testing.T) {
	tb := tableOf([5]float64{0, 0, 0.5, 0.5, 0.01})
	p := DefaultWalkParams()
	src := &fixedSource{uniform: []float64{p.HeadingUpdateChance}, norm: []float64{0}}
	st, err := Perturb(tb, 1, p, src)
	if err != nil {
		t.Fatalf("perturb: %v", err)
	}
	if st.HeadingX != 1 || tb.HX[0] != 0 {
		t.Fatalf("draw equal to the chance should select: stats=%+v hx=%v", st, tb.HX[0])
	}
}

func TestPerturb_SpeedGatedOnHeadingChance(t *testing.T) {
	tb := tableOf([5]float64{0, 0, 0.5, 0.5, 0.03})
	p := DefaultWalkParams()
	p.HeadingUpdateChance = 0
	p.SpeedUpdateChance = 1
	src := &fixedSource{uniform: []float64{0.5}, norm: []float64{2}}
	st, err := Perturb(tb, 1, p, src)
	if err != nil {
		t.Fatalf("perturb: %v", err)
	}
	if st.Speed != 0 || tb.Speed[0] != 0.03 {
		t.Fatalf("speed resampled by speed chance: stats=%+v speed=%v", st, tb.Speed[0])
	}
	if src.ui != 3 {
		t.Fatalf("uniform draws=%d want one per phase", src.ui)
	}
}

func TestPerturb_PopulationSizeMismatch(t *testing.T) {
	tb := tableOf([5]float64{0, 0, 0.5, 0.5, 1})
	if _, err := Perturb(tb, 2, DefaultWalkParams(), NewSource(1)); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err=%v want ErrShapeMismatch", err)
	}
	if tb.Speed[0] != 1 {
		t.Fatalf("speed clamped despite error")
	}
}
