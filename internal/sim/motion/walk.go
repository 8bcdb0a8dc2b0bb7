package motion

import "fmt"

const (
	MinSpeed = 0.0001
	MaxSpeed = 0.05
)

type WalkParams struct {
	Speed               float64 // mean speed; resampled speeds use std Speed/3
	HeadingUpdateChance float64
	// SpeedUpdateChance is carried for configuration compatibility. Speed
	// resampling is gated on HeadingUpdateChance so calibrated runs reproduce.
	SpeedUpdateChance float64
	HeadingMultiplier float64
	SpeedMultiplier   float64
}

func DefaultWalkParams() WalkParams {
	return WalkParams{
		Speed:               0.01,
		HeadingUpdateChance: 0.02,
		SpeedUpdateChance:   0.02,
		HeadingMultiplier:   1,
		SpeedMultiplier:     1,
	}
}

type WalkStats struct {
	HeadingX int `json:"heading_x"`
	HeadingY int `json:"heading_y"`
	Speed    int `json:"speed"`
}

// Perturb runs three independent Bernoulli phases over n rows (heading x,
// heading y, speed). Each phase draws n uniforms, selects rows whose draw is
// <= HeadingUpdateChance, then draws one normal per selected row. Every row's
// speed is clamped to [MinSpeed, MaxSpeed] afterwards, resampled or not.
func Perturb(t *Table, n int, p WalkParams, src Source) (WalkStats, error) {
	var st WalkStats
	if err := t.Validate(); err != nil {
		return st, err
	}
	if n != t.Len() {
		return st, fmt.Errorf("%w: population size %d for %d rows", ErrShapeMismatch, n, t.Len())
	}

	idx := trial(n, p.HeadingUpdateChance, src)
	for _, i := range idx {
		t.HX[i] = normal(src, 0, 1.0/3) * p.HeadingMultiplier
	}
	st.HeadingX = len(idx)

	idx = trial(n, p.HeadingUpdateChance, src)
	for _, i := range idx {
		t.HY[i] = normal(src, 0, 1.0/3) * p.HeadingMultiplier
	}
	st.HeadingY = len(idx)

	idx = trial(n, p.HeadingUpdateChance, src)
	for _, i := range idx {
		t.Speed[i] = normal(src, p.Speed, p.Speed/3) * p.SpeedMultiplier
	}
	st.Speed = len(idx)

	for i := range t.Speed {
		t.Speed[i] = clamp(t.Speed[i], MinSpeed, MaxSpeed)
	}
	return st, nil
}

func trial(n int, chance float64, src Source) []int {
	draws := make([]float64, n)
	for i := range draws {
		draws[i] = src.Float64()
	}
	return selectRows(n, func(i int) bool { return draws[i] <= chance })
}
