package world

import (
	"testing"

	"epimotion/internal/sim/motion"
	"epimotion/internal/sim/population"
)

func testAgents(t *testing.T, n int, seed uint64) *motion.Table {
	t.Helper()
	tb, err := population.Initialize(n, motion.Interval{Min: 0, Max: 1}, motion.Interval{Min: 0, Max: 1}, 0.01, motion.NewSource(seed))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return tb
}

func boundsConfig(seed uint64) WorldConfig {
	return WorldConfig{
		ID:           "test",
		RunID:        "run-test",
		TickRateHz:   200,
		Seed:         seed,
		Mode:         ModeBounds,
		XBounds:      motion.Interval{Min: 0, Max: 1},
		YBounds:      motion.Interval{Min: 0, Max: 1},
		BoundsMargin: 0.02,
		Walk:         motion.DefaultWalkParams(),
	}
}

func polygonConfig(seed uint64) WorldConfig {
	cfg := boundsConfig(seed)
	cfg.Mode = ModePolygon
	cfg.Region = motion.Polygon{{X: 0.2, Y: 0.2}, {X: 0.8, Y: 0.2}, {X: 0.8, Y: 0.8}, {X: 0.2, Y: 0.8}}
	return cfg
}

func newTestWorld(t *testing.T, cfg WorldConfig, n int) *World {
	t.Helper()
	w, err := New(cfg, testAgents(t, n, cfg.Seed+1))
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func stepN(t *testing.T, w *World, n int) []TickLogEntry {
	t.Helper()
	out := make([]TickLogEntry, 0, n)
	for i := 0; i < n; i++ {
		e, err := w.StepOnce(nil)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		out = append(out, e)
	}
	return out
}
