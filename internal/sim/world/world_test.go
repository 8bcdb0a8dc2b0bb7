package world

import (
	"errors"
	"testing"

	"epimotion/internal/persistence/snapshot"
	"epimotion/internal/sim/motion"
)

func TestNew_RejectsBadConfig(t *testing.T) {
	agents := func() *motion.Table { return testAgents(t, 10, 1) }

	cfg := boundsConfig(1)
	cfg.BoundsMargin = 0.5
	if _, err := New(cfg, agents()); !errors.Is(err, motion.ErrInvalidGeometry) {
		t.Fatalf("margin swallowing bounds: err=%v", err)
	}

	cfg = polygonConfig(1)
	cfg.Region = motion.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}}
	if _, err := New(cfg, agents()); !errors.Is(err, motion.ErrInvalidGeometry) {
		t.Fatalf("two-vertex region: err=%v", err)
	}

	cfg = polygonConfig(1)
	cfg.Region = motion.Polygon{{X: 0, Y: 0.5}, {X: 0.5, Y: 0.5}, {X: 1, Y: 0.5}}
	if _, err := New(cfg, agents()); !errors.Is(err, motion.ErrInvalidGeometry) {
		t.Fatalf("flat region: err=%v", err)
	}

	cfg = boundsConfig(1)
	cfg.Mode = "teleport"
	if _, err := New(cfg, agents()); err == nil {
		t.Fatalf("expected unknown mode error")
	}

	cfg = boundsConfig(1)
	cfg.LockdownCompliance = 1.5
	if _, err := New(cfg, agents()); err == nil {
		t.Fatalf("expected lockdown compliance error")
	}

	if _, err := New(boundsConfig(1), motion.NewTable(0)); err == nil {
		t.Fatalf("expected empty population error")
	}

	ragged := agents()
	ragged.HY = ragged.HY[:3]
	if _, err := New(boundsConfig(1), ragged); !errors.Is(err, motion.ErrShapeMismatch) {
		t.Fatalf("ragged table: err=%v", err)
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	w, err := New(WorldConfig{XBounds: motion.Interval{Max: 1}, YBounds: motion.Interval{Max: 1}}, testAgents(t, 5, 1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cfg := w.Config()
	if cfg.Mode != ModeBounds || cfg.TickRateHz != 20 || cfg.ObserverEveryTicks != 1 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Walk != motion.DefaultWalkParams() {
		t.Fatalf("walk=%+v", cfg.Walk)
	}
	if w.RunID() == "" {
		t.Fatalf("run id not assigned")
	}
}

func TestStep_SameSeedSameDigests(t *testing.T) {
	for _, cfg := range []WorldConfig{boundsConfig(11), polygonConfig(11)} {
		a := newTestWorld(t, cfg, 200)
		b := newTestWorld(t, cfg, 200)
		ea := stepN(t, a, 150)
		eb := stepN(t, b, 150)
		for i := range ea {
			if ea[i].Digest != eb[i].Digest {
				t.Fatalf("%s tick %d: digests diverged", cfg.Mode, i)
			}
			if ea[i].Tick != uint64(i) {
				t.Fatalf("%s: entry %d has tick %d", cfg.Mode, i, ea[i].Tick)
			}
		}
		if a.CurrentTick() != 150 {
			t.Fatalf("tick=%d want 150", a.CurrentTick())
		}
	}

	a := newTestWorld(t, boundsConfig(1), 50)
	b := newTestWorld(t, boundsConfig(2), 50)
	if stepN(t, a, 1)[0].Digest == stepN(t, b, 1)[0].Digest {
		t.Fatalf("different seeds produced the same digest")
	}
}

func TestStep_BoundsModeKeepsAgentsNearBox(t *testing.T) {
	w := newTestWorld(t, boundsConfig(5), 300)
	reflected := 0
	for _, e := range stepN(t, w, 1500) {
		reflected += e.Reflected
		if e.Repelled != 0 {
			t.Fatalf("tick %d repelled in bounds mode", e.Tick)
		}
	}
	if reflected == 0 {
		t.Fatalf("no agent ever reached the boundary")
	}
	for i := range w.agents.X {
		x, y := w.agents.X[i], w.agents.Y[i]
		if x < -0.25 || x > 1.25 || y < -0.25 || y > 1.25 {
			t.Fatalf("agent %d escaped to (%v,%v)", i, x, y)
		}
	}
}

func TestStep_PolygonModeGathersAgentsIntoRegion(t *testing.T) {
	w := newTestWorld(t, polygonConfig(8), 300)
	first := stepN(t, w, 1)[0]
	if first.Repelled == 0 {
		t.Fatalf("agents start across the unit box; some must be outside the region")
	}
	stepN(t, w, 600)

	near := 0
	for i := range w.agents.X {
		x, y := w.agents.X[i], w.agents.Y[i]
		if x >= 0.15 && x <= 0.85 && y >= 0.15 && y <= 0.85 {
			near++
		}
	}
	if near < 285 {
		t.Fatalf("only %d/300 agents near the region after 600 ticks", near)
	}
}

func TestStep_DestinationExemptsAgentFromContainment(t *testing.T) {
	agents := motion.NewTable(2)
	for i := 0; i < 2; i++ {
		agents.X[i], agents.Y[i] = -0.5, 0.5
		agents.HX[i], agents.HY[i] = -0.5, 0
		agents.Speed[i] = 0.01
	}
	cfg := boundsConfig(3)
	cfg.Walk.HeadingUpdateChance = 0
	w, err := New(cfg, agents)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	e, err := w.StepOnce([]DestinationChange{{Agent: 1, Dest: 4}})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if e.Roaming != 1 || e.Reflected != 1 || len(e.Destinations) != 1 {
		t.Fatalf("entry=%+v", e)
	}
	if w.agents.HX[0] <= 0 {
		t.Fatalf("roaming agent not reflected: hx=%v", w.agents.HX[0])
	}
	if w.agents.HX[1] != -0.5 {
		t.Fatalf("agent with destination was reflected: hx=%v", w.agents.HX[1])
	}
	if w.agents.X[1] >= -0.5 {
		t.Fatalf("agent with destination did not keep moving: x=%v", w.agents.X[1])
	}

	// Back to roaming.
	e, err = w.StepOnce([]DestinationChange{{Agent: 1, Dest: Roaming}})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if e.Roaming != 2 || w.agents.HX[1] <= 0 {
		t.Fatalf("agent not contained after clearing destination: entry=%+v hx=%v", e, w.agents.HX[1])
	}
}

func TestStepOnce_RejectsBadDestination(t *testing.T) {
	w := newTestWorld(t, boundsConfig(1), 3)
	for _, c := range []DestinationChange{{Agent: 3, Dest: 1}, {Agent: -1, Dest: 1}, {Agent: 0, Dest: -2}} {
		if _, err := w.StepOnce([]DestinationChange{c}); err == nil {
			t.Fatalf("%+v: expected error", c)
		}
	}
	if w.CurrentTick() != 0 {
		t.Fatalf("rejected step advanced the tick")
	}
}

type memTickLogger struct{ entries []TickLogEntry }

func (l *memTickLogger) WriteTick(e TickLogEntry) error {
	l.entries = append(l.entries, e)
	return nil
}

func TestStep_LogsTicksAndEmitsPeriodicSnapshots(t *testing.T) {
	cfg := boundsConfig(4)
	cfg.SnapshotEveryTicks = 5
	w := newTestWorld(t, cfg, 20)
	logger := &memTickLogger{}
	sink := make(chan snapshot.SnapshotV1, 8)
	w.SetTickLogger(logger)
	w.SetSnapshotSink(sink)

	entries := stepN(t, w, 12)
	if len(logger.entries) != 12 {
		t.Fatalf("logged %d entries want 12", len(logger.entries))
	}
	for i := range entries {
		if logger.entries[i].Digest != entries[i].Digest {
			t.Fatalf("tick %d: logged digest differs", i)
		}
	}
	close(sink)
	var ticks []uint64
	for s := range sink {
		ticks = append(ticks, s.Header.Tick)
	}
	if len(ticks) != 2 || ticks[0] != 4 || ticks[1] != 9 {
		t.Fatalf("snapshot ticks=%v want [4 9]", ticks)
	}

	m := w.Metrics()
	if m.Tick != 11 || m.Agents != 20 || m.Roaming != 20 {
		t.Fatalf("metrics=%+v", m)
	}
}
