package world

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"epimotion/internal/persistence/snapshot"
	"epimotion/internal/sim/motion"
)

// ExportSnapshot captures the state after tick nowTick has been applied.
func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	rng, _ := w.pcg.MarshalBinary()

	var region [][2]float64
	if len(w.cfg.Region) > 0 {
		region = make([][2]float64, len(w.cfg.Region))
		for i, p := range w.cfg.Region {
			region[i] = [2]float64{p.X, p.Y}
		}
	}

	t := w.agents
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			RunID:   w.cfg.RunID,
			Tick:    nowTick,
			Agents:  t.Len(),
		},
		Seed:         w.cfg.Seed,
		TickRate:     w.cfg.TickRateHz,
		RNG:          rng,
		Mode:         w.cfg.Mode,
		XBounds:      [2]float64{w.cfg.XBounds.Min, w.cfg.XBounds.Max},
		YBounds:      [2]float64{w.cfg.YBounds.Min, w.cfg.YBounds.Max},
		BoundsMargin: w.cfg.BoundsMargin,
		Region:       region,
		Walk: snapshot.WalkV1{
			Speed:               w.cfg.Walk.Speed,
			HeadingUpdateChance: w.cfg.Walk.HeadingUpdateChance,
			SpeedUpdateChance:   w.cfg.Walk.SpeedUpdateChance,
			HeadingMultiplier:   w.cfg.Walk.HeadingMultiplier,
			SpeedMultiplier:     w.cfg.Walk.SpeedMultiplier,
		},
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		ObserverEveryTicks: w.cfg.ObserverEveryTicks,
		LockdownCompliance: w.cfg.LockdownCompliance,
		Lockdown:           w.lockdown,
		Agents: snapshot.AgentsV1{
			X:     append([]float64(nil), t.X...),
			Y:     append([]float64(nil), t.Y...),
			HX:    append([]float64(nil), t.HX...),
			HY:    append([]float64(nil), t.HY...),
			Speed: append([]float64(nil), t.Speed...),
			Dest:  append([]int(nil), w.dest...),
		},
	}
}

// ConfigFromSnapshot rebuilds the world configuration a snapshot was taken with.
func ConfigFromSnapshot(s snapshot.SnapshotV1) WorldConfig {
	var region motion.Polygon
	for _, p := range s.Region {
		region = append(region, motion.Point{X: p[0], Y: p[1]})
	}
	return WorldConfig{
		ID:           s.Header.WorldID,
		RunID:        s.Header.RunID,
		TickRateHz:   s.TickRate,
		Seed:         s.Seed,
		Mode:         s.Mode,
		XBounds:      motion.Interval{Min: s.XBounds[0], Max: s.XBounds[1]},
		YBounds:      motion.Interval{Min: s.YBounds[0], Max: s.YBounds[1]},
		BoundsMargin: s.BoundsMargin,
		Region:       region,
		Walk: motion.WalkParams{
			Speed:               s.Walk.Speed,
			HeadingUpdateChance: s.Walk.HeadingUpdateChance,
			SpeedUpdateChance:   s.Walk.SpeedUpdateChance,
			HeadingMultiplier:   s.Walk.HeadingMultiplier,
			SpeedMultiplier:     s.Walk.SpeedMultiplier,
		},
		SnapshotEveryTicks: s.SnapshotEveryTicks,
		ObserverEveryTicks: s.ObserverEveryTicks,
		LockdownCompliance: s.LockdownCompliance,
	}
}

// NewFromSnapshot builds a world that continues exactly where s left off.
func NewFromSnapshot(s snapshot.SnapshotV1) (*World, error) {
	if err := s.Agents.Validate(); err != nil {
		return nil, err
	}
	w, err := New(ConfigFromSnapshot(s), motion.NewTable(s.Agents.Len()))
	if err != nil {
		return nil, err
	}
	if err := w.ImportSnapshot(s); err != nil {
		return nil, err
	}
	return w, nil
}

// ImportSnapshot replaces the agent table, destinations, random stream and
// tick counter. The world configuration is left as constructed. Nothing is
// changed when an error is returned.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version %d", s.Header.Version)
	}
	if err := s.Agents.Validate(); err != nil {
		return err
	}
	if s.Agents.Len() == 0 {
		return errors.New("snapshot has no agents")
	}
	for i, d := range s.Agents.Dest {
		if d < 0 {
			return fmt.Errorf("snapshot agent %d: negative destination %d", i, d)
		}
	}
	var pcg rand.PCG
	if err := pcg.UnmarshalBinary(s.RNG); err != nil {
		return fmt.Errorf("snapshot rng: %w", err)
	}

	a := s.Agents
	t := &motion.Table{
		X:     append([]float64(nil), a.X...),
		Y:     append([]float64(nil), a.Y...),
		HX:    append([]float64(nil), a.HX...),
		HY:    append([]float64(nil), a.HY...),
		Speed: append([]float64(nil), a.Speed...),
	}
	w.agents = t
	w.dest = append([]int(nil), a.Dest...)
	w.comply = complianceVector(t.Len(), w.cfg.Seed, w.cfg.LockdownCompliance)
	*w.pcg = pcg
	w.lockdown = s.Lockdown
	if s.Header.RunID != "" {
		w.cfg.RunID = s.Header.RunID
	}
	w.tick.Store(s.Header.Tick + 1)

	m := w.Metrics()
	m.Tick = s.Header.Tick
	m.Agents = t.Len()
	m.Roaming = len(w.roamingRows())
	m.Lockdown = s.Lockdown
	w.metrics.Store(m)
	return nil
}
