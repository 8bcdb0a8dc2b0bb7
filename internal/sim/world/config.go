package world

import (
	"fmt"

	"epimotion/internal/sim/motion"
)

const (
	ModeBounds  = "bounds"
	ModePolygon = "polygon"
)

type WorldConfig struct {
	ID    string
	RunID string

	TickRateHz int
	Seed       uint64

	// Mode selects the containment rule applied to roaming agents.
	Mode         string
	XBounds      motion.Interval
	YBounds      motion.Interval
	BoundsMargin float64
	Region       motion.Polygon

	Walk motion.WalkParams

	// LockdownCompliance is the share of agents that stop entirely while a
	// lockdown is active. The rest are slowed to LockdownSpeed.
	LockdownCompliance float64

	SnapshotEveryTicks int
	ObserverEveryTicks int
}

func (cfg *WorldConfig) applyDefaults() {
	if cfg.ID == "" {
		cfg.ID = "world_1"
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeBounds
	}
	if cfg.ObserverEveryTicks <= 0 {
		cfg.ObserverEveryTicks = 1
	}
	if cfg.Walk == (motion.WalkParams{}) {
		cfg.Walk = motion.DefaultWalkParams()
	}
}

func (cfg WorldConfig) validate() error {
	switch cfg.Mode {
	case ModeBounds:
		x, y := cfg.containmentBounds()
		if !(x.Max > x.Min) || !(y.Max > y.Min) {
			return fmt.Errorf("%w: bounds x=%v y=%v leave no room inside margin %v",
				motion.ErrInvalidGeometry, cfg.XBounds, cfg.YBounds, cfg.BoundsMargin)
		}
	case ModePolygon:
		if err := cfg.Region.Validate(); err != nil {
			return err
		}
		x, y := cfg.Region.Bounds()
		if !(x.Max > x.Min) || !(y.Max > y.Min) {
			return fmt.Errorf("%w: region bounding box is degenerate", motion.ErrInvalidGeometry)
		}
	default:
		return fmt.Errorf("unknown containment mode %q", cfg.Mode)
	}
	if cfg.LockdownCompliance < 0 || cfg.LockdownCompliance > 1 {
		return fmt.Errorf("lockdown_compliance %v outside [0,1]", cfg.LockdownCompliance)
	}
	if cfg.SnapshotEveryTicks < 0 {
		return fmt.Errorf("snapshot_every_ticks must be >= 0")
	}
	return nil
}

// containmentBounds is the world box shrunk by the margin on every side.
func (cfg WorldConfig) containmentBounds() (x, y motion.Interval) {
	m := cfg.BoundsMargin
	return motion.Interval{Min: cfg.XBounds.Min + m, Max: cfg.XBounds.Max - m},
		motion.Interval{Min: cfg.YBounds.Min + m, Max: cfg.YBounds.Max - m}
}
