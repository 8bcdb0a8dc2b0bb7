package main

import (
	"fmt"

	"epimotion/internal/sim/motion"
	"epimotion/internal/sim/population"
	"epimotion/internal/sim/region"
	"epimotion/internal/sim/tuning"
	"epimotion/internal/sim/world"
)

func worldConfigFromTuning(id string, seed uint64, tune tuning.Tuning) (world.WorldConfig, error) {
	cfg := world.WorldConfig{
		ID:           id,
		TickRateHz:   tune.TickRateHz,
		Seed:         seed,
		Mode:         tune.Mode,
		XBounds:      motion.Interval{Min: tune.XBounds[0], Max: tune.XBounds[1]},
		YBounds:      motion.Interval{Min: tune.YBounds[0], Max: tune.YBounds[1]},
		BoundsMargin: tune.BoundsMargin,
		Walk: motion.WalkParams{
			Speed:               tune.Walk.Speed,
			HeadingUpdateChance: tune.Walk.HeadingUpdateChance,
			SpeedUpdateChance:   tune.Walk.SpeedUpdateChance,
			HeadingMultiplier:   tune.Walk.HeadingMultiplier,
			SpeedMultiplier:     tune.Walk.SpeedMultiplier,
		},
		SnapshotEveryTicks: tune.SnapshotEveryTicks,
		ObserverEveryTicks: tune.ObserverEveryTicks,
		LockdownCompliance: tune.LockdownCompliance,
	}
	if tune.Mode == tuning.ModePolygon {
		poly, err := region.Load(tune.Region.File, tune.Region.Name, tune.Region.Origin, tune.Region.Size)
		if err != nil {
			return cfg, fmt.Errorf("region: %w", err)
		}
		cfg.Region = poly
	}
	return cfg, nil
}

// newFreshWorld spawns tune.PopSize agents. Population draws come from a
// stream seeded with seed+1 so the world stream starts untouched.
func newFreshWorld(id string, seed uint64, tune tuning.Tuning) (*world.World, error) {
	cfg, err := worldConfigFromTuning(id, seed, tune)
	if err != nil {
		return nil, err
	}
	src := motion.NewSource(seed + 1)
	agents, err := population.Initialize(tune.PopSize, cfg.XBounds, cfg.YBounds, cfg.Walk.Speed, src)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	if cfg.Mode == world.ModePolygon {
		if err := population.PlaceInPolygon(agents, cfg.Region, src); err != nil {
			return nil, fmt.Errorf("population: %w", err)
		}
	}
	return world.New(cfg, agents)
}
