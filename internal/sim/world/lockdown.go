package world

import (
	"context"

	"epimotion/internal/sim/motion"
)

// LockdownSpeed caps every agent's speed while a lockdown is active.
const LockdownSpeed = 0.001

type lockdownReq struct {
	On   bool
	Resp chan struct{}
}

// SetLockdown switches the lockdown on or off from the next tick. It is safe
// to call from other goroutines while Run is active.
func (w *World) SetLockdown(ctx context.Context, on bool) error {
	resp := make(chan struct{}, 1)
	select {
	case w.lockdownCh <- lockdownReq{On: on, Resp: resp}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetLockdownState sets the lockdown flag directly. Only call it when Run is
// not active (replays, tests).
func (w *World) SetLockdownState(on bool) { w.lockdown = on }

func (w *World) Lockdown() bool { return w.lockdown }

// complianceVector marks the agents that stop moving during a lockdown. Each
// agent complies with probability compliance. Draws come from their own
// stream so the world stream is untouched.
func complianceVector(n int, seed uint64, compliance float64) []bool {
	src := motion.NewSource(seed + 2)
	out := make([]bool, n)
	for i := range out {
		out[i] = src.Float64() < compliance
	}
	return out
}
