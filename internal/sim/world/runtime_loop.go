package world

import (
	"context"
	"errors"
	"fmt"
	"time"

	"epimotion/internal/sim/motion"
)

type destinationReq struct {
	Change DestinationChange
	Resp   chan error
}

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingDest []DestinationChange
	var pendingAdmin []adminSnapshotReq

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case req := <-w.destination:
			err := w.checkDestination(req.Change)
			if err == nil {
				pendingDest = append(pendingDest, req.Change)
			}
			if req.Resp != nil {
				req.Resp <- err
			}
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case req := <-w.lockdownCh:
			w.lockdown = req.On
			if req.Resp != nil {
				req.Resp <- struct{}{}
			}
		case <-ticker.C:
			if _, err := w.step(pendingDest); err != nil {
				return err
			}
			w.handleAdminSnapshotRequests(pendingAdmin)
			pendingDest = pendingDest[:0]
			pendingAdmin = pendingAdmin[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// SetDestination queues a destination change for the next tick. It is safe
// to call from other goroutines while Run is active.
func (w *World) SetDestination(ctx context.Context, agent, dest int) error {
	resp := make(chan error, 1)
	req := destinationReq{Change: DestinationChange{Agent: agent, Dest: dest}, Resp: resp}
	select {
	case w.destination <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-resp:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(dests []DestinationChange) (TickLogEntry, error) {
	for _, c := range dests {
		if err := w.checkDestination(c); err != nil {
			return TickLogEntry{}, err
		}
	}
	return w.step(dests)
}

// step applies destination changes, contains roaming agents, perturbs every
// agent (or restricts speeds under lockdown) and integrates positions, in
// that order.
func (w *World) step(dests []DestinationChange) (TickLogEntry, error) {
	start := time.Now()
	nowTick := w.tick.Load()
	entry := TickLogEntry{Tick: nowTick}

	for _, c := range dests {
		if w.checkDestination(c) != nil {
			continue
		}
		w.dest[c.Agent] = c.Dest
		entry.Destinations = append(entry.Destinations, c)
	}

	roaming := w.roamingRows()
	entry.Roaming = len(roaming)
	if err := w.contain(roaming, &entry); err != nil {
		return entry, fmt.Errorf("tick %d containment: %w", nowTick, err)
	}

	if w.lockdown {
		halted, err := motion.Restrict(w.agents, w.comply, LockdownSpeed)
		if err != nil {
			return entry, fmt.Errorf("tick %d lockdown: %w", nowTick, err)
		}
		entry.Lockdown = true
		entry.Halted = halted
	} else {
		stats, err := motion.Perturb(w.agents, w.agents.Len(), w.cfg.Walk, w.rng)
		if err != nil {
			return entry, fmt.Errorf("tick %d perturb: %w", nowTick, err)
		}
		entry.Walk = stats
	}

	if err := motion.Integrate(w.agents); err != nil {
		return entry, fmt.Errorf("tick %d integrate: %w", nowTick, err)
	}

	entry.Digest = w.stateDigest(nowTick)
	w.tick.Store(nowTick + 1)

	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(entry)
	}
	if every := uint64(w.cfg.SnapshotEveryTicks); every > 0 && (nowTick+1)%every == 0 {
		w.enqueueSnapshot(nowTick)
	}
	w.broadcastFrame(nowTick, len(roaming))
	w.updateMetrics(nowTick, entry, time.Since(start))
	return entry, nil
}

func (w *World) contain(rows []int, entry *TickLogEntry) error {
	if len(rows) == 0 {
		return nil
	}
	all := len(rows) == w.agents.Len()
	sub := w.agents
	if !all {
		var err error
		if sub, err = w.agents.Gather(rows); err != nil {
			return err
		}
	}

	switch w.cfg.Mode {
	case ModeBounds:
		x, y := w.cfg.containmentBounds()
		n, err := motion.Reflect(sub, motion.UniformBounds(sub.Len(), x, y), w.rng)
		if err != nil {
			return err
		}
		entry.Reflected = n
	case ModePolygon:
		n, err := motion.Repel(sub, w.cfg.Region, w.rng)
		if err != nil {
			return err
		}
		entry.Repelled = n
	default:
		return errors.New("unknown containment mode " + w.cfg.Mode)
	}

	if all {
		return nil
	}
	return w.agents.Scatter(rows, sub)
}
