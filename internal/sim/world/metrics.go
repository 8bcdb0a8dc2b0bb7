package world

import "time"

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Agents    int `json:"agents"`
	Roaming   int `json:"roaming"`
	Observers int `json:"observers"`

	Lockdown bool `json:"lockdown"`
	Halted   int  `json:"halted"`

	StepMS float64 `json:"step_ms"`

	// Per-tick correction counts from the last step.
	Reflected int `json:"reflected"`
	Repelled  int `json:"repelled"`

	Walk WalkTotals `json:"walk"`

	// FrameErrors counts observer frames dropped because they failed to encode.
	FrameErrors uint64 `json:"frame_errors"`
}

// WalkTotals accumulates resample counts since the world started.
type WalkTotals struct {
	HeadingX uint64 `json:"heading_x"`
	HeadingY uint64 `json:"heading_y"`
	Speed    uint64 `json:"speed"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) updateMetrics(nowTick uint64, entry TickLogEntry, took time.Duration) {
	prev := w.Metrics()
	w.metrics.Store(WorldMetrics{
		Tick:      nowTick,
		Agents:    w.agents.Len(),
		Roaming:   entry.Roaming,
		Observers: len(w.observers),
		StepMS:    float64(took.Microseconds()) / 1000,
		Reflected: entry.Reflected,
		Repelled:  entry.Repelled,
		Lockdown:  entry.Lockdown,
		Halted:    entry.Halted,
		Walk: WalkTotals{
			HeadingX: prev.Walk.HeadingX + uint64(entry.Walk.HeadingX),
			HeadingY: prev.Walk.HeadingY + uint64(entry.Walk.HeadingY),
			Speed:    prev.Walk.Speed + uint64(entry.Walk.Speed),
		},
		FrameErrors: w.frameErrors,
	})
}
