package world

import (
	"encoding/json"
	"fmt"

	"epimotion/internal/observerproto"
)

type ObserverJoinRequest struct {
	SessionID  string
	TickOut    chan []byte
	EveryTicks int
	Headings   bool
}

type ObserverSubscribeRequest struct {
	SessionID  string
	EveryTicks int
	Headings   bool
}

type observerClient struct {
	tickOut    chan []byte
	everyTicks int
	headings   bool
}

func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }

func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }

func (w *World) ObserverLeave() chan<- string { return w.observerLeave }

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	w.observers[req.SessionID] = &observerClient{
		tickOut:    req.TickOut,
		everyTicks: w.observerEvery(req.EveryTicks),
		headings:   req.Headings,
	}
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	c := w.observers[req.SessionID]
	if c == nil {
		return
	}
	c.everyTicks = w.observerEvery(req.EveryTicks)
	c.headings = req.Headings
}

func (w *World) handleObserverLeave(id string) {
	if c := w.observers[id]; c != nil {
		close(c.tickOut)
		delete(w.observers, id)
	}
}

func (w *World) observerEvery(n int) int {
	if n <= 0 {
		return w.cfg.ObserverEveryTicks
	}
	return n
}

// broadcastFrame encodes at most two frame variants per tick and hands them
// to observers without blocking the loop. A frame that fails to encode is
// dropped for every observer on that tick.
func (w *World) broadcastFrame(nowTick uint64, roaming int) {
	if len(w.observers) == 0 {
		return
	}
	var plain, full []byte
	var plainErr, fullErr error
	for _, c := range w.observers {
		if nowTick%uint64(c.everyTicks) != 0 {
			continue
		}
		if c.headings {
			if full == nil && fullErr == nil {
				full, fullErr = w.encodeFrame(nowTick, roaming, true)
				w.noteFrameError(nowTick, fullErr)
			}
			if fullErr == nil {
				sendLatest(c.tickOut, full)
			}
			continue
		}
		if plain == nil && plainErr == nil {
			plain, plainErr = w.encodeFrame(nowTick, roaming, false)
			w.noteFrameError(nowTick, plainErr)
		}
		if plainErr == nil {
			sendLatest(c.tickOut, plain)
		}
	}
}

func (w *World) noteFrameError(nowTick uint64, err error) {
	if err == nil {
		return
	}
	w.frameErrors++
	if w.logger != nil {
		w.logger.Printf("observer frame tick=%d: %v", nowTick, err)
	}
}

func (w *World) encodeFrame(nowTick uint64, roaming int, headings bool) ([]byte, error) {
	msg := observerproto.FrameMsg{
		Type:            "FRAME",
		ProtocolVersion: observerproto.Version,
		Tick:            nowTick,
		X:               w.agents.X,
		Y:               w.agents.Y,
		Roaming:         roaming,
		Contained:       w.agents.Len() - roaming,
	}
	if headings {
		msg.HX = w.agents.HX
		msg.HY = w.agents.HY
		msg.Speed = w.agents.Speed
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return b, nil
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
