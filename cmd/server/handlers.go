package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"epimotion/internal/sim/world"
)

func metricsHandler(w *world.World, idx runtimeIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		id := w.ID()
		m := w.Metrics()
		tick := w.CurrentTick()
		if m.Tick != 0 {
			tick = m.Tick
		}

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP epimotion_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_world_tick gauge\n")
		fmt.Fprintf(rw, "epimotion_world_tick{world=%q} %d\n", id, tick)

		fmt.Fprintf(rw, "# HELP epimotion_world_agents Agents in the world.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_world_agents gauge\n")
		fmt.Fprintf(rw, "epimotion_world_agents{world=%q,state=%q} %d\n", id, "roaming", m.Roaming)
		fmt.Fprintf(rw, "epimotion_world_agents{world=%q,state=%q} %d\n", id, "moving", m.Agents-m.Roaming)

		fmt.Fprintf(rw, "# HELP epimotion_world_observers Connected observers.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_world_observers gauge\n")
		fmt.Fprintf(rw, "epimotion_world_observers{world=%q} %d\n", id, m.Observers)

		fmt.Fprintf(rw, "# HELP epimotion_world_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_world_step_ms gauge\n")
		fmt.Fprintf(rw, "epimotion_world_step_ms{world=%q} %.3f\n", id, m.StepMS)

		fmt.Fprintf(rw, "# HELP epimotion_containment_corrections Heading corrections in the last tick.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_containment_corrections gauge\n")
		fmt.Fprintf(rw, "epimotion_containment_corrections{world=%q,kind=%q} %d\n", id, "reflected", m.Reflected)
		fmt.Fprintf(rw, "epimotion_containment_corrections{world=%q,kind=%q} %d\n", id, "repelled", m.Repelled)

		fmt.Fprintf(rw, "# HELP epimotion_walk_resampled_total Random-walk resamples since start.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_walk_resampled_total counter\n")
		fmt.Fprintf(rw, "epimotion_walk_resampled_total{world=%q,column=%q} %d\n", id, "heading_x", m.Walk.HeadingX)
		fmt.Fprintf(rw, "epimotion_walk_resampled_total{world=%q,column=%q} %d\n", id, "heading_y", m.Walk.HeadingY)
		fmt.Fprintf(rw, "epimotion_walk_resampled_total{world=%q,column=%q} %d\n", id, "speed", m.Walk.Speed)

		lockdown := 0
		if m.Lockdown {
			lockdown = 1
		}
		fmt.Fprintf(rw, "# HELP epimotion_world_lockdown Whether the last tick ran under lockdown.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_world_lockdown gauge\n")
		fmt.Fprintf(rw, "epimotion_world_lockdown{world=%q} %d\n", id, lockdown)
		fmt.Fprintf(rw, "epimotion_world_agents{world=%q,state=%q} %d\n", id, "halted", m.Halted)

		fmt.Fprintf(rw, "# HELP epimotion_observer_frame_errors_total Observer frames dropped because they failed to encode.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_observer_frame_errors_total counter\n")
		fmt.Fprintf(rw, "epimotion_observer_frame_errors_total{world=%q} %d\n", id, m.FrameErrors)

		if idx == nil {
			return
		}
		s := idx.Stats()
		fmt.Fprintf(rw, "# HELP epimotion_index_queue_depth Index writer backlog.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "epimotion_index_queue_depth{world=%q} %d\n", id, s.QueueDepth)

		fmt.Fprintf(rw, "# HELP epimotion_index_dropped_total Index writes dropped under backpressure.\n")
		fmt.Fprintf(rw, "# TYPE epimotion_index_dropped_total counter\n")
		fmt.Fprintf(rw, "epimotion_index_dropped_total{world=%q,kind=%q} %d\n", id, "tick", s.DropTickTotal)
		fmt.Fprintf(rw, "epimotion_index_dropped_total{world=%q,kind=%q} %d\n", id, "snapshot", s.DropSnapshotTotal)
	}
}

func stateHandler(w *world.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		resp := struct {
			WorldID string             `json:"world_id"`
			RunID   string             `json:"run_id"`
			Mode    string             `json:"mode"`
			Tick    uint64             `json:"tick"`
			Metrics world.WorldMetrics `json:"metrics"`
		}{
			WorldID: w.ID(),
			RunID:   w.RunID(),
			Mode:    w.Config().Mode,
			Tick:    w.CurrentTick(),
			Metrics: w.Metrics(),
		}
		writeJSON(rw, http.StatusOK, resp)
	}
}

func snapshotHandler(w *world.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		tick, err := w.RequestSnapshot(ctx)
		if err != nil {
			writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "tick": tick, "error": err.Error()})
			return
		}
		writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "tick": tick})
	}
}

// destinationHandler accepts {"agent":N,"dest":D}; dest 0 returns the agent to roaming.
func destinationHandler(w *world.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		var body struct {
			Agent *int `json:"agent"`
			Dest  *int `json:"dest"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 4096)).Decode(&body); err != nil {
			writeJSON(rw, http.StatusBadRequest, errorf("bad body: %v", err))
			return
		}
		if body.Agent == nil || body.Dest == nil {
			writeJSON(rw, http.StatusBadRequest, errorf("agent and dest are required"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := w.SetDestination(ctx, *body.Agent, *body.Dest); err != nil {
			status := http.StatusBadRequest
			if ctx.Err() != nil {
				status = http.StatusServiceUnavailable
			}
			writeJSON(rw, status, errorf("%v", err))
			return
		}
		writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "agent": *body.Agent, "dest": *body.Dest, "tick": w.CurrentTick()})
	}
}

// lockdownHandler accepts {"on":true|false}; the change applies from the next tick.
func lockdownHandler(w *world.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		var body struct {
			On *bool `json:"on"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 1024)).Decode(&body); err != nil {
			writeJSON(rw, http.StatusBadRequest, errorf("bad body: %v", err))
			return
		}
		if body.On == nil {
			writeJSON(rw, http.StatusBadRequest, errorf("on is required"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := w.SetLockdown(ctx, *body.On); err != nil {
			writeJSON(rw, http.StatusServiceUnavailable, errorf("%v", err))
			return
		}
		writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "lockdown": *body.On, "tick": w.CurrentTick()})
	}
}
