package world

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync/atomic"

	"github.com/google/uuid"

	"epimotion/internal/persistence/snapshot"
	"epimotion/internal/sim/motion"
)

// Roaming marks an agent without a destination. Only roaming agents are
// subject to containment.
const Roaming = 0

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// DestinationChange assigns agent Agent to destination Dest (Roaming clears it).
type DestinationChange struct {
	Agent int `json:"agent"`
	Dest  int `json:"dest"`
}

type TickLogEntry struct {
	Tick         uint64              `json:"tick"`
	Roaming      int                 `json:"roaming"`
	Reflected    int                 `json:"reflected,omitempty"`
	Repelled     int                 `json:"repelled,omitempty"`
	Walk         motion.WalkStats    `json:"walk"`
	Lockdown     bool                `json:"lockdown,omitempty"`
	Halted       int                 `json:"halted,omitempty"`
	Destinations []DestinationChange `json:"destinations,omitempty"`
	Digest       string              `json:"digest"`
}

type World struct {
	cfg WorldConfig

	tick atomic.Uint64

	agents *motion.Table
	dest   []int

	lockdown bool
	comply   []bool

	pcg *rand.PCG
	rng *rand.Rand

	observers map[string]*observerClient

	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	destination   chan destinationReq
	admin         chan adminSnapshotReq
	lockdownCh    chan lockdownReq
	stop          chan struct{}

	tickLogger   TickLogger
	snapshotSink chan<- snapshot.SnapshotV1
	logger       *log.Logger

	frameErrors uint64

	metrics atomic.Value // WorldMetrics
}

// New takes ownership of agents. All agents start roaming.
func New(cfg WorldConfig, agents *motion.Table) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if agents == nil || agents.Len() == 0 {
		return nil, errors.New("world needs at least one agent")
	}
	if err := agents.Validate(); err != nil {
		return nil, err
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	pcg := motion.NewPCG(cfg.Seed)
	w := &World{
		cfg:           cfg,
		agents:        agents,
		dest:          make([]int, agents.Len()),
		comply:        complianceVector(agents.Len(), cfg.Seed, cfg.LockdownCompliance),
		pcg:           pcg,
		rng:           rand.New(pcg),
		observers:     map[string]*observerClient{},
		observerJoin:  make(chan ObserverJoinRequest, 64),
		observerSub:   make(chan ObserverSubscribeRequest, 64),
		observerLeave: make(chan string, 64),
		destination:   make(chan destinationReq, 256),
		admin:         make(chan adminSnapshotReq, 16),
		lockdownCh:    make(chan lockdownReq, 16),
		stop:          make(chan struct{}),
	}
	w.metrics.Store(WorldMetrics{Agents: agents.Len(), Roaming: agents.Len()})
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

// SetLogger sets where loop-side errors are reported. Nil silences them.
func (w *World) SetLogger(l *log.Logger) { w.logger = l }

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) RunID() string {
	if w == nil {
		return ""
	}
	return w.cfg.RunID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) NumAgents() int { return w.agents.Len() }

// roamingRows lists agents subject to containment, in ascending order.
func (w *World) roamingRows() []int {
	rows := make([]int, 0, len(w.dest))
	for i, d := range w.dest {
		if d == Roaming {
			rows = append(rows, i)
		}
	}
	return rows
}

func (w *World) checkDestination(c DestinationChange) error {
	if c.Agent < 0 || c.Agent >= len(w.dest) {
		return fmt.Errorf("agent %d out of range [0,%d)", c.Agent, len(w.dest))
	}
	if c.Dest < 0 {
		return fmt.Errorf("destination %d must be >= 0", c.Dest)
	}
	return nil
}
