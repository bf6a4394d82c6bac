package layout

import (
	"log/slog"
	"time"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/lib"
)

type Phase int

const (
	// Idle means no graph has been configured yet.
	Idle Phase = iota
	// Cooling means warmup has run and the engine ticks once per Step.
	Cooling
	// Stopped means the cooldown budget ran out or the layout went cold.
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Cooling:
		return "cooling"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Engine owns the simulation lifecycle for one graph at a time. It is driven
// by a single frame loop and is not safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	graph        *graph.Graph
	sim          *Simulation
	nodes        []*graph.Node
	placeholders map[string]*graph.Node
	dangling     []string

	phase   Phase
	ticks   int
	started time.Time
	onStop  func()

	// warned persists across loads so a recurring data problem is logged once.
	warned lib.Set[string]
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		warned: lib.NewSet[string](),
	}
}

// OnStop registers fn to run once each time the engine stops.
func (e *Engine) OnStop(fn func()) {
	e.onStop = fn
}

// Configure hands g to the simulation. A different graph pointer re-heats it:
// endpoints are bound in place, velocities and alpha are reset and the warmup
// ticks run before Configure returns. The same pointer is a no-op and returns
// false.
func (e *Engine) Configure(g *graph.Graph, now time.Time) bool {
	if g == e.graph {
		return false
	}
	e.graph = g
	e.phase = Idle
	e.sim = nil
	e.nodes = nil
	e.placeholders = nil
	e.dangling = nil
	if g == nil {
		return true
	}

	e.dangling = g.Resolve()
	e.nodes = append(make([]*graph.Node, 0, len(g.Nodes)+len(e.dangling)), g.Nodes...)
	if len(e.dangling) > 0 {
		e.placeholders = make(map[string]*graph.Node, len(e.dangling))
		for _, id := range e.dangling {
			n := &graph.Node{ID: id}
			e.placeholders[id] = n
			e.nodes = append(e.nodes, n)
			if e.warned.AddNew(id) {
				e.logger.Warn("link references unknown character, drawing a placeholder", "id", id)
			}
		}
	}

	links := make([]*graph.Link, 0, len(g.Links))
	for _, l := range g.Links {
		shadow := &graph.Link{Source: l.Source, Target: l.Target, Count: l.Count}
		for _, ep := range []*graph.Endpoint{&shadow.Source, &shadow.Target} {
			if !ep.Bound() {
				ep.Bind(e.placeholders[ep.ID()])
			}
		}
		links = append(links, shadow)
	}

	e.sim = NewSimulation(e.cfg, e.nodes, links)
	for i := 0; i < e.cfg.WarmupTicks && !e.sim.Cold(); i++ {
		e.sim.Tick()
	}
	e.logger.Debug("layout warmed up", "nodes", len(e.nodes), "links", len(links), "alpha", e.sim.Alpha())

	e.phase = Cooling
	e.ticks = 0
	e.started = now
	return true
}

// Step advances the simulation by at most one tick. It returns true while
// the layout is still moving.
func (e *Engine) Step(now time.Time) bool {
	if e.phase != Cooling {
		return false
	}
	if e.exhausted(now) {
		e.stop()
		return false
	}
	e.sim.Tick()
	e.ticks++
	return true
}

func (e *Engine) exhausted(now time.Time) bool {
	if e.cfg.CooldownTicks >= 0 && e.ticks >= e.cfg.CooldownTicks {
		return true
	}
	if e.cfg.CooldownTime.Duration >= 0 && now.Sub(e.started) >= e.cfg.CooldownTime.Duration {
		return true
	}
	return e.sim.Cold()
}

func (e *Engine) stop() {
	e.phase = Stopped
	e.logger.Debug("layout stopped", "ticks", e.ticks, "alpha", e.sim.Alpha())
	if e.onStop != nil {
		e.onStop()
	}
}

func (e *Engine) Phase() Phase {
	return e.phase
}

// Graph returns the configured graph.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Nodes lists every simulated node: the graph's own followed by placeholders
// for dangling ids. Placeholders are never added to the graph.
func (e *Engine) Nodes() []*graph.Node {
	return e.nodes
}

// Node looks id up among the simulated nodes, placeholders included.
func (e *Engine) Node(id string) *graph.Node {
	if e.graph == nil {
		return nil
	}
	if n := e.graph.NodeByID(id); n != nil {
		return n
	}
	return e.placeholders[id]
}

// Dangling returns the ids referenced by links but missing from the nodes.
func (e *Engine) Dangling() []string {
	return e.dangling
}

// Alpha is the simulation temperature, or 0 before Configure.
func (e *Engine) Alpha() float64 {
	if e.sim == nil {
		return 0
	}
	return e.sim.Alpha()
}
