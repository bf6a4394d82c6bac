package layout

import (
	"math"
	"math/rand"

	"github.com/psidex/chargraph/internal/graph"
)

const (
	initialRadius = 10
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Simulation is a velocity Verlet style integrator with a cooling alpha. It
// writes Node.Layout and nothing else. Every link endpoint must be bound to
// one of the simulated nodes.
type Simulation struct {
	nodes         []*graph.Node
	forces        []force
	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	rnd           *rand.Rand
}

// NewSimulation places unplaced nodes on a phyllotaxis spiral, clears all
// velocities and starts at alpha 1.
func NewSimulation(cfg Config, nodes []*graph.Node, links []*graph.Link) *Simulation {
	s := &Simulation{
		nodes:         nodes,
		alpha:         1,
		alphaMin:      cfg.AlphaMin,
		alphaDecay:    cfg.AlphaDecay,
		velocityDecay: 1 - cfg.VelocityDecay,
		rnd:           rand.New(rand.NewSource(cfg.Seed)),
	}

	for i, n := range nodes {
		l := &n.Layout
		if !l.Fixed && l.X == 0 && l.Y == 0 {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			l.X = r * math.Cos(a)
			l.Y = r * math.Sin(a)
		}
		l.VX, l.VY = 0, 0
	}

	radii := make([]float64, len(nodes))
	for i, n := range nodes {
		radii[i] = cfg.CollisionRadius(n)
	}

	s.forces = []force{
		newLinkForce(cfg, links, s.jiggle),
		&manyBody{
			nodes:        nodes,
			strength:     cfg.Charge,
			distanceMin2: 1,
			distanceMax2: cfg.ChargeDistanceMax * cfg.ChargeDistanceMax,
			jiggle:       s.jiggle,
		},
		&collide{nodes: nodes, radii: radii, iterations: cfg.CollideIterations, jiggle: s.jiggle},
		&center{nodes: nodes},
	}
	return s
}

func (s *Simulation) jiggle() float64 {
	return (s.rnd.Float64() - 0.5) * 1e-6
}

// Alpha is the current temperature.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// Cold reports whether alpha fell below the configured minimum.
func (s *Simulation) Cold() bool {
	return s.alpha < s.alphaMin
}

// Tick cools alpha, applies every force once and integrates positions.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, f := range s.forces {
		f.apply(s.alpha)
	}

	for _, n := range s.nodes {
		l := &n.Layout
		if l.Fixed {
			l.VX, l.VY = 0, 0
			continue
		}
		l.VX *= s.velocityDecay
		l.VY *= s.velocityDecay
		l.X += l.VX
		l.Y += l.VY
	}
}
