// Package contagion propagates a fraction of one agent's negative affect
// into spatially nearby agents. The neighbor index is recomputed on a
// fixed interval rather than every tick, so propagation may use a slightly
// stale neighbor list; that staleness is an accepted performance tradeoff.
package contagion

import (
	"github.com/kellerdav/classroom-sim/internal/agent"
	"github.com/kellerdav/classroom-sim/internal/emotion"
)

// #region config

// Config holds the contagion tuning knobs.
type Config struct {
	// Radius is the influence distance in seat units.
	Radius float64 `toml:"radius"`
	// RebuildInterval is how often, in simulated seconds, the neighbor
	// index is recomputed.
	RebuildInterval float64 `toml:"rebuild_interval"`
	// FrustrationRate scales the source's frustration into neighbors.
	FrustrationRate float64 `toml:"frustration_rate"`
	// BoredomRate scales the source's boredom into neighbors.
	BoredomRate float64 `toml:"boredom_rate"`
}

// DefaultConfig returns the tuned baseline configuration.
func DefaultConfig() Config {
	return Config{
		Radius:          3.0,
		RebuildInterval: 5.0,
		FrustrationRate: 0.1,
		BoredomRate:     0.05,
	}
}

// #endregion config

// #region model

// Model maintains the neighbor index and applies propagation.
type Model struct {
	config       Config
	neighbors    map[string][]string
	sinceRebuild float64
	built        bool
}

// NewModel creates a contagion model with an empty neighbor index. The
// first Advance call builds it.
func NewModel(config Config) *Model {
	return &Model{
		config:    config,
		neighbors: make(map[string][]string),
	}
}

// Advance accumulates simulated time and rebuilds the neighbor index when
// the rebuild interval elapses. agents must be in stable iteration order
// so the index, and therefore propagation order, is reproducible.
func (m *Model) Advance(dt float64, agents []*agent.Agent) {
	m.sinceRebuild += dt
	if m.built && m.sinceRebuild < m.config.RebuildInterval {
		return
	}
	m.Rebuild(agents)
}

// Rebuild recomputes the neighbor index from current positions. Inactive
// agents are excluded entirely; on-break agents stay in the index because
// break status changes faster than the rebuild cadence, and eligibility is
// re-checked at propagation time.
func (m *Model) Rebuild(agents []*agent.Agent) {
	index := make(map[string][]string, len(agents))
	for _, a := range agents {
		if !a.Active {
			continue
		}
		for _, b := range agents {
			if b == a || !b.Active {
				continue
			}
			if a.Position.DistanceTo(b.Position) <= m.config.Radius {
				index[a.ID] = append(index[a.ID], b.ID)
			}
		}
	}
	m.neighbors = index
	m.sinceRebuild = 0
	m.built = true
}

// Neighbors returns the ids currently indexed as within range of id.
func (m *Model) Neighbors(id string) []string {
	return m.neighbors[id]
}

// #endregion model

// #region propagate

// Propagate nudges every indexed neighbor of source: frustration by
// source.Frustration * FrustrationRate * intensity and boredom by
// source.Boredom * BoredomRate * intensity, clamped after. Agents on break
// neither emit nor receive.
func (m *Model) Propagate(source *agent.Agent, intensity float64, lookup func(id string) *agent.Agent) {
	if intensity <= 0 || !source.Participating() {
		return
	}
	delta := emotion.Delta{
		Frustration: source.Emotion.Frustration * m.config.FrustrationRate * intensity,
		Boredom:     source.Emotion.Boredom * m.config.BoredomRate * intensity,
	}
	for _, id := range m.neighbors[source.ID] {
		neighbor := lookup(id)
		if neighbor == nil || !neighbor.Participating() {
			continue
		}
		neighbor.Emotion.Apply(delta)
	}
}

// #endregion propagate
