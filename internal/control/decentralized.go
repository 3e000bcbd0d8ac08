package control

import (
	"fmt"

	"gridsweep/internal/avoid"
	"gridsweep/internal/diag"
	"gridsweep/internal/grid"
	"gridsweep/internal/model"
)

// Decentralized lets each agent choose only its next single step every
// tick, with no shared plan. A goal persists across ticks until reached,
// then clears. Agents step in the fixed Garbage, Vacuum, Mop order so each
// collision check sees the already-updated positions of agents stepped
// earlier in the same tick; reordering would change collision outcomes.
type Decentralized struct {
	*core
}

func NewDecentralized(g *grid.Grid, starts map[model.AgentKind]model.Point, avoider *avoid.Avoider, sink diag.Sink) (*Decentralized, error) {
	c, err := newCore(g, starts, avoider, sink)
	if err != nil {
		return nil, err
	}
	return &Decentralized{core: c}, nil
}

func (d *Decentralized) Tick() error {
	for _, kind := range model.Kinds {
		d.tickAgent(kind)
	}
	return nil
}

func (d *Decentralized) tickAgent(kind model.AgentKind) {
	s := d.agents[kind]
	b := d.behavior[kind]

	// External edits may have repainted the goal cell since last tick.
	if !d.goalStillValid(s) {
		s.ClearGoal()
	}
	if !s.HasGoal {
		if p, ok := b.SelectGoal(d.grid, d.sel, s); ok {
			s.SetGoal(p)
		}
	}

	others := d.neighbors(kind)

	if !s.HasGoal {
		// Idle agents give way to working neighbors.
		if m, ok := d.avoider.Evade(d.grid, s.Pos, others); ok {
			s.Pos = m.Apply(s.Pos)
		}
		return
	}

	if s.Pos != s.Goal {
		if avoid.Separation(s.Pos, others) <= 1 {
			if m, ok := d.avoider.Evade(d.grid, s.Pos, others); ok {
				s.Pos = m.Apply(s.Pos)
				return
			}
		}
		if m, ok := d.avoider.SafestToward(d.grid, s.Pos, s.Goal, others); ok {
			s.Pos = m.Apply(s.Pos)
		}
	}

	if s.Pos == s.Goal {
		b.CleanUp(d.grid, s)
		if s.Kind == model.Garbage && s.Load > s.Capacity {
			d.sink.Logf("load overflow: garbage carries %d of %d", s.Load, s.Capacity)
		}
		s.ClearGoal()
	}
}

func (d *Decentralized) Finished() bool {
	return d.finished()
}

func (d *Decentralized) String() string {
	return fmt.Sprintf("decentralized controller: %s", d.describeAgents())
}
