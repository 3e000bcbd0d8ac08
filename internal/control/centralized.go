package control

import (
	"errors"
	"fmt"

	"gridsweep/internal/agent"
	"gridsweep/internal/avoid"
	"gridsweep/internal/diag"
	"gridsweep/internal/grid"
	"gridsweep/internal/model"
	"gridsweep/internal/planner"
)

type garbagePhase uint8

const (
	collecting garbagePhase = iota
	returningToBin
)

// Centralized plans a complete A* path per agent per tick and advances
// each agent one step along it. The garbage collector runs a
// Collecting/ReturningToBin state machine: once a bin trip starts the
// agent is committed to it, which keeps the goal from oscillating when
// pickups flip the load across the capacity boundary.
type Centralized struct {
	*core
	plans map[model.AgentKind][]model.Move
	phase garbagePhase
}

func NewCentralized(g *grid.Grid, starts map[model.AgentKind]model.Point, avoider *avoid.Avoider, sink diag.Sink) (*Centralized, error) {
	c, err := newCore(g, starts, avoider, sink)
	if err != nil {
		return nil, err
	}
	return &Centralized{
		core:  c,
		plans: make(map[model.AgentKind][]model.Move, len(model.Kinds)),
	}, nil
}

func (c *Centralized) Tick() error {
	for _, kind := range model.Kinds {
		c.tickAgent(kind)
	}
	return nil
}

func (c *Centralized) tickAgent(kind model.AgentKind) {
	s := c.agents[kind]
	b := c.behavior[kind]

	if kind == model.Garbage {
		c.updateGarbagePhase(s)
	}

	// A committed bin trip keeps its plan; everyone else re-selects the
	// best goal and replans from scratch.
	committed := kind == model.Garbage &&
		c.phase == returningToBin &&
		c.goalStillValid(s) &&
		len(c.plans[kind]) > 0
	if !committed {
		c.replan(kind, s, b)
	}

	if !s.HasGoal {
		// Idle agents give way so they cannot pin another agent's
		// shortest path: a parked blocker would otherwise force the
		// blocked agent into an evade/replan cycle forever.
		if m, ok := c.avoider.Evade(c.grid, s.Pos, c.neighbors(kind)); ok {
			s.Pos = m.Apply(s.Pos)
		}
		return
	}

	c.advance(kind, s)

	b.CleanUp(c.grid, s)
	if s.HasGoal && s.Pos == s.Goal {
		s.ClearGoal()
		c.plans[kind] = nil
	}
	if kind == model.Garbage {
		if s.Load > s.Capacity {
			c.sink.Logf("load overflow: garbage carries %d of %d", s.Load, s.Capacity)
		}
		c.updateGarbagePhase(s)
	}
}

func (c *Centralized) replan(kind model.AgentKind, s *agent.State, b agent.Behavior) {
	c.plans[kind] = nil
	if p, ok := b.SelectGoal(c.grid, c.sel, s); ok {
		s.SetGoal(p)
	} else {
		s.ClearGoal()
		return
	}
	path, err := planner.FindPath(c.grid, s.Pos, s.Goal)
	if err != nil {
		if errors.Is(err, planner.ErrUnreachable) {
			// Recovered locally: drop the goal and re-select next tick.
			c.sink.Logf("planning failure: %v goal %v unreachable from %v", kind, s.Goal, s.Pos)
			s.ClearGoal()
			return
		}
		c.sink.Logf("planning error for %v: %v", kind, err)
		s.ClearGoal()
		return
	}
	c.plans[kind] = path
}

// advance moves the agent one step along its plan, or sidesteps when the
// planned cell is occupied by an agent moved earlier this tick.
func (c *Centralized) advance(kind model.AgentKind, s *agent.State) {
	plan := c.plans[kind]
	if len(plan) == 0 {
		return
	}
	next := plan[0].Apply(s.Pos)
	if c.occupiedByOther(kind, next) {
		// Sidestep without giving up progress toward the goal. The
		// detour invalidates the plan; replanning happens next tick.
		if m, ok := c.avoider.SafestToward(c.grid, s.Pos, s.Goal, c.neighbors(kind)); ok {
			s.Pos = m.Apply(s.Pos)
		}
		c.plans[kind] = nil
		return
	}
	s.Pos = next
	c.plans[kind] = plan[1:]
}

func (c *Centralized) occupiedByOther(kind model.AgentKind, p model.Point) bool {
	for other, s := range c.agents {
		if other != kind && s.Pos == p {
			return true
		}
	}
	return false
}

func (c *Centralized) updateGarbagePhase(s *agent.State) {
	trashLeft := c.grid.HasAny(model.DryTrash, model.WetTrash)
	switch c.phase {
	case collecting:
		if s.Load >= s.Capacity || (!trashLeft && s.Load > 0) {
			c.phase = returningToBin
			s.ClearGoal()
			c.plans[model.Garbage] = nil
		}
	case returningToBin:
		if s.Load == 0 {
			c.phase = collecting
			s.ClearGoal()
			c.plans[model.Garbage] = nil
		}
	}
}

func (c *Centralized) Finished() bool {
	return c.finished()
}

func (c *Centralized) String() string {
	return fmt.Sprintf("centralized controller: %s", c.describeAgents())
}
