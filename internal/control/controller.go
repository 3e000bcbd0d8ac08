// Package control implements the two agent-coordination strategies behind
// one shared contract.
package control

import (
	"fmt"

	"gridsweep/internal/agent"
	"gridsweep/internal/avoid"
	"gridsweep/internal/diag"
	"gridsweep/internal/goal"
	"gridsweep/internal/grid"
	"gridsweep/internal/model"
	"gridsweep/internal/planner"
)

// Controller is the contract both strategies implement. The driver calls
// Tick repeatedly and stops on Finished; Finished never mutates state, so
// it is idempotent between ticks.
type Controller interface {
	Tick() error
	AgentLocations() map[model.AgentKind]model.Point
	Finished() bool
	fmt.Stringer
}

// LoadReporter exposes the garbage collector's load for invariant checks.
// Both controllers implement it.
type LoadReporter interface {
	GarbageLoad() (load, capacity int)
}

// core carries the state shared by both strategies: the owned grid handle,
// one state record and behavior per kind, and the decision helpers.
type core struct {
	grid     *grid.Grid
	sel      goal.Selector
	avoider  *avoid.Avoider
	sink     diag.Sink
	agents   map[model.AgentKind]*agent.State
	behavior map[model.AgentKind]agent.Behavior
}

func newCore(g *grid.Grid, starts map[model.AgentKind]model.Point, avoider *avoid.Avoider, sink diag.Sink) (*core, error) {
	if g == nil {
		return nil, fmt.Errorf("control: grid is required")
	}
	if avoider == nil {
		return nil, fmt.Errorf("control: avoider is required")
	}
	if sink == nil {
		sink = diag.Nop()
	}
	c := &core{
		grid:     g,
		avoider:  avoider,
		sink:     sink,
		agents:   make(map[model.AgentKind]*agent.State, len(model.Kinds)),
		behavior: make(map[model.AgentKind]agent.Behavior, len(model.Kinds)),
	}
	for _, kind := range model.Kinds {
		pos, ok := starts[kind]
		if !ok {
			return nil, fmt.Errorf("control: missing start position for %v", kind)
		}
		if !g.Walkable(pos) {
			return nil, fmt.Errorf("control: %v start %v is not walkable", kind, pos)
		}
		b, err := agent.ForKind(kind)
		if err != nil {
			return nil, err
		}
		c.agents[kind] = agent.NewState(kind, pos)
		c.behavior[kind] = b
	}
	return c, nil
}

func (c *core) AgentLocations() map[model.AgentKind]model.Point {
	out := make(map[model.AgentKind]model.Point, len(c.agents))
	for kind, s := range c.agents {
		out[kind] = s.Pos
	}
	return out
}

func (c *core) GarbageLoad() (int, int) {
	s := c.agents[model.Garbage]
	return s.Load, s.Capacity
}

// neighbors returns every other agent's position and priority, as seen by
// the given kind. Positions reflect moves already committed this tick.
func (c *core) neighbors(kind model.AgentKind) []avoid.Neighbor {
	out := make([]avoid.Neighbor, 0, len(c.agents)-1)
	for other, s := range c.agents {
		if other == kind {
			continue
		}
		out = append(out, avoid.Neighbor{Pos: s.Pos, Priority: c.behavior[other].Priority(s)})
	}
	return out
}

// goalStillValid revalidates a cached goal against the live grid. External
// edits may repaint any cell between ticks, so a goal is only trusted if
// its cell still holds something the agent wants.
func (c *core) goalStillValid(s *agent.State) bool {
	if !s.HasGoal {
		return false
	}
	cell := c.grid.CellAt(s.Goal)
	for _, want := range c.behavior[s.Kind].Affinity() {
		if cell == want {
			return true
		}
	}
	return s.Kind == model.Garbage && cell == model.Bin
}

// agentsIdle reports the agent-side view of completion: no pending goals
// and an empty garbage load.
func (c *core) agentsIdle() bool {
	for _, s := range c.agents {
		if s.HasGoal {
			return false
		}
	}
	load, _ := c.GarbageLoad()
	return load == 0
}

// finished corroborates the agent-reported idle state with an independent
// grid scan. Idle agents with hazards still on the grid are legitimate
// when every remaining hazard is walled off; a reachable hazard next to
// idle agents is a controller bookkeeping defect and is reported rather
// than silently accepted.
func (c *core) finished() bool {
	if !c.agentsIdle() {
		return false
	}
	remaining := c.grid.HazardsRemaining()
	if remaining == 0 {
		return true
	}
	if c.reachableHazardExists() {
		c.sink.Logf("finished cross-check mismatch: agents idle but %d hazard cells remain", remaining)
	}
	return false
}

// reachableHazardExists reports whether any remaining hazard can be
// reached by the kind responsible for clearing it.
func (c *core) reachableHazardExists() bool {
	for _, kind := range model.Kinds {
		s := c.agents[kind]
		for _, p := range c.grid.CellsOf(c.behavior[kind].Affinity()...) {
			if _, err := planner.FindPath(c.grid, s.Pos, p); err == nil {
				return true
			}
		}
	}
	return false
}

func (c *core) describeAgents() string {
	out := ""
	for i, kind := range model.Kinds {
		if i > 0 {
			out += ", "
		}
		out += c.agents[kind].String()
	}
	return out
}
