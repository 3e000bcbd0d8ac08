// Package agent defines per-kind cleanup behavior and mutable agent state.
package agent

import (
	"fmt"

	"gridsweep/internal/goal"
	"gridsweep/internal/grid"
	"gridsweep/internal/model"
)

// DefaultCapacity is the garbage collector's on-board trash limit.
const DefaultCapacity = 5

// State is the mutable per-agent record for one run. Agents hold only
// coordinates and bookkeeping, never grid ownership.
type State struct {
	Kind     model.AgentKind
	Pos      model.Point
	Goal     model.Point
	HasGoal  bool
	Load     int
	Capacity int
}

func (s *State) SetGoal(p model.Point) {
	s.Goal = p
	s.HasGoal = true
}

func (s *State) ClearGoal() {
	s.Goal = model.Point{}
	s.HasGoal = false
}

func (s *State) String() string {
	desc := fmt.Sprintf("%s at %s", s.Kind, s.Pos)
	if s.Kind == model.Garbage {
		desc += fmt.Sprintf(" (%d/%d)", s.Load, s.Capacity)
	}
	if s.HasGoal {
		desc += fmt.Sprintf(" -> %s", s.Goal)
	}
	return desc
}

// Behavior is the per-kind contract: what the kind targets, how urgent it
// is, and what happens when it stands on a cell.
type Behavior interface {
	Kind() model.AgentKind
	// Affinity lists the hazard states this kind neutralizes.
	Affinity() []model.Cell
	// Priority feeds the collision-avoidance discount.
	Priority(s *State) int
	// SelectGoal picks a fresh target, false when the kind has no work.
	SelectGoal(g *grid.Grid, sel goal.Selector, s *State) (model.Point, bool)
	// CleanUp applies the kind's rule at the agent's position and returns
	// whether the cell changed.
	CleanUp(g *grid.Grid, s *State) bool
}

// ForKind returns the behavior implementation for an agent kind.
func ForKind(kind model.AgentKind) (Behavior, error) {
	switch kind {
	case model.Garbage:
		return garbageBehavior{}, nil
	case model.Vacuum:
		return vacuumBehavior{}, nil
	case model.Mop:
		return mopBehavior{}, nil
	default:
		return nil, fmt.Errorf("agent: unknown kind %v", kind)
	}
}

// NewState builds the initial state for a kind at a position.
func NewState(kind model.AgentKind, pos model.Point) *State {
	s := &State{Kind: kind, Pos: pos}
	if kind == model.Garbage {
		s.Capacity = DefaultCapacity
	}
	return s
}

type garbageBehavior struct{}

func (garbageBehavior) Kind() model.AgentKind { return model.Garbage }

func (garbageBehavior) Affinity() []model.Cell {
	return []model.Cell{model.DryTrash, model.WetTrash}
}

// A full load makes the collector urgent: neighbors owe it less evasion
// and clear its path to the bin.
func (garbageBehavior) Priority(s *State) int {
	if s.Load >= s.Capacity {
		return 2
	}
	return 1
}

func (garbageBehavior) SelectGoal(g *grid.Grid, sel goal.Selector, s *State) (model.Point, bool) {
	return sel.GarbageGoal(g, s.Pos, s.Load, s.Capacity)
}

func (garbageBehavior) CleanUp(g *grid.Grid, s *State) bool {
	if g.CellAt(s.Pos) == model.Bin {
		emptied := s.Load > 0
		s.Load = 0
		return emptied
	}
	// At capacity nothing more can be bagged until a bin trip empties the
	// load, even when standing on trash.
	if s.Load >= s.Capacity {
		return false
	}
	before := g.CellAt(s.Pos)
	after := g.CleanUp(s.Pos, model.Garbage)
	if after != before {
		s.Load++
		return true
	}
	return false
}

type vacuumBehavior struct{}

func (vacuumBehavior) Kind() model.AgentKind   { return model.Vacuum }
func (vacuumBehavior) Affinity() []model.Cell  { return []model.Cell{model.Dusty} }
func (vacuumBehavior) Priority(*State) int     { return 0 }

func (vacuumBehavior) SelectGoal(g *grid.Grid, sel goal.Selector, s *State) (model.Point, bool) {
	return sel.KindGoal(g, s.Pos, model.Vacuum)
}

func (vacuumBehavior) CleanUp(g *grid.Grid, s *State) bool {
	before := g.CellAt(s.Pos)
	return g.CleanUp(s.Pos, model.Vacuum) != before
}

type mopBehavior struct{}

func (mopBehavior) Kind() model.AgentKind  { return model.Mop }
func (mopBehavior) Affinity() []model.Cell { return []model.Cell{model.Soaked} }
func (mopBehavior) Priority(*State) int    { return 0 }

func (mopBehavior) SelectGoal(g *grid.Grid, sel goal.Selector, s *State) (model.Point, bool) {
	return sel.KindGoal(g, s.Pos, model.Mop)
}

func (mopBehavior) CleanUp(g *grid.Grid, s *State) bool {
	before := g.CellAt(s.Pos)
	return g.CleanUp(s.Pos, model.Mop) != before
}
