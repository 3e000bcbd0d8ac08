// Package goal chooses the target cell an agent should pursue.
package goal

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"gridsweep/internal/grid"
	"gridsweep/internal/model"
)

// DefaultDispersionWeight balances closeness against cluster-core bias in
// BestCell. A weight above 1 lets hull depth outweigh a short distance
// advantage, which is what keeps an agent from bouncing between two
// equally-far boundary outliers.
const DefaultDispersionWeight = 2.0

// Selector picks target cells from the live grid. The zero value uses the
// default dispersion weight.
type Selector struct {
	// DispersionWeight scales the hull-boundary-distance bonus.
	DispersionWeight float64
}

func (s Selector) weight() float64 {
	if s.DispersionWeight == 0 {
		return DefaultDispersionWeight
	}
	return s.DispersionWeight
}

// Nearest returns the closest cell holding any of the given states,
// searching outward by Manhattan radius.
func (s Selector) Nearest(g *grid.Grid, from model.Point, states ...model.Cell) (model.Point, bool) {
	return ringSearch(g.Rows(), g.Cols(), from, func(p model.Point) bool {
		c := g.CellAt(p)
		for _, want := range states {
			if c == want {
				return true
			}
		}
		return false
	})
}

// BestCell returns the matching cell minimizing Manhattan distance minus a
// dispersion bonus: cells deep inside the convex hull of all matching
// cells score better than hull-boundary outliers, so an agent commits to
// the core of a cluster instead of oscillating between two equally-far
// extremes. With fewer than three matching cells (or a collinear set)
// there is no hull interior and selection degrades to plain nearest.
func (s Selector) BestCell(g *grid.Grid, from model.Point, states ...model.Cell) (model.Point, bool) {
	candidates := g.CellsOf(states...)
	if len(candidates) == 0 {
		return model.Point{}, false
	}

	pts := make([]orb.Point, len(candidates))
	for i, p := range candidates {
		pts[i] = orb.Point{float64(p.Col), float64(p.Row)}
	}
	hull := convexHull(pts)
	if hull == nil {
		return s.Nearest(g, from, states...)
	}

	best := candidates[0]
	bestScore := s.score(hull, from, best)
	for _, p := range candidates[1:] {
		if sc := s.score(hull, from, p); sc < bestScore {
			best, bestScore = p, sc
		}
	}
	return best, true
}

func (s Selector) score(hull orb.LineString, from, cell model.Point) float64 {
	boundary := planar.DistanceFrom(hull, orb.Point{float64(cell.Col), float64(cell.Row)})
	return float64(model.ManhattanDistance(from, cell)) - s.weight()*boundary
}

// GarbageGoal applies the garbage collector's target policy: collect the
// best trash cell while below capacity, head for the nearest bin once
// full, and make a final bin trip when trash is exhausted but a load is
// still carried. Returns false when there is nothing left to do.
func (s Selector) GarbageGoal(g *grid.Grid, from model.Point, load, capacity int) (model.Point, bool) {
	trashLeft := g.HasAny(model.DryTrash, model.WetTrash)
	switch {
	case load >= capacity:
		return s.Nearest(g, from, model.Bin)
	case !trashLeft && load > 0:
		return s.Nearest(g, from, model.Bin)
	case !trashLeft:
		return model.Point{}, false
	default:
		return s.BestCell(g, from, model.DryTrash, model.WetTrash)
	}
}

// KindGoal returns the target for a vacuum or mop agent. Garbage agents
// go through GarbageGoal instead, since their target depends on load.
func (s Selector) KindGoal(g *grid.Grid, from model.Point, kind model.AgentKind) (model.Point, bool) {
	switch kind {
	case model.Vacuum:
		return s.BestCell(g, from, model.Dusty)
	case model.Mop:
		return s.BestCell(g, from, model.Soaked)
	default:
		return model.Point{}, false
	}
}
