package agent

import (
	"fmt"
	"math/rand"

	"gridsweep/internal/grid"
	"gridsweep/internal/model"
)

// StartPositions places one agent of each kind on the grid. With
// randomize set, each agent lands on a random cell matching its hazard
// affinity when one exists; otherwise (and by default) agents take the
// first walkable cells scanning from distinct corners, so they never
// start stacked.
func StartPositions(g *grid.Grid, rng *rand.Rand, randomize bool) (map[model.AgentKind]model.Point, error) {
	out := make(map[model.AgentKind]model.Point, len(model.Kinds))
	taken := make(map[model.Point]bool)

	for _, kind := range model.Kinds {
		var pos model.Point
		var ok bool
		if randomize {
			pos, ok = randomAffinityCell(g, rng, kind, taken)
		}
		if !ok {
			pos, ok = cornerScan(g, kind, taken)
		}
		if !ok {
			return nil, fmt.Errorf("agent: no free walkable start cell for %v", kind)
		}
		out[kind] = pos
		taken[pos] = true
	}
	return out, nil
}

func randomAffinityCell(g *grid.Grid, rng *rand.Rand, kind model.AgentKind, taken map[model.Point]bool) (model.Point, bool) {
	behavior, err := ForKind(kind)
	if err != nil {
		return model.Point{}, false
	}
	cells := g.CellsOf(behavior.Affinity()...)
	free := cells[:0]
	for _, p := range cells {
		if !taken[p] {
			free = append(free, p)
		}
	}
	if len(free) == 0 {
		return model.Point{}, false
	}
	return free[rng.Intn(len(free))], true
}

// cornerScan walks the grid row-major from a per-kind corner so default
// placements are deterministic and distinct.
func cornerScan(g *grid.Grid, kind model.AgentKind, taken map[model.Point]bool) (model.Point, bool) {
	rows, cols := g.Rows(), g.Cols()
	for i := 0; i < rows*cols; i++ {
		r, c := i/cols, i%cols
		var p model.Point
		switch kind {
		case model.Garbage:
			p = model.Point{Row: r, Col: c}
		case model.Vacuum:
			p = model.Point{Row: r, Col: cols - 1 - c}
		case model.Mop:
			p = model.Point{Row: rows - 1 - r, Col: c}
		}
		if g.Walkable(p) && !taken[p] {
			return p, true
		}
	}
	return model.Point{}, false
}
