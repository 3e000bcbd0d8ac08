package grid

import (
	"fmt"
	"strings"

	"gridsweep/internal/model"
)

// Grid owns the 2D cell-state array. It is exclusively owned by the
// simulation core for a run's duration; callers may read between ticks and
// may paint cells out of band via SetCell, after which controllers must
// revalidate any cached goal.
type Grid struct {
	rows  int
	cols  int
	cells []model.Cell
}

// New returns an all-Empty grid of the given dimensions.
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]model.Cell, rows*cols),
	}, nil
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p model.Point) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// Walkable reports whether an agent may occupy p.
func (g *Grid) Walkable(p model.Point) bool {
	return g.InBounds(p) && g.CellAt(p) != model.Wall
}

// CellAt returns the cell state at p. Out-of-bounds reads return Wall so
// that callers treat the boundary like an obstacle.
func (g *Grid) CellAt(p model.Point) model.Cell {
	if !g.InBounds(p) {
		return model.Wall
	}
	return g.cells[p.Row*g.cols+p.Col]
}

// SetCell overwrites the cell at p. This is the external paint/edit entry
// point; it is not subject to the cleanup rules.
func (g *Grid) SetCell(p model.Point, c model.Cell) error {
	if !g.InBounds(p) {
		return fmt.Errorf("set cell %v: outside %dx%d grid", p, g.rows, g.cols)
	}
	g.cells[p.Row*g.cols+p.Col] = c
	return nil
}

// CleanUp applies the acting kind's cleanup rule to the cell at p and
// returns the resulting cell state. A Garbage visit bags trash, leaving
// residue behind: DryTrash becomes Dusty and WetTrash becomes Soaked.
// Vacuum clears Dusty and Mop clears Soaked to Empty. Wall and Bin are
// never overwritten. Mutation is immediate and visible to every agent
// within the same tick.
func (g *Grid) CleanUp(p model.Point, kind model.AgentKind) model.Cell {
	cur := g.CellAt(p)
	switch cur {
	case model.Wall, model.Bin:
		return cur
	}
	var next model.Cell
	switch {
	case kind == model.Garbage && cur == model.DryTrash:
		next = model.Dusty
	case kind == model.Garbage && cur == model.WetTrash:
		next = model.Soaked
	case kind == model.Vacuum && cur == model.Dusty:
		next = model.Empty
	case kind == model.Mop && cur == model.Soaked:
		next = model.Empty
	default:
		return cur
	}
	g.cells[p.Row*g.cols+p.Col] = next
	return next
}

// Count returns how many cells currently hold any of the given states.
func (g *Grid) Count(states ...model.Cell) int {
	n := 0
	for _, c := range g.cells {
		for _, s := range states {
			if c == s {
				n++
				break
			}
		}
	}
	return n
}

// HasAny reports whether at least one cell holds any of the given states.
func (g *Grid) HasAny(states ...model.Cell) bool {
	for _, c := range g.cells {
		for _, s := range states {
			if c == s {
				return true
			}
		}
	}
	return false
}

// HazardsRemaining counts every cell that still needs cleanup.
func (g *Grid) HazardsRemaining() int {
	n := 0
	for _, c := range g.cells {
		if c.Hazard() {
			n++
		}
	}
	return n
}

// CellsOf returns the coordinates of every cell holding any of the given
// states, in row-major order.
func (g *Grid) CellsOf(states ...model.Cell) []model.Point {
	var out []model.Point
	for i, c := range g.cells {
		for _, s := range states {
			if c == s {
				out = append(out, model.Point{Row: i / g.cols, Col: i % g.cols})
				break
			}
		}
	}
	return out
}

// Snapshot returns a copy of the cell array, row-major.
func (g *Grid) Snapshot() []model.Cell {
	out := make([]model.Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// String renders the grid one row per line, used in diagnostics.
func (g *Grid) String() string {
	glyphs := map[model.Cell]byte{
		model.Empty:    '.',
		model.DryTrash: 'd',
		model.WetTrash: 'w',
		model.Dusty:    'u',
		model.Soaked:   's',
		model.Bin:      'B',
		model.Wall:     '#',
	}
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			b.WriteByte(glyphs[g.cells[r*g.cols+c]])
		}
		if r < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
