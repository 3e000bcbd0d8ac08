package model

import "fmt"

// Cell is the contamination/structural state of one grid square.
type Cell uint8

const (
	Empty Cell = iota
	DryTrash
	WetTrash
	Dusty
	Soaked
	Bin
	Wall
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case DryTrash:
		return "drytrash"
	case WetTrash:
		return "wettrash"
	case Dusty:
		return "dusty"
	case Soaked:
		return "soaked"
	case Bin:
		return "bin"
	case Wall:
		return "wall"
	default:
		return fmt.Sprintf("cell(%d)", uint8(c))
	}
}

// Hazard reports whether the cell still needs an agent's attention.
func (c Cell) Hazard() bool {
	switch c {
	case DryTrash, WetTrash, Dusty, Soaked:
		return true
	default:
		return false
	}
}

// AgentKind identifies one of the three cleanup agents.
type AgentKind uint8

const (
	Garbage AgentKind = iota
	Vacuum
	Mop
)

// Kinds lists every agent kind in tick order. The order is behaviorally
// significant: decentralized agents are stepped in this sequence so that
// each collision check sees the already-committed positions of earlier
// agents in the same tick.
var Kinds = []AgentKind{Garbage, Vacuum, Mop}

func (k AgentKind) String() string {
	switch k {
	case Garbage:
		return "garbage"
	case Vacuum:
		return "vacuum"
	case Mop:
		return "mop"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Point is a grid coordinate, row-major.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// ManhattanDistance between two points.
func ManhattanDistance(a, b Point) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Move is one discrete unit step.
type Move uint8

const (
	Up Move = iota
	Down
	Left
	Right
	Stay
)

// Moves is the fixed neighbor expansion order used by the planner. Keeping
// it stable makes priority-queue tie-breaks reproducible.
var Moves = []Move{Up, Down, Left, Right}

func (m Move) String() string {
	switch m {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Stay:
		return "stay"
	default:
		return fmt.Sprintf("move(%d)", uint8(m))
	}
}

// Apply returns the point reached by taking the move from p.
func (m Move) Apply(p Point) Point {
	switch m {
	case Up:
		return Point{p.Row - 1, p.Col}
	case Down:
		return Point{p.Row + 1, p.Col}
	case Left:
		return Point{p.Row, p.Col - 1}
	case Right:
		return Point{p.Row, p.Col + 1}
	default:
		return p
	}
}

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the persisted history of one completed (or aborted) run.
type RunRecord struct {
	VersionedRecord
	ID           string `json:"id"`
	CreatedAtUTC string `json:"created_at_utc"`
	Strategy     string `json:"strategy"`
	Seed         int64  `json:"seed"`
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	Ticks        int    `json:"ticks"`
	Finished     bool   `json:"finished"`
	Aborted      bool   `json:"aborted"`
	Violations   int    `json:"violations"`
}
