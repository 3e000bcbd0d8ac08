// Package avoid resolves agent-agent proximity conflicts with a
// personal-space heuristic.
package avoid

import (
	"math"
	"math/rand"

	"gridsweep/internal/model"
)

// ComfortableDistance is the separation beyond which an agent stops
// worrying about its neighbors and proceeds toward its goal.
const ComfortableDistance = 6

// Terrain is the walkability view the avoider needs.
type Terrain interface {
	Walkable(model.Point) bool
}

// Neighbor is another agent's position plus its priority. Priority is
// added to the perceived distance: a high-priority neighbor (say, a
// garbage collector carrying a full load) reads as farther away, so other
// agents owe it less evasion and it can push through to its bin.
type Neighbor struct {
	Pos      model.Point
	Priority int
}

// Avoider scores candidate moves by post-move separation. Tie-breaking
// among equally good moves is uniformly random from the injected source,
// so runs reproduce under a fixed seed.
type Avoider struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Avoider {
	return &Avoider{rng: rng}
}

// Separation returns the effective distance from pos to the closest
// neighbor. With no neighbors the separation is unbounded.
func Separation(pos model.Point, others []Neighbor) int {
	min := math.MaxInt / 2
	for _, o := range others {
		if d := model.ManhattanDistance(pos, o.Pos) + o.Priority; d < min {
			min = d
		}
	}
	return min
}

// candidateMoves enumerates staying put plus the four directions, in a
// fixed order so scoring is deterministic up to the random tie-break.
var candidateMoves = []model.Move{model.Stay, model.Up, model.Down, model.Left, model.Right}

type scored struct {
	move model.Move
	sep  int
}

func (a *Avoider) scoreCandidates(t Terrain, pos model.Point, others []Neighbor) []scored {
	out := make([]scored, 0, len(candidateMoves))
	for _, m := range candidateMoves {
		next := m.Apply(pos)
		if m != model.Stay && !t.Walkable(next) {
			continue
		}
		if occupied(next, others) {
			continue
		}
		out = append(out, scored{move: m, sep: Separation(next, others)})
	}
	return out
}

func occupied(p model.Point, others []Neighbor) bool {
	for _, o := range others {
		if o.Pos == p {
			return true
		}
	}
	return false
}

// Evade picks the move maximizing post-move separation. It returns false
// when evasion is unnecessary: the current separation already exceeds
// ComfortableDistance, or there is no admissible move at all.
func (a *Avoider) Evade(t Terrain, pos model.Point, others []Neighbor) (model.Move, bool) {
	if Separation(pos, others) > ComfortableDistance {
		return model.Stay, false
	}
	candidates := a.scoreCandidates(t, pos, others)
	if len(candidates) == 0 {
		return model.Stay, false
	}
	best := candidates[0].sep
	for _, c := range candidates[1:] {
		if c.sep > best {
			best = c.sep
		}
	}
	var ties []model.Move
	for _, c := range candidates {
		if c.sep == best {
			ties = append(ties, c.move)
		}
	}
	return a.pick(ties), true
}

// SafestToward picks the admissible move that makes the most progress
// toward goal, breaking distance ties by separation (then randomly).
// Used by the decentralized controller for its single-step decisions.
func (a *Avoider) SafestToward(t Terrain, pos, goal model.Point, others []Neighbor) (model.Move, bool) {
	candidates := a.scoreCandidates(t, pos, others)
	if len(candidates) == 0 {
		return model.Stay, false
	}
	bestDist := math.MaxInt / 2
	for _, c := range candidates {
		if d := model.ManhattanDistance(c.move.Apply(pos), goal); d < bestDist {
			bestDist = d
		}
	}
	bestSep := math.MinInt / 2
	for _, c := range candidates {
		if model.ManhattanDistance(c.move.Apply(pos), goal) != bestDist {
			continue
		}
		if c.sep > bestSep {
			bestSep = c.sep
		}
	}
	var ties []model.Move
	for _, c := range candidates {
		if model.ManhattanDistance(c.move.Apply(pos), goal) == bestDist && c.sep == bestSep {
			ties = append(ties, c.move)
		}
	}
	return a.pick(ties), true
}

func (a *Avoider) pick(ties []model.Move) model.Move {
	if len(ties) == 1 {
		return ties[0]
	}
	return ties[a.rng.Intn(len(ties))]
}
