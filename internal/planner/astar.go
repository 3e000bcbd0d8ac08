// Package planner implements grid-search pathfinding between two cells.
package planner

import (
	"container/heap"
	"errors"

	"gridsweep/internal/model"
)

// ErrUnreachable is returned when no wall-free path connects start and
// goal. Callers recover by clearing the goal and re-selecting next tick.
var ErrUnreachable = errors.New("planner: goal unreachable")

// Terrain is the read access the planner needs from a grid.
type Terrain interface {
	Rows() int
	Cols() int
	Walkable(model.Point) bool
}

// FindPath runs A* with a Manhattan heuristic and returns the move
// sequence from start to goal. The path is empty when start equals goal.
// Neighbor expansion follows the fixed model.Moves order and heap ties
// break by insertion sequence, so results are reproducible. The search is
// bounded by the visited set and terminates on disconnected grids.
func FindPath(t Terrain, start, goal model.Point) ([]model.Move, error) {
	if start == goal {
		return nil, nil
	}
	if !t.Walkable(start) || !t.Walkable(goal) {
		return nil, ErrUnreachable
	}

	gScore := map[model.Point]int{start: 0}
	cameFrom := make(map[model.Point]step)

	pq := &openSet{}
	heap.Init(pq)
	heap.Push(pq, &entry{point: start, priority: model.ManhattanDistance(start, goal)})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*entry)
		// No decrease-key: a better route may have been pushed after this
		// entry, in which case the entry is stale and skipped.
		if cur.cost > gScore[cur.point] {
			continue
		}
		if cur.point == goal {
			return reconstruct(cameFrom, start, goal), nil
		}
		for _, m := range model.Moves {
			next := m.Apply(cur.point)
			if !t.Walkable(next) {
				continue
			}
			tentative := gScore[cur.point] + 1
			if best, seen := gScore[next]; seen && tentative >= best {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = step{prev: cur.point, move: m}
			heap.Push(pq, &entry{
				point:    next,
				cost:     tentative,
				priority: tentative + model.ManhattanDistance(next, goal),
			})
		}
	}
	return nil, ErrUnreachable
}

type step struct {
	prev model.Point
	move model.Move
}

func reconstruct(cameFrom map[model.Point]step, start, goal model.Point) []model.Move {
	var rev []model.Move
	for at := goal; at != start; {
		s := cameFrom[at]
		rev = append(rev, s.move)
		at = s.prev
	}
	path := make([]model.Move, len(rev))
	for i, m := range rev {
		path[len(rev)-1-i] = m
	}
	return path
}

// ---------- internal PQ ----------

type entry struct {
	point    model.Point
	cost     int
	priority int
	seq      int
}

type openSet struct {
	items []*entry
	next  int
}

func (pq openSet) Len() int { return len(pq.items) }
func (pq openSet) Less(i, j int) bool {
	if pq.items[i].priority != pq.items[j].priority {
		return pq.items[i].priority < pq.items[j].priority
	}
	return pq.items[i].seq < pq.items[j].seq
}
func (pq openSet) Swap(i, j int) { pq.items[i], pq.items[j] = pq.items[j], pq.items[i] }
func (pq *openSet) Push(x any) {
	e := x.(*entry)
	e.seq = pq.next
	pq.next++
	pq.items = append(pq.items, e)
}
func (pq *openSet) Pop() any {
	old := pq.items
	n := len(old)
	e := old[n-1]
	pq.items = old[:n-1]
	return e
}
