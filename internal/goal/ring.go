package goal

import "gridsweep/internal/model"

// ringSearch expands outward from a point by increasing Manhattan radius
// and returns the first point for which match reports true. Points on a
// ring are visited top row first, left before right, so results are
// deterministic. The radius is bounded by the farthest grid corner, so the
// search always terminates.
func ringSearch(rows, cols int, from model.Point, match func(model.Point) bool) (model.Point, bool) {
	if inBounds(rows, cols, from) && match(from) {
		return from, true
	}
	maxRadius := max(from.Row, rows-1-from.Row) + max(from.Col, cols-1-from.Col)
	for w := 1; w <= maxRadius; w++ {
		for dr := -w; dr <= w; dr++ {
			r := from.Row + dr
			if r < 0 || r >= rows {
				continue
			}
			dc := w - abs(dr)
			left := model.Point{Row: r, Col: from.Col - dc}
			if inBounds(rows, cols, left) && match(left) {
				return left, true
			}
			if dc == 0 {
				continue
			}
			right := model.Point{Row: r, Col: from.Col + dc}
			if inBounds(rows, cols, right) && match(right) {
				return right, true
			}
		}
	}
	return model.Point{}, false
}

func inBounds(rows, cols int, p model.Point) bool {
	return p.Row >= 0 && p.Row < rows && p.Col >= 0 && p.Col < cols
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
