package goal

import (
	"sort"

	"github.com/paulmach/orb"
)

// convexHull computes the convex hull of the given points with the
// monotone chain algorithm and returns it as a closed line string, ready
// for planar boundary-distance queries. At least three non-collinear
// points are required for a meaningful hull; callers fall back to plain
// nearest-cell selection below that.
func convexHull(points []orb.Point) orb.LineString {
	if len(points) < 3 {
		return nil
	}
	pts := make([]orb.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	var lower []orb.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []orb.Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		// All points collinear: no interior, no dispersion signal.
		return nil
	}
	hull = append(hull, hull[0])
	return orb.LineString(hull)
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
