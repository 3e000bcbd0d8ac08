package goal

import (
	"testing"

	"gridsweep/internal/grid"
	"gridsweep/internal/model"
)

func mustParse(t *testing.T, rows []string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(rows)
	if err != nil {
		t.Fatalf("parse grid: %v", err)
	}
	return g
}

func TestNearestFindsClosestByManhattanRadius(t *testing.T) {
	g := mustParse(t, []string{
		".....",
		"..d..",
		".....",
		"....d",
	})
	var s Selector
	got, ok := s.Nearest(g, model.Point{Row: 0, Col: 2}, model.DryTrash)
	if !ok {
		t.Fatal("expected a match")
	}
	if (got != model.Point{Row: 1, Col: 2}) {
		t.Fatalf("nearest: got %v, want (1,2)", got)
	}
}

func TestNearestReturnsFalseWhenAbsent(t *testing.T) {
	g := mustParse(t, []string{"...", "..."})
	var s Selector
	if _, ok := s.Nearest(g, model.Point{Row: 0, Col: 0}, model.Soaked); ok {
		t.Fatal("expected no match on a clean grid")
	}
}

func TestNearestMatchesCurrentCellFirst(t *testing.T) {
	g := mustParse(t, []string{"u.u"})
	var s Selector
	got, ok := s.Nearest(g, model.Point{Row: 0, Col: 0}, model.Dusty)
	if !ok || (got != model.Point{Row: 0, Col: 0}) {
		t.Fatalf("nearest: got %v ok=%v, want current cell", got, ok)
	}
}

func TestBestCellPrefersClusterCoreOverEquallyFarOutlier(t *testing.T) {
	// The agent sits between a lone dusty cell on the left and a dense
	// cluster on the right. The cluster-core cell at (2,6) should win even
	// though the outlier at (2,0) is no farther away.
	g := mustParse(t, []string{
		".....uuu",
		".....uuu",
		"u....uuu",
		".....uuu",
		".....uuu",
	})
	var s Selector
	from := model.Point{Row: 2, Col: 3}
	got, ok := s.BestCell(g, from, model.Dusty)
	if !ok {
		t.Fatal("expected a target")
	}
	if got.Col < 5 {
		t.Fatalf("best cell chose outlier %v over cluster", got)
	}
}

func TestBestCellFallsBackToNearestForSparseHazards(t *testing.T) {
	g := mustParse(t, []string{
		"s....",
		".....",
		"....s",
	})
	var s Selector
	got, ok := s.BestCell(g, model.Point{Row: 0, Col: 1}, model.Soaked)
	if !ok {
		t.Fatal("expected a target")
	}
	if (got != model.Point{Row: 0, Col: 0}) {
		t.Fatalf("fallback nearest: got %v, want (0,0)", got)
	}
}

func TestGarbageGoalPolicy(t *testing.T) {
	g := mustParse(t, []string{
		"B..d",
		"....",
	})
	var s Selector
	from := model.Point{Row: 1, Col: 1}

	got, ok := s.GarbageGoal(g, from, 0, 5)
	if !ok || (got != model.Point{Row: 0, Col: 3}) {
		t.Fatalf("below capacity: got %v ok=%v, want trash at (0,3)", got, ok)
	}

	got, ok = s.GarbageGoal(g, from, 5, 5)
	if !ok || (got != model.Point{Row: 0, Col: 0}) {
		t.Fatalf("at capacity: got %v ok=%v, want bin at (0,0)", got, ok)
	}
}

func TestGarbageGoalFinalBinTripAfterExhaustion(t *testing.T) {
	g := mustParse(t, []string{"B..."})
	var s Selector
	from := model.Point{Row: 0, Col: 3}

	got, ok := s.GarbageGoal(g, from, 2, 5)
	if !ok || (got != model.Point{Row: 0, Col: 0}) {
		t.Fatalf("exhausted with load: got %v ok=%v, want bin", got, ok)
	}

	if _, ok := s.GarbageGoal(g, from, 0, 5); ok {
		t.Fatal("exhausted and empty-handed: expected no goal")
	}
}

func TestKindGoalRoutesResidueToMatchingAgent(t *testing.T) {
	g := mustParse(t, []string{"u.s"})
	var s Selector
	from := model.Point{Row: 0, Col: 1}

	got, ok := s.KindGoal(g, from, model.Vacuum)
	if !ok || (got != model.Point{Row: 0, Col: 0}) {
		t.Fatalf("vacuum goal: got %v ok=%v", got, ok)
	}
	got, ok = s.KindGoal(g, from, model.Mop)
	if !ok || (got != model.Point{Row: 0, Col: 2}) {
		t.Fatalf("mop goal: got %v ok=%v", got, ok)
	}
}
