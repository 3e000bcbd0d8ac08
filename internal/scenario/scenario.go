// Package scenario loads run descriptions from HCL files: the grid to
// build (explicit layout or generator settings) and how to drive it.
package scenario

import (
	"fmt"
	"math/rand"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"gridsweep/internal/grid"
)

// Scenario is one fully resolved run description.
type Scenario struct {
	Rows            int
	Cols            int
	FillProbability float64
	WetRatio        float64
	WallProbability float64
	BinCount        int
	// Layout, when present, is an explicit grid fixture and overrides the
	// generator settings above.
	Layout          []string
	Seed            int64
	Strategy        string
	RandomizeStarts bool
	// WatchdogFactor zero defers to the driver default.
	WatchdogFactor int
}

// Default is the scenario used when no file is given: the classic
// six-by-ten half-filled grid with a single bin.
func Default() Scenario {
	return Scenario{
		Rows:            6,
		Cols:            10,
		FillProbability: 0.5,
		WetRatio:        0.5,
		BinCount:        1,
		Seed:            1,
		Strategy:        "centralized",
	}
}

// fileRoot decodes the single top-level scenario block.
type fileRoot struct {
	Scenario *scenarioBlock `hcl:"scenario,block"`
}

// scenarioBlock uses pointers so absent attributes fall back to defaults.
type scenarioBlock struct {
	Rows            *int     `hcl:"rows,optional"`
	Cols            *int     `hcl:"cols,optional"`
	FillProbability *float64 `hcl:"fill_probability,optional"`
	WetRatio        *float64 `hcl:"wet_ratio,optional"`
	WallProbability *float64 `hcl:"wall_probability,optional"`
	BinCount        *int     `hcl:"bin_count,optional"`
	Layout          []string `hcl:"layout,optional"`
	Seed            *int64   `hcl:"seed,optional"`
	Strategy        *string  `hcl:"strategy,optional"`
	RandomizeStarts *bool    `hcl:"randomize_starts,optional"`
	WatchdogFactor  *int     `hcl:"watchdog_factor,optional"`
}

// Load parses the scenario file at path.
func Load(path string) (Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Scenario{}, fmt.Errorf("parse scenario file %s: %w", path, diags)
	}
	return decode(file.Body)
}

// Parse decodes scenario HCL from a byte slice. The filename only labels
// diagnostics.
func Parse(src []byte, filename string) (Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", filename, diags)
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (Scenario, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return Scenario{}, fmt.Errorf("decode scenario: %w", diags)
	}
	s := Default()
	if root.Scenario == nil {
		return s, s.Validate()
	}

	b := root.Scenario
	if b.Rows != nil {
		s.Rows = *b.Rows
	}
	if b.Cols != nil {
		s.Cols = *b.Cols
	}
	if b.FillProbability != nil {
		s.FillProbability = *b.FillProbability
	}
	if b.WetRatio != nil {
		s.WetRatio = *b.WetRatio
	}
	if b.WallProbability != nil {
		s.WallProbability = *b.WallProbability
	}
	if b.BinCount != nil {
		s.BinCount = *b.BinCount
	}
	if len(b.Layout) > 0 {
		s.Layout = b.Layout
		s.Rows = len(b.Layout)
		s.Cols = len(b.Layout[0])
	}
	if b.Seed != nil {
		s.Seed = *b.Seed
	}
	if b.Strategy != nil {
		s.Strategy = *b.Strategy
	}
	if b.RandomizeStarts != nil {
		s.RandomizeStarts = *b.RandomizeStarts
	}
	if b.WatchdogFactor != nil {
		s.WatchdogFactor = *b.WatchdogFactor
	}
	return s, s.Validate()
}

// Validate rejects settings the generator or the controllers cannot honor.
func (s Scenario) Validate() error {
	switch s.Strategy {
	case "centralized", "decentralized":
	default:
		return fmt.Errorf("scenario: unknown strategy %q", s.Strategy)
	}
	if len(s.Layout) == 0 {
		if s.Rows <= 0 || s.Cols <= 0 {
			return fmt.Errorf("scenario: grid must be at least 1x1, got %dx%d", s.Rows, s.Cols)
		}
		if s.FillProbability < 0 || s.FillProbability > 1 {
			return fmt.Errorf("scenario: fill_probability %v out of [0,1]", s.FillProbability)
		}
		if s.WetRatio < 0 || s.WetRatio > 1 {
			return fmt.Errorf("scenario: wet_ratio %v out of [0,1]", s.WetRatio)
		}
		if s.WallProbability < 0 || s.WallProbability > 1 {
			return fmt.Errorf("scenario: wall_probability %v out of [0,1]", s.WallProbability)
		}
		if s.BinCount < 1 {
			return fmt.Errorf("scenario: at least one bin is required, got %d", s.BinCount)
		}
	}
	if s.WatchdogFactor < 0 {
		return fmt.Errorf("scenario: watchdog_factor must not be negative, got %d", s.WatchdogFactor)
	}
	return nil
}

// BuildGrid constructs the scenario's grid: the explicit layout when one
// is given, a generated grid otherwise.
func (s Scenario) BuildGrid(rng *rand.Rand) (*grid.Grid, error) {
	if len(s.Layout) > 0 {
		return grid.Parse(s.Layout)
	}
	return grid.Generate(grid.GenerateConfig{
		Rows:            s.Rows,
		Cols:            s.Cols,
		FillProbability: s.FillProbability,
		WetRatio:        s.WetRatio,
		WallProbability: s.WallProbability,
		BinCount:        s.BinCount,
	}, rng)
}
