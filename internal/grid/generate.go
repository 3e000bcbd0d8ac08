package grid

import (
	"fmt"
	"math/rand"

	"gridsweep/internal/model"
)

// GenerateConfig controls randomized grid construction. The core is
// agnostic to how a grid was produced; this generator mirrors the default
// scenario of half-filled trash floors.
type GenerateConfig struct {
	Rows int
	Cols int
	// FillProbability is the chance each empty cell receives a hazard.
	FillProbability float64
	// WetRatio is the share of placed trash that is wet rather than dry.
	WetRatio float64
	// WallProbability is the chance each remaining cell becomes a wall.
	WallProbability float64
	// BinCount is how many bin cells to place.
	BinCount int
}

// DefaultGenerateConfig matches the historical simulator defaults: a
// 6x10 floor with every second cell holding trash and a single bin.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Rows:            6,
		Cols:            10,
		FillProbability: 0.5,
		WetRatio:        0.5,
		WallProbability: 0,
		BinCount:        1,
	}
}

// Generate builds a randomized grid from cfg using the provided source.
// Bins are placed first so a fully-filled grid cannot end up without one.
func Generate(cfg GenerateConfig, rng *rand.Rand) (*Grid, error) {
	if rng == nil {
		return nil, fmt.Errorf("generate: rng is required")
	}
	if cfg.FillProbability < 0 || cfg.FillProbability > 1 {
		return nil, fmt.Errorf("generate: fill probability %f out of [0,1]", cfg.FillProbability)
	}
	if cfg.BinCount < 0 {
		return nil, fmt.Errorf("generate: bin count %d is negative", cfg.BinCount)
	}

	g, err := New(cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}

	total := cfg.Rows * cfg.Cols
	if cfg.BinCount > total {
		return nil, fmt.Errorf("generate: %d bins do not fit a %dx%d grid", cfg.BinCount, cfg.Rows, cfg.Cols)
	}
	for placed := 0; placed < cfg.BinCount; {
		p := model.Point{Row: rng.Intn(cfg.Rows), Col: rng.Intn(cfg.Cols)}
		if g.CellAt(p) == model.Bin {
			continue
		}
		_ = g.SetCell(p, model.Bin)
		placed++
	}

	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			p := model.Point{Row: r, Col: c}
			if g.CellAt(p) != model.Empty {
				continue
			}
			switch {
			case rng.Float64() < cfg.FillProbability:
				if rng.Float64() < cfg.WetRatio {
					_ = g.SetCell(p, model.WetTrash)
				} else {
					_ = g.SetCell(p, model.DryTrash)
				}
			case rng.Float64() < cfg.WallProbability:
				_ = g.SetCell(p, model.Wall)
			}
		}
	}
	return g, nil
}

// Parse builds a grid from an ASCII sketch using the String glyph set.
// Handy for fixtures and scenario files with explicit layouts.
func Parse(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse: no rows")
	}
	g, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for r, line := range rows {
		if len(line) != g.cols {
			return nil, fmt.Errorf("parse: row %d has %d cells, want %d", r, len(line), g.cols)
		}
		for c := 0; c < len(line); c++ {
			var cell model.Cell
			switch line[c] {
			case '.':
				cell = model.Empty
			case 'd':
				cell = model.DryTrash
			case 'w':
				cell = model.WetTrash
			case 'u':
				cell = model.Dusty
			case 's':
				cell = model.Soaked
			case 'B':
				cell = model.Bin
			case '#':
				cell = model.Wall
			default:
				return nil, fmt.Errorf("parse: unknown glyph %q at row %d col %d", line[c], r, c)
			}
			_ = g.SetCell(model.Point{Row: r, Col: c}, cell)
		}
	}
	return g, nil
}
