// Package gridsweep is the embedding surface: run simulations, benchmark
// strategies across seeds, and browse persisted run history without
// touching the internal packages.
package gridsweep

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"gridsweep/internal/agent"
	"gridsweep/internal/avoid"
	"gridsweep/internal/control"
	"gridsweep/internal/diag"
	"gridsweep/internal/grid"
	"gridsweep/internal/model"
	"gridsweep/internal/scenario"
	"gridsweep/internal/sim"
	"gridsweep/internal/stats"
	"gridsweep/internal/storage"
)

const defaultDBPath = "gridsweep.db"

type Options struct {
	StoreKind string
	DBPath    string
	// Diagnostics receives controller and driver anomalies. Nil discards.
	Diagnostics diag.Sink
}

type Client struct {
	store storage.Store
	sink  diag.Sink

	mu          sync.Mutex
	initialized bool
}

type RunRequest struct {
	// ScenarioPath names an HCL scenario file. Empty uses Scenario, or the
	// default scenario when that is nil too.
	ScenarioPath string
	Scenario     *scenario.Scenario

	// The fields below override the scenario when set.
	Strategy        string
	Seed            int64
	RandomizeStarts bool
	WatchdogFactor  int

	// OnTick observes committed state each tick; used for streaming.
	OnTick func(tick int, g *grid.Grid, c control.Controller)
}

type RunSummary struct {
	RunID      string
	Strategy   string
	Seed       int64
	Rows       int
	Cols       int
	Ticks      int
	Finished   bool
	Aborted    bool
	Violations int
	FinalGrid  string
}

type BenchmarkRequest struct {
	ScenarioPath string
	Scenario     *scenario.Scenario
	// Strategies defaults to both controllers.
	Strategies []string
	// Seeds is how many consecutive seeds to run, starting at BaseSeed.
	Seeds    int
	BaseSeed int64
}

type BenchmarkSummary struct {
	Summaries []stats.StrategySummary
	Report    string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Strategy     string
	Seed         int64
	Rows         int
	Cols         int
	Ticks        int
	Finished     bool
	Aborted      bool
	Violations   int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	sink := opts.Diagnostics
	if sink == nil {
		sink = diag.Nop()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, sink: sink}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) ensureStore(ctx context.Context) (storage.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		if err := c.store.Init(ctx); err != nil {
			return nil, err
		}
		c.initialized = true
	}
	return c.store, nil
}

// Run executes one simulation and persists its record.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	s, err := resolveScenario(req.ScenarioPath, req.Scenario)
	if err != nil {
		return RunSummary{}, err
	}
	if req.Strategy != "" {
		s.Strategy = req.Strategy
	}
	if req.Seed != 0 {
		s.Seed = req.Seed
	}
	if req.RandomizeStarts {
		s.RandomizeStarts = true
	}
	if req.WatchdogFactor > 0 {
		s.WatchdogFactor = req.WatchdogFactor
	}
	if err := s.Validate(); err != nil {
		return RunSummary{}, err
	}
	if s.Seed == 0 {
		s.Seed = time.Now().UnixNano()
	}

	store, err := c.ensureStore(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	g, ctrl, err := buildRun(s, c.sink)
	if err != nil {
		return RunSummary{}, err
	}
	res, err := sim.Run(ctx, g, ctrl, sim.Options{
		WatchdogFactor: s.WatchdogFactor,
		Sink:           c.sink,
		OnTick:         req.OnTick,
	})
	if err != nil {
		return RunSummary{}, err
	}

	record := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:           uuid.NewString(),
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Strategy:     s.Strategy,
		Seed:         s.Seed,
		Rows:         g.Rows(),
		Cols:         g.Cols(),
		Ticks:        res.Ticks,
		Finished:     res.Finished,
		Aborted:      res.Aborted,
		Violations:   res.Violations,
	}
	if err := store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run record: %w", err)
	}

	return RunSummary{
		RunID:      record.ID,
		Strategy:   s.Strategy,
		Seed:       s.Seed,
		Rows:       g.Rows(),
		Cols:       g.Cols(),
		Ticks:      res.Ticks,
		Finished:   res.Finished,
		Aborted:    res.Aborted,
		Violations: res.Violations,
		FinalGrid:  g.String(),
	}, nil
}

// Benchmark runs each strategy across consecutive seeds and aggregates
// ticks-to-completion. Every individual run is persisted.
func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (BenchmarkSummary, error) {
	base, err := resolveScenario(req.ScenarioPath, req.Scenario)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	strategies := req.Strategies
	if len(strategies) == 0 {
		strategies = []string{"centralized", "decentralized"}
	}
	seeds := req.Seeds
	if seeds <= 0 {
		seeds = 10
	}
	baseSeed := req.BaseSeed
	if baseSeed == 0 {
		baseSeed = 1
	}

	var summaries []stats.StrategySummary
	for _, strategy := range strategies {
		runs := make([]stats.SeedRun, 0, seeds)
		for i := 0; i < seeds; i++ {
			seed := baseSeed + int64(i)
			s := base
			s.Strategy = strategy
			s.Seed = seed
			summary, err := c.Run(ctx, RunRequest{Scenario: &s})
			if err != nil {
				return BenchmarkSummary{}, fmt.Errorf("%s seed %d: %w", strategy, seed, err)
			}
			runs = append(runs, stats.SeedRun{
				Seed:       seed,
				Ticks:      summary.Ticks,
				Finished:   summary.Finished,
				Aborted:    summary.Aborted,
				Violations: summary.Violations,
			})
		}
		summaries = append(summaries, stats.Summarize(strategy, runs))
	}
	return BenchmarkSummary{Summaries: summaries, Report: stats.Report(summaries)}, nil
}

// Runs lists persisted run records, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	store, err := c.ensureStore(ctx)
	if err != nil {
		return nil, err
	}
	records, err := store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}
	items := make([]RunItem, 0, len(records))
	for _, r := range records {
		items = append(items, RunItem{
			RunID:        r.ID,
			CreatedAtUTC: r.CreatedAtUTC,
			Strategy:     r.Strategy,
			Seed:         r.Seed,
			Rows:         r.Rows,
			Cols:         r.Cols,
			Ticks:        r.Ticks,
			Finished:     r.Finished,
			Aborted:      r.Aborted,
			Violations:   r.Violations,
		})
	}
	return items, nil
}

func resolveScenario(path string, direct *scenario.Scenario) (scenario.Scenario, error) {
	switch {
	case path != "":
		return scenario.Load(path)
	case direct != nil:
		return *direct, nil
	default:
		return scenario.Default(), nil
	}
}

// buildRun constructs the grid, agent starts, and controller a scenario
// describes. The scenario seed drives grid generation, start placement,
// and avoidance tie-breaking through one source.
func buildRun(s scenario.Scenario, sink diag.Sink) (*grid.Grid, control.Controller, error) {
	rng := rand.New(rand.NewSource(s.Seed))
	g, err := s.BuildGrid(rng)
	if err != nil {
		return nil, nil, err
	}
	starts, err := agent.StartPositions(g, rng, s.RandomizeStarts)
	if err != nil {
		return nil, nil, err
	}
	avoider := avoid.New(rng)

	var ctrl control.Controller
	switch s.Strategy {
	case "centralized":
		ctrl, err = control.NewCentralized(g, starts, avoider, sink)
	case "decentralized":
		ctrl, err = control.NewDecentralized(g, starts, avoider, sink)
	default:
		return nil, nil, fmt.Errorf("unknown strategy %q", s.Strategy)
	}
	if err != nil {
		return nil, nil, err
	}
	return g, ctrl, nil
}
