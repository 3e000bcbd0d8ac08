package gridsweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gridsweep/internal/scenario"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func layoutScenario(layout ...string) *scenario.Scenario {
	s := scenario.Default()
	s.Layout = layout
	s.Rows = len(layout)
	s.Cols = len(layout[0])
	return &s
}

func TestClientRunPersistsRecord(t *testing.T) {
	client := newTestClient(t)

	summary, err := client.Run(context.Background(), RunRequest{
		Scenario: layoutScenario(
			"B.d.w",
			".....",
			".....",
		),
		Strategy: "centralized",
		Seed:     42,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !summary.Finished || summary.Aborted {
		t.Fatalf("run did not converge: %+v", summary)
	}
	if summary.RunID == "" {
		t.Fatal("expected a run id")
	}
	if summary.Violations != 0 {
		t.Fatalf("run logged %d violations", summary.Violations)
	}

	items, err := client.Runs(context.Background(), RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(items) != 1 || items[0].RunID != summary.RunID {
		t.Fatalf("unexpected run listing: %+v", items)
	}
	if items[0].Strategy != "centralized" || items[0].Seed != 42 {
		t.Fatalf("record lost run settings: %+v", items[0])
	}
}

func TestClientRunSameSeedIsReproducible(t *testing.T) {
	client := newTestClient(t)

	req := RunRequest{Strategy: "decentralized", Seed: 7}
	first, err := client.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := client.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if first.Ticks != second.Ticks || first.FinalGrid != second.FinalGrid {
		t.Fatalf("same seed diverged: %d ticks vs %d ticks", first.Ticks, second.Ticks)
	}
}

func TestClientRunFromScenarioFile(t *testing.T) {
	client := newTestClient(t)
	path := filepath.Join(t.TempDir(), "run.hcl")
	if err := os.WriteFile(path, []byte(`
scenario {
  layout = [
    "B.d",
    "...",
  ]
  seed     = 3
  strategy = "decentralized"
}
`), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	summary, err := client.Run(context.Background(), RunRequest{ScenarioPath: path})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Strategy != "decentralized" || summary.Rows != 2 || summary.Cols != 3 {
		t.Fatalf("scenario file not honored: %+v", summary)
	}
	if !summary.Finished {
		t.Fatalf("run did not converge: %+v", summary)
	}
}

func TestClientRunRejectsUnknownStrategy(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Run(context.Background(), RunRequest{Strategy: "psychic"}); err == nil {
		t.Fatal("expected strategy error")
	}
}

func TestClientBenchmarkComparesStrategies(t *testing.T) {
	client := newTestClient(t)

	summary, err := client.Benchmark(context.Background(), BenchmarkRequest{
		Scenario: layoutScenario(
			"B.dw",
			"....",
		),
		Seeds:    3,
		BaseSeed: 5,
	})
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}
	if len(summary.Summaries) != 2 {
		t.Fatalf("expected both strategies, got %+v", summary.Summaries)
	}
	for _, s := range summary.Summaries {
		if s.TotalRuns != 3 {
			t.Fatalf("strategy %s ran %d times, want 3", s.Strategy, s.TotalRuns)
		}
		if s.FinishedRuns == 0 {
			t.Fatalf("strategy %s never finished the fixture grid", s.Strategy)
		}
	}
	if summary.Report == "" {
		t.Fatal("expected a rendered report")
	}

	items, err := client.Runs(context.Background(), RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("expected 6 persisted benchmark runs, got %d", len(items))
	}
}

func TestClientRunsHonorsLimit(t *testing.T) {
	client := newTestClient(t)
	for seed := int64(1); seed <= 3; seed++ {
		if _, err := client.Run(context.Background(), RunRequest{
			Scenario: layoutScenario("B.d", "..."),
			Seed:     seed,
		}); err != nil {
			t.Fatalf("run seed %d: %v", seed, err)
		}
	}
	items, err := client.Runs(context.Background(), RunsRequest{Limit: 2})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("limit ignored: got %d items", len(items))
	}
}
