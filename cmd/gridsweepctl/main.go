package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"gridsweep/internal/diag"
	"gridsweep/internal/storage"
	api "gridsweep/pkg/gridsweep"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "benchmark":
		return runBenchmark(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func newClient(storeKind, dbPath string) (*api.Client, error) {
	return api.New(api.Options{
		StoreKind:   storeKind,
		DBPath:      dbPath,
		Diagnostics: diag.Slog(slog.Default()),
	})
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	scenarioPath := fs.String("scenario", "", "HCL scenario file")
	strategy := fs.String("strategy", "", "centralized|decentralized (overrides scenario)")
	seed := fs.Int64("seed", 0, "simulation seed (overrides scenario)")
	randomize := fs.Bool("randomize-starts", false, "place agents on random affinity cells")
	watchdog := fs.Int("watchdog-factor", 0, "watchdog budget as a multiple of the cell count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gridsweep.db", "sqlite database path")
	showGrid := fs.Bool("show-grid", false, "print the final grid")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, api.RunRequest{
		ScenarioPath:    *scenarioPath,
		Strategy:        *strategy,
		Seed:            *seed,
		RandomizeStarts: *randomize,
		WatchdogFactor:  *watchdog,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run %s strategy=%s seed=%d grid=%dx%d ticks=%d finished=%v aborted=%v violations=%d\n",
		summary.RunID, summary.Strategy, summary.Seed, summary.Rows, summary.Cols,
		summary.Ticks, summary.Finished, summary.Aborted, summary.Violations)
	if *showGrid {
		fmt.Print(summary.FinalGrid)
	}
	return nil
}

func runBenchmark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	scenarioPath := fs.String("scenario", "", "HCL scenario file")
	strategy := fs.String("strategy", "", "limit the benchmark to one strategy")
	seeds := fs.Int("seeds", 10, "number of consecutive seeds per strategy")
	baseSeed := fs.Int64("base-seed", 1, "first seed")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gridsweep.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit summaries as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *seeds <= 0 {
		return errors.New("seeds must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	req := api.BenchmarkRequest{
		ScenarioPath: *scenarioPath,
		Seeds:        *seeds,
		BaseSeed:     *baseSeed,
	}
	if *strategy != "" {
		req.Strategies = []string{*strategy}
	}
	summary, err := client.Benchmark(ctx, req)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary.Summaries)
	}
	fmt.Print(summary.Report)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gridsweep.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, api.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if *jsonOut {
		type runsItem struct {
			RunID        string `json:"run_id"`
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
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem(item))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("%-36s %-15s %-14s %8s %7s %6s %s\n",
		"run", "created", "strategy", "seed", "grid", "ticks", "outcome")
	for _, item := range items {
		created := item.CreatedAtUTC
		if t, err := time.Parse(time.RFC3339, item.CreatedAtUTC); err == nil {
			created = humanize.Time(t)
		}
		outcome := "finished"
		switch {
		case item.Aborted:
			outcome = "aborted"
		case !item.Finished:
			outcome = "paused"
		}
		if item.Violations > 0 {
			outcome = fmt.Sprintf("%s (%d violations)", outcome, item.Violations)
		}
		fmt.Printf("%-36s %-15s %-14s %8d %4dx%-2d %6d %s\n",
			item.RunID, created, item.Strategy, item.Seed,
			item.Rows, item.Cols, item.Ticks, outcome)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: gridsweepctl <run|benchmark|runs|serve> [flags]", msg)
}
