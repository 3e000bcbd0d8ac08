// Package stats aggregates benchmark runs into per-strategy summaries.
package stats

import (
	"fmt"
	"math"
	"strings"
)

// SeedRun records one benchmark run of a strategy on one seed.
type SeedRun struct {
	Seed       int64 `json:"seed"`
	Ticks      int   `json:"ticks"`
	Finished   bool  `json:"finished"`
	Aborted    bool  `json:"aborted"`
	Violations int   `json:"violations"`
}

// StrategySummary aggregates all seed runs of one strategy. Tick
// statistics cover finished runs only; aborted runs would skew them with
// the watchdog budget.
type StrategySummary struct {
	Strategy        string    `json:"strategy"`
	TotalRuns       int       `json:"total_runs"`
	FinishedRuns    int       `json:"finished_runs"`
	SuccessRate     float64   `json:"success_rate"`
	AvgTicks        float64   `json:"avg_ticks"`
	StdTicks        float64   `json:"std_ticks"`
	MinTicks        float64   `json:"min_ticks"`
	MaxTicks        float64   `json:"max_ticks"`
	TotalViolations int       `json:"total_violations"`
	Runs            []SeedRun `json:"runs"`
}

func Avg(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("values must not be empty")
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values)), nil
}

// Std returns population standard deviation.
func Std(values []float64) (float64, error) {
	mean, err := Avg(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, value := range values {
		diff := mean - value
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values))), nil
}

// Summarize folds seed runs into one strategy summary.
func Summarize(strategy string, runs []SeedRun) StrategySummary {
	summary := StrategySummary{
		Strategy:  strategy,
		TotalRuns: len(runs),
		Runs:      append([]SeedRun(nil), runs...),
	}
	finishedTicks := make([]float64, 0, len(runs))
	for _, run := range runs {
		summary.TotalViolations += run.Violations
		if run.Finished {
			summary.FinishedRuns++
			finishedTicks = append(finishedTicks, float64(run.Ticks))
		}
	}
	if summary.TotalRuns > 0 {
		summary.SuccessRate = float64(summary.FinishedRuns) / float64(summary.TotalRuns)
	}
	if len(finishedTicks) > 0 {
		summary.AvgTicks, _ = Avg(finishedTicks)
		summary.StdTicks, _ = Std(finishedTicks)
		summary.MinTicks = finishedTicks[0]
		summary.MaxTicks = finishedTicks[0]
		for _, value := range finishedTicks[1:] {
			if value < summary.MinTicks {
				summary.MinTicks = value
			}
			if value > summary.MaxTicks {
				summary.MaxTicks = value
			}
		}
	}
	return summary
}

// Report renders summaries as a plain-text comparison table.
func Report(summaries []StrategySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %6s %9s %9s %9s %7s %7s %5s\n",
		"strategy", "runs", "finished", "avg", "std", "min", "max", "viol")
	for _, s := range summaries {
		fmt.Fprintf(&b, "%-14s %6d %9d %9.1f %9.1f %7.0f %7.0f %5d\n",
			s.Strategy, s.TotalRuns, s.FinishedRuns,
			s.AvgTicks, s.StdTicks, s.MinTicks, s.MaxTicks, s.TotalViolations)
	}
	return b.String()
}
