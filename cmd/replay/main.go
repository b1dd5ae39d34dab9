package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kellerdav/classroom-sim/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("v", false, "print final agent snapshots")
	flag.Parse()

	paths := flag.Args()
	if *fixturePath != "" {
		paths = append([]string{*fixturePath}, paths...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: replay [--v] fixture.json [more.json ...]")
		os.Exit(2)
	}

	failed := 0
	for _, path := range paths {
		if !runOne(path, *verbose) {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d fixtures diverged\n", failed, len(paths))
		os.Exit(1)
	}
}

// #endregion main

// #region run

func runOne(path string, verbose bool) bool {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}

	summary, err := replay.Run(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}

	status := "OK"
	if !summary.Ok() {
		status = "DIVERGED"
	}
	fmt.Printf("%-40s %d/%d checks  score %5.1f  %s\n",
		summary.Description, summary.Passed, summary.TotalChecks,
		summary.Report.Score, status)

	for _, res := range summary.Failed {
		fmt.Printf("  at %.1fs: %s expected %q, got %q\n",
			res.Check.At, res.Check.AgentID, res.Check.State, res.Got)
	}
	if !summary.ScoreInRange && f.ExpectedScore != nil {
		fmt.Printf("  score %.1f outside [%.1f, %.1f]\n",
			summary.Report.Score, f.ExpectedScore.Min, f.ExpectedScore.Max)
	}

	if verbose {
		for _, snap := range summary.Snapshots {
			e := snap.Emotion
			fmt.Printf("  %-8s %-11s hap=%.1f sad=%.1f fru=%.1f bor=%.1f ang=%.1f\n",
				snap.ID, snap.State,
				e.Happiness, e.Sadness, e.Frustration, e.Boredom, e.Anger)
		}
	}
	return summary.Ok()
}

// #endregion run
