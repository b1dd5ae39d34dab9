package main

import (
	"fmt"
	"os"

	"github.com/kellerdav/classroom-sim/internal/scenario"
)

// #region main

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: scenario-check scenario.toml [more.toml ...]")
		os.Exit(2)
	}

	failed := 0
	for _, path := range os.Args[1:] {
		sc, err := scenario.Load(path)
		if err != nil {
			fmt.Printf("%-30s INVALID: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%-30s OK: %q, %d agents, seed %d\n", path, sc.Name, len(sc.Agents), sc.Seed)
		for _, p := range sc.Agents {
			fmt.Printf("  %-8s %-12s seat (%.0f, %.0f)  ext=%.2f sen=%.2f reb=%.2f mot=%.2f\n",
				p.ID, p.Name, p.Position.X, p.Position.Y,
				p.Traits.Extroversion, p.Traits.Sensitivity,
				p.Traits.Rebelliousness, p.Traits.AcademicMotivation)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// #endregion main
