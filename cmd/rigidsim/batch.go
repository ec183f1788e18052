package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsim/internal/automation"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/storage"
)

func newRunner(cmd *cobra.Command) *automation.Runner {
	return &automation.Runner{
		Limit:   jobs,
		Log:     newLogger(cmd.ErrOrStderr()),
		Metrics: metrics.ForConfig,
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}
	fmt.Fprintln(out)

	results, err := newRunner(cmd).RunScenario(cmd.Context(), sc)
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tRUN\tSTEPS\tENERGY DRIFT\tERRORS")
	for i, r := range results {
		runID := "-"
		if st != nil {
			runID, err = st.Save(r.Config.Name, r.Config.SimConfig(), r.Config.BodyNames(), r.Result)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.3e\t%d\n",
			i+1, r.Config.Name, runID, r.Result.StepsTaken, r.Result.EnergyDrift, len(r.Result.Errors))
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	sw := automation.Sweep{Force: sweepForce, Min: sweepFrom, Max: sweepTo, Steps: sweepSteps}

	results, err := newRunner(cmd).RunSweep(cmd.Context(), cfg, sw)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping %s force %d (%s)\n\n", cfg.Name, sweepForce, cfg.Forces[sweepForce].Kind)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONSTANT\tENERGY DRIFT\tMIN ENERGY\tMAX ENERGY")
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.3e\t%.6g\t%.6g\n", r.Value, r.EnergyDrift, r.MinEnergy, r.MaxEnergy)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	mc := automation.MonteCarlo{Trials: trials, Perturbation: perturb, Seed: seed}

	results, err := newRunner(cmd).RunMonteCarlo(cmd.Context(), cfg, mc)
	if err != nil {
		return err
	}

	stable, unstable := automation.Stats(results)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d trials, velocity jitter up to %g\n", cfg.Name, len(results), perturb)
	fmt.Fprintf(out, "stable: %d\n", stable)
	fmt.Fprintf(out, "unstable: %d\n", unstable)
	return nil
}
