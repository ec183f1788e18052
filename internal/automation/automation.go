package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep names a scene by preset or by file, with optional overrides.
type ScenarioStep struct {
	Preset   string  `yaml:"preset,omitempty"`
	Config   string  `yaml:"config,omitempty"`
	Dt       float64 `yaml:"dt,omitempty"`
	Duration float64 `yaml:"duration,omitempty"`
	SaveAs   string  `yaml:"save_as,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &scenario, nil
}

// Resolve builds the validated scene config for a step.
func (st ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case st.Preset != "" && st.Config != "":
		return nil, fmt.Errorf("step sets both preset and config")
	case st.Config != "":
		c, err := config.Load(st.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case st.Preset != "":
		if cfg = config.GetPreset(st.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", st.Preset)
		}
	default:
		return nil, fmt.Errorf("step names no scene")
	}

	if st.Dt > 0 {
		cfg.Dt = st.Dt
	}
	if st.Duration > 0 {
		cfg.Duration = st.Duration
	}
	if st.SaveAs != "" {
		cfg.Name = st.SaveAs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StepResult pairs a scenario step's resolved scene with its run.
type StepResult struct {
	Config *config.Config
	Result *sim.Result
}

// Runner executes batches of runs on a shared parallel ensemble.
type Runner struct {
	Limit   int
	Log     *slog.Logger
	Metrics func(cfg *config.Config, s *physics.Scene) []sim.Metric
}

func (r *Runner) logger() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}

// run builds one job per config and runs them all.
func (r *Runner) run(ctx context.Context, cfgs []*config.Config) ([]*sim.Result, error) {
	jobs := make([]sim.Job, len(cfgs))
	for i, cfg := range cfgs {
		jobs[i] = sim.Job{Build: cfg.Build, Config: cfg.SimConfig()}
		if r.Metrics != nil {
			jobs[i].Metrics = func(s *physics.Scene) []sim.Metric { return r.Metrics(cfg, s) }
		}
	}
	return sim.NewEnsemble(nil, r.Limit).WithLogger(r.logger()).RunJobs(ctx, jobs)
}

// RunScenario resolves every step, then runs them in parallel. Results come
// back in step order.
func (r *Runner) RunScenario(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	cfgs := make([]*config.Config, len(sc.Steps))
	for i, st := range sc.Steps {
		cfg, err := st.Resolve()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		cfgs[i] = cfg
	}

	r.logger().Info("scenario started", "name", sc.Name, "steps", len(cfgs))
	results, err := r.run(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	out := make([]StepResult, len(cfgs))
	for i := range cfgs {
		out[i] = StepResult{Config: cfgs[i], Result: results[i]}
	}
	return out, nil
}

// Sweep varies the constant of one force across [Min, Max] in Steps even
// increments.
type Sweep struct {
	Force    int
	Min, Max float64
	Steps    int
}

type SweepResult struct {
	Value       float64
	EnergyDrift float64
	MinEnergy   float64
	MaxEnergy   float64
	Final       sim.Snapshot
}

func (sw Sweep) validate(base *config.Config) error {
	if sw.Force < 0 || sw.Force >= len(base.Forces) {
		return fmt.Errorf("sweep: force %d out of range (scene has %d)", sw.Force, len(base.Forces))
	}
	if kind := base.Forces[sw.Force].Kind; kind == "field" {
		return fmt.Errorf("sweep: force %d is a %s and has no constant", sw.Force, kind)
	}
	if sw.Steps < 2 {
		return fmt.Errorf("sweep: need at least 2 steps, got %d", sw.Steps)
	}
	if sw.Min > sw.Max {
		return fmt.Errorf("sweep: min %g above max %g", sw.Min, sw.Max)
	}
	return nil
}

// Values lists the constants the sweep visits.
func (sw Sweep) Values() []float64 {
	vals := make([]float64, sw.Steps)
	step := (sw.Max - sw.Min) / float64(sw.Steps-1)
	for i := range vals {
		vals[i] = sw.Min + float64(i)*step
	}
	return vals
}

// RunSweep runs one copy of base per swept value.
func (r *Runner) RunSweep(ctx context.Context, base *config.Config, sw Sweep) ([]SweepResult, error) {
	if err := sw.validate(base); err != nil {
		return nil, err
	}

	vals := sw.Values()
	cfgs := make([]*config.Config, len(vals))
	for i, v := range vals {
		c := base.Clone()
		c.Forces[sw.Force].Constant = v
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("sweep value %g: %w", v, err)
		}
		cfgs[i] = c
	}

	results, err := r.run(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(vals))
	for i, res := range results {
		lo, hi := energyRange(res.Energies)
		out[i] = SweepResult{
			Value:       vals[i],
			EnergyDrift: res.EnergyDrift,
			MinEnergy:   lo,
			MaxEnergy:   hi,
			Final:       res.Final(),
		}
		r.logger().Debug("sweep point", "value", vals[i], "energy_drift", res.EnergyDrift)
	}
	return out, nil
}

func energyRange(es []float64) (lo, hi float64) {
	if len(es) == 0 {
		return 0, 0
	}
	lo, hi = es[0], es[0]
	for _, e := range es[1:] {
		lo, hi = min(lo, e), max(hi, e)
	}
	return lo, hi
}

// MonteCarlo jitters the starting velocity of every movable body by up to
// Perturbation on each axis. A zero Seed seeds from the clock.
type MonteCarlo struct {
	Trials       int
	Perturbation float64
	Seed         int64
}

type TrialResult struct {
	Trial  int
	Config *config.Config
	Final  sim.Snapshot
	Stable bool
}

// escapeRadius bounds the positions a stable trial may reach.
const escapeRadius = 1e6

// RunMonteCarlo runs base under mc.Trials random perturbations. A trial is
// stable when it finishes without errors and every body stays within
// escapeRadius of the origin.
func (r *Runner) RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarlo) ([]TrialResult, error) {
	if mc.Trials < 1 {
		return nil, fmt.Errorf("monte carlo: need at least one trial")
	}
	if mc.Perturbation < 0 {
		return nil, fmt.Errorf("monte carlo: negative perturbation %g", mc.Perturbation)
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfgs := make([]*config.Config, mc.Trials)
	for i := range cfgs {
		c := base.Clone()
		for j := range c.Bodies {
			if math.IsInf(float64(c.Bodies[j].Mass), 1) {
				continue
			}
			c.Bodies[j].Velocity[0] += (rng.Float64()*2 - 1) * mc.Perturbation
			c.Bodies[j].Velocity[1] += (rng.Float64()*2 - 1) * mc.Perturbation
		}
		cfgs[i] = c
	}

	results, err := r.run(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	out := make([]TrialResult, len(cfgs))
	for i, res := range results {
		out[i] = TrialResult{
			Trial:  i,
			Config: cfgs[i],
			Final:  res.Final(),
			Stable: stable(res),
		}
		if (i+1)%10 == 0 {
			r.logger().Debug("monte carlo progress", "done", i+1, "trials", mc.Trials)
		}
	}
	return out, nil
}

func stable(res *sim.Result) bool {
	if len(res.Errors) > 0 {
		return false
	}
	for _, b := range res.Final() {
		if !b.IsValid() || math.Hypot(b.X, b.Y) > escapeRadius {
			return false
		}
	}
	return true
}

// Stats counts stable and unstable trials.
func Stats(results []TrialResult) (stableCount, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
