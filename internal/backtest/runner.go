package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drakos74/tradescore/internal/concurrent"
	"github.com/drakos74/tradescore/internal/exit"
	"github.com/drakos74/tradescore/internal/indicator"
	"github.com/drakos74/tradescore/internal/metrics"
	"github.com/drakos74/tradescore/internal/model"
	"github.com/drakos74/tradescore/internal/scoring"
	"github.com/drakos74/tradescore/internal/stoploss"
	cointime "github.com/drakos74/tradescore/internal/time"
)

// Config defines a backtest run.
type Config struct {
	Name          string
	Location      *time.Location
	DecisionClock cointime.Clock
	Indicators    indicator.Config
	Versions      scoring.Versions
	// Position is the version whose action opens the simulated positions, the last version if empty.
	Position    string
	Tiers       stoploss.Tiers
	Checkpoints []indicator.Checkpoint
	// ExitAt is the checkpoint used as exit when the stop-loss is not hit.
	ExitAt     string
	Lot        float64
	Segmenters []exit.Segmenter
	MinCount   int
	Workers    int
}

// Report holds all the outputs of a run.
type Report struct {
	RunID       string                   `json:"run_id"`
	Name        string                   `json:"name"`
	Started     time.Time                `json:"started"`
	Decisions   []model.Decision         `json:"decisions"`
	Simulations []model.SimulationResult `json:"simulations"`
	Tiers       []stoploss.Summary       `json:"tiers"`
	Exits       []exit.Row               `json:"exits"`
	Exclusions  []Exclusion              `json:"exclusions"`
}

// Runner evaluates the candidates of a backtest.
type Runner struct {
	cfg       Config
	builder   *indicator.Builder
	engine    *scoring.Engine
	resolver  *indicator.Resolver
	optimizer *exit.Optimizer
	exitDays  int
}

// New creates a new runner, failing on any configuration problem before any work is done.
func New(cfg Config, calibration scoring.Calibration) (*Runner, error) {
	if cfg.Location == nil {
		loc, err := cointime.Location("")
		if err != nil {
			return nil, err
		}
		cfg.Location = loc
	}
	if err := cfg.Versions.Validate(); err != nil {
		return nil, err
	}
	names := cfg.Versions.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("no rule set versions: %w", model.ErrInvalidConfig)
	}
	if cfg.Position == "" {
		cfg.Position = names[len(names)-1]
	}
	known := false
	for _, n := range names {
		if n == cfg.Position {
			known = true
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown position version '%s': %w", cfg.Position, model.ErrInvalidConfig)
	}
	if err := cfg.Tiers.Validate(); err != nil {
		return nil, err
	}
	resolver, err := indicator.NewResolver(cfg.Location, cfg.Checkpoints)
	if err != nil {
		return nil, err
	}
	exitDays := -1
	for _, c := range cfg.Checkpoints {
		if c.Label == cfg.ExitAt {
			exitDays = c.Days
		}
	}
	if exitDays < 0 {
		return nil, fmt.Errorf("unknown exit checkpoint '%s': %w", cfg.ExitAt, model.ErrInvalidConfig)
	}
	if cfg.Lot <= 0 {
		cfg.Lot = 1
	}
	rsiPeriod := cfg.Indicators.RSIPeriod
	if rsiPeriod <= 0 {
		rsiPeriod = indicator.DefaultConfig().RSIPeriod
	}
	return &Runner{
		cfg:       cfg,
		builder:   indicator.NewBuilder(cfg.Indicators, cfg.Location),
		engine:    scoring.NewEngine(calibration),
		resolver:  resolver.WithRSI(rsiPeriod),
		optimizer: exit.NewOptimizer(cfg.MinCount, cfg.Segmenters...),
		exitDays:  exitDays,
	}, nil
}

// unit is the outcome of evaluating one candidate.
type unit struct {
	decisions []model.Decision
	position  *stoploss.Position
	path      *model.ExitPath
	exclusion *Exclusion
}

// evaluate scores a single candidate and prepares its position and exit path.
// Decisions are kept even if no position can be simulated.
func (r *Runner) evaluate(ctx context.Context, c model.Candidate) (unit, error) {
	if c.Daily.Len() == 0 && c.Intraday.Len() == 0 {
		return unit{}, fmt.Errorf("no bars for '%s': %w", c.Instrument, model.ErrMissingData)
	}
	day, err := cointime.ParseDay(c.Date, r.cfg.Location)
	if err != nil {
		return unit{}, fmt.Errorf("%s: %w", err.Error(), model.ErrInvalidData)
	}
	asOf := r.cfg.DecisionClock.On(day, r.cfg.Location)

	fv := r.builder.Build(c, asOf)
	decisions, err := r.engine.EvaluateAll(fv, r.cfg.Versions)
	if err != nil {
		return unit{}, err
	}
	u := unit{decisions: decisions}

	side := model.Flat
	for _, d := range decisions {
		if d.Version == r.cfg.Position {
			side = d.Action.Side()
		}
	}
	if side == model.Flat {
		return u, nil
	}

	prices, err := r.resolver.Day(c.Daily, c.Intraday, c.Date)
	if err == nil {
		var path model.ExitPath
		path, err = r.resolver.Path(c.Daily, c.Intraday, c.Date, side, r.cfg.Lot)
		if err == nil {
			for f, v := range fv.Values {
				path.Attributes[string(f)] = v
			}
			path.Attributes["entry"] = path.Entry
			u.path = &path

			exitPrice, ok := path.Price(r.cfg.ExitAt)
			if !ok {
				err = fmt.Errorf("no exit price at '%s' for '%s': %w", r.cfg.ExitAt, c.Instrument, model.ErrMissingData)
			} else {
				low, high := r.resolver.Extremes(c.Daily, prices, r.exitDays)
				p := stoploss.Position{
					Instrument: c.Instrument,
					Date:       path.Date,
					Side:       side,
					Entry:      path.Entry,
					Low:        low,
					High:       high,
					Exit:       exitPrice,
					Lot:        r.cfg.Lot,
				}
				if err = p.Validate(); err == nil {
					u.position = &p
				}
			}
		}
	}
	if err != nil {
		x := exclude(c, err)
		u.exclusion = &x
	}
	return u, nil
}

// Run evaluates all candidates and aggregates the simulations and exit analysis.
func (r *Runner) Run(ctx context.Context, candidates []model.Candidate, excluded ...Exclusion) (Report, error) {
	report := Report{
		RunID:       uuid.New().String(),
		Name:        r.cfg.Name,
		Started:     time.Now(),
		Decisions:   make([]model.Decision, 0),
		Simulations: make([]model.SimulationResult, 0),
		Tiers:       make([]stoploss.Summary, 0),
		Exits:       make([]exit.Row, 0),
		Exclusions:  append(make([]Exclusion, 0, len(excluded)), excluded...),
	}
	log.Info().
		Str("run", report.RunID).
		Str("name", r.cfg.Name).
		Int("candidates", len(candidates)).
		Strs("versions", r.cfg.Versions.Names()).
		Floats64("tiers", r.cfg.Tiers).
		Msg("starting backtest")

	results, err := concurrent.Map(ctx, r.cfg.Workers, candidates, r.evaluate)
	if err != nil {
		return report, fmt.Errorf("backtest '%s' aborted: %w", report.RunID, err)
	}

	positions := make([]stoploss.Position, 0)
	paths := make([]model.ExitPath, 0)
	for i, res := range results {
		if res.Err != nil {
			report.Exclusions = append(report.Exclusions, exclude(candidates[i], res.Err))
			continue
		}
		u := res.Value
		for _, d := range u.decisions {
			metrics.Observer.Decision(d.Version, string(d.Action))
		}
		report.Decisions = append(report.Decisions, u.decisions...)
		if u.exclusion != nil {
			report.Exclusions = append(report.Exclusions, *u.exclusion)
		}
		if u.path != nil {
			paths = append(paths, *u.path)
		}
		if u.position != nil {
			positions = append(positions, *u.position)
		}
	}
	for _, x := range report.Exclusions {
		metrics.Observer.Excluded(x.Reason)
		log.Debug().
			Str("instrument", string(x.Instrument)).
			Str("date", x.Date).
			Str("reason", x.Reason).
			Str("error", x.Error).
			Msg("excluded")
	}

	simulations, summaries, err := stoploss.Sweep(positions, r.cfg.Tiers)
	if err != nil {
		return report, err
	}
	for _, s := range simulations {
		if s.Triggered {
			metrics.Observer.Triggered(s.StopLossPct)
		}
	}
	report.Simulations = simulations
	report.Tiers = summaries
	report.Exits = r.optimizer.Analyze(paths)

	log.Info().
		Str("run", report.RunID).
		Int("decisions", len(report.Decisions)).
		Int("positions", len(positions)).
		Int("excluded", len(report.Exclusions)).
		Int("exit-rows", len(report.Exits)).
		Dur("duration", time.Since(report.Started)).
		Msg("backtest finished")
	return report, nil
}
