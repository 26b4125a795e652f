package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"go.uber.org/multierr"

	"github.com/drakos74/tradescore/internal/exit"
	"github.com/drakos74/tradescore/internal/indicator"
	"github.com/drakos74/tradescore/internal/model"
	"github.com/drakos74/tradescore/internal/stoploss"
	cointime "github.com/drakos74/tradescore/internal/time"
)

const (
	envWorkers  = "TRADESCORE_WORKERS"
	envLogLevel = "TRADESCORE_LOG_LEVEL"
	envBrokers  = "TRADESCORE_KAFKA_BROKERS"
)

// Inputs locates the materialized input files.
type Inputs struct {
	Candidates  string `yaml:"candidates" json:"candidates"`
	Bars        string `yaml:"bars" json:"bars"`
	Calibration string `yaml:"calibration,omitempty" json:"calibration,omitempty"`
}

// Kafka configures the decision publisher.
type Kafka struct {
	Brokers []string `yaml:"brokers,omitempty" json:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty" json:"topic,omitempty"`
}

// Output configures the result sinks.
type Output struct {
	Dir   string `yaml:"dir,omitempty" json:"dir,omitempty"`
	Kafka Kafka  `yaml:"kafka,omitempty" json:"kafka,omitempty"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
	// MaxSize is the size in megabytes before the log file is rotated.
	MaxSize int `yaml:"max_size,omitempty" json:"max_size,omitempty"`
}

// Run is the configuration of a backtest run.
type Run struct {
	Name     string `yaml:"name" json:"name"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	Inputs   Inputs `yaml:"inputs" json:"inputs"`
	// DecisionClock is the time of day the features are computed at.
	DecisionClock cointime.Clock         `yaml:"decision_clock" json:"decision_clock"`
	Indicators    indicator.Config       `yaml:"indicators,omitempty" json:"indicators,omitempty"`
	Rules         []string               `yaml:"rules" json:"rules"`
	Hybrids       []string               `yaml:"hybrids,omitempty" json:"hybrids,omitempty"`
	Tiers         []float64              `yaml:"tiers" json:"tiers"`
	Checkpoints   []indicator.Checkpoint `yaml:"checkpoints" json:"checkpoints"`
	ExitAt        string                 `yaml:"exit_at" json:"exit_at"`
	Lot           float64                `yaml:"lot,omitempty" json:"lot,omitempty"`
	Segments      []exit.SegmentConfig   `yaml:"segments,omitempty" json:"segments,omitempty"`
	MinCount      int                    `yaml:"min_count,omitempty" json:"min_count,omitempty"`
	Workers       int                    `yaml:"workers,omitempty" json:"workers,omitempty"`
	Output        Output                 `yaml:"output,omitempty" json:"output,omitempty"`
	Log           Log                    `yaml:"log,omitempty" json:"log,omitempty"`
	MetricsAddr   string                 `yaml:"metrics_addr,omitempty" json:"metrics_addr,omitempty"`
}

// LoadRun loads the run configuration, applies the environment overrides and validates it.
// An empty file falls back to the default backtest config.
func LoadRun(file string) (Run, error) {
	var run Run
	if file == "" {
		MustLoad("backtest", &run)
	} else if err := Load(file, &run); err != nil {
		return Run{}, err
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	if err := run.Override(os.Getenv); err != nil {
		return Run{}, err
	}
	if err := run.Validate(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Override applies the environment overrides from the given lookup.
func (r *Run) Override(getenv func(string) string) error {
	if v := getenv(envWorkers); v != "" {
		workers, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envWorkers, v, model.ErrInvalidConfig)
		}
		r.Workers = workers
	}
	if v := getenv(envLogLevel); v != "" {
		r.Log.Level = v
	}
	if v := getenv(envBrokers); v != "" {
		brokers := make([]string, 0)
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		r.Output.Kafka.Brokers = brokers
	}
	return nil
}

// Validate reports all the problems of the run configuration.
func (r Run) Validate() error {
	var err error
	if r.Inputs.Candidates == "" || r.Inputs.Bars == "" {
		err = multierr.Append(err, fmt.Errorf("candidates and bars inputs are required: %w", model.ErrInvalidConfig))
	}
	if len(r.Rules) == 0 {
		err = multierr.Append(err, fmt.Errorf("no rule sets: %w", model.ErrInvalidConfig))
	}
	err = multierr.Append(err, stoploss.Tiers(r.Tiers).Validate())
	labels := make(map[string]struct{}, len(r.Checkpoints))
	for _, c := range r.Checkpoints {
		err = multierr.Append(err, c.Validate())
		labels[c.Label] = struct{}{}
	}
	if _, ok := labels[r.ExitAt]; !ok {
		err = multierr.Append(err, fmt.Errorf("exit checkpoint '%s' is not declared: %w", r.ExitAt, model.ErrInvalidConfig))
	}
	if r.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("negative workers %d: %w", r.Workers, model.ErrInvalidConfig))
	}
	if r.Lot < 0 {
		err = multierr.Append(err, fmt.Errorf("negative lot %v: %w", r.Lot, model.ErrInvalidConfig))
	}
	if _, e := cointime.Location(r.Location); e != nil {
		err = multierr.Append(err, fmt.Errorf("%s: %w", e.Error(), model.ErrInvalidConfig))
	}
	if err != nil {
		return fmt.Errorf("invalid run config '%s': %w", r.Name, err)
	}
	return nil
}
