package scoring

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/drakos74/tradescore/internal/model"
)

// DefaultThinSampleScale is applied to the base score when the calibration sample is too small.
const DefaultThinSampleScale = 0.7

// Bucket is a band of the relative rank position, above the previous bucket edge and up to Max included.
type Bucket struct {
	Max   float64 `yaml:"max" json:"max"`
	Score float64 `yaml:"score" json:"score"`
	Label string  `yaml:"label,omitempty" json:"label,omitempty"`
}

// Tier adds a score when the historical win rate of the rank is at least Min,
// or strictly above Min if Exclusive is set.
type Tier struct {
	Min       float64 `yaml:"min" json:"min"`
	Exclusive bool    `yaml:"exclusive,omitempty" json:"exclusive,omitempty"`
	Score     float64 `yaml:"score" json:"score"`
}

func (t Tier) reached(winRate float64) bool {
	if t.Exclusive {
		return winRate > t.Min
	}
	return winRate >= t.Min
}

// Base is the calibration of the base score on the cross-sectional rank.
type Base struct {
	Buckets         []Bucket `yaml:"buckets,omitempty" json:"buckets,omitempty"`
	Tiers           []Tier   `yaml:"win_rate_tiers,omitempty" json:"win_rate_tiers,omitempty"`
	MinSamples      int      `yaml:"min_samples,omitempty" json:"min_samples,omitempty"`
	ThinSampleScale float64  `yaml:"thin_sample_scale,omitempty" json:"thin_sample_scale,omitempty"`
}

func (b Base) empty() bool {
	return len(b.Buckets) == 0 && len(b.Tiers) == 0
}

func (b Base) scale() float64 {
	if b.ThinSampleScale <= 0 {
		return DefaultThinSampleScale
	}
	return b.ThinSampleScale
}

// bucket returns the bucket the relative rank falls in.
func (b Base) bucket(position float64) (Bucket, bool) {
	for _, bucket := range b.Buckets {
		if position <= bucket.Max {
			return bucket, true
		}
	}
	return Bucket{}, false
}

// tier returns the score of the highest tier the win rate reaches.
func (b Base) tier(winRate float64) (float64, bool) {
	for i := len(b.Tiers) - 1; i >= 0; i-- {
		if b.Tiers[i].reached(winRate) {
			return b.Tiers[i].Score, true
		}
	}
	return 0, false
}

func (b Base) validate() error {
	var err error
	for i, bucket := range b.Buckets {
		if i > 0 && bucket.Max <= b.Buckets[i-1].Max {
			err = multierr.Append(err, fmt.Errorf("rank buckets must be increasing at %d: %w", i, model.ErrInvalidConfig))
		}
	}
	for i, tier := range b.Tiers {
		if i == 0 {
			continue
		}
		prev := b.Tiers[i-1]
		if tier.Min <= prev.Min {
			err = multierr.Append(err, fmt.Errorf("win rate tiers must be increasing at %d: %w", i, model.ErrInvalidConfig))
		}
		if tier.Score < prev.Score {
			err = multierr.Append(err, fmt.Errorf("win rate tier scores must not decrease at %d: %w", i, model.ErrInvalidConfig))
		}
	}
	if b.MinSamples < 0 {
		err = multierr.Append(err, fmt.Errorf("negative min samples: %w", model.ErrInvalidConfig))
	}
	if b.ThinSampleScale < 0 || b.ThinSampleScale > 1 {
		err = multierr.Append(err, fmt.Errorf("thin sample scale %v outside [0,1]: %w", b.ThinSampleScale, model.ErrInvalidConfig))
	}
	return err
}

// Thresholds map the total score to an action.
type Thresholds struct {
	Buy  float64 `yaml:"buy" json:"buy"`
	Sell float64 `yaml:"sell" json:"sell"`
}

// Action maps the score to the action.
func (t Thresholds) Action(score float64) model.Action {
	if score >= t.Buy {
		return model.Buy
	}
	if score <= t.Sell {
		return model.Sell
	}
	return model.Hold
}

// RuleSet is a named and versioned scoring configuration.
type RuleSet struct {
	Version     string     `yaml:"version" json:"version"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Base        Base       `yaml:"base,omitempty" json:"base,omitempty"`
	Rules       []Rule     `yaml:"rules" json:"rules"`
	Thresholds  Thresholds `yaml:"thresholds" json:"thresholds"`
	Overrides   []Override `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	Holding     []Holding  `yaml:"holding,omitempty" json:"holding,omitempty"`
}

// Validate reports all configuration problems of the rule set.
func (rs RuleSet) Validate() error {
	var err error
	if rs.Version == "" {
		err = multierr.Append(err, fmt.Errorf("rule set without version: %w", model.ErrInvalidConfig))
	}
	if rs.Thresholds.Buy <= rs.Thresholds.Sell {
		err = multierr.Append(err, fmt.Errorf("buy threshold %v must be above sell threshold %v: %w",
			rs.Thresholds.Buy, rs.Thresholds.Sell, model.ErrInvalidConfig))
	}
	err = multierr.Append(err, rs.Base.validate())
	for _, r := range rs.Rules {
		err = multierr.Append(err, r.validate())
	}
	for _, o := range rs.Overrides {
		err = multierr.Append(err, o.validate())
	}
	for _, h := range rs.Holding {
		err = multierr.Append(err, h.validate())
	}
	if err != nil {
		return fmt.Errorf("invalid rule set '%s': %w", rs.Version, err)
	}
	return nil
}

// ParseRuleSet decodes and validates a yaml rule set.
func ParseRuleSet(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := decode(data, &rs); err != nil {
		return RuleSet{}, err
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// LoadRuleSet reads and validates the rule set at the given path.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("could not read rule set '%s': %w", path, err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return RuleSet{}, fmt.Errorf("could not load rule set '%s': %w", path, err)
	}
	log.Info().
		Str("version", rs.Version).
		Int("rules", len(rs.Rules)).
		Int("overrides", len(rs.Overrides)).
		Str("path", path).
		Msg("loaded rule set")
	return rs, nil
}

func decode(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("could not decode: %s: %w", err.Error(), model.ErrInvalidConfig)
	}
	return nil
}
