package scoring

import (
	"fmt"

	"github.com/drakos74/tradescore/internal/model"
)

// Rule adds a score delta when the factor matches the condition.
type Rule struct {
	Name   string       `yaml:"name" json:"name"`
	Factor model.Factor `yaml:"factor" json:"factor"`
	When   Condition    `yaml:"when" json:"when"`
	Delta  float64      `yaml:"delta" json:"delta"`
	// Text is the rationale template, {factor} {value} and {condition} are replaced.
	Text string `yaml:"text" json:"text"`
	// Group marks mutually exclusive rules, only the first firing rule of a group counts.
	Group string `yaml:"group,omitempty" json:"group,omitempty"`
}

func (r Rule) validate() error {
	if !model.KnownFactor(r.Factor) {
		return fmt.Errorf("rule '%s' uses unknown factor '%s': %w", r.Name, r.Factor, model.ErrInvalidConfig)
	}
	if err := r.When.Validate(); err != nil {
		return fmt.Errorf("rule '%s': %w", r.Name, err)
	}
	return nil
}

// Override replaces the action when the factor matches, regardless of the score.
type Override struct {
	Name   string       `yaml:"name" json:"name"`
	Factor model.Factor `yaml:"factor" json:"factor"`
	When   Condition    `yaml:"when" json:"when"`
	Action model.Action `yaml:"action" json:"action"`
	Text   string       `yaml:"text" json:"text"`
}

func (o Override) validate() error {
	if !model.KnownFactor(o.Factor) {
		return fmt.Errorf("override '%s' uses unknown factor '%s': %w", o.Name, o.Factor, model.ErrInvalidConfig)
	}
	if !o.Action.Valid() {
		return fmt.Errorf("override '%s' has unknown action '%s': %w", o.Name, o.Action, model.ErrInvalidConfig)
	}
	if err := o.When.Validate(); err != nil {
		return fmt.Errorf("override '%s': %w", o.Name, err)
	}
	return nil
}

// Holding assigns a holding period to decisions of the given action within a factor band.
type Holding struct {
	Action model.Action `yaml:"action" json:"action"`
	Factor model.Factor `yaml:"factor" json:"factor"`
	When   Condition    `yaml:"when" json:"when"`
	// Then replaces the action, if set.
	Then  model.Action `yaml:"then,omitempty" json:"then,omitempty"`
	Days  int          `yaml:"days" json:"days"`
	Label string       `yaml:"label,omitempty" json:"label,omitempty"`
}

func (h Holding) validate() error {
	if !h.Action.Valid() {
		return fmt.Errorf("holding rule has unknown action '%s': %w", h.Action, model.ErrInvalidConfig)
	}
	if h.Then != model.NoAction && !h.Then.Valid() {
		return fmt.Errorf("holding rule has unknown target action '%s': %w", h.Then, model.ErrInvalidConfig)
	}
	if !model.KnownFactor(h.Factor) {
		return fmt.Errorf("holding rule uses unknown factor '%s': %w", h.Factor, model.ErrInvalidConfig)
	}
	if h.Days < 0 {
		return fmt.Errorf("holding rule has negative days %d: %w", h.Days, model.ErrInvalidConfig)
	}
	return h.When.Validate()
}
