package scoring

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"github.com/drakos74/tradescore/internal/model"
)

// Clause picks an action when all the named source decisions have the given actions.
type Clause struct {
	When map[string]model.Action `yaml:"when" json:"when"`
	Then model.Action            `yaml:"then" json:"then"`
	Text string                  `yaml:"text,omitempty" json:"text,omitempty"`
}

func (c Clause) match(decisions map[string]model.Decision) bool {
	for version, action := range c.When {
		if decisions[version].Action != action {
			return false
		}
	}
	return true
}

// Default is the outcome when no clause matches, either a fixed action or the action of a source.
type Default struct {
	Action model.Action `yaml:"action,omitempty" json:"action,omitempty"`
	Take   string       `yaml:"take,omitempty" json:"take,omitempty"`
}

// Hybrid is a rule set version composed from the decisions of other versions.
// It never looks at the scores of its sources.
type Hybrid struct {
	Version     string   `yaml:"version" json:"version"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Sources     []string `yaml:"sources" json:"sources"`
	Clauses     []Clause `yaml:"clauses" json:"clauses"`
	Default     Default  `yaml:"default" json:"default"`
	// Holding assigns holding periods to the composed decision.
	Holding []Holding `yaml:"holding,omitempty" json:"holding,omitempty"`
}

// Validate reports all configuration problems of the hybrid against the known versions.
func (h Hybrid) Validate(versions ...string) error {
	known := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		known[v] = struct{}{}
	}
	sources := make(map[string]struct{}, len(h.Sources))
	var err error
	if h.Version == "" {
		err = multierr.Append(err, fmt.Errorf("hybrid without version: %w", model.ErrInvalidConfig))
	}
	if len(h.Sources) == 0 {
		err = multierr.Append(err, fmt.Errorf("hybrid without sources: %w", model.ErrInvalidConfig))
	}
	for _, s := range h.Sources {
		if _, ok := known[s]; !ok {
			err = multierr.Append(err, fmt.Errorf("unknown source version '%s': %w", s, model.ErrInvalidConfig))
		}
		if s == h.Version {
			err = multierr.Append(err, fmt.Errorf("hybrid cannot use itself as source: %w", model.ErrInvalidConfig))
		}
		sources[s] = struct{}{}
	}
	for i, c := range h.Clauses {
		if len(c.When) == 0 {
			err = multierr.Append(err, fmt.Errorf("clause %d without condition: %w", i, model.ErrInvalidConfig))
		}
		for s, a := range c.When {
			if _, ok := sources[s]; !ok {
				err = multierr.Append(err, fmt.Errorf("clause %d references '%s' which is not a source: %w", i, s, model.ErrInvalidConfig))
			}
			if !a.Valid() {
				err = multierr.Append(err, fmt.Errorf("clause %d has unknown action '%s': %w", i, a, model.ErrInvalidConfig))
			}
		}
		if !c.Then.Valid() {
			err = multierr.Append(err, fmt.Errorf("clause %d has unknown action '%s': %w", i, c.Then, model.ErrInvalidConfig))
		}
	}
	switch {
	case h.Default.Action != model.NoAction && h.Default.Take != "":
		err = multierr.Append(err, fmt.Errorf("default must be either an action or a source: %w", model.ErrInvalidConfig))
	case h.Default.Action != model.NoAction:
		if !h.Default.Action.Valid() {
			err = multierr.Append(err, fmt.Errorf("default has unknown action '%s': %w", h.Default.Action, model.ErrInvalidConfig))
		}
	case h.Default.Take != "":
		if _, ok := sources[h.Default.Take]; !ok {
			err = multierr.Append(err, fmt.Errorf("default takes '%s' which is not a source: %w", h.Default.Take, model.ErrInvalidConfig))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("hybrid without default: %w", model.ErrInvalidConfig))
	}
	for _, hr := range h.Holding {
		err = multierr.Append(err, hr.validate())
	}
	if err != nil {
		return fmt.Errorf("invalid hybrid '%s': %w", h.Version, err)
	}
	return nil
}

// Compose derives the hybrid decision from the source decisions keyed by version.
// The hybrid carries a zero score, its rationale lists the source actions.
func (h Hybrid) Compose(decisions map[string]model.Decision) (model.Decision, error) {
	labels := make([]string, len(h.Sources))
	var first model.Decision
	confidence := 1.0
	for i, s := range h.Sources {
		d, ok := decisions[s]
		if !ok {
			return model.Decision{}, fmt.Errorf("no decision for source '%s' of '%s': %w", s, h.Version, model.ErrMissingData)
		}
		if i == 0 {
			first = d
		}
		if d.Confidence < confidence {
			confidence = d.Confidence
		}
		labels[i] = fmt.Sprintf("%s=%s", s, d.Action)
	}

	action := model.NoAction
	text := ""
	for _, c := range h.Clauses {
		if c.match(decisions) {
			action = c.Then
			text = c.Text
			if text == "" {
				text = strings.Join(sortedActions(c.When), " & ")
			}
			break
		}
	}
	if action == model.NoAction {
		if h.Default.Take != "" {
			action = decisions[h.Default.Take].Action
			text = fmt.Sprintf("default from %s", h.Default.Take)
		} else {
			action = h.Default.Action
			text = "default"
		}
	}

	return model.Decision{
		Instrument: first.Instrument,
		Date:       first.Date,
		Version:    h.Version,
		Action:     action,
		Confidence: confidence,
		Rationale: []model.Reason{{
			Text:     fmt.Sprintf("%s: %s -> %s", text, strings.Join(labels, " "), action),
			Override: true,
		}},
	}, nil
}

// ParseHybrid decodes a yaml hybrid definition.
// Sources are validated separately, once all versions are known.
func ParseHybrid(data []byte) (Hybrid, error) {
	var h Hybrid
	if err := decode(data, &h); err != nil {
		return Hybrid{}, err
	}
	return h, nil
}

// LoadHybrid reads the hybrid definition at the given path.
func LoadHybrid(path string) (Hybrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Hybrid{}, fmt.Errorf("could not read hybrid '%s': %w", path, err)
	}
	h, err := ParseHybrid(data)
	if err != nil {
		return Hybrid{}, fmt.Errorf("could not load hybrid '%s': %w", path, err)
	}
	log.Info().
		Str("version", h.Version).
		Strs("sources", h.Sources).
		Int("clauses", len(h.Clauses)).
		Str("path", path).
		Msg("loaded hybrid")
	return h, nil
}

// Versions is the set of rule sets and hybrids evaluated side by side.
type Versions struct {
	RuleSets []RuleSet
	Hybrids  []Hybrid
}

// Validate checks the rule sets and the hybrids against each other.
// Hybrids may use other hybrids declared before them.
func (v Versions) Validate() error {
	var err error
	seen := make(map[string]struct{})
	known := make([]string, 0, len(v.RuleSets)+len(v.Hybrids))
	add := func(version string) {
		if _, ok := seen[version]; ok {
			err = multierr.Append(err, fmt.Errorf("duplicate version '%s': %w", version, model.ErrInvalidConfig))
		}
		seen[version] = struct{}{}
		known = append(known, version)
	}
	for _, rs := range v.RuleSets {
		err = multierr.Append(err, rs.Validate())
		add(rs.Version)
	}
	for _, h := range v.Hybrids {
		err = multierr.Append(err, h.Validate(known...))
		add(h.Version)
	}
	return err
}

// Names returns all versions in evaluation order.
func (v Versions) Names() []string {
	names := make([]string, 0, len(v.RuleSets)+len(v.Hybrids))
	for _, rs := range v.RuleSets {
		names = append(names, rs.Version)
	}
	for _, h := range v.Hybrids {
		names = append(names, h.Version)
	}
	return names
}

// EvaluateAll produces the decisions of all versions for the feature vector.
func (e *Engine) EvaluateAll(fv model.FeatureVector, versions Versions) ([]model.Decision, error) {
	byVersion := make(map[string]model.Decision, len(versions.RuleSets)+len(versions.Hybrids))
	decisions := make([]model.Decision, 0, len(versions.RuleSets)+len(versions.Hybrids))
	for _, rs := range versions.RuleSets {
		d := e.Evaluate(fv, rs)
		byVersion[rs.Version] = d
		decisions = append(decisions, d)
	}
	for _, h := range versions.Hybrids {
		d, err := h.Compose(byVersion)
		if err != nil {
			return nil, err
		}
		d.HoldingDays, d.Label = applyHolding(&d, h.Holding, fv)
		byVersion[h.Version] = d
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// sortedActions lists the clause conditions in a stable order.
func sortedActions(m map[string]model.Action) []string {
	ss := make([]string, 0, len(m))
	for k, v := range m {
		ss = append(ss, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(ss)
	return ss
}
