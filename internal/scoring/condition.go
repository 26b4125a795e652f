package scoring

import (
	"fmt"
	"strings"

	coinmath "github.com/drakos74/tradescore/internal/math"
	"github.com/drakos74/tradescore/internal/model"
)

// Operator is the comparison of a condition.
type Operator string

const (
	// Lt matches values below the threshold.
	Lt Operator = "<"
	// Le matches values up to the threshold.
	Le Operator = "<="
	// Gt matches values above the threshold.
	Gt Operator = ">"
	// Ge matches values from the threshold.
	Ge Operator = ">="
	// Between matches values in the band [min,max).
	Between Operator = "between"
	// Inside matches values in the open band (min,max).
	Inside Operator = "inside"
	// Within matches values in the closed band [min,max].
	Within Operator = "within"
)

// Condition is a predicate on a single factor value.
type Condition struct {
	Op    Operator `yaml:"op" json:"op"`
	Value float64  `yaml:"value,omitempty" json:"value,omitempty"`
	Min   float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max   float64  `yaml:"max,omitempty" json:"max,omitempty"`
}

// Match checks the value against the condition.
func (c Condition) Match(x float64) bool {
	if !coinmath.Finite(x) {
		return false
	}
	switch c.Op {
	case Lt:
		return x < c.Value
	case Le:
		return x <= c.Value
	case Gt:
		return x > c.Value
	case Ge:
		return x >= c.Value
	case Between:
		return x >= c.Min && x < c.Max
	case Inside:
		return x > c.Min && x < c.Max
	case Within:
		return x >= c.Min && x <= c.Max
	}
	return false
}

// Validate checks that the condition can be evaluated.
func (c Condition) Validate() error {
	switch c.Op {
	case Lt, Le, Gt, Ge:
		return nil
	case Between, Inside, Within:
		if c.Min >= c.Max {
			return fmt.Errorf("empty band [%v,%v): %w", c.Min, c.Max, model.ErrInvalidConfig)
		}
		return nil
	}
	return fmt.Errorf("unknown operator '%s': %w", c.Op, model.ErrInvalidConfig)
}

func (c Condition) String() string {
	switch c.Op {
	case Between:
		return fmt.Sprintf("[%v,%v)", c.Min, c.Max)
	case Inside:
		return fmt.Sprintf("(%v,%v)", c.Min, c.Max)
	case Within:
		return fmt.Sprintf("[%v,%v]", c.Min, c.Max)
	}
	return fmt.Sprintf("%s %v", c.Op, c.Value)
}

// render fills in the rationale template.
func render(tmpl string, f model.Factor, x float64, c Condition) string {
	if tmpl == "" {
		tmpl = "{factor} {value} {condition}"
	}
	return strings.NewReplacer(
		"{factor}", string(f),
		"{value}", coinmath.Format(x),
		"{condition}", c.String(),
	).Replace(tmpl)
}
