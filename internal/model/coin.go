package model

import (
	"fmt"
	"strings"
)

// Instrument identifies a tradable instrument e.g. a ticker.
type Instrument string

// Action is the discrete trading decision for an instrument.
type Action string

const (
	// NoAction means the action is missing.
	NoAction Action = ""
	// Buy opens or keeps a long position.
	Buy Action = "Buy"
	// Sell opens or keeps a short position.
	Sell Action = "Sell"
	// Hold means no position.
	Hold Action = "Hold"
)

// ParseAction parses the given label into an action.
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long":
		return Buy, true
	case "sell", "short":
		return Sell, true
	case "hold":
		return Hold, true
	}
	return NoAction, false
}

// Valid checks if the action is one of the known actions.
func (a Action) Valid() bool {
	return a == Buy || a == Sell || a == Hold
}

// UnmarshalText decodes the action from any of its labels.
func (a *Action) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*a = NoAction
		return nil
	}
	action, ok := ParseAction(string(b))
	if !ok {
		return fmt.Errorf("unknown action '%s': %w", string(b), ErrInvalidConfig)
	}
	*a = action
	return nil
}

// Side returns the position side the action opens.
func (a Action) Side() Side {
	switch a {
	case Buy:
		return Long
	case Sell:
		return Short
	}
	return Flat
}

// Side defines the direction of a position.
type Side byte

const (
	// Flat defines no position.
	Flat Side = iota
	// Long profits when the price goes up.
	Long
	// Short profits when the price goes down.
	Short
)

// Sign returns the appropriate sign for the given side for mathematical operations.
func (s Side) Sign() float64 {
	switch s {
	case Long:
		return 1.0
	case Short:
		return -1.0
	}
	return 0.0
}

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return "flat"
}

// MarshalText encodes the side as its label.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes the side from its label.
func (s *Side) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "long":
		*s = Long
	case "short":
		*s = Short
	default:
		*s = Flat
	}
	return nil
}
