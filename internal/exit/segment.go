package exit

import (
	"fmt"
	"time"

	"github.com/drakos74/tradescore/internal/model"
	cointime "github.com/drakos74/tradescore/internal/time"
)

// Segmenter splits the population of exit paths into groups.
type Segmenter interface {
	Name() string
	// Segment returns the group of the path when evaluated at the given checkpoint.
	Segment(path model.ExitPath, checkpoint string) (string, bool)
}

// All puts every path in the same segment.
type All struct{}

// Name returns the segmenter name.
func (All) Name() string {
	return "all"
}

// Segment returns the single segment.
func (All) Segment(model.ExitPath, string) (string, bool) {
	return "all", true
}

// Weekday segments by the weekday of the entry.
type Weekday struct {
	loc *time.Location
}

// NewWeekday creates a weekday segmenter in the given location.
func NewWeekday(loc *time.Location) Weekday {
	return Weekday{loc: loc}
}

// Name returns the segmenter name.
func (w Weekday) Name() string {
	return "weekday"
}

// Segment returns the weekday label.
func (w Weekday) Segment(path model.ExitPath, _ string) (string, bool) {
	if path.Date.IsZero() {
		return "", false
	}
	return cointime.Weekday(path.Date, w.loc), true
}

// Bracket segments by the band a value falls in.
// Edges are increasing, values below the first edge or from the last edge on form their own bands.
type Bracket struct {
	name  string
	key   string
	edges []float64
	// indicator reads the value from the indicators at the checkpoint instead of the path attributes.
	indicator bool
}

// NewBracket creates a bracket segmenter on a path attribute e.g. the entry price.
func NewBracket(name, attribute string, edges ...float64) Bracket {
	return Bracket{name: name, key: attribute, edges: edges}
}

// NewIndicatorBracket creates a bracket segmenter on an indicator reading at the checkpoint.
func NewIndicatorBracket(name, indicator string, edges ...float64) Bracket {
	return Bracket{name: name, key: indicator, edges: edges, indicator: true}
}

// Name returns the segmenter name.
func (b Bracket) Name() string {
	return b.name
}

// Segment returns the band label of the value.
func (b Bracket) Segment(path model.ExitPath, checkpoint string) (string, bool) {
	var v float64
	var ok bool
	if b.indicator {
		v, ok = path.Indicators[checkpoint][b.key]
	} else {
		v, ok = path.Attributes[b.key]
	}
	if !ok {
		return "", false
	}
	return band(v, b.edges), true
}

func band(v float64, edges []float64) string {
	if len(edges) == 0 {
		return "all"
	}
	if v < edges[0] {
		return fmt.Sprintf("<%v", edges[0])
	}
	for i := 1; i < len(edges); i++ {
		if v < edges[i] {
			return fmt.Sprintf("[%v,%v)", edges[i-1], edges[i])
		}
	}
	return fmt.Sprintf(">=%v", edges[len(edges)-1])
}

// SegmentKind selects the segmenter implementation.
type SegmentKind string

const (
	// AllSegment groups all paths together.
	AllSegment SegmentKind = "all"
	// WeekdaySegment groups by entry weekday.
	WeekdaySegment SegmentKind = "weekday"
	// AttributeSegment groups by a path attribute band.
	AttributeSegment SegmentKind = "attribute"
	// IndicatorSegment groups by an indicator band at the checkpoint.
	IndicatorSegment SegmentKind = "indicator"
)

// SegmentConfig declares a segmenter.
type SegmentConfig struct {
	Name  string      `yaml:"name" json:"name"`
	Kind  SegmentKind `yaml:"kind" json:"kind"`
	Key   string      `yaml:"key,omitempty" json:"key,omitempty"`
	Edges []float64   `yaml:"edges,omitempty" json:"edges,omitempty"`
}

// NewSegmenter creates the segmenter from its declaration.
func NewSegmenter(cfg SegmentConfig, loc *time.Location) (Segmenter, error) {
	for i := 1; i < len(cfg.Edges); i++ {
		if cfg.Edges[i] <= cfg.Edges[i-1] {
			return nil, fmt.Errorf("segment '%s' edges must be increasing: %w", cfg.Name, model.ErrInvalidConfig)
		}
	}
	name := cfg.Name
	if name == "" {
		name = string(cfg.Kind)
	}
	switch cfg.Kind {
	case AllSegment:
		return All{}, nil
	case WeekdaySegment:
		return NewWeekday(loc), nil
	case AttributeSegment, IndicatorSegment:
		if cfg.Key == "" {
			return nil, fmt.Errorf("segment '%s' needs a key: %w", name, model.ErrInvalidConfig)
		}
		if cfg.Kind == IndicatorSegment {
			return NewIndicatorBracket(name, cfg.Key, cfg.Edges...), nil
		}
		return NewBracket(name, cfg.Key, cfg.Edges...), nil
	}
	return nil, fmt.Errorf("unknown segment kind '%s': %w", cfg.Kind, model.ErrInvalidConfig)
}
