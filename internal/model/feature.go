package model

import (
	"sort"
	"time"
)

// Factor names a feature a scoring rule can depend on.
type Factor string

const (
	// RankPosition is the relative cross-sectional rank, 0 for the top and 1 for the bottom.
	RankPosition Factor = "rank_position"
	// RSI is the intraday session-stitched rsi at the as-of time.
	RSI Factor = "rsi"
	// RSI14D is the daily rsi over the last 14 sessions.
	RSI14D Factor = "rsi_14d"
	// ATRPct is the average true range as a percentage of the latest close.
	ATRPct Factor = "atr_pct"
	// DailyChangePct is the last session change in percent.
	DailyChangePct Factor = "daily_change_pct"
	// VolumeRatio20D is the last session volume over the average of the 20 before.
	VolumeRatio20D Factor = "volume_ratio_20d"
	// PriceVsSMA5Pct is the deviation of the latest close from the 5 session average.
	PriceVsSMA5Pct Factor = "price_vs_sma5_pct"
	// PriceVsMA25Pct is the deviation of the latest close from the 25 session average.
	PriceVsMA25Pct Factor = "price_vs_ma25_pct"
	// PrevClose is the previous session close.
	PrevClose Factor = "prev_close"
	// CurrentPrice is the latest known price at the as-of time.
	CurrentPrice Factor = "current_price"
	// ROE is the return on equity static attribute.
	ROE Factor = "roe"
	// OperatingProfitGrowth is the operating profit growth static attribute.
	OperatingProfitGrowth Factor = "operating_profit_growth"
)

var factors = map[Factor]struct{}{
	RankPosition:          {},
	RSI:                   {},
	RSI14D:                {},
	ATRPct:                {},
	DailyChangePct:        {},
	VolumeRatio20D:        {},
	PriceVsSMA5Pct:        {},
	PriceVsMA25Pct:        {},
	PrevClose:             {},
	CurrentPrice:          {},
	ROE:                   {},
	OperatingProfitGrowth: {},
}

// KnownFactor checks if the factor is part of the registry.
func KnownFactor(f Factor) bool {
	_, ok := factors[f]
	return ok
}

// KnownFactors returns all registered factors in a stable order.
func KnownFactors() []Factor {
	ff := make([]Factor, 0, len(factors))
	for f := range factors {
		ff = append(ff, f)
	}
	sort.Slice(ff, func(i, j int) bool {
		return ff[i] < ff[j]
	})
	return ff
}

// FeatureVector is the read-only snapshot of the features of an instrument at a point in time.
type FeatureVector struct {
	Instrument Instrument         `json:"instrument"`
	AsOf       time.Time          `json:"as_of"`
	Rank       int                `json:"rank"`
	Total      int                `json:"total"`
	Tags       []string           `json:"tags,omitempty"`
	Values     map[Factor]float64 `json:"values"`
	// LowConfidence holds the factors computed on a degraded window.
	LowConfidence map[Factor]bool `json:"low_confidence,omitempty"`
}

// NewFeatureVector creates an empty feature vector.
func NewFeatureVector(instrument Instrument, asOf time.Time, rank, total int) FeatureVector {
	fv := FeatureVector{
		Instrument:    instrument,
		AsOf:          asOf,
		Rank:          rank,
		Total:         total,
		Values:        make(map[Factor]float64),
		LowConfidence: make(map[Factor]bool),
	}
	if rank > 0 && total > 0 {
		fv.Values[RankPosition] = RelativeRank(rank, total)
	}
	return fv
}

// With returns a copy of the vector with the given value set.
func (fv FeatureVector) With(f Factor, v float64, lowConfidence bool) FeatureVector {
	values := make(map[Factor]float64, len(fv.Values)+1)
	for k, x := range fv.Values {
		values[k] = x
	}
	values[f] = v
	low := make(map[Factor]bool, len(fv.LowConfidence)+1)
	for k, x := range fv.LowConfidence {
		low[k] = x
	}
	if lowConfidence {
		low[f] = true
	} else {
		delete(low, f)
	}
	fv.Values = values
	fv.LowConfidence = low
	return fv
}

// Get returns the value of the factor if it is available.
func (fv FeatureVector) Get(f Factor) (float64, bool) {
	v, ok := fv.Values[f]
	return v, ok
}

// HasTag checks if the vector carries the given category tag.
func (fv FeatureVector) HasTag(tag string) bool {
	for _, t := range fv.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RelativeRank maps a 1-based rank into [0,1], 0 being the top.
func RelativeRank(rank, total int) float64 {
	d := total - 1
	if d < 1 {
		d = 1
	}
	return float64(rank-1) / float64(d)
}
