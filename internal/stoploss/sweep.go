package stoploss

import (
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/drakos74/tradescore/internal/buffer"
	"github.com/drakos74/tradescore/internal/model"
)

// Summary aggregates the results of all positions under one stop-loss tier.
type Summary struct {
	StopLossPct float64 `json:"stop_loss_pct"`
	Count       int     `json:"count"`
	Triggered   int     `json:"triggered"`
	TriggerRate float64 `json:"trigger_rate"`
	Wins        int     `json:"wins"`
	Draws       int     `json:"draws"`
	Losses      int     `json:"losses"`
	// WinRate excludes the draws.
	WinRate   float64 `json:"win_rate"`
	TotalPnL  float64 `json:"total_pnl"`
	AvgPnL    float64 `json:"avg_pnl"`
	MedianPnL float64 `json:"median_pnl"`
	// Baseline is the outcome of the same positions without a stop-loss.
	BaselinePnL     float64 `json:"baseline_pnl"`
	BaselineWinRate float64 `json:"baseline_win_rate"`
	// PnLDelta is the sum of the per position difference to the baseline.
	PnLDelta           float64 `json:"pnl_delta"`
	OpportunityCases   int     `json:"opportunity_cases"`
	OpportunityLoss    float64 `json:"opportunity_loss"`
	AvgOpportunityLoss float64 `json:"avg_opportunity_loss"`
	// AvgLossReduction is the average improvement over the baseline of the triggered positions.
	AvgLossReduction float64 `json:"avg_loss_reduction"`
}

type accumulator struct {
	pct         float64
	stats       *buffer.Stats
	baseline    *buffer.Stats
	pnls        []float64
	triggered   int
	total       decimal.Decimal
	base        decimal.Decimal
	delta       decimal.Decimal
	opportunity decimal.Decimal
	cases       int
	reduction   decimal.Decimal
}

func newAccumulator(pct float64) *accumulator {
	return &accumulator{
		pct:      pct,
		stats:    buffer.NewStats(),
		baseline: buffer.NewStats(),
		pnls:     make([]float64, 0),
	}
}

func (a *accumulator) push(r model.SimulationResult) {
	realized := decimal.NewFromFloat(r.RealizedPnL)
	noStop := decimal.NewFromFloat(r.NoStopPnL)
	diff := realized.Sub(noStop)

	a.stats.Push(r.RealizedPnL)
	a.baseline.Push(r.NoStopPnL)
	a.pnls = append(a.pnls, r.RealizedPnL)
	a.total = a.total.Add(realized)
	a.base = a.base.Add(noStop)
	a.delta = a.delta.Add(diff)
	if r.Triggered {
		a.triggered++
		a.reduction = a.reduction.Add(diff)
	}
	if r.OpportunityLoss < 0 {
		a.cases++
		a.opportunity = a.opportunity.Add(decimal.NewFromFloat(r.OpportunityLoss))
	}
}

func (a *accumulator) summary() Summary {
	s := Summary{
		StopLossPct:      a.pct,
		Count:            a.stats.Count(),
		Triggered:        a.triggered,
		Wins:             a.stats.Wins(),
		Draws:            a.stats.Draws(),
		Losses:           a.stats.Losses(),
		WinRate:          a.stats.WinRate(true),
		BaselineWinRate:  a.baseline.WinRate(true),
		OpportunityCases: a.cases,
	}
	s.TotalPnL, _ = a.total.Float64()
	s.BaselinePnL, _ = a.base.Float64()
	s.PnLDelta, _ = a.delta.Float64()
	s.OpportunityLoss, _ = a.opportunity.Float64()
	if s.Count > 0 {
		n := decimal.NewFromInt(int64(s.Count))
		s.AvgPnL, _ = a.total.Div(n).Float64()
		s.TriggerRate = 100 * float64(a.triggered) / float64(s.Count)
		sort.Float64s(a.pnls)
		s.MedianPnL = stat.Quantile(0.5, stat.Empirical, a.pnls, nil)
	}
	if a.cases > 0 {
		s.AvgOpportunityLoss, _ = a.opportunity.Div(decimal.NewFromInt(int64(a.cases))).Float64()
	}
	if a.triggered > 0 {
		s.AvgLossReduction, _ = a.reduction.Div(decimal.NewFromInt(int64(a.triggered))).Float64()
	}
	return s
}

// Sweep simulates every position under every tier.
// Results are ordered by tier and then by position, summaries follow the tier order.
func Sweep(positions []Position, tiers Tiers) ([]model.SimulationResult, []Summary, error) {
	if err := tiers.Validate(); err != nil {
		return nil, nil, err
	}
	results := make([]model.SimulationResult, 0, len(positions)*len(tiers))
	summaries := make([]Summary, len(tiers))
	for i, pct := range tiers {
		acc := newAccumulator(pct)
		for _, p := range positions {
			r := p.Simulate(pct)
			acc.push(r)
			results = append(results, r)
		}
		summaries[i] = acc.summary()
	}
	return results, summaries, nil
}

// Summarize aggregates already simulated results per tier.
func Summarize(results []model.SimulationResult, tiers Tiers) []Summary {
	accs := make(map[float64]*accumulator, len(tiers))
	for _, pct := range tiers {
		accs[pct] = newAccumulator(pct)
	}
	for _, r := range results {
		if acc, ok := accs[r.StopLossPct]; ok {
			acc.push(r)
		}
	}
	summaries := make([]Summary, len(tiers))
	for i, pct := range tiers {
		summaries[i] = accs[pct].summary()
	}
	return summaries
}
