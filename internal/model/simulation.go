package model

import "time"

// SimulationResult is the outcome of one position under one stop-loss tier.
type SimulationResult struct {
	Instrument        Instrument `json:"instrument"`
	Date              time.Time  `json:"date"`
	Side              Side       `json:"side"`
	EntryPrice        float64    `json:"entry_price"`
	StopLossPct       float64    `json:"stop_loss_pct"`
	StopPrice         float64    `json:"stop_price"`
	Triggered         bool       `json:"triggered"`
	RealizedReturnPct float64    `json:"realized_return_pct"`
	RealizedPnL       float64    `json:"realized_pnl"`
	NoStopPnL         float64    `json:"no_stop_pnl"`
	OpportunityLoss   float64    `json:"opportunity_loss"`
}
