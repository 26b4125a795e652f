package scoring

import (
	"fmt"

	"github.com/drakos74/tradescore/internal/model"
)

// lowConfidencePenalty scales the confidence if any fired rule used a degraded feature.
const lowConfidencePenalty = 0.8

// Engine evaluates rule sets on feature vectors.
type Engine struct {
	calibration Calibration
}

// NewEngine creates a new scoring engine.
// A nil calibration means the base score is based only on the rank position.
func NewEngine(calibration Calibration) *Engine {
	return &Engine{calibration: calibration}
}

type evaluation struct {
	decision   model.Decision
	considered int
	available  int
	scale      float64
	low        bool
	skipped    map[model.Factor]struct{}
}

func (ev *evaluation) skip(f model.Factor) {
	if _, ok := ev.skipped[f]; ok {
		return
	}
	ev.skipped[f] = struct{}{}
	ev.decision.Skipped = append(ev.decision.Skipped, f)
}

func (ev *evaluation) add(reason model.Reason, low bool) {
	ev.decision.TotalScore += reason.Delta
	ev.decision.Rationale = append(ev.decision.Rationale, reason)
	if low {
		ev.low = true
	}
}

// Evaluate scores the feature vector with the rule set and maps the score to a decision.
// Rules whose factor is missing are skipped.
// The rationale deltas always add up to the total score.
func (e *Engine) Evaluate(fv model.FeatureVector, rs RuleSet) model.Decision {
	ev := &evaluation{
		decision: model.Decision{
			Instrument: fv.Instrument,
			Date:       fv.AsOf,
			Version:    rs.Version,
			Rationale:  make([]model.Reason, 0),
		},
		scale:   1,
		skipped: make(map[model.Factor]struct{}),
	}

	if !rs.Base.empty() {
		ev.considered++
		if position, ok := fv.Get(model.RankPosition); ok {
			ev.available++
			reason, thin := e.base(fv, position, rs.Base)
			if thin {
				ev.scale = rs.Base.scale()
			}
			ev.add(reason, fv.LowConfidence[model.RankPosition])
		} else {
			ev.skip(model.RankPosition)
		}
	}

	fired := make(map[string]struct{})
	for _, r := range rs.Rules {
		ev.considered++
		x, ok := fv.Get(r.Factor)
		if !ok {
			ev.skip(r.Factor)
			continue
		}
		ev.available++
		if r.Group != "" {
			if _, ok := fired[r.Group]; ok {
				continue
			}
		}
		if !r.When.Match(x) {
			continue
		}
		if r.Group != "" {
			fired[r.Group] = struct{}{}
		}
		ev.add(model.Reason{
			Factor: r.Factor,
			Delta:  r.Delta,
			Text:   render(r.Text, r.Factor, x, r.When),
		}, fv.LowConfidence[r.Factor])
	}

	ev.decision.Action = rs.Thresholds.Action(ev.decision.TotalScore)

	for _, o := range rs.Overrides {
		x, ok := fv.Get(o.Factor)
		if !ok {
			ev.skip(o.Factor)
			continue
		}
		if !o.When.Match(x) {
			continue
		}
		ev.decision.Action = o.Action
		ev.decision.Rationale = append(ev.decision.Rationale, model.Reason{
			Factor:   o.Factor,
			Text:     render(o.Text, o.Factor, x, o.When),
			Override: true,
		})
		break
	}

	ev.decision.HoldingDays, ev.decision.Label = applyHolding(&ev.decision, rs.Holding, fv)

	confidence := 1.0
	if ev.considered > 0 {
		confidence = float64(ev.available) / float64(ev.considered)
	}
	confidence *= ev.scale
	if ev.low {
		confidence *= lowConfidencePenalty
	}
	ev.decision.Confidence = confidence
	return ev.decision
}

// base computes the rank based score and reports whether the calibration sample was too thin.
func (e *Engine) base(fv model.FeatureVector, position float64, base Base) (model.Reason, bool) {
	score := 0.0
	text := fmt.Sprintf("rank %d/%d", fv.Rank, fv.Total)
	if bucket, ok := base.bucket(position); ok {
		score += bucket.Score
		if bucket.Label != "" {
			text = fmt.Sprintf("%s %s", text, bucket.Label)
		}
	}
	thin := false
	if e.calibration != nil {
		if stat, ok := e.calibration.Lookup(fv.Rank); ok {
			if s, ok := base.tier(stat.WinRate); ok {
				score += s
			}
			text = fmt.Sprintf("%s win rate %.1f%% (%d samples)", text, stat.WinRate, stat.Samples)
			if stat.Samples < base.MinSamples {
				thin = true
				score *= base.scale()
				text = fmt.Sprintf("%s thin sample x%v", text, base.scale())
			}
		}
	}
	return model.Reason{
		Factor: model.RankPosition,
		Delta:  score,
		Text:   text,
	}, thin
}

// applyHolding assigns the holding period of the first matching holding rule.
func applyHolding(d *model.Decision, rules []Holding, fv model.FeatureVector) (int, string) {
	for _, h := range rules {
		if h.Action != d.Action {
			continue
		}
		x, ok := fv.Get(h.Factor)
		if !ok || !h.When.Match(x) {
			continue
		}
		if h.Then != model.NoAction && h.Then != d.Action {
			d.Rationale = append(d.Rationale, model.Reason{
				Factor:   h.Factor,
				Text:     fmt.Sprintf("%s %s %s -> %s", h.Factor, h.When.String(), d.Action, h.Then),
				Override: true,
			})
			d.Action = h.Then
		}
		return h.Days, h.Label
	}
	return 0, ""
}
