package exit

import (
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/drakos74/tradescore/internal/buffer"
	"github.com/drakos74/tradescore/internal/model"
)

// Option is the payoff of exiting at a checkpoint.
type Option struct {
	Label  string  `json:"label"`
	Payoff float64 `json:"payoff"`
}

// Choice is the evaluation of a single path from a checkpoint on.
type Choice struct {
	From string `json:"from"`
	// Options holds exiting at From followed by each later checkpoint with a price.
	Options []Option `json:"options"`
	Best    Option   `json:"best"`
}

// Optimizer finds the best exit checkpoints over a population of exit paths.
type Optimizer struct {
	segmenters []Segmenter
	minCount   int
}

// NewOptimizer creates a new optimizer.
// Segments with fewer than minCount paths are left out of the analysis.
func NewOptimizer(minCount int, segmenters ...Segmenter) *Optimizer {
	if len(segmenters) == 0 {
		segmenters = []Segmenter{All{}}
	}
	return &Optimizer{
		segmenters: segmenters,
		minCount:   minCount,
	}
}

// Best compares exiting at the checkpoint with holding to each later checkpoint.
// Ties are resolved towards the earliest checkpoint.
// It returns false if the checkpoint is unknown or has no price.
func (o *Optimizer) Best(path model.ExitPath, from string) (Choice, bool) {
	start := -1
	for i, c := range path.Checkpoints {
		if c.Label == from {
			start = i
			break
		}
	}
	if start < 0 || !path.Checkpoints[start].Valid {
		return Choice{}, false
	}
	choice := Choice{
		From:    from,
		Options: make([]Option, 0, len(path.Checkpoints)-start),
	}
	for i, c := range path.Checkpoints[start:] {
		if !c.Valid {
			continue
		}
		option := Option{
			Label:  c.Label,
			Payoff: path.Payoff(c.Price),
		}
		choice.Options = append(choice.Options, option)
		if i == 0 || option.Payoff > choice.Best.Payoff {
			choice.Best = option
		}
	}
	return choice, true
}

// OptionStats aggregates the payoff of one exit option within a segment.
type OptionStats struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	// Chosen is the number of paths for which this option was the best exit.
	Chosen  int     `json:"chosen"`
	Total   float64 `json:"total"`
	Avg     float64 `json:"avg"`
	Median  float64 `json:"median"`
	WinRate float64 `json:"win_rate"`
}

// Row is the aggregate of a segment evaluated at one checkpoint.
type Row struct {
	Segmenter  string        `json:"segmenter"`
	Segment    string        `json:"segment"`
	Checkpoint string        `json:"checkpoint"`
	Count      int           `json:"count"`
	Options    []OptionStats `json:"options"`
	BestExit   string        `json:"best_exit"`
	BestTotal  float64       `json:"best_total"`
}

type optionAcc struct {
	stats   *buffer.Stats
	total   decimal.Decimal
	payoffs []float64
	chosen  int
}

type rowAcc struct {
	row     Row
	order   []string
	options map[string]*optionAcc
}

func (r *rowAcc) push(choice Choice) {
	r.row.Count++
	for _, opt := range choice.Options {
		acc, ok := r.options[opt.Label]
		if !ok {
			acc = &optionAcc{stats: buffer.NewStats()}
			r.options[opt.Label] = acc
		}
		acc.stats.Push(opt.Payoff)
		acc.total = acc.total.Add(decimal.NewFromFloat(opt.Payoff))
		acc.payoffs = append(acc.payoffs, opt.Payoff)
	}
	if acc, ok := r.options[choice.Best.Label]; ok {
		acc.chosen++
	}
}

func (r *rowAcc) finish() Row {
	row := r.row
	row.Options = make([]OptionStats, 0, len(r.options))
	var best decimal.Decimal
	for _, label := range r.order {
		acc, ok := r.options[label]
		if !ok {
			continue
		}
		sort.Float64s(acc.payoffs)
		total, _ := acc.total.Float64()
		row.Options = append(row.Options, OptionStats{
			Label:   label,
			Count:   acc.stats.Count(),
			Chosen:  acc.chosen,
			Total:   total,
			Avg:     acc.stats.Avg(),
			Median:  stat.Quantile(0.5, stat.Empirical, acc.payoffs, nil),
			WinRate: acc.stats.WinRate(false),
		})
		if row.BestExit == "" || acc.total.GreaterThan(best) {
			row.BestExit = label
			best = acc.total
		}
	}
	row.BestTotal, _ = best.Float64()
	return row
}

// Analyze evaluates every path at every checkpoint and aggregates the choices per segment.
// Paths are not modified, rows are sorted by segmenter, segment and canonical checkpoint order.
func (o *Optimizer) Analyze(paths []model.ExitPath) []Row {
	if len(paths) == 0 {
		return []Row{}
	}
	// canonical order follows the first path
	labels := make([]string, len(paths[0].Checkpoints))
	position := make(map[string]int, len(labels))
	for i, c := range paths[0].Checkpoints {
		labels[i] = c.Label
		position[c.Label] = i
	}

	type key struct {
		segmenter string
		segment   string
		from      string
	}
	rows := make(map[key]*rowAcc)
	for _, path := range paths {
		for i, from := range labels {
			choice, ok := o.Best(path, from)
			if !ok {
				continue
			}
			for _, s := range o.segmenters {
				segment, ok := s.Segment(path, from)
				if !ok {
					continue
				}
				k := key{segmenter: s.Name(), segment: segment, from: from}
				acc, ok := rows[k]
				if !ok {
					acc = &rowAcc{
						row: Row{
							Segmenter:  k.segmenter,
							Segment:    k.segment,
							Checkpoint: from,
						},
						order:   labels[i:],
						options: make(map[string]*optionAcc),
					}
					rows[k] = acc
				}
				acc.push(choice)
			}
		}
	}

	result := make([]Row, 0, len(rows))
	for _, acc := range rows {
		if acc.row.Count < o.minCount {
			continue
		}
		result = append(result, acc.finish())
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Segmenter != b.Segmenter {
			return a.Segmenter < b.Segmenter
		}
		if a.Segment != b.Segment {
			return a.Segment < b.Segment
		}
		return position[a.Checkpoint] < position[b.Checkpoint]
	})
	return result
}
