package scoring

// Stat is the historical outcome of the candidates at a rank.
type Stat struct {
	Rank    int     `json:"rank"`
	WinRate float64 `json:"win_rate"`
	Samples int     `json:"samples"`
}

// Calibration provides the historical statistics per rank.
type Calibration interface {
	Lookup(rank int) (Stat, bool)
}

// Table is an in-memory calibration keyed by rank.
type Table map[int]Stat

// NewTable indexes the given statistics by rank.
func NewTable(stats []Stat) Table {
	t := make(Table, len(stats))
	for _, s := range stats {
		t[s.Rank] = s
	}
	return t
}

// Lookup returns the statistics of the rank.
func (t Table) Lookup(rank int) (Stat, bool) {
	s, ok := t[rank]
	return s, ok
}
