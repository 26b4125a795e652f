package backtest

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/drakos74/tradescore/internal/model"
	"github.com/drakos74/tradescore/internal/scoring"
	"github.com/drakos74/tradescore/internal/storage"
	"github.com/drakos74/tradescore/internal/storage/file/json"
)

// Bars is the price history file of one instrument.
type Bars struct {
	Instrument model.Instrument `json:"instrument"`
	Daily      []model.PriceBar `json:"daily"`
	Intraday   []model.PriceBar `json:"intraday"`
}

// Exclusion marks a unit of work that could not be evaluated.
type Exclusion struct {
	Instrument model.Instrument `json:"instrument"`
	Date       string           `json:"date"`
	Reason     string           `json:"reason"`
	Error      string           `json:"error,omitempty"`
}

func exclude(c model.Candidate, err error) Exclusion {
	return Exclusion{
		Instrument: c.Instrument,
		Date:       c.Date,
		Reason:     reason(err),
		Error:      err.Error(),
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, model.ErrMissingData), errors.Is(err, storage.NotFoundErr):
		return "missing data"
	case errors.Is(err, model.ErrInvalidData):
		return "invalid data"
	}
	return "error"
}

// LoadCandidates reads the candidates and attaches the price history of each instrument from barsDir.
// Candidates whose bars cannot be loaded are returned as exclusions.
func LoadCandidates(candidatesFile, barsDir string) ([]model.Candidate, []Exclusion, error) {
	candidates := make([]model.Candidate, 0)
	if err := json.LoadFile(candidatesFile, &candidates); err != nil {
		return nil, nil, fmt.Errorf("could not load candidates: %w", err)
	}

	totals := make(map[string]int)
	for _, c := range candidates {
		totals[c.Date]++
	}

	type history struct {
		daily    model.Series
		intraday model.Series
		err      error
	}
	cache := make(map[model.Instrument]history)
	load := func(instrument model.Instrument) history {
		if h, ok := cache[instrument]; ok {
			return h
		}
		var h history
		var bars Bars
		if err := json.Load(barsDir, string(instrument), &bars); err != nil {
			h.err = fmt.Errorf("no bars for '%s': %w", instrument, err)
		} else if h.daily, h.err = model.NewSeries(instrument, bars.Daily); h.err == nil {
			h.intraday, h.err = model.NewSeries(instrument, bars.Intraday)
		}
		cache[instrument] = h
		return h
	}

	loaded := make([]model.Candidate, 0, len(candidates))
	exclusions := make([]Exclusion, 0)
	for _, c := range candidates {
		if c.Total == 0 {
			c.Total = totals[c.Date]
		}
		h := load(c.Instrument)
		if h.err != nil {
			exclusions = append(exclusions, exclude(c, h.err))
			continue
		}
		c.Daily = h.daily
		c.Intraday = h.intraday
		loaded = append(loaded, c)
	}
	sort.SliceStable(loaded, func(i, j int) bool {
		if loaded[i].Date != loaded[j].Date {
			return loaded[i].Date < loaded[j].Date
		}
		return loaded[i].Rank < loaded[j].Rank
	})
	log.Info().
		Int("candidates", len(candidates)).
		Int("instruments", len(cache)).
		Int("excluded", len(exclusions)).
		Str("bars", filepath.Clean(barsDir)).
		Msg("loaded candidates")
	return loaded, exclusions, nil
}

// LoadCalibration reads the win rate statistics per rank.
func LoadCalibration(file string) (scoring.Table, error) {
	stats := make([]scoring.Stat, 0)
	if err := json.LoadFile(file, &stats); err != nil {
		return nil, fmt.Errorf("could not load calibration: %w", err)
	}
	return scoring.NewTable(stats), nil
}
