package indicator

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	coinmath "github.com/drakos74/tradescore/internal/math"
	"github.com/drakos74/tradescore/internal/model"
	cointime "github.com/drakos74/tradescore/internal/time"
)

// Config defines the look back periods of the indicators.
type Config struct {
	RSIPeriod      int `yaml:"rsi_period" json:"rsi_period"`
	DailyRSIPeriod int `yaml:"daily_rsi_period" json:"daily_rsi_period"`
	ATRPeriod      int `yaml:"atr_period" json:"atr_period"`
	VolumePeriod   int `yaml:"volume_period" json:"volume_period"`
	ShortMA        int `yaml:"short_ma" json:"short_ma"`
	LongMA         int `yaml:"long_ma" json:"long_ma"`
}

// DefaultConfig returns the standard indicator periods.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:      14,
		DailyRSIPeriod: 14,
		ATRPeriod:      14,
		VolumePeriod:   20,
		ShortMA:        5,
		LongMA:         25,
	}
}

func (cfg Config) orDefault() Config {
	def := DefaultConfig()
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = def.RSIPeriod
	}
	if cfg.DailyRSIPeriod <= 0 {
		cfg.DailyRSIPeriod = def.DailyRSIPeriod
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = def.ATRPeriod
	}
	if cfg.VolumePeriod <= 0 {
		cfg.VolumePeriod = def.VolumePeriod
	}
	if cfg.ShortMA <= 0 {
		cfg.ShortMA = def.ShortMA
	}
	if cfg.LongMA <= 0 {
		cfg.LongMA = def.LongMA
	}
	return cfg
}

// Builder derives feature vectors from the price history of candidates.
type Builder struct {
	cfg  Config
	loc  *time.Location
	calc *Calculator
}

// NewBuilder creates a new feature builder.
func NewBuilder(cfg Config, loc *time.Location) *Builder {
	return &Builder{
		cfg:  cfg.orDefault(),
		loc:  loc,
		calc: NewCalculator(loc),
	}
}

// Build creates the feature vector of the candidate at the given time.
// Only daily bars of sessions before asOf and intraday bars up to asOf are used.
// Features that cannot be computed are left out of the vector.
func (b *Builder) Build(c model.Candidate, asOf time.Time) model.FeatureVector {
	fv := model.NewFeatureVector(c.Instrument, asOf, c.Rank, c.Total)
	fv.Tags = c.Tags

	daily := b.completed(c.Daily, asOf)
	closes := model.Closes(daily)

	if n := len(closes); n > 0 {
		fv = fv.With(model.PrevClose, closes[n-1], false)
		if n > 1 {
			if change, ok := coinmath.ChangePct(closes[n-2], closes[n-1]); ok {
				fv = fv.With(model.DailyChangePct, change, false)
			}
		}
	}
	if rsi, ok := coinmath.RSI(closes, b.cfg.DailyRSIPeriod); ok {
		fv = fv.With(model.RSI14D, rsi, len(closes) <= b.cfg.DailyRSIPeriod)
	}
	if atr, ok := coinmath.ATRPct(daily, b.cfg.ATRPeriod); ok {
		fv = fv.With(model.ATRPct, atr, false)
	}
	if dev, ok := coinmath.DeviationPct(closes, b.cfg.ShortMA); ok {
		fv = fv.With(model.PriceVsSMA5Pct, dev, false)
	}
	if dev, ok := coinmath.DeviationPct(closes, b.cfg.LongMA); ok {
		fv = fv.With(model.PriceVsMA25Pct, dev, false)
	}
	volumes := make([]float64, len(daily))
	for i, bar := range daily {
		volumes[i] = bar.Volume
	}
	if ratio, ok := coinmath.VolumeRatio(volumes, b.cfg.VolumePeriod); ok {
		fv = fv.With(model.VolumeRatio20D, ratio, false)
	}

	intraday := c.Intraday.Until(asOf)
	if n := len(intraday); n > 0 && cointime.Day(intraday[n-1].Time, b.loc) == cointime.Day(asOf, b.loc) {
		fv = fv.With(model.CurrentPrice, intraday[n-1].Close, false)
	}
	if rsi, ok := b.calc.RSIAt(c.Intraday, DailyCloses(c.Daily, b.loc), asOf, b.cfg.RSIPeriod); ok {
		fv = fv.With(model.RSI, rsi.Value, rsi.LowConfidence)
	}

	// static attributes fill the factors not derived from prices
	for k, v := range c.Attributes {
		f := model.Factor(k)
		if !model.KnownFactor(f) {
			continue
		}
		if _, ok := fv.Get(f); ok {
			continue
		}
		x, err := cast.ToFloat64E(v)
		if err != nil || !coinmath.Finite(x) {
			log.Debug().
				Str("instrument", string(c.Instrument)).
				Str("attribute", k).
				Interface("value", v).
				Msg("ignoring attribute")
			continue
		}
		fv = fv.With(f, x, false)
	}
	return fv
}

// completed returns the daily bars of the sessions that closed before asOf.
func (b *Builder) completed(daily model.Series, asOf time.Time) []model.PriceBar {
	day := cointime.Day(asOf, b.loc)
	bars := daily.Until(asOf)
	i := len(bars)
	for i > 0 && cointime.Day(bars[i-1].Time, b.loc) >= day {
		i--
	}
	return bars[:i]
}
