package math

import (
	"github.com/markcheno/go-talib"

	"github.com/drakos74/tradescore/internal/model"
)

// neutralRSI is reported when the window has no price movement at all.
const neutralRSI = 50.0

// RSI calculates the relative strength index on the given closes.
// It uses the last period deltas, or all of them if fewer are available.
// The result is gains / (gains + losses) * 100, which is the same as 100 - 100/(1+avgGain/avgLoss)
// for equally sized averages. It returns false only if no delta can be computed.
func RSI(closes []float64, period int) (float64, bool) {
	if len(closes) < 2 || period <= 0 {
		return 0, false
	}
	deltas := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if !Finite(d) {
			continue
		}
		deltas = append(deltas, d)
	}
	if len(deltas) == 0 {
		return 0, false
	}
	n := period
	if n > len(deltas) {
		n = len(deltas)
	}

	pos := 0.0
	neg := 0.0
	for _, d := range deltas[len(deltas)-n:] {
		if d > 0 {
			pos += d
		} else {
			neg -= d
		}
	}

	if pos+neg == 0 {
		return neutralRSI, true
	}
	rsi := 100 * pos / (pos + neg)
	// guard against rounding at the edges
	if rsi < 0 {
		rsi = 0
	} else if rsi > 100 {
		rsi = 100
	}
	return rsi, true
}

// TrueRange returns the true range of each bar.
// The first bar has no previous close, so its range is high - low.
func TrueRange(bars []model.PriceBar) []float64 {
	tr := make([]float64, len(bars))
	for i, b := range bars {
		r := b.High - b.Low
		if i > 0 {
			pc := bars[i-1].Close
			if h := abs(b.High - pc); h > r {
				r = h
			}
			if l := abs(b.Low - pc); l > r {
				r = l
			}
		}
		tr[i] = r
	}
	return tr
}

// ATRPct is the exponential moving average of the true range, as a percentage of the latest close.
// It needs at least period bars.
func ATRPct(bars []model.PriceBar, period int) (float64, bool) {
	if period <= 0 || len(bars) < period {
		return 0, false
	}
	last := bars[len(bars)-1].Close
	if last <= 0 {
		return 0, false
	}
	ema := talib.Ema(TrueRange(bars), period)
	atr := ema[len(ema)-1]
	if !Finite(atr) {
		return 0, false
	}
	return 100 * atr / last, true
}

// SMA is the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	sma := talib.Sma(values, period)
	return sma[len(sma)-1], true
}

// DeviationPct returns how far the last value is from its moving average, in percent.
func DeviationPct(values []float64, period int) (float64, bool) {
	avg, ok := SMA(values, period)
	if !ok || avg <= 0 {
		return 0, false
	}
	return ChangePct(avg, values[len(values)-1])
}

// VolumeRatio returns the last volume over the average of the period volumes before it.
func VolumeRatio(volumes []float64, period int) (float64, bool) {
	if period <= 0 || len(volumes) < period+1 {
		return 0, false
	}
	prev := volumes[len(volumes)-1-period : len(volumes)-1]
	avg, ok := Mean(prev)
	if !ok || avg <= 0 {
		return 0, false
	}
	return volumes[len(volumes)-1] / avg, true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
