// Package stats rolls per-symbol position ledgers into portfolio level
// time series and summary metrics.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Drawdowns returns the peak-to-trough decline at every point of a
// value series: 1 − value/runningMax.
func Drawdowns(series []float64) []float64 {
	dd := make([]float64, len(series))
	peak := math.Inf(-1)
	for i, v := range series {
		if v > peak {
			peak = v
		}
		dd[i] = 1 - v/peak
	}
	return dd
}

// MaxDrawdown returns the largest drawdown of the series, 0 for a
// monotonically increasing one.
func MaxDrawdown(series []float64) float64 {
	var max float64
	for _, d := range Drawdowns(series) {
		if d > max {
			max = d
		}
	}
	return max
}

// AnnualizedReturn compounds the total return over the series to a
// 365-day horizon: (1 + (last − fund0)/fund0)^(365/N) − 1. When fund0
// is zero the first observation is used as the initial capital.
func AnnualizedReturn(series []float64, initialFund float64) float64 {
	if len(series) == 0 {
		return 0
	}
	if initialFund == 0 {
		initialFund = series[0]
	}
	total := (series[len(series)-1] - initialFund) / initialFund
	return math.Pow(1+total, 365/float64(len(series))) - 1
}

// PctChanges returns the step-over-step fractional changes of a series.
func PctChanges(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		if series[i-1] == 0 {
			continue
		}
		out = append(out, series[i]/series[i-1]-1)
	}
	return out
}

// SharpeRatio relates the annualized return in excess of the risk-free
// rate to the annualized volatility of daily returns.
func SharpeRatio(series []float64, riskFree float64) float64 {
	rets := PctChanges(series)
	if len(rets) < 2 {
		return 0
	}
	sd := stat.StdDev(rets, nil)
	if sd == 0 {
		return 0
	}
	ar := AnnualizedReturn(series, 0)
	return (ar - riskFree) / (sd * math.Sqrt(365))
}
