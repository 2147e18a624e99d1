package engine

import (
	"math"

	"github.com/montanaflynn/stats"

	"walkforward/src/datamodels"
)

const (
	// SentinelSharpe replaces an undefined Sharpe ratio (zero variance or too
	// few observations) so a degenerate candidate can never win a strict-`>`
	// selection against any finite value.
	SentinelSharpe = -1e9

	tradingDaysPerYear    = 252.0
	minSharpeObservations = 10
	minEquityObservations = 2
)

// DailyReturns converts an equity series into simple daily returns.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	rets := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		rets[i-1] = values[i]/values[i-1] - 1.0
	}
	return rets
}

// SharpeRatio annualizes mean/stddev of daily returns. Degenerate inputs map
// to SentinelSharpe rather than NaN or an error.
func SharpeRatio(dailyRets []float64) float64 {
	if len(dailyRets) < minSharpeObservations {
		return SentinelSharpe
	}
	sd, err := stats.StandardDeviationSample(dailyRets)
	if err != nil || sd == 0 || math.IsNaN(sd) {
		return SentinelSharpe
	}
	mean, err := stats.Mean(dailyRets)
	if err != nil {
		return SentinelSharpe
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

// ComputeMetrics derives the headline performance numbers from a chained
// equity curve. With fewer than 2 observations every metric is NaN; a
// zero-variance return series maps the Sharpe to SentinelSharpe per the
// selection rule.
func ComputeMetrics(values []float64) datamodels.PerformanceMetrics {
	nan := math.NaN()
	if len(values) < minEquityObservations {
		return datamodels.PerformanceMetrics{CAGR: nan, AnnVol: nan, Sharpe: nan, MaxDrawdown: nan}
	}

	rets := DailyReturns(values)
	metrics := datamodels.PerformanceMetrics{CAGR: nan, AnnVol: nan, Sharpe: nan}

	first, last := values[0], values[len(values)-1]
	if first > 0 {
		metrics.CAGR = math.Pow(last/first, tradingDaysPerYear/float64(len(rets))) - 1.0
	}

	if sd, err := stats.StandardDeviationSample(rets); err == nil && !math.IsNaN(sd) {
		metrics.AnnVol = sd * math.Sqrt(tradingDaysPerYear)
	}
	metrics.Sharpe = SharpeRatio(rets)

	peak := values[0]
	maxDrawdown := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := 1.0 - v/peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}
	metrics.MaxDrawdown = maxDrawdown

	return metrics
}
