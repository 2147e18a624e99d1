//go:build unit

package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReturns(t *testing.T) {
	rets := DailyReturns([]float64{1.0, 1.1, 1.045})

	require.Len(t, rets, 2)
	assert.InDelta(t, 0.1, rets[0], 1e-12)
	assert.InDelta(t, -0.05, rets[1], 1e-12)

	assert.Nil(t, DailyReturns([]float64{1.0}))
	assert.Nil(t, DailyReturns(nil))
}

func TestSharpeRatioTooFewObservations(t *testing.T) {
	rets := []float64{0.01, 0.02, -0.01}
	assert.Equal(t, SentinelSharpe, SharpeRatio(rets))
}

func TestSharpeRatioZeroVariance(t *testing.T) {
	rets := make([]float64, 30)
	for i := range rets {
		rets[i] = 0.01
	}
	assert.Equal(t, SentinelSharpe, SharpeRatio(rets))
}

func TestSharpeRatioAnnualizes(t *testing.T) {
	// alternating returns with positive mean
	rets := make([]float64, 40)
	for i := range rets {
		if i%2 == 0 {
			rets[i] = 0.02
		} else {
			rets[i] = -0.01
		}
	}

	got := SharpeRatio(rets)

	mean := 0.005
	// sample stddev of the alternating series
	sumSq := 0.0
	for _, r := range rets {
		sumSq += (r - mean) * (r - mean)
	}
	sd := math.Sqrt(sumSq / float64(len(rets)-1))
	assert.InDelta(t, mean/sd*math.Sqrt(252.0), got, 1e-9)
}

func TestComputeMetricsTooShort(t *testing.T) {
	for _, values := range [][]float64{nil, {}, {1.0}} {
		m := ComputeMetrics(values)
		assert.True(t, math.IsNaN(m.CAGR))
		assert.True(t, math.IsNaN(m.AnnVol))
		assert.True(t, math.IsNaN(m.Sharpe))
		assert.True(t, math.IsNaN(m.MaxDrawdown))
	}
}

func TestComputeMetricsConstantGrowth(t *testing.T) {
	const r = 0.001
	values := make([]float64, 253)
	for i := range values {
		values[i] = math.Pow(1.0+r, float64(i))
	}

	m := ComputeMetrics(values)

	// one year of constant compounding: CAGR equals the total return
	assert.InDelta(t, math.Pow(1.0+r, 252.0)-1.0, m.CAGR, 1e-9)
	assert.InDelta(t, 0.0, m.AnnVol, 1e-9)
	assert.False(t, math.IsNaN(m.Sharpe))
	assert.Equal(t, 0.0, m.MaxDrawdown)
}

func TestComputeMetricsMaxDrawdown(t *testing.T) {
	values := []float64{1.0, 1.2, 0.9, 1.1, 1.3, 1.04}

	m := ComputeMetrics(values)

	// worst peak-to-trough: 1.2 down to 0.9
	assert.InDelta(t, 0.25, m.MaxDrawdown, 1e-12)
	assert.GreaterOrEqual(t, m.MaxDrawdown, 0.0)
}
