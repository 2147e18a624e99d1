//go:build unit

package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkforward/src/datamodels"
	"walkforward/src/utils/errors"
)

func rotationParams() datamodels.BacktestParams {
	return datamodels.BacktestParams{
		Tickers:        []string{"AAA", "BBB"},
		Start:          "2020-01-02",
		End:            "2024-12-31",
		TrainDays:      100,
		TestDays:       20,
		RebalanceDays:  5,
		Lookbacks:      []int{10, 30},
		TopK:           1,
		FeeBps:         0,
		ShortSelection: datamodels.SelectionRenormalize,
	}
}

func trendingTable(n int) *datamodels.PriceTable {
	return newPriceTable(n, map[string]func(i int) float64{
		"AAA": growthSeries(0.003),
		"BBB": growthSeries(-0.001),
	})
}

func TestRunRollsContiguousWindows(t *testing.T) {
	px := trendingTable(800)
	params := rotationParams()

	result, err := Run(context.Background(), px, params)
	require.NoError(t, err)

	// (800 - 120) / 20 + 1 rolls
	require.Len(t, result.Windows, 35)
	require.Len(t, result.Equity, 35*params.TestDays)

	for w, record := range result.Windows {
		assert.Equal(t, w, record.Window)
		assert.Equal(t, px.Dates[w*params.TestDays], record.TrainStart)
		assert.Equal(t, px.Dates[w*params.TestDays+params.TrainDays], record.TestStart)
		if w > 0 {
			prev := result.Windows[w-1]
			// test segments tile the axis with no gap and no overlap
			assert.True(t, record.TestStart.After(prev.TestEnd))
			assert.Equal(t, prev.TestEnd.AddDate(0, 0, 1), record.TestStart)
		}
	}
}

func TestRunSelectsPersistentWinner(t *testing.T) {
	px := trendingTable(800)

	result, err := Run(context.Background(), px, rotationParams())
	require.NoError(t, err)

	// the short lookback enters the uptrend earlier in every train window,
	// so it wins the in-sample Sharpe search each roll
	for _, record := range result.Windows {
		assert.Equal(t, 10, record.BestLookback, "window %d", record.Window)
		assert.Greater(t, record.TrainSharpe, SentinelSharpe)
	}

	// one entry trade per test window, always into the trending asset
	require.Len(t, result.Trades, len(result.Windows))
	for _, trade := range result.Trades {
		assert.Equal(t, []string{"AAA"}, trade.Selected)
	}

	assert.Greater(t, result.Metrics.CAGR, 0.0)
}

func TestRunChainsEquityAcrossWindows(t *testing.T) {
	px := trendingTable(800)
	params := rotationParams()

	result, err := Run(context.Background(), px, params)
	require.NoError(t, err)

	for i := 1; i < len(result.Equity); i++ {
		assert.GreaterOrEqual(t, result.Equity[i].Value, result.Equity[i-1].Value,
			"chained equity must not dip without costs at %s", result.Equity[i].Date)
	}

	// every window starts exactly where the previous one ended
	for w := 1; w < len(result.Windows); w++ {
		boundary := w * params.TestDays
		assert.InDelta(t, result.Equity[boundary-1].Value, result.Equity[boundary].Value, 1e-12)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	px := trendingTable(600)
	params := rotationParams()

	first, err := Run(context.Background(), px, params)
	require.NoError(t, err)
	second, err := Run(context.Background(), px, params)
	require.NoError(t, err)

	// the lookback search runs concurrently but the pick is reduced in
	// candidate order, so repeated runs are bit-identical
	require.Equal(t, first.Windows, second.Windows)
	require.Equal(t, first.Trades, second.Trades)
	require.Equal(t, first.Equity, second.Equity)
	require.Equal(t, first.Metrics, second.Metrics)
}

func TestRunIgnoresFuturePrices(t *testing.T) {
	px := trendingTable(400)
	spiked := trendingTable(400)
	// a massive final-day spike in the laggard is visible to nothing that
	// trades before it
	b := spiked.SymbolIndex("BBB")
	spiked.Values[399][b] *= 100.0

	plain, err := Run(context.Background(), px, rotationParams())
	require.NoError(t, err)
	withSpike, err := Run(context.Background(), spiked, rotationParams())
	require.NoError(t, err)

	require.Equal(t, plain.Windows, withSpike.Windows)
	for _, trade := range withSpike.Trades {
		assert.NotContains(t, trade.Selected, "BBB")
	}
}

func TestRunNeverSelectsDegenerateLookback(t *testing.T) {
	params := rotationParams()
	params.TrainDays = 50
	params.TestDays = 20
	// the oversized candidate can never trade inside a 50-day train window,
	// so its train Sharpe is the sentinel; listed first, it must still lose
	params.Lookbacks = []int{200, 10}

	px := trendingTable(300)
	result, err := Run(context.Background(), px, params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Windows)
	for _, record := range result.Windows {
		assert.Equal(t, 10, record.BestLookback, "window %d", record.Window)
	}
}

func TestRunSingleAssetBuysAndHolds(t *testing.T) {
	const r = 0.002
	px := newPriceTable(200, map[string]func(i int) float64{
		"AAA": growthSeries(r),
	})
	params := rotationParams()
	params.Tickers = []string{"AAA"}
	params.TrainDays = 30
	params.TestDays = 10
	params.Lookbacks = []int{5}

	result, err := Run(context.Background(), px, params)
	require.NoError(t, err)

	// each 10-day test window re-enters at offset 5 and rides the asset for
	// the remaining 5 days, so the chained curve compounds 5 days per window
	require.Len(t, result.Windows, 17)
	last := result.Equity[len(result.Equity)-1].Value
	want := math.Pow(1.0+r, float64(5*len(result.Windows)))
	assert.InDelta(t, want, last, want*1e-9)

	for _, trade := range result.Trades {
		assert.Equal(t, []string{"AAA"}, trade.Selected)
	}
}

func TestRunInsufficientHistory(t *testing.T) {
	params := rotationParams()
	params.TrainDays = 60
	params.TestDays = 30
	params.Lookbacks = []int{10, 20}

	// one date short of train + test + max lookback
	px := trendingTable(109)
	_, err := Run(context.Background(), px, params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
}

func TestRunExactHistoryBoundary(t *testing.T) {
	params := rotationParams()
	params.TrainDays = 60
	params.TestDays = 30
	params.Lookbacks = []int{10, 20}

	px := trendingTable(110)
	result, err := Run(context.Background(), px, params)
	require.NoError(t, err)
	assert.Len(t, result.Windows, 1)
}
