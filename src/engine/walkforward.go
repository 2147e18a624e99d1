package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"walkforward/src/datamodels"
	"walkforward/src/utils/errors"
)

// Run executes the full walk-forward backtest over an aligned price table.
//
// A cursor t0 rolls across the table: train = [t0, t0+trainDays), test =
// [t0+trainDays, t0+trainDays+testDays). Each roll searches the candidate
// lookbacks on the train window, keeps the one with the strictly highest
// in-sample Sharpe (first seen wins ties), re-simulates the test window with
// it, and splices the test equity onto the running chained curve. The cursor
// then advances by testDays so successive test segments are contiguous and
// non-overlapping. Train simulations are used only for selection and
// discarded.
func Run(ctx context.Context, px *datamodels.PriceTable, params datamodels.BacktestParams) (*datamodels.BacktestResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	need := params.TrainDays + params.TestDays + params.MaxLookback()
	if px.Len() < need {
		return nil, errors.Wrapf(ErrInsufficientHistory,
			"have %d aligned dates, need at least %d (train %d + test %d + max lookback %d)",
			px.Len(), need, params.TrainDays, params.TestDays, params.MaxLookback())
	}

	result := &datamodels.BacktestResult{}
	feeRate := params.FeeRate()
	chainScale := 1.0
	windowNo := 0

	for t0 := 0; t0+params.TrainDays+params.TestDays <= px.Len(); t0 += params.TestDays {
		trainStart := t0
		trainEnd := t0 + params.TrainDays
		testEnd := trainEnd + params.TestDays

		bestLookback, bestSharpe, err := selectLookback(ctx, px, trainStart, trainEnd, feeRate, params)
		if err != nil {
			return nil, err
		}

		sched := BuildWeightSchedule(px, trainEnd, testEnd, bestLookback,
			params.RebalanceDays, params.TopK, params.ShortSelection)
		segment, trades := SimulatePeriod(px, trainEnd, testEnd, sched, feeRate)

		for i, v := range segment.Values {
			result.Equity = append(result.Equity, datamodels.EquityPoint{
				Date:  segment.Dates[i],
				Value: v * chainScale,
			})
		}
		for _, trade := range trades {
			trade.Window = windowNo
			result.Trades = append(result.Trades, trade)
		}
		result.Windows = append(result.Windows, datamodels.WindowRecord{
			Window:       windowNo,
			TrainStart:   px.Dates[trainStart],
			TrainEnd:     px.Dates[trainEnd-1],
			TestStart:    px.Dates[trainEnd],
			TestEnd:      px.Dates[testEnd-1],
			BestLookback: bestLookback,
			TrainSharpe:  bestSharpe,
		})

		slog.Debug("Completed walk-forward window",
			"window", windowNo,
			"bestLookback", bestLookback,
			"trainSharpe", bestSharpe)

		chainScale = result.Equity[len(result.Equity)-1].Value
		windowNo++
	}

	if windowNo == 0 {
		return nil, errors.Wrap(ErrNoWindows, "check the requested date range against train/test lengths")
	}

	equityValues := make([]float64, len(result.Equity))
	for i, p := range result.Equity {
		equityValues[i] = p.Value
	}
	result.Metrics = ComputeMetrics(equityValues)

	return result, nil
}

// selectLookback simulates every candidate lookback over the train window
// concurrently and picks the winner deterministically after all candidates
// finish: strictly higher Sharpe wins, the earlier candidate keeps ties.
func selectLookback(ctx context.Context, px *datamodels.PriceTable, trainStart, trainEnd int, feeRate float64, params datamodels.BacktestParams) (int, float64, error) {
	sharpes := make([]float64, len(params.Lookbacks))

	g, _ := errgroup.WithContext(ctx)
	for i, lookback := range params.Lookbacks {
		g.Go(func() error {
			sched := BuildWeightSchedule(px, trainStart, trainEnd, lookback,
				params.RebalanceDays, params.TopK, params.ShortSelection)
			segment, _ := SimulatePeriod(px, trainStart, trainEnd, sched, feeRate)
			sharpes[i] = SharpeRatio(DailyReturns(segment.Values))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	bestLookback := params.Lookbacks[0]
	bestSharpe := sharpes[0]
	for i := 1; i < len(sharpes); i++ {
		if sharpes[i] > bestSharpe {
			bestSharpe = sharpes[i]
			bestLookback = params.Lookbacks[i]
		}
	}
	return bestLookback, bestSharpe, nil
}
