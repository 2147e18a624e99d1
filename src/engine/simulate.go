package engine

import (
	"math"
	"time"

	"walkforward/src/datamodels"
)

// EquitySegment is the equity curve of one simulated period, starting from a
// normalized 1.0 base.
type EquitySegment struct {
	Dates  []time.Time
	Values []float64
}

// SimulatePeriod replays a weight schedule against realized daily returns
// over px rows [start, end). The period starts from an all-cash baseline;
// the first date contributes a zero return and only establishes the starting
// equity. At each rebalance the transaction cost (turnover x feeRate) is
// charged before the day's return is applied with the post-rebalance
// weights. A TradeRecord is emitted only when the selected symbol set
// actually changed.
func SimulatePeriod(px *datamodels.PriceTable, start, end int, sched *WeightSchedule, feeRate float64) (*EquitySegment, []datamodels.TradeRecord) {
	n := end - start
	numAssets := px.NumAssets()

	segment := &EquitySegment{
		Dates:  px.Dates[start:end],
		Values: make([]float64, n),
	}

	var trades []datamodels.TradeRecord
	held := make([]float64, numAssets)
	var lastSelected []string
	equity := 1.0
	rebalance := 0

	for i := 0; i < n; i++ {
		if rebalance < len(sched.Rebalances) && sched.Rebalances[rebalance].Offset == i {
			point := sched.Rebalances[rebalance]
			rebalance++

			turnover := 0.0
			for a := 0; a < numAssets; a++ {
				turnover += math.Abs(point.Weights[a] - held[a])
			}
			cost := turnover * feeRate

			if !sameSymbolSet(point.Selected, lastSelected) {
				trades = append(trades, datamodels.TradeRecord{
					Date:     px.Dates[start+i],
					Lookback: sched.Lookback,
					Selected: point.Selected,
					Turnover: turnover,
					Cost:     cost,
				})
				lastSelected = point.Selected
			}

			held = point.Weights
			equity *= 1.0 - cost
		}

		if i > 0 {
			dayReturn := 0.0
			for a := 0; a < numAssets; a++ {
				if held[a] == 0 {
					continue
				}
				assetReturn := px.Values[start+i][a]/px.Values[start+i-1][a] - 1.0
				dayReturn += held[a] * assetReturn
			}
			equity *= 1.0 + dayReturn
		}

		segment.Values[i] = equity
	}

	return segment, trades
}

// sameSymbolSet compares two selections as sets; order and weights do not
// matter for trade emission.
func sameSymbolSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			return false
		}
	}
	return true
}
