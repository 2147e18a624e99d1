package engine

import (
	"math"

	"walkforward/src/datamodels"
)

// MomentumScores computes the trailing total return of every asset at every
// position of the table: score[i][a] = price[i][a]/price[i-lookback][a] - 1.
// The lookback is positional (trading days), not a calendar offset. The first
// lookback rows are NaN; callers must not select on them.
func MomentumScores(px *datamodels.PriceTable, lookback int) [][]float64 {
	scores := make([][]float64, px.Len())
	for i := range scores {
		row := make([]float64, px.NumAssets())
		for a := range row {
			if i < lookback {
				row[a] = math.NaN()
				continue
			}
			row[a] = px.Values[i][a]/px.Values[i-lookback][a] - 1.0
		}
		scores[i] = row
	}
	return scores
}

// scoresAt computes the momentum score row for a single position, requiring
// that base >= 0 has been checked by the caller.
func scoresAt(px *datamodels.PriceTable, pos, lookback int) []float64 {
	row := make([]float64, px.NumAssets())
	base := pos - lookback
	for a := range row {
		row[a] = px.Values[pos][a]/px.Values[base][a] - 1.0
	}
	return row
}
