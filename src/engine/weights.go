package engine

import (
	"sort"

	"walkforward/src/datamodels"
)

// RebalancePoint is one recomputation of the held selection.
type RebalancePoint struct {
	Offset   int      // 0-based position within the simulated range
	Selected []string // ordered by score descending, ties by symbol ascending
	Weights  []float64
}

// WeightSchedule is a piecewise-constant weight step function over a
// contiguous range of table positions. Weights change only at rebalance
// offsets; rows sum to 1.0 when a selection is active and 0.0 when in cash
// (with the keep_target policy a short selection sums to selected/topK).
type WeightSchedule struct {
	Lookback   int
	Weights    [][]float64 // one row per position in [start, end)
	Rebalances []RebalancePoint
}

// BuildWeightSchedule constructs the schedule over px rows [start, end).
// Offsets that are a multiple of rebalanceEvery recompute the top-K
// selection from momentum scores; between rebalances the prior weights are
// held regardless of score drift. A selection needs lookback prior positions
// inside the range; before that the schedule stays fully in cash.
func BuildWeightSchedule(px *datamodels.PriceTable, start, end, lookback, rebalanceEvery, topK int, policy datamodels.SelectionPolicy) *WeightSchedule {
	n := end - start
	numAssets := px.NumAssets()

	sched := &WeightSchedule{
		Lookback: lookback,
		Weights:  make([][]float64, n),
	}

	held := make([]float64, numAssets)
	for i := 0; i < n; i++ {
		if i%rebalanceEvery == 0 {
			selected, weights := selectTopK(px, start+i, i, lookback, topK, policy)
			held = weights
			sched.Rebalances = append(sched.Rebalances, RebalancePoint{
				Offset:   i,
				Selected: selected,
				Weights:  cloneWeights(weights),
			})
		}
		sched.Weights[i] = cloneWeights(held)
	}

	return sched
}

// selectTopK ranks assets by momentum score at table position pos and
// returns the ordered selection with its weight vector. offset is the
// window-local position; with fewer than lookback prior observations the
// selection is empty rather than an error.
func selectTopK(px *datamodels.PriceTable, pos, offset, lookback, topK int, policy datamodels.SelectionPolicy) ([]string, []float64) {
	numAssets := px.NumAssets()
	weights := make([]float64, numAssets)
	if offset < lookback {
		return nil, weights
	}

	scores := scoresAt(px, pos, lookback)
	order := make([]int, numAssets)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		si, sj := scores[order[i]], scores[order[j]]
		if si == sj {
			return px.Symbols[order[i]] < px.Symbols[order[j]]
		}
		return si > sj
	})

	k := topK
	if k > numAssets {
		k = numAssets
	}

	perAsset := 1.0 / float64(k)
	if policy == datamodels.SelectionKeepTarget {
		perAsset = 1.0 / float64(topK)
	}

	selected := make([]string, 0, k)
	for _, a := range order[:k] {
		selected = append(selected, px.Symbols[a])
		weights[a] = perAsset
	}
	return selected, weights
}

func cloneWeights(w []float64) []float64 {
	out := make([]float64, len(w))
	copy(out, w)
	return out
}
