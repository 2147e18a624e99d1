//go:build unit

package engine

import (
	"math"
	"time"

	"walkforward/src/datamodels"
)

// newPriceTable builds an aligned table from per-symbol daily growth
// functions, one price per trading position starting 2020-01-02.
func newPriceTable(n int, series map[string]func(i int) float64) *datamodels.PriceTable {
	symbols := make([]string, 0, len(series))
	for sym := range series {
		symbols = append(symbols, sym)
	}
	// tables carry symbols sorted ascending
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			if symbols[j] < symbols[i] {
				symbols[i], symbols[j] = symbols[j], symbols[i]
			}
		}
	}

	base := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	table := &datamodels.PriceTable{
		Symbols: symbols,
		Dates:   make([]time.Time, n),
		Values:  make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		table.Dates[i] = base.AddDate(0, 0, i)
		row := make([]float64, len(symbols))
		for a, sym := range symbols {
			row[a] = series[sym](i)
		}
		table.Values[i] = row
	}
	return table
}

// growthSeries compounds a constant daily return from a 100.0 base.
func growthSeries(dailyReturn float64) func(i int) float64 {
	return func(i int) float64 {
		return 100.0 * math.Pow(1.0+dailyReturn, float64(i))
	}
}
