package datamodels

import "time"

// PriceTable is a dense multi-asset table of adjusted daily close prices.
// Dates are strictly ascending and every date carries a price for every
// symbol. Symbols are sorted ascending so that rank tie-breaks are
// deterministic.
type PriceTable struct {
	Dates   []time.Time
	Symbols []string
	Values  [][]float64 // one row per date, one column per symbol
}

func (t *PriceTable) Len() int {
	return len(t.Dates)
}

func (t *PriceTable) NumAssets() int {
	return len(t.Symbols)
}

// SymbolIndex returns the column of symbol, or -1 if absent.
func (t *PriceTable) SymbolIndex(symbol string) int {
	for i, s := range t.Symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}
