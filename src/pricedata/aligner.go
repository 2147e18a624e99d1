package pricedata

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"walkforward/src/datamodels"
)

// Align loads every requested symbol from src and produces one dense
// PriceTable: series are joined on date, forward-filled, and any residual row
// with a missing value is dropped, then the table is clipped to [start, end].
// A symbol without a source is fatal, not a skip.
func Align(src PriceSource, symbols []string, start, end time.Time) (*datamodels.PriceTable, error) {
	if len(symbols) == 0 {
		return nil, wrapMissing("(none)", "no symbols requested")
	}

	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(s)
	}
	sort.Strings(upper)

	perSymbol := make(map[string]map[time.Time]float64, len(upper))
	dateSet := make(map[time.Time]struct{})
	for _, symbol := range upper {
		series, err := src.Series(symbol)
		if err != nil {
			return nil, err
		}
		bySymbol := make(map[time.Time]float64, len(series))
		for _, obs := range series {
			day := obs.Date.UTC().Truncate(24 * time.Hour)
			bySymbol[day] = obs.Close // duplicate dates keep the last observation
			dateSet[day] = struct{}{}
		}
		perSymbol[symbol] = bySymbol
	}

	allDates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		allDates = append(allDates, d)
	}
	sort.Slice(allDates, func(i, j int) bool { return allDates[i].Before(allDates[j]) })

	// Forward-fill over the union of dates, then drop rows that still have a
	// gap (dates before a symbol's first observation).
	table := &datamodels.PriceTable{Symbols: upper}
	last := make([]float64, len(upper))
	for i := range last {
		last[i] = math.NaN()
	}
	for _, day := range allDates {
		for i, symbol := range upper {
			if v, ok := perSymbol[symbol][day]; ok {
				last[i] = v
			}
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		dense := true
		for _, v := range last {
			if math.IsNaN(v) {
				dense = false
				break
			}
		}
		if !dense {
			continue
		}
		row := make([]float64, len(upper))
		copy(row, last)
		table.Dates = append(table.Dates, day)
		table.Values = append(table.Values, row)
	}

	slog.Info("Aligned price table",
		"symbols", upper,
		"rows", table.Len(),
		"requestedStart", start.Format("2006-01-02"),
		"requestedEnd", end.Format("2006-01-02"))

	return table, nil
}
