package pricedata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingData means a requested symbol has no discoverable source.
	ErrMissingData = errors.New("missing price data source")
	// ErrMalformedData means a source exists but its schema or a row is unusable.
	ErrMalformedData = errors.New("malformed price data")
)

// ClosePrice is one raw daily observation for a single symbol.
type ClosePrice struct {
	Date  time.Time
	Close float64
}

// PriceSource supplies the raw daily close series for one symbol. The aligner
// is the only consumer; injecting the source keeps the engine testable with
// synthetic in-memory tables.
type PriceSource interface {
	Series(symbol string) ([]ClosePrice, error)
}

const csvDateLayout = "2006-01-02"

// CsvDirSource reads one SYMBOL.csv per asset from a directory. Files are
// expected in the shape the fetch script writes: a header row containing at
// least Date and Close columns.
type CsvDirSource struct {
	dir string
}

func NewCsvDirSource(dir string) *CsvDirSource {
	return &CsvDirSource{dir: dir}
}

func (s *CsvDirSource) Series(symbol string) ([]ClosePrice, error) {
	path := filepath.Join(s.dir, strings.ToUpper(symbol)+".csv")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wrapMissing(symbol, path)
		}
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, wrapMalformed(path, "cannot read header", err)
	}

	dateCol, closeCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Date":
			dateCol = i
		case "Close":
			closeCol = i
		}
	}
	if dateCol == -1 || closeCol == -1 {
		return nil, wrapMalformed(path, "header must contain Date and Close columns", nil)
	}

	var series []ClosePrice
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapMalformed(path, "cannot read row", err)
		}
		if len(record) <= dateCol || len(record) <= closeCol {
			return nil, wrapMalformed(path, "row is missing fields", nil)
		}

		date, err := time.Parse(csvDateLayout, strings.TrimSpace(record[dateCol]))
		if err != nil {
			return nil, wrapMalformed(path, "cannot parse date "+record[dateCol], err)
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			return nil, wrapMalformed(path, "cannot parse close "+record[closeCol], err)
		}
		if closePrice <= 0 {
			return nil, wrapMalformed(path, "close price must be positive", nil)
		}

		series = append(series, ClosePrice{Date: date, Close: closePrice})
	}

	return series, nil
}

func wrapMissing(symbol, where string) error {
	return fmt.Errorf("%w: no data for %s (%s)", ErrMissingData, symbol, where)
}

func wrapMalformed(path, msg string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %s: %v", ErrMalformedData, path, msg, err)
	}
	return fmt.Errorf("%w: %s: %s", ErrMalformedData, path, msg)
}

// MemorySource is a test double backed by in-memory series, keyed by symbol.
type MemorySource map[string][]ClosePrice

func (m MemorySource) Series(symbol string) ([]ClosePrice, error) {
	series, ok := m[strings.ToUpper(symbol)]
	if !ok {
		return nil, wrapMissing(symbol, "memory source")
	}
	out := make([]ClosePrice, len(series))
	copy(out, series)
	return out, nil
}
