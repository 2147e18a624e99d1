package datamodels

import (
	"time"

	"github.com/spf13/viper"

	"walkforward/src/utils/errors"
	"walkforward/src/utils/general"
)

// SelectionPolicy resolves what happens when fewer assets than top_k are
// selectable at a rebalance date.
type SelectionPolicy string

const (
	// SelectionRenormalize spreads the full target weight across however many
	// assets were actually selected.
	SelectionRenormalize SelectionPolicy = "renormalize"
	// SelectionKeepTarget keeps 1/top_k per selected asset and leaves the
	// residual weight uninvested.
	SelectionKeepTarget SelectionPolicy = "keep_target"
)

const dateLayout = "2006-01-02"

// BacktestParams contains every knob of one walk-forward momentum backtest.
// Window lengths and cadences are in trading days, lookbacks in trading
// positions, the fee in basis points of turnover.
type BacktestParams struct {
	Tickers        []string        `mapstructure:"tickers" json:"tickers"`
	Start          string          `mapstructure:"start" json:"start"`
	End            string          `mapstructure:"end" json:"end"`
	TrainDays      int             `mapstructure:"train_days" json:"train_days"`
	TestDays       int             `mapstructure:"test_days" json:"test_days"`
	RebalanceDays  int             `mapstructure:"rebalance_days" json:"rebalance_days"`
	Lookbacks      []int           `mapstructure:"lookbacks" json:"lookbacks"`
	TopK           int             `mapstructure:"top_k" json:"top_k"`
	FeeBps         float64         `mapstructure:"fee_bps" json:"fee_bps"`
	ShortSelection SelectionPolicy `mapstructure:"short_selection_policy" json:"short_selection_policy"`
}

// DefaultBacktestParams returns the stock configuration used when a run is
// created without explicit parameters. The 5 bps fee applies only to fully
// defaulted runs; partial params keep whatever FeeBps they carry, including
// zero (see WithDefaults).
func DefaultBacktestParams() BacktestParams {
	return BacktestParams{
		Tickers:        []string{"SPY", "QQQ", "IWM", "EFA", "TLT", "GLD"},
		Start:          "2015-01-01",
		End:            "2024-12-31",
		TrainDays:      504,
		TestDays:       63,
		RebalanceDays:  5,
		Lookbacks:      []int{20, 40, 60, 90, 120, 180, 252},
		TopK:           1,
		FeeBps:         5.0,
		ShortSelection: SelectionRenormalize,
	}
}

// WithDefaults fills every zero-valued field from DefaultBacktestParams,
// leaving set fields untouched. FeeBps is the one exception: zero is a valid
// explicit choice (free trading), so it is never replaced with the default
// fee.
func (p BacktestParams) WithDefaults() BacktestParams {
	defaults := DefaultBacktestParams()
	if len(p.Tickers) == 0 {
		p.Tickers = defaults.Tickers
	}
	if p.Start == "" {
		p.Start = defaults.Start
	}
	if p.End == "" {
		p.End = defaults.End
	}
	if p.TrainDays == 0 {
		p.TrainDays = defaults.TrainDays
	}
	if p.TestDays == 0 {
		p.TestDays = defaults.TestDays
	}
	if p.RebalanceDays == 0 {
		p.RebalanceDays = defaults.RebalanceDays
	}
	if len(p.Lookbacks) == 0 {
		p.Lookbacks = defaults.Lookbacks
	}
	if p.TopK == 0 {
		p.TopK = defaults.TopK
	}
	// FeeBps stays as provided: zero means free trading, not unset
	if p.ShortSelection == "" {
		p.ShortSelection = defaults.ShortSelection
	}
	return p
}

func (p *BacktestParams) Validate() error {
	if len(p.Tickers) == 0 {
		return errors.New("tickers are required")
	}
	if !general.NoDuplicateItemsInSlice(p.Tickers) {
		return errors.New("tickers must be unique")
	}
	start, err := p.StartTime()
	if err != nil {
		return errors.Wrapf(err, "invalid start date %q", p.Start)
	}
	end, err := p.EndTime()
	if err != nil {
		return errors.Wrapf(err, "invalid end date %q", p.End)
	}
	if !end.After(start) {
		return errors.New("end date must be after start date")
	}
	if p.TrainDays <= 0 {
		return errors.New("train_days must be greater than 0")
	}
	if p.TestDays <= 0 {
		return errors.New("test_days must be greater than 0")
	}
	if p.RebalanceDays <= 0 {
		return errors.New("rebalance_days must be greater than 0")
	}
	if len(p.Lookbacks) == 0 {
		return errors.New("lookbacks are required")
	}
	for _, lb := range p.Lookbacks {
		if lb <= 0 {
			return errors.Newf("lookback %d must be greater than 0", lb)
		}
	}
	if !general.NoDuplicateItemsInSlice(p.Lookbacks) {
		return errors.New("lookbacks must be unique")
	}
	if p.TopK <= 0 {
		return errors.New("top_k must be greater than 0")
	}
	if p.FeeBps < 0 {
		return errors.New("fee_bps cannot be negative")
	}
	switch p.ShortSelection {
	case SelectionRenormalize, SelectionKeepTarget:
	default:
		return errors.Newf("unknown short_selection_policy %q", p.ShortSelection)
	}
	return nil
}

func (p *BacktestParams) StartTime() (time.Time, error) {
	return time.Parse(dateLayout, p.Start)
}

func (p *BacktestParams) EndTime() (time.Time, error) {
	return time.Parse(dateLayout, p.End)
}

// FeeRate converts the basis-point fee into a fraction of turnover.
func (p *BacktestParams) FeeRate() float64 {
	return p.FeeBps / 10000.0
}

func (p *BacktestParams) MaxLookback() int {
	max := 0
	for _, lb := range p.Lookbacks {
		if lb > max {
			max = lb
		}
	}
	return max
}

// NewBacktestParamsFromFile loads and validates params from a YAML file.
func NewBacktestParamsFromFile(filepath string) (*BacktestParams, error) {
	v := viper.New()
	v.SetConfigFile(filepath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var params BacktestParams
	if err := v.Unmarshal(&params); err != nil {
		return nil, err
	}

	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &params, nil
}
