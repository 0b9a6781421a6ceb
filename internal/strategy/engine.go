package strategy

import (
	"TacticalSentinel/internal/calculator"
	"TacticalSentinel/internal/model"
)

// Evaluate computes the target allocation for the last date of panel.
// It is a pure function: the panel is not modified and the same input always
// yields the same allocation. The only failure is a required instrument with
// no usable observation.
func Evaluate(panel *model.Panel, params model.Params) (*model.Allocation, error) {
	if panel.Len() == 0 {
		return nil, &model.DataUnavailableError{Reason: "price history is empty"}
	}
	cols := make(map[string][]float64, len(params.Symbols()))
	for _, sym := range params.Symbols() {
		raw := panel.Column(sym)
		if len(raw) != panel.Len() {
			return nil, &model.DataUnavailableError{Symbol: sym, Reason: "series missing from price history"}
		}
		filled := calculator.ForwardFill(raw)
		if !model.Defined(filled[len(filled)-1]) {
			return nil, &model.DataUnavailableError{Symbol: sym, Reason: "no observations in window"}
		}
		cols[sym] = filled
	}

	in := params.Instruments
	last := panel.Len() - 1

	// Regime and synthetic series
	rising, rateMA := ClassifyRegime(cols[in.Rate], params.RateMAWindow)
	bond := BuildTacticalBond(cols[in.BondRising], cols[in.BondFalling], rising)
	cashReturns := BuildCashReturns(cols[in.Cash])

	regime := model.RegimeState{
		Rising:     rising[last],
		Rate:       cols[in.Rate][last],
		RateMA:     rateMA[last],
		BondSymbol: in.BondFalling,
	}
	if regime.Rising {
		regime.BondSymbol = in.BondRising
	}

	// Trend scores
	signalSeries := map[model.Sleeve][]float64{
		model.SleeveEquity:       cols[in.Equity],
		model.SleeveGold:         cols[in.Gold],
		model.SleeveTacticalBond: bond,
	}
	symbols := map[model.Sleeve]string{
		model.SleeveEquity:       in.Equity,
		model.SleeveGold:         in.Gold,
		model.SleeveTacticalBond: regime.BondSymbol,
	}
	sleeves := make([]model.SleeveSignal, 0, len(model.Sleeves))
	for _, s := range model.Sleeves {
		prices := signalSeries[s]
		score, mas := TrendScore(prices, params.MAWindows)
		sleeves = append(sleeves, model.SleeveSignal{
			Sleeve:         s,
			Symbol:         symbols[s],
			Price:          prices[last],
			PrevChange:     calculator.LastChange(prices),
			MovingAverages: mas,
			Score:          score,
			MaxScore:       params.MaxScore(),
		})
	}

	// Weights
	sleeves, cash := Allocate(sleeves, params)
	weights := InstrumentWeights(sleeves, in, regime.BondSymbol, cash)
	total := 0.0
	for _, w := range weights {
		total += w.Weight
	}

	return &model.Allocation{
		AsOf:            panel.Dates[last],
		Regime:          regime,
		Sleeves:         sleeves,
		CashSymbol:      in.Cash,
		CashLabel:       in.CashLabel,
		CashYield:       cols[in.Cash][last] / 100,
		CashDailyReturn: cashReturns[last],
		CashWeight:      cash,
		Weights:         weights,
		Total:           total,
	}, nil
}
