package strategy

import "TacticalSentinel/internal/model"

// Allocate scales each sleeve's base weight by the exposure scalar for its
// score and routes the remainder to cash. The sleeves are copied, not mutated.
// Invested plus cash always adds up to the base weights' total, whatever it is.
func Allocate(sleeves []model.SleeveSignal, params model.Params) ([]model.SleeveSignal, float64) {
	out := make([]model.SleeveSignal, len(sleeves))
	cash := 0.0
	for i, s := range sleeves {
		base := params.BaseWeights[s.Sleeve]
		scalar := params.Scalar(s.Score)
		s.BaseWeight = base
		s.Scalar = scalar
		s.Invested = base * scalar
		s.CashContribution = base * (1 - scalar)
		cash += s.CashContribution
		out[i] = s
	}
	return out, cash
}

// InstrumentWeights maps allocated sleeves onto concrete instruments. Both bond
// tickers are always listed; the one not selected by the regime gets 0.
func InstrumentWeights(sleeves []model.SleeveSignal, in model.Instruments, bondSymbol string, cash float64) []model.InstrumentWeight {
	invested := make(map[model.Sleeve]float64, len(sleeves))
	for _, s := range sleeves {
		invested[s.Sleeve] = s.Invested
	}
	risingW, fallingW := 0.0, 0.0
	if bondSymbol == in.BondRising {
		risingW = invested[model.SleeveTacticalBond]
	} else {
		fallingW = invested[model.SleeveTacticalBond]
	}
	return []model.InstrumentWeight{
		{Symbol: in.Equity, Weight: invested[model.SleeveEquity]},
		{Symbol: in.Gold, Weight: invested[model.SleeveGold]},
		{Symbol: in.BondRising, Weight: risingW},
		{Symbol: in.BondFalling, Weight: fallingW},
		{Symbol: in.CashLabel, Weight: cash},
	}
}
