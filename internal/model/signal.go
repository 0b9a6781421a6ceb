package model

import "time"

// TriggerType indicates what started a run.
type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerCommand   TriggerType = "COMMAND"
	TriggerManual    TriggerType = "MANUAL"
)

// RegimeState is the interest-rate regime on the latest date.
type RegimeState struct {
	Rising     bool
	Rate       float64
	RateMA     float64 // NaN while the rate window is not yet filled
	BondSymbol string  // bond currently backing the tactical sleeve
}

// SleeveSignal is the per-sleeve outcome of scoring and allocation.
type SleeveSignal struct {
	Sleeve           Sleeve
	Symbol           string // concrete instrument backing the sleeve
	Price            float64
	PrevChange       float64 // prior-day fractional change, NaN when unavailable
	MovingAverages   []float64
	Score            int
	MaxScore         int
	Scalar           float64
	BaseWeight       float64
	Invested         float64
	CashContribution float64
}

// InstrumentWeight is the target weight for one concrete instrument.
type InstrumentWeight struct {
	Symbol string
	Weight float64
}

// Allocation is the final output of the strategy pipeline.
type Allocation struct {
	AsOf            time.Time
	Regime          RegimeState
	Sleeves         []SleeveSignal
	CashSymbol      string
	CashLabel       string
	CashYield       float64 // annualized, as a fraction
	CashDailyReturn float64
	CashWeight      float64
	Weights         []InstrumentWeight
	Total           float64
}

// Sleeve returns the signal for s, or false if the allocation does not carry it.
func (a *Allocation) Sleeve(s Sleeve) (SleeveSignal, bool) {
	for _, sig := range a.Sleeves {
		if sig.Sleeve == s {
			return sig, true
		}
	}
	return SleeveSignal{}, false
}

// Weight returns the target weight for a concrete instrument or cash label.
func (a *Allocation) Weight(symbol string) float64 {
	for _, w := range a.Weights {
		if w.Symbol == symbol {
			return w.Weight
		}
	}
	return 0
}

// InvestedTotal sums the invested weight across sleeves.
func (a *Allocation) InvestedTotal() float64 {
	sum := 0.0
	for _, s := range a.Sleeves {
		sum += s.Invested
	}
	return sum
}
