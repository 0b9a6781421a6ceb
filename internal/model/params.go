package model

import "sort"

// Sleeve names a logical portfolio component.
type Sleeve string

const (
	SleeveEquity       Sleeve = "equity"
	SleeveGold         Sleeve = "gold"
	SleeveTacticalBond Sleeve = "tactical_bond"
)

// Sleeves lists the tradable sleeves in report order.
var Sleeves = []Sleeve{SleeveEquity, SleeveGold, SleeveTacticalBond}

// Instruments names the concrete tickers the strategy reads.
type Instruments struct {
	Equity      string
	Gold        string
	BondRising  string
	BondFalling string
	Rate        string
	Cash        string
	CashLabel   string // name shown for the cash sleeve in target weights
}

// Params is the immutable strategy parameterization handed to every computation.
type Params struct {
	Instruments  Instruments
	BaseWeights  map[Sleeve]float64
	MAWindows    []int
	RateMAWindow int
	Scalars      map[int]float64
	LookbackDays int
}

// DefaultParams returns the stock 40/20/40 configuration.
func DefaultParams() Params {
	return Params{
		Instruments: Instruments{
			Equity:      "QQQ",
			Gold:        "GLD",
			BondRising:  "IEF",
			BondFalling: "TLT",
			Rate:        "^TNX",
			Cash:        "^IRX",
			CashLabel:   "SGOV",
		},
		BaseWeights: map[Sleeve]float64{
			SleeveEquity:       0.40,
			SleeveGold:         0.20,
			SleeveTacticalBond: 0.40,
		},
		MAWindows:    []int{20, 120, 200},
		RateMAWindow: 200,
		Scalars:      map[int]float64{3: 1.0, 2: 0.75, 1: 0.50, 0: 0.0},
		LookbackDays: 400,
	}
}

// Symbols returns every instrument that must be fetched, in a stable order.
func (p Params) Symbols() []string {
	in := p.Instruments
	return []string{in.Equity, in.Gold, in.BondRising, in.BondFalling, in.Rate, in.Cash}
}

// MaxScore is the number of moving-average windows evaluated per sleeve.
func (p Params) MaxScore() int { return len(p.MAWindows) }

// Scalar maps a trend score to its exposure scalar. Scores missing from the table map to 0.
func (p Params) Scalar(score int) float64 {
	return p.Scalars[score]
}

// ScoreKeys returns the scalar table's scores in ascending order.
func (p Params) ScoreKeys() []int {
	keys := make([]int, 0, len(p.Scalars))
	for k := range p.Scalars {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// BaseWeightSum is the total of the base weights across sleeves.
func (p Params) BaseWeightSum() float64 {
	sum := 0.0
	for _, s := range Sleeves {
		sum += p.BaseWeights[s]
	}
	return sum
}

// Clone returns a deep copy so callers cannot mutate a shared table.
func (p Params) Clone() Params {
	c := p
	c.BaseWeights = make(map[Sleeve]float64, len(p.BaseWeights))
	for k, v := range p.BaseWeights {
		c.BaseWeights[k] = v
	}
	c.MAWindows = append([]int(nil), p.MAWindows...)
	c.Scalars = make(map[int]float64, len(p.Scalars))
	for k, v := range p.Scalars {
		c.Scalars[k] = v
	}
	return c
}
