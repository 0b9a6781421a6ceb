package model

import (
	"math"
	"time"
)

// Point is one daily close. A NaN Close marks a missing observation.
type Point struct {
	Date  time.Time
	Close float64
}

// Series holds raw daily closes for one instrument, dates strictly increasing.
type Series struct {
	Symbol string
	Points []Point
}

// Panel is a set of close columns aligned on a shared, strictly increasing date index.
// Every column has len(Dates) entries; NaN means undefined.
type Panel struct {
	Dates     []time.Time
	Columns   map[string][]float64
	FetchedAt time.Time
}

// Column returns the aligned closes for symbol, or nil when the panel does not carry it.
func (p *Panel) Column(symbol string) []float64 {
	if p == nil {
		return nil
	}
	return p.Columns[symbol]
}

// Len is the number of dates in the panel.
func (p *Panel) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Dates)
}

// Undefined is the marker for a missing or not-yet-computable value.
func Undefined() float64 { return math.NaN() }

// Defined reports whether v holds a usable value.
func Defined(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
