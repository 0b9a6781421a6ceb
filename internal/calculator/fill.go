package calculator

import (
	"math"
	"sort"
	"time"

	"TacticalSentinel/internal/model"
)

// ForwardFill carries the last defined value into later undefined entries.
// Entries before the first defined value stay undefined. The input is not modified.
func ForwardFill(values []float64) []float64 {
	out := make([]float64, len(values))
	last := math.NaN()
	for i, v := range values {
		if model.Defined(v) {
			last = v
		}
		out[i] = last
	}
	return out
}

// Align places every series on the union of their dates. Dates a series does
// not report are left undefined; call ForwardFill on each column afterwards.
func Align(series []model.Series) *model.Panel {
	seen := make(map[time.Time]struct{})
	for _, s := range series {
		for _, p := range s.Points {
			seen[model.DateOf(p.Date)] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	panel := &model.Panel{Dates: dates, Columns: make(map[string][]float64, len(series))}
	for _, s := range series {
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		for _, p := range s.Points {
			col[index[model.DateOf(p.Date)]] = p.Close
		}
		panel.Columns[s.Symbol] = col
	}
	return panel
}

// FillPanel forward-fills every column of p in place.
func FillPanel(p *model.Panel) {
	for sym, col := range p.Columns {
		p.Columns[sym] = ForwardFill(col)
	}
}
