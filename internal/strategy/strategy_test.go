package strategy

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TacticalSentinel/internal/model"
)

var nan = math.NaN()

// buildPanel creates an n-day panel whose columns are produced by gen.
func buildPanel(n int, gen map[string]func(i int) float64) *model.Panel {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &model.Panel{Columns: make(map[string][]float64, len(gen))}
	for i := 0; i < n; i++ {
		p.Dates = append(p.Dates, start.AddDate(0, 0, i))
	}
	for sym, f := range gen {
		col := make([]float64, n)
		for i := range col {
			col[i] = f(i)
		}
		p.Columns[sym] = col
	}
	return p
}

func constant(v float64) func(int) float64 { return func(int) float64 { return v } }

func linear(base, step float64) func(int) float64 {
	return func(i int) float64 { return base + step*float64(i) }
}

func uptrendPanel(n int) *model.Panel {
	return buildPanel(n, map[string]func(int) float64{
		"QQQ":  linear(300, 1),
		"GLD":  linear(180, 0.5),
		"IEF":  linear(100, 0.1),
		"TLT":  linear(50, 0.1),
		"^TNX": linear(1.0, 0.01),
		"^IRX": constant(5.0),
	})
}

func TestAllocate_SumInvariant(t *testing.T) {
	tables := []map[model.Sleeve]float64{
		model.DefaultParams().BaseWeights,
		{model.SleeveEquity: 0.6, model.SleeveGold: 0.1, model.SleeveTacticalBond: 0.3},
		{model.SleeveEquity: 0.5, model.SleeveGold: 0.3, model.SleeveTacticalBond: 0.4}, // sums to 1.2
		{model.SleeveEquity: 0, model.SleeveGold: 0, model.SleeveTacticalBond: 0.25},
	}
	for _, bw := range tables {
		params := model.DefaultParams()
		params.BaseWeights = bw
		for e := 0; e <= 3; e++ {
			for g := 0; g <= 3; g++ {
				for b := 0; b <= 3; b++ {
					sleeves, cash := Allocate([]model.SleeveSignal{
						{Sleeve: model.SleeveEquity, Score: e},
						{Sleeve: model.SleeveGold, Score: g},
						{Sleeve: model.SleeveTacticalBond, Score: b},
					}, params)
					invested := 0.0
					for _, s := range sleeves {
						assert.InDelta(t, s.BaseWeight, s.Invested+s.CashContribution, 1e-12)
						assert.GreaterOrEqual(t, s.Invested, 0.0)
						invested += s.Invested
					}
					assert.InDelta(t, params.BaseWeightSum(), invested+cash, 1e-9,
						"scores %d/%d/%d weights %v", e, g, b, bw)
				}
			}
		}
	}
}

func TestAllocate_DoesNotMutateInput(t *testing.T) {
	in := []model.SleeveSignal{{Sleeve: model.SleeveEquity, Score: 2}}
	_, _ = Allocate(in, model.DefaultParams())
	assert.Equal(t, 0.0, in[0].Invested)
}

func TestDefaultScalarTable_Monotonic(t *testing.T) {
	params := model.DefaultParams()
	prev := -1.0
	for score := 0; score <= params.MaxScore(); score++ {
		s := params.Scalar(score)
		assert.GreaterOrEqual(t, s, prev, "scalar must not decrease at score %d", score)
		prev = s
	}
	assert.Equal(t, 1.0, params.Scalar(params.MaxScore()))
	assert.Equal(t, 0.0, params.Scalar(0))
}

func TestScoreAgainst_UndefinedAverageCountsAsBelow(t *testing.T) {
	params := model.DefaultParams()
	score := ScoreAgainst(100, []float64{95, 98, nan})
	require.Equal(t, 2, score)
	assert.Equal(t, 0.75, params.Scalar(score))

	sleeves, cash := Allocate([]model.SleeveSignal{{Sleeve: model.SleeveEquity, Score: score}}, params)
	assert.InDelta(t, 0.40*0.75, sleeves[0].Invested, 1e-12)
	assert.InDelta(t, 0.40*0.25, sleeves[0].CashContribution, 1e-12)
	assert.InDelta(t, 0.40*0.25, cash, 1e-12)
}

func TestScoreAgainst_Boundaries(t *testing.T) {
	tests := []struct {
		price    float64
		averages []float64
		want     int
	}{
		{100, []float64{100, 100, 100}, 3},
		{100, []float64{100.01, 99.99, 50}, 2},
		{100, []float64{nan, nan, nan}, 0},
		{nan, []float64{1, 2, 3}, 0},
		{100, nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreAgainst(tt.price, tt.averages), "price %v averages %v", tt.price, tt.averages)
	}
}

func TestTrendScore_InsufficientHistory(t *testing.T) {
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	score, mas := TrendScore(prices, []int{20, 120, 200})
	assert.Equal(t, 1, score)
	require.Len(t, mas, 3)
	assert.InDelta(t, 139.5, mas[0], 1e-9)
	assert.True(t, math.IsNaN(mas[1]))
	assert.True(t, math.IsNaN(mas[2]))

	score, mas = TrendScore(nil, []int{20})
	assert.Equal(t, 0, score)
	assert.True(t, math.IsNaN(mas[0]))
}

func TestTrendScore_Downtrend(t *testing.T) {
	prices := make([]float64, 250)
	for i := range prices {
		prices[i] = 500 - float64(i)
	}
	score, _ := TrendScore(prices, []int{20, 120, 200})
	assert.Equal(t, 0, score)
}

func TestClassifyRegime(t *testing.T) {
	rate := make([]float64, 201)
	for i := range rate {
		rate[i] = 4.25
	}
	rate[200] = 4.5
	rate[50] = nan // gap is carried forward, not a hole in the average

	rising, ma := ClassifyRegime(rate, 200)
	for i := 0; i < 199; i++ {
		assert.False(t, rising[i], "date %d has no full window", i)
		assert.True(t, math.IsNaN(ma[i]))
	}
	assert.False(t, rising[199], "rate equal to its average is not rising")
	assert.True(t, rising[200])
	assert.InDelta(t, (199*4.25+4.5)/200, ma[200], 1e-9)
}

func TestClassifyRegime_Idempotent(t *testing.T) {
	rate := linear(3, 0.013)
	series := make([]float64, 300)
	for i := range series {
		series[i] = rate(i) + math.Sin(float64(i)/7)
	}
	r1, m1 := ClassifyRegime(series, 200)
	r2, m2 := ClassifyRegime(series, 200)
	assert.Equal(t, r1, r2)
	for i := range m1 {
		if math.IsNaN(m1[i]) {
			assert.True(t, math.IsNaN(m2[i]))
			continue
		}
		assert.Equal(t, m1[i], m2[i])
	}

	ief := make([]float64, 300)
	tlt := make([]float64, 300)
	for i := range ief {
		ief[i], tlt[i] = 95+float64(i%5), 90-float64(i%3)
	}
	assert.Equal(t, BuildTacticalBond(ief, tlt, r1), BuildTacticalBond(ief, tlt, r2))
}

func TestBuildTacticalBond(t *testing.T) {
	rising := []bool{false, false, true, true, false, true}
	ief := []float64{nan, nan, 101, nan, 103, 104}
	tlt := []float64{nan, 90, nan, 92, nan, 94}

	got := BuildTacticalBond(ief, tlt, rising)
	assert.True(t, math.IsNaN(got[0]), "both bonds missing")
	assert.Equal(t, 90.0, got[1])
	assert.Equal(t, 101.0, got[2])
	assert.Equal(t, 101.0, got[3], "rising bond forward-filled")
	assert.Equal(t, 92.0, got[4], "falling bond forward-filled")
	assert.Equal(t, 104.0, got[5])

	// Selected bond has no history yet: fall back to the other one.
	got = BuildTacticalBond([]float64{nan, 100}, []float64{80, 81}, []bool{true, true})
	assert.Equal(t, []float64{80, 100}, got)
}

func TestBuildCashReturns(t *testing.T) {
	got := BuildCashReturns([]float64{nan, 5.0, nan})
	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, math.Pow(1.05, 1.0/252)-1, got[1], 1e-15)
	assert.Equal(t, got[1], got[2])
}

func TestEvaluate_FullUptrendHasNoCash(t *testing.T) {
	alloc, err := Evaluate(uptrendPanel(260), model.DefaultParams())
	require.NoError(t, err)

	assert.True(t, alloc.Regime.Rising)
	assert.Equal(t, "IEF", alloc.Regime.BondSymbol)
	for _, s := range alloc.Sleeves {
		assert.Equal(t, 3, s.Score, "sleeve %s", s.Sleeve)
		assert.Equal(t, 3, s.MaxScore)
		assert.Equal(t, 1.0, s.Scalar)
	}
	assert.Equal(t, 0.0, alloc.CashWeight)
	assert.InDelta(t, 1.0, alloc.Total, 1e-9)
	assert.InDelta(t, 0.40, alloc.Weight("IEF"), 1e-12)
	assert.Equal(t, 0.0, alloc.Weight("TLT"))
	assert.Equal(t, 0.0, alloc.Weight("SGOV"))
	assert.InDelta(t, 0.05, alloc.CashYield, 1e-12)
	assert.InDelta(t, math.Pow(1.05, 1.0/252)-1, alloc.CashDailyReturn, 1e-15)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 259), alloc.AsOf)
}

func TestEvaluate_RisingRatesUsesRisingBond(t *testing.T) {
	panel := buildPanel(201, map[string]func(int) float64{
		"QQQ": constant(100),
		"GLD": constant(100),
		"IEF": constant(95),
		"TLT": constant(90),
		"^TNX": func(i int) float64 {
			if i == 200 {
				return 4.5
			}
			return 4.25
		},
		"^IRX": constant(4.0),
	})
	alloc, err := Evaluate(panel, model.DefaultParams())
	require.NoError(t, err)

	assert.True(t, alloc.Regime.Rising)
	assert.Equal(t, 4.5, alloc.Regime.Rate)
	bond, ok := alloc.Sleeve(model.SleeveTacticalBond)
	require.True(t, ok)
	assert.Equal(t, "IEF", bond.Symbol)
	assert.Equal(t, 95.0, bond.Price)
	// The spliced series jumped from 90 to 95 on the last day.
	assert.InDelta(t, 95.0/90-1, bond.PrevChange, 1e-12)
	assert.Equal(t, 0.0, alloc.Weight("TLT"))
}

func TestEvaluate_FallingRatesUsesFallingBond(t *testing.T) {
	panel := uptrendPanel(260)
	panel.Columns["^TNX"] = make([]float64, 260)
	for i := range panel.Columns["^TNX"] {
		panel.Columns["^TNX"][i] = 5 - 0.01*float64(i)
	}
	alloc, err := Evaluate(panel, model.DefaultParams())
	require.NoError(t, err)
	assert.False(t, alloc.Regime.Rising)
	assert.Equal(t, "TLT", alloc.Regime.BondSymbol)
	assert.Equal(t, 0.0, alloc.Weight("IEF"))
	assert.InDelta(t, 0.40, alloc.Weight("TLT"), 1e-12)
}

func TestEvaluate_ShortHistoryDegradesGracefully(t *testing.T) {
	alloc, err := Evaluate(uptrendPanel(60), model.DefaultParams())
	require.NoError(t, err)

	assert.False(t, alloc.Regime.Rising, "rate window not filled")
	assert.True(t, math.IsNaN(alloc.Regime.RateMA))
	for _, s := range alloc.Sleeves {
		assert.Equal(t, 1, s.Score, "only the 20-day window has history for %s", s.Sleeve)
		assert.Equal(t, 0.5, s.Scalar)
	}
	assert.InDelta(t, 0.5, alloc.CashWeight, 1e-12)
	assert.InDelta(t, 1.0, alloc.Total, 1e-9)
}

func TestEvaluate_ExactlyOneBondWeighted(t *testing.T) {
	for _, n := range []int{30, 199, 200, 201, 260} {
		alloc, err := Evaluate(uptrendPanel(n), model.DefaultParams())
		require.NoError(t, err)
		ief, tlt := alloc.Weight("IEF"), alloc.Weight("TLT")
		assert.True(t, ief == 0 || tlt == 0, "n=%d ief=%v tlt=%v", n, ief, tlt)
		assert.InDelta(t, alloc.InvestedTotal()+alloc.CashWeight, alloc.Total, 1e-12)
	}
}

func TestEvaluate_DataUnavailable(t *testing.T) {
	params := model.DefaultParams()

	_, err := Evaluate(&model.Panel{}, params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientData))

	panel := uptrendPanel(100)
	delete(panel.Columns, "GLD")
	_, err = Evaluate(panel, params)
	var due *model.DataUnavailableError
	require.ErrorAs(t, err, &due)
	assert.Equal(t, "GLD", due.Symbol)

	panel = uptrendPanel(100)
	for i := range panel.Columns["^IRX"] {
		panel.Columns["^IRX"][i] = nan
	}
	_, err = Evaluate(panel, params)
	require.ErrorAs(t, err, &due)
	assert.Equal(t, "^IRX", due.Symbol)
}

func TestEvaluate_DoesNotModifyPanel(t *testing.T) {
	panel := uptrendPanel(50)
	panel.Columns["QQQ"][10] = nan
	_, err := Evaluate(panel, model.DefaultParams())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(panel.Columns["QQQ"][10]))
}
