package calculator

import (
	"errors"
	"math"

	"TacticalSentinel/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
// Any undefined value inside the window makes the average undefined.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		if !model.Defined(prices[i]) {
			return 0, errors.New("undefined value inside SMA window")
		}
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMAAt returns the period-day average ending at index i, or NaN when
// fewer than period defined observations end there.
func SMAAt(prices []float64, period, i int) float64 {
	if i < 0 || i >= len(prices) {
		return math.NaN()
	}
	ma, err := CalculateSMA(prices[:i+1], period)
	if err != nil {
		return math.NaN()
	}
	return ma
}

// RollingSMA returns the trailing simple moving average for every index.
// Entry i is defined only when the period values ending at i are all defined.
func RollingSMA(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = SMAAt(prices, period, i)
	}
	return out
}
