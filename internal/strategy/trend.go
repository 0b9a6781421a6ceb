package strategy

import (
	"math"

	"TacticalSentinel/internal/calculator"
	"TacticalSentinel/internal/model"
)

// TrendScore scores the last date of prices against each trailing window.
// It returns the score and the averages it compared against, NaN where a
// window lacks history.
func TrendScore(prices []float64, windows []int) (score int, averages []float64) {
	averages = make([]float64, len(windows))
	last := len(prices) - 1
	for k, w := range windows {
		averages[k] = calculator.SMAAt(prices, w, last)
	}
	price := math.NaN()
	if last >= 0 {
		price = prices[last]
	}
	return ScoreAgainst(price, averages), averages
}

// ScoreAgainst counts the averages that are defined and at or below price.
// An undefined average scores 0, the same as a price below its average, and
// still counts toward the maximum score.
func ScoreAgainst(price float64, averages []float64) int {
	score := 0
	for _, ma := range averages {
		if model.Defined(price) && model.Defined(ma) && price >= ma {
			score++
		}
	}
	return score
}
