package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"TacticalSentinel/internal/model"
)

// guardedFetcher paces requests with a token bucket and stops hammering a
// failing source with a circuit breaker.
type guardedFetcher struct {
	inner   Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// Guard wraps f with a limiter allowing rps requests per second and a breaker
// that opens after three consecutive failures.
func Guard(f Fetcher, rps float64) Fetcher {
	if rps <= 0 {
		rps = 2
	}
	st := gobreaker.Settings{Name: f.Name()}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}
	return &guardedFetcher{
		inner:   f,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

func (g *guardedFetcher) Name() string { return g.inner.Name() }

func (g *guardedFetcher) FetchDailyCloses(ctx context.Context, symbol string, lookbackDays int) ([]model.Point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.FetchDailyCloses(ctx, symbol, lookbackDays)
	})
	if err != nil {
		return nil, err
	}
	points, _ := res.([]model.Point)
	return points, nil
}
