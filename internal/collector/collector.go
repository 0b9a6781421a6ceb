package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"TacticalSentinel/internal/calculator"
	"TacticalSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data map[string][]model.Point
	Err  map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyCloses(_ context.Context, symbol string, _ int) ([]model.Point, error) {
	if err := m.Err[symbol]; err != nil {
		return nil, err
	}
	return m.Data[symbol], nil
}

// NewDemoFetcher returns a MockFetcher with count days of smooth synthetic
// history for every symbol, ending on end.
func NewDemoFetcher(symbols []string, count int, end time.Time) *MockFetcher {
	m := &MockFetcher{Data: make(map[string][]model.Point, len(symbols))}
	for k, sym := range symbols {
		base := 50.0 + 25*float64(k)
		if strings.HasPrefix(sym, "^") {
			base = 4.0 // yield quotes
		}
		points := make([]model.Point, count)
		for i := 0; i < count; i++ {
			p := base * (1 + float64(i-count/2)*0.001*float64(k%3+1))
			points[i] = model.Point{Date: model.DateOf(end.AddDate(0, 0, -(count - 1 - i))), Close: p}
		}
		m.Data[sym] = points
	}
	return m
}

// FetchObserver is notified after every per-symbol fetch.
type FetchObserver func(symbol string, elapsed time.Duration, err error)

// Collector retrieves the price history window for every required instrument.
type Collector struct {
	Fetcher  Fetcher
	Symbols  []string
	Lookback int
	Observe  FetchObserver
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbols []string, lookbackDays int) *Collector {
	return &Collector{Fetcher: fetcher, Symbols: symbols, Lookback: lookbackDays}
}

// Collect fetches each symbol once, aligns them on the union of their dates
// and forward-fills every column. A symbol with no usable close fails the
// whole collection with a *model.DataUnavailableError.
func (c *Collector) Collect(ctx context.Context) (*model.Panel, error) {
	series := make([]model.Series, 0, len(c.Symbols))
	for _, sym := range c.Symbols {
		start := time.Now()
		points, err := c.Fetcher.FetchDailyCloses(ctx, sym, c.Lookback)
		if c.Observe != nil {
			c.Observe(sym, time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", sym, err)
		}
		if !hasObservation(points) {
			return nil, &model.DataUnavailableError{Symbol: sym, Reason: "fetch returned no closes"}
		}
		log.Debug().Str("symbol", sym).Int("points", len(points)).Msg("fetched daily closes")
		series = append(series, model.Series{Symbol: sym, Points: points})
	}

	panel := calculator.Align(series)
	calculator.FillPanel(panel)
	panel.FetchedAt = time.Now()
	return panel, nil
}

func hasObservation(points []model.Point) bool {
	for _, p := range points {
		if model.Defined(p.Close) {
			return true
		}
	}
	return false
}
