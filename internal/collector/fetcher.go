package collector

import (
	"context"

	"TacticalSentinel/internal/model"
)

// Fetcher defines the interface for fetching daily closing prices.
type Fetcher interface {
	// FetchDailyCloses returns ascending daily closes covering the last lookbackDays calendar days.
	FetchDailyCloses(ctx context.Context, symbol string, lookbackDays int) ([]model.Point, error)
	Name() string
}
