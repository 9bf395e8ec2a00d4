package fetcher

import (
	"context"

	"aedash/internal/model"
)

// SpotFetcher retrieves the hourly day-ahead spot prices for a window.
type SpotFetcher interface {
	FetchSpot(ctx context.Context, w model.TimeWindow) ([]model.SpotRow, error)
}

// ActivationFetcher retrieves the 15-minute AE rows for a window.
type ActivationFetcher interface {
	FetchActivation(ctx context.Context, w model.TimeWindow) ([]model.ActivationRow, error)
}
