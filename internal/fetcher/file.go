package fetcher

import (
	"context"
	"fmt"
	"os"

	"aedash/internal/model"
)

// SpotFile replays a saved marketdata payload instead of calling the API.
// The window is ignored; the file is expected to cover it already.
type SpotFile struct {
	Path string
}

// FetchSpot reads and decodes the file.
func (f *SpotFile) FetchSpot(ctx context.Context, w model.TimeWindow) ([]model.SpotRow, error) {
	payload, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read spot file: %w", err)
	}
	return ParseSpotJSON(payload)
}

// ActivationFile replays a saved AE CSV export.
type ActivationFile struct {
	Path string
}

// FetchActivation reads and parses the file.
func (f *ActivationFile) FetchActivation(ctx context.Context, w model.TimeWindow) ([]model.ActivationRow, error) {
	payload, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read activation file: %w", err)
	}
	return ParseActivationCSV(payload)
}

var _ SpotFetcher = (*SpotFile)(nil)
var _ ActivationFetcher = (*ActivationFile)(nil)
