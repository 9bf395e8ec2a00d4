package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"aedash/internal/apperr"
	"aedash/internal/model"
)

const (
	defaultSpotBaseURL = "https://api.awattar.at/v1"
	marketdataPath     = "/marketdata"
	defaultUserAgent   = "aedash/1.0"
)

// SpotOptions parameterise the spot price fetcher.
type SpotOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Spot fetches day-ahead prices from the aWATTar market data API.
type Spot struct {
	opts    SpotOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewSpot constructs a spot fetcher.
func NewSpot(opts SpotOptions, logger zerolog.Logger) *Spot {
	client := &http.Client{}
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultSpotBaseURL
	}

	return &Spot{
		opts:    opts,
		logger:  logger.With().Str("component", "spot_fetcher").Logger(),
		client:  client,
		baseURL: baseURL,
	}
}

// FetchSpot queries the window in epoch milliseconds and returns the rows under "data".
func (s *Spot) FetchSpot(ctx context.Context, w model.TimeWindow) ([]model.SpotRow, error) {
	query := url.Values{}
	query.Set("start", strconv.FormatInt(w.StartMillis(), 10))
	query.Set("end", strconv.FormatInt(w.EndMillis(), 10))
	endpoint := s.baseURL + marketdataPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create spot request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent(s.opts.UserAgent))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "spot request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "read spot response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseHTTPError("spot", resp.StatusCode, payload)
	}

	rows, err := ParseSpotJSON(payload)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("rows", len(rows)).
		Int64("start", w.StartMillis()).
		Int64("end", w.EndMillis()).
		Msg("spot prices fetched")
	return rows, nil
}

// ParseSpotJSON decodes a marketdata payload. A body without a "data" list violates the feed schema.
func ParseSpotJSON(payload []byte) ([]model.SpotRow, error) {
	var body marketdataResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "decode spot payload", err)
	}
	if body.Data == nil {
		return nil, apperr.New(apperr.Upstream, "spot payload has no data list")
	}

	rows := make([]model.SpotRow, 0, len(*body.Data))
	for _, item := range *body.Data {
		rows = append(rows, model.SpotRow{
			StartMillis: item.StartTimestamp,
			EndMillis:   item.EndTimestamp,
			MarketPrice: item.MarketPrice,
			Unit:        item.Unit,
		})
	}
	return rows, nil
}

type marketdataResponse struct {
	Object string            `json:"object"`
	Data   *[]marketdataItem `json:"data"`
}

type marketdataItem struct {
	StartTimestamp int64           `json:"start_timestamp"`
	EndTimestamp   int64           `json:"end_timestamp"`
	MarketPrice    decimal.Decimal `json:"marketprice"`
	Unit           string          `json:"unit"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseHTTPError(feed string, status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return apperr.Newf(apperr.Upstream, "%s api error (%d): %s", feed, status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return apperr.Newf(apperr.Upstream, "%s api error (%d): %s", feed, status, apiErr.Error)
		}
	}
	if text := strings.TrimSpace(string(payload)); text != "" {
		if len(text) > 512 {
			text = text[:512]
		}
		return apperr.Newf(apperr.Upstream, "%s api error (%d): %s", feed, status, text)
	}
	return apperr.Newf(apperr.Upstream, "%s api error (%d)", feed, status)
}

func userAgent(ua string) string {
	if ua = strings.TrimSpace(ua); ua != "" {
		return ua
	}
	return defaultUserAgent
}

var _ SpotFetcher = (*Spot)(nil)
