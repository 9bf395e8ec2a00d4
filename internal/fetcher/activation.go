package fetcher

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"aedash/internal/apperr"
	"aedash/internal/model"
)

const (
	defaultActivationBaseURL = "https://transparency.apg.at/api/v1"
	defaultLanguage          = "German"
	defaultResolution        = "PT15M"
	defaultMode              = "Export"

	// activationColumns is the fixed CSV schema: from, to, early, provisional, final.
	activationColumns = 5
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ActivationOptions parameterise the AE download fetcher.
type ActivationOptions struct {
	BaseURL    string
	Language   string
	Resolution string
	Mode       string
	Timeout    time.Duration
	UserAgent  string
}

// Activation downloads the AE CSV export from the APG transparency platform.
type Activation struct {
	opts    ActivationOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewActivation constructs an AE fetcher.
func NewActivation(opts ActivationOptions, logger zerolog.Logger) *Activation {
	client := &http.Client{}
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.Resolution == "" {
		opts.Resolution = defaultResolution
	}
	if opts.Mode == "" {
		opts.Mode = defaultMode
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultActivationBaseURL
	}

	return &Activation{
		opts:    opts,
		logger:  logger.With().Str("component", "activation_fetcher").Logger(),
		client:  client,
		baseURL: baseURL,
	}
}

// FetchActivation downloads the window using the text timestamps in the URL path.
func (a *Activation) FetchActivation(ctx context.Context, w model.TimeWindow) ([]model.ActivationRow, error) {
	endpoint := a.endpoint(w)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create activation request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", userAgent(a.opts.UserAgent))

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "activation request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "read activation response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseHTTPError("activation", resp.StatusCode, payload)
	}

	rows, err := ParseActivationCSV(payload)
	if err != nil {
		return nil, err
	}

	a.logger.Debug().Int("rows", len(rows)).
		Str("start", w.StartText()).
		Str("end", w.EndText()).
		Msg("activation rows fetched")
	return rows, nil
}

func (a *Activation) endpoint(w model.TimeWindow) string {
	query := url.Values{}
	query.Set("p_aeMode", a.opts.Mode)
	query.Set("resolution", a.opts.Resolution)
	return fmt.Sprintf("%s/AE/Download/%s/%s/%s/%s?%s",
		a.baseURL,
		url.PathEscape(a.opts.Language),
		url.PathEscape(a.opts.Resolution),
		w.StartText(),
		w.EndText(),
		query.Encode(),
	)
}

// ParseActivationCSV reads the semicolon-delimited export. The first row is the header; every
// row must carry exactly five columns. Blank cells stay empty strings.
func ParseActivationCSV(payload []byte) ([]model.ActivationRow, error) {
	payload = bytes.TrimPrefix(payload, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(payload))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.New(apperr.Upstream, "activation payload is empty")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "read activation header", err)
	}
	if len(header) != activationColumns {
		return nil, apperr.Newf(apperr.Upstream, "activation header has %d columns, want %d", len(header), activationColumns)
	}

	rows := make([]model.ActivationRow, 0, 96)
	for i := 0; ; i++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.AtRow(apperr.Upstream, i, "read activation row", err)
		}
		if len(record) != activationColumns {
			return nil, apperr.AtRow(apperr.Upstream, i, fmt.Sprintf("activation row has %d columns, want %d", len(record), activationColumns), nil)
		}
		rows = append(rows, model.ActivationRow{
			IntervalStart: strings.TrimSpace(record[0]),
			IntervalEnd:   strings.TrimSpace(record[1]),
			Early:         strings.TrimSpace(record[2]),
			Provisional:   strings.TrimSpace(record[3]),
			Final:         strings.TrimSpace(record[4]),
		})
	}
	return rows, nil
}

var _ ActivationFetcher = (*Activation)(nil)
