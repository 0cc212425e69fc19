package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooProvider fetches candles from the unauthenticated Yahoo Finance v8
// chart API. It is the default backend.
type YahooProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooProvider creates a Yahoo provider against the public endpoint.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    yahooChartURL,
	}
}

// NewYahooProviderWithBaseURL creates a Yahoo provider against a custom
// endpoint. Used by tests to point at a local server.
func NewYahooProviderWithBaseURL(baseURL string) *YahooProvider {
	p := NewYahooProvider()
	p.baseURL = baseURL

	return p
}

// yahooChartResponse mirrors the subset of the v8 chart payload we consume.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchSeries downloads candles for the symbol. Rows with a missing close are
// dropped rather than emitted as holes.
func (p *YahooProvider) FetchSeries(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) ([]types.Candle, error) {
	query := url.Values{}
	query.Set("interval", yahooInterval(timeframe))
	query.Set("period1", fmt.Sprintf("%d", start.Unix()))
	query.Set("period2", fmt.Sprintf("%d", end.Unix()))
	query.Set("includePrePost", "false")

	endpoint := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(NormalizeSymbol(symbol)), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to build yahoo request", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; argo-replay/1.0)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "yahoo chart request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown symbol: empty result, not an error.
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo chart returned status %d for %s", resp.StatusCode, symbol)
	}

	var payload yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to decode yahoo chart payload", err)
	}

	if payload.Chart.Error != nil {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo chart error for %s: %s", symbol, payload.Chart.Error.Description)
	}

	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]types.Candle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}

		candles = append(candles, types.Candle{
			Time:   ts,
			Open:   deref(quote.Open, i),
			High:   deref(quote.High, i),
			Low:    deref(quote.Low, i),
			Close:  *quote.Close[i],
			Volume: deref(quote.Volume, i),
		})
	}

	return candles, nil
}

func deref(column []*float64, i int) float64 {
	if i >= len(column) || column[i] == nil {
		return 0
	}

	return *column[i]
}

// knownUSTickers are not given the NSE suffix by NormalizeSymbol.
var knownUSTickers = map[string]bool{
	"AAPL": true, "TSLA": true, "MSFT": true, "GOOGL": true,
	"AMZN": true, "META": true, "NVDA": true,
}

// NormalizeSymbol maps user-facing tickers onto Yahoo's naming: bare BTC
// becomes the BTC-USD pair, and bare tickers that are not well-known US
// symbols get the NSE ".NS" suffix. Symbols already carrying an exchange
// suffix or a pair hyphen pass through unchanged.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))

	if s == "BTC" {
		return "BTC-USD"
	}

	if strings.HasSuffix(s, ".NS") || strings.HasSuffix(s, ".BO") {
		return s
	}

	if knownUSTickers[s] || strings.Contains(s, "-") {
		return s
	}

	return s + ".NS"
}

func yahooInterval(timeframe types.Timeframe) string {
	if timeframe == types.Timeframe1Day {
		return "1d"
	}

	return string(timeframe)
}
