package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

type YahooTestSuite struct {
	suite.Suite
}

func TestYahooSuite(t *testing.T) {
	suite.Run(t, new(YahooTestSuite))
}

func (suite *YahooTestSuite) TestNormalizeSymbol() {
	tests := []struct {
		in   string
		want string
	}{
		{"BTC", "BTC-USD"},
		{"btc", "BTC-USD"},
		{"RELIANCE", "RELIANCE.NS"},
		{"RELIANCE.NS", "RELIANCE.NS"},
		{"TATASTEEL.BO", "TATASTEEL.BO"},
		{"AAPL", "AAPL"},
		{"ETH-USD", "ETH-USD"},
		{" infy ", "INFY.NS"},
	}

	for _, tt := range tests {
		suite.Equal(tt.want, NormalizeSymbol(tt.in), "input %q", tt.in)
	}
}

func (suite *YahooTestSuite) TestFetchSeriesParsesChartPayload() {
	payload := `{
		"chart": {
			"result": [{
				"timestamp": [1704153600, 1704153660, 1704153720],
				"indicators": {
					"quote": [{
						"open":   [10.0, 11.0, null],
						"high":   [12.0, 13.0, null],
						"low":    [9.0, 10.0, null],
						"close":  [11.0, 12.0, null],
						"volume": [100.0, 200.0, null]
					}]
				}
			}],
			"error": null
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Contains(r.URL.Path, "AAPL")
		suite.Equal("1m", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	provider := NewYahooProviderWithBaseURL(server.URL)

	candles, err := provider.FetchSeries(context.Background(), "AAPL", types.Timeframe1Min, time.Unix(1704153600, 0), time.Unix(1704153800, 0))
	suite.Require().NoError(err)

	// the null-close row is dropped
	suite.Require().Len(candles, 2)
	suite.Equal(int64(1704153600), candles[0].Time)
	suite.InDelta(11.0, candles[0].Close, 1e-9)
	suite.InDelta(200.0, candles[1].Volume, 1e-9)
}

func (suite *YahooTestSuite) TestFetchSeriesUnknownSymbolIsEmpty() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewYahooProviderWithBaseURL(server.URL)

	candles, err := provider.FetchSeries(context.Background(), "NOPE", types.Timeframe1Day, time.Unix(0, 0), time.Unix(1, 0))
	suite.Require().NoError(err)
	suite.Empty(candles)
}

func (suite *YahooTestSuite) TestFetchSeriesDailyInterval() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer server.Close()

	provider := NewYahooProviderWithBaseURL(server.URL)

	candles, err := provider.FetchSeries(context.Background(), "AAPL", types.Timeframe1Day, time.Unix(0, 0), time.Unix(1, 0))
	suite.Require().NoError(err)
	suite.Empty(candles)
}

func (suite *YahooTestSuite) TestFetchSeriesServerError() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewYahooProviderWithBaseURL(server.URL)

	_, err := provider.FetchSeries(context.Background(), "AAPL", types.Timeframe1Day, time.Unix(0, 0), time.Unix(1, 0))
	suite.Error(err)
}

func (suite *YahooTestSuite) TestDefaultLookback() {
	suite.Equal(5*24*time.Hour, DefaultLookback(types.Timeframe1Min))
	suite.Equal(30*24*time.Hour, DefaultLookback(types.Timeframe5Min))
	suite.Equal(365*24*time.Hour, DefaultLookback(types.Timeframe1Hour))
	suite.Equal(5*365*24*time.Hour, DefaultLookback(types.Timeframe1Day))
}
