// Package marketdata fetches historical OHLCV series from external providers
// and optionally tees them into a local cache.
package marketdata

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// ProviderType identifies a market data provider backend.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
)

// Provider fetches raw candles for one symbol over one time range. Fetching
// is blocking I/O; callers bound it with the context. An empty range is an
// empty result, not an error.
type Provider interface {
	// FetchSeries returns candles ordered by time ascending, one bar per
	// timeframe period, covering [start, end].
	FetchSeries(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) ([]types.Candle, error)
}

// NewProvider constructs a provider backend. Polygon requires an API key;
// Yahoo and Binance run unauthenticated.
func NewProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderYahoo:
		return NewYahooProvider(), nil
	case ProviderBinance:
		return NewBinanceProvider(), nil
	case ProviderPolygon:
		return NewPolygonProvider(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// DefaultLookback returns the fetch window used when the caller gives no
// explicit range: shorter bars get a shorter history.
func DefaultLookback(timeframe types.Timeframe) time.Duration {
	const day = 24 * time.Hour

	switch timeframe {
	case types.Timeframe1Min:
		return 5 * day
	case types.Timeframe5Min:
		return 30 * day
	case types.Timeframe1Hour:
		return 365 * day
	case types.Timeframe1Day:
		return 5 * 365 * day
	default:
		return 365 * day
	}
}
