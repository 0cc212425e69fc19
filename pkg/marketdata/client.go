package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata/writer"
)

// OnFetchProgress reports fetch progress to long-running callers such as the
// download CLI.
type OnFetchProgress = func(current float64, total float64, message string)

// ClientConfig selects and configures the provider backend.
type ClientConfig struct {
	Provider      ProviderType `yaml:"provider" validate:"required,oneof=yahoo binance polygon"`
	PolygonAPIKey string       `yaml:"polygon_api_key" validate:"required_if=Provider polygon"`
	// CachePath enables the Parquet cache for Download when set.
	CachePath string `yaml:"cache_path"`
}

// Client fetches series through the configured provider and optionally
// persists them into the local cache.
type Client struct {
	provider Provider
	config   ClientConfig
	validate *validator.Validate
	log      *logger.Logger
}

// NewClient validates the configuration and constructs the provider backend.
func NewClient(config ClientConfig, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid market data client configuration", err)
	}

	provider, err := NewProvider(config.Provider, config.PolygonAPIKey)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider: provider,
		config:   config,
		validate: validate,
		log:      log,
	}, nil
}

// NewClientWithProvider wires an already-built provider, bypassing backend
// selection. Used for custom backends and by tests.
func NewClientWithProvider(config ClientConfig, provider Provider, log *logger.Logger) *Client {
	return &Client{
		provider: provider,
		config:   config,
		validate: validator.New(),
		log:      log,
	}
}

// FetchSeries fetches candles and assembles them into an ordered series. A
// zero start/end falls back to the timeframe's default lookback window ending
// now. An empty fetch yields an empty series, not an error.
func (c *Client) FetchSeries(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) (*types.PriceSeries, error) {
	if !timeframe.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidTimeframe, "invalid timeframe: %s", timeframe)
	}

	if end.IsZero() {
		end = time.Now()
	}

	if start.IsZero() {
		start = end.Add(-DefaultLookback(timeframe))
	}

	candles, err := c.provider.FetchSeries(ctx, symbol, timeframe, start, end)
	if err != nil {
		return nil, err
	}

	c.log.Debug("Fetched series",
		zap.String("symbol", symbol),
		zap.String("timeframe", string(timeframe)),
		zap.Int("candles", len(candles)),
	)

	series := types.NewPriceSeries(symbol, timeframe, candles)
	if dropped := len(candles) - series.Len(); dropped > 0 {
		c.log.Warn("Dropped out-of-order candles",
			zap.String("symbol", symbol),
			zap.Int("dropped", dropped),
		)
	}

	return series, nil
}

// Download fetches a series and writes it into the Parquet cache, reporting
// per-candle progress. Returns the written file path.
func (c *Client) Download(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time, onProgress OnFetchProgress) (string, error) {
	if c.config.CachePath == "" {
		return "", errors.New(errors.ErrCodeInvalidConfiguration, "no cache path configured")
	}

	series, err := c.FetchSeries(ctx, symbol, timeframe, start, end)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.config.CachePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	outputName := fmt.Sprintf("%s_%s_%s_%s.parquet",
		NormalizeSymbol(symbol),
		timeframe,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)

	seriesWriter := writer.NewDuckDBWriter(filepath.Join(c.config.CachePath, outputName))
	if err := seriesWriter.Initialize(); err != nil {
		return "", err
	}

	defer func() {
		if cerr := seriesWriter.Close(); cerr != nil {
			c.log.Warn("Failed to close series writer", zap.Error(cerr))
		}
	}()

	total := float64(series.Len())

	for i := 0; i < series.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("download cancelled: %w", err)
		}

		if err := seriesWriter.Write(series.Symbol, series.Timeframe, *series.At(i)); err != nil {
			return "", err
		}

		if onProgress != nil {
			onProgress(float64(i+1), total, fmt.Sprintf("Writing %s candles", symbol))
		}
	}

	return seriesWriter.Finalize()
}
