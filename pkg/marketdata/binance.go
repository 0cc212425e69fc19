package marketdata

import (
	"context"
	"strconv"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// binancePageSize is the kline page limit enforced by the Binance API.
const binancePageSize = 500

// BinanceProvider fetches spot klines from the public Binance API.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates an unauthenticated Binance client; historical
// klines need no API key.
func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
	}
}

// FetchSeries pages through klines until the range is covered. Binance caps
// each response at 500 rows, so the next page starts 1ms after the previous
// page's last close time.
func (p *BinanceProvider) FetchSeries(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) ([]types.Candle, error) {
	interval, err := binanceInterval(timeframe)
	if err != nil {
		return nil, err
	}

	startMillis := start.UnixMilli()
	endMillis := end.UnixMilli()

	var candles []types.Candle

	for currentStart := startMillis; currentStart < endMillis; {
		klines, err := p.client.NewKlinesService().
			Symbol(binanceSymbol(symbol)).
			Interval(interval).
			StartTime(currentStart).
			EndTime(endMillis).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines from Binance", err)
		}

		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			candles = append(candles, klineToCandle(k))
		}

		if len(klines) < binancePageSize {
			break
		}

		currentStart = klines[len(klines)-1].CloseTime + 1
	}

	return candles, nil
}

func klineToCandle(k *binance.Kline) types.Candle {
	open, _ := strconv.ParseFloat(k.Open, 64)
	high, _ := strconv.ParseFloat(k.High, 64)
	low, _ := strconv.ParseFloat(k.Low, 64)
	closePrice, _ := strconv.ParseFloat(k.Close, 64)
	volume, _ := strconv.ParseFloat(k.Volume, 64)

	return types.Candle{
		Time:   time.UnixMilli(k.OpenTime).Unix(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}
}

// binanceSymbol strips pair separators: BTC-USD style tickers become BTCUSDT
// style pairs on Binance.
func binanceSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.ReplaceAll(s, "-", "")

	if strings.HasSuffix(s, "USD") && !strings.HasSuffix(s, "USDT") {
		s += "T"
	}

	return s
}

func binanceInterval(timeframe types.Timeframe) (string, error) {
	switch timeframe {
	case types.Timeframe1Min:
		return "1m", nil
	case types.Timeframe5Min:
		return "5m", nil
	case types.Timeframe1Hour:
		return "1h", nil
	case types.Timeframe1Day:
		return "1d", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for Binance: %s", timeframe)
	}
}
