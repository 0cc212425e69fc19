package indicator

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// testBaseTime is 2024-01-02 00:00:00 UTC.
const testBaseTime int64 = 1704153600

// seriesFromCloses builds a one-minute series where every OHLC equals the
// close, one candle per minute, all on the same day.
func seriesFromCloses(closes ...float64) *types.PriceSeries {
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		candles[i] = types.Candle{
			Time:   testBaseTime + int64(i)*60,
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 100,
		}
	}

	return types.NewPriceSeries("TEST.NS", types.Timeframe1Min, candles)
}

// fieldFloat extracts a float64 field value; ok is false when the field is
// absent or null.
func fieldFloat(candle *types.Candle, key string) (float64, bool) {
	value, present := candle.Field(key)
	if !present || value == nil {
		return 0, false
	}

	f, isFloat := value.(float64)

	return f, isFloat
}

// fieldIsNull reports whether the key is present with an explicit null.
func fieldIsNull(candle *types.Candle, key string) bool {
	value, present := candle.Field(key)

	return present && value == nil
}
