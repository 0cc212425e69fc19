package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// ATR implements the Average True Range as a simple rolling mean of the true
// range, not Wilder-smoothed.
type ATR struct{}

// NewATR creates a new ATR indicator.
func NewATR() Indicator {
	return &ATR{}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Fields implements the Indicator interface.
func (a *ATR) Fields(spec types.IndicatorSpec) []string {
	return []string{spec.ID}
}

// Apply calculates trueRange[i] = max(high-low, |high-prevClose|,
// |low-prevClose|) and ATR = SMA(length) of the true range. The true range
// needs a previous close, so ATR is null until index >= length.
func (a *ATR) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	length := spec.IntParam("length", 14)
	if length < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "ATR length must be a positive integer, got %d", length)
	}

	n := series.Len()
	trueRange := make([]float64, n)

	for i := 1; i < n; i++ {
		candle := series.At(i)
		prevClose := series.At(i - 1).Close

		trueRange[i] = math.Max(candle.High-candle.Low,
			math.Max(math.Abs(candle.High-prevClose), math.Abs(candle.Low-prevClose)))
	}

	sum := 0.0

	for i := 1; i < n; i++ {
		sum += trueRange[i]
		if i > length {
			sum -= trueRange[i-length]
		}

		if i < length {
			continue
		}

		setFloat(series.At(i), spec.ID, sum/float64(length))
	}

	return nil
}
