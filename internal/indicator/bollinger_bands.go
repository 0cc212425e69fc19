package indicator

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// BollingerBands implements Bollinger Bands around a simple moving average of
// the close column.
type BollingerBands struct{}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands() Indicator {
	return &BollingerBands{}
}

// Name returns the name of the indicator.
func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBB
}

// Fields implements the Indicator interface.
func (b *BollingerBands) Fields(spec types.IndicatorSpec) []string {
	return []string{
		spec.ID + "_upper",
		spec.ID + "_middle",
		spec.ID + "_lower",
	}
}

// Apply calculates middle = SMA(length), band = multiplier * sample standard
// deviation(length), upper/lower = middle +/- band. Null until the window is
// filled. The sample standard deviation (N-1 denominator) needs a window of
// at least two.
func (b *BollingerBands) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	length := spec.IntParam("length", 20)
	multiplier := spec.FloatParam("multiplier", 2.0)

	if length < 2 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "BB length must be at least 2, got %d", length)
	}

	closes := series.Closes()
	middle := rollingMean(closes, length)
	stdDev := rollingStdDev(closes, length)

	for i := 0; i < series.Len(); i++ {
		candle := series.At(i)
		band := multiplier * stdDev[i]
		setFloat(candle, spec.ID+"_upper", middle[i]+band)
		setFloat(candle, spec.ID+"_middle", middle[i])
		setFloat(candle, spec.ID+"_lower", middle[i]-band)
	}

	return nil
}
