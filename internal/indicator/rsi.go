package indicator

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// RSI implements the Relative Strength Index over rolling mean gain/loss.
type RSI struct{}

// NewRSI creates a new RSI indicator.
func NewRSI() Indicator {
	return &RSI{}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Fields implements the Indicator interface.
func (r *RSI) Fields(spec types.IndicatorSpec) []string {
	return []string{spec.ID}
}

// Apply calculates RSI(length): rolling-window means of positive close deltas
// (gain) and negated negative deltas (loss), RSI = 100 - 100/(1+gain/loss).
// Zero-loss boundary: gain>0 maps to 100, a fully flat window maps to 50.
// Null until the delta window is filled (index >= length).
func (r *RSI) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	length := spec.IntParam("length", 14)
	if length < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "RSI length must be a positive integer, got %d", length)
	}

	n := series.Len()
	closes := series.Closes()

	gains := make([]float64, n)
	losses := make([]float64, n)

	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	gainSum := 0.0
	lossSum := 0.0

	for i := 1; i < n; i++ {
		gainSum += gains[i]
		lossSum += losses[i]

		if i > length {
			gainSum -= gains[i-length]
			lossSum -= losses[i-length]
		}

		if i < length {
			continue
		}

		gain := gainSum / float64(length)
		loss := lossSum / float64(length)

		var rsi float64

		switch {
		case loss == 0 && gain > 0:
			rsi = 100
		case loss == 0:
			// no price movement at all in the window
			rsi = 50
		default:
			rsi = 100 - 100/(1+gain/loss)
		}

		setFloat(series.At(i), spec.ID, rsi)
	}

	return nil
}
