package indicator

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// EMA implements the Exponential Moving Average over the close column.
type EMA struct{}

// NewEMA creates a new EMA indicator.
func NewEMA() Indicator {
	return &EMA{}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Fields implements the Indicator interface.
func (e *EMA) Fields(spec types.IndicatorSpec) []string {
	return []string{spec.ID}
}

// Apply calculates EMA(length) seeded with the first close:
// EMA[i] = alpha*close[i] + (1-alpha)*EMA[i-1], alpha = 2/(length+1).
func (e *EMA) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	length := spec.IntParam("length", 20)
	if length < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "EMA length must be a positive integer, got %d", length)
	}

	values := emaSeries(series.Closes(), length)
	for i := 0; i < series.Len(); i++ {
		setFloat(series.At(i), spec.ID, values[i])
	}

	return nil
}
