package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// VWAP implements the Volume Weighted Average Price. On intraday series the
// cumulation resets at each calendar day boundary; on daily series it runs
// over the whole series.
type VWAP struct{}

// NewVWAP creates a new VWAP indicator.
func NewVWAP() Indicator {
	return &VWAP{}
}

// Name returns the name of the indicator.
func (v *VWAP) Name() types.IndicatorType {
	return types.IndicatorTypeVWAP
}

// Fields implements the Indicator interface.
func (v *VWAP) Fields(spec types.IndicatorSpec) []string {
	return []string{spec.ID}
}

// Apply calculates cumulative (typicalPrice*volume) / cumulative volume.
func (v *VWAP) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	if series.Timeframe.IsIntraday() {
		for _, sess := range daySessions(series) {
			v.accumulate(series, spec.ID, sess.start, sess.end)
		}

		return nil
	}

	v.accumulate(series, spec.ID, 0, series.Len())

	return nil
}

func (v *VWAP) accumulate(series *types.PriceSeries, key string, start, end int) {
	cumPV := 0.0
	cumVolume := 0.0

	for i := start; i < end; i++ {
		candle := series.At(i)
		cumPV += candle.TypicalPrice() * candle.Volume
		cumVolume += candle.Volume

		if cumVolume == 0 {
			setFloat(candle, key, math.NaN())

			continue
		}

		setFloat(candle, key, cumPV/cumVolume)
	}
}
