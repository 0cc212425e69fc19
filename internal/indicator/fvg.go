package indicator

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// FVG implements Fair Value Gap detection: a three-bar price imbalance
// detected at the third bar of the triple.
type FVG struct{}

// NewFVG creates a new FVG indicator.
func NewFVG() Indicator {
	return &FVG{}
}

// Name returns the name of the indicator.
func (f *FVG) Name() types.IndicatorType {
	return types.IndicatorTypeFVG
}

// Fields implements the Indicator interface.
func (f *FVG) Fields(spec types.IndicatorSpec) []string {
	return []string{
		spec.ID + "_bull",
		spec.ID + "_bear",
		spec.ID + "_top",
		spec.ID + "_bottom",
	}
}

// Apply detects, at bar i:
//   - bullish gap: low[i] > high[i-2] with a bullish middle bar,
//   - bearish gap: high[i] < low[i-2] with a bearish middle bar.
//
// The pattern flags are always booleans; the box bounds carry the gap's price
// extremes only where a pattern fired and stay null otherwise.
func (f *FVG) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	for i := 0; i < series.Len(); i++ {
		candle := series.At(i)
		candle.SetField(spec.ID+"_bull", false)
		candle.SetField(spec.ID+"_bear", false)
		candle.SetField(spec.ID+"_top", nil)
		candle.SetField(spec.ID+"_bottom", nil)

		if i < 2 {
			continue
		}

		first := series.At(i - 2)
		middle := series.At(i - 1)

		if candle.Low > first.High && middle.Close > middle.Open {
			candle.SetField(spec.ID+"_bull", true)
			candle.SetField(spec.ID+"_top", candle.Low)
			candle.SetField(spec.ID+"_bottom", first.High)

			continue
		}

		if candle.High < first.Low && middle.Close < middle.Open {
			candle.SetField(spec.ID+"_bear", true)
			candle.SetField(spec.ID+"_top", first.Low)
			candle.SetField(spec.ID+"_bottom", candle.High)
		}
	}

	return nil
}
