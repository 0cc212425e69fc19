package indicator

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// DailyLevels broadcasts the previous calendar day's high and low onto every
// bar of the following day. The first day in the series has no value.
type DailyLevels struct{}

// NewDailyLevels creates a new DailyLevels indicator.
func NewDailyLevels() Indicator {
	return &DailyLevels{}
}

// Name returns the name of the indicator.
func (d *DailyLevels) Name() types.IndicatorType {
	return types.IndicatorTypeDailyLevels
}

// Fields implements the Indicator interface.
func (d *DailyLevels) Fields(spec types.IndicatorSpec) []string {
	return []string{
		spec.ID + "_prev_high",
		spec.ID + "_prev_low",
	}
}

// Apply implements the Indicator interface.
func (d *DailyLevels) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	sessions := daySessions(series)

	for idx := 1; idx < len(sessions); idx++ {
		prev := sessions[idx-1]

		prevHigh := series.At(prev.start).High
		prevLow := series.At(prev.start).Low

		for i := prev.start + 1; i < prev.end; i++ {
			candle := series.At(i)
			if candle.High > prevHigh {
				prevHigh = candle.High
			}

			if candle.Low < prevLow {
				prevLow = candle.Low
			}
		}

		for i := sessions[idx].start; i < sessions[idx].end; i++ {
			candle := series.At(i)
			setFloat(candle, spec.ID+"_prev_high", prevHigh)
			setFloat(candle, spec.ID+"_prev_low", prevLow)
		}
	}

	return nil
}
