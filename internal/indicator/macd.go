package indicator

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// MACD implements Moving Average Convergence Divergence over the close column.
type MACD struct{}

// NewMACD creates a new MACD indicator.
func NewMACD() Indicator {
	return &MACD{}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Fields implements the Indicator interface.
func (m *MACD) Fields(spec types.IndicatorSpec) []string {
	return []string{
		spec.ID + "_macd",
		spec.ID + "_signal",
		spec.ID + "_hist",
	}
}

// Apply calculates macdLine = EMA(fast) - EMA(slow) of close, signalLine =
// EMA(signal) of the macd line, hist = macdLine - signalLine.
func (m *MACD) Apply(series *types.PriceSeries, spec types.IndicatorSpec) error {
	fast := spec.IntParam("fast", 12)
	slow := spec.IntParam("slow", 26)
	signal := spec.IntParam("signal", 9)

	if fast < 1 || slow < 1 || signal < 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod,
			"MACD lengths must be positive integers, got fast=%d slow=%d signal=%d", fast, slow, signal)
	}

	closes := series.Closes()
	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	macdLine := make([]float64, series.Len())
	for i := range macdLine {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := emaSeries(macdLine, signal)

	for i := 0; i < series.Len(); i++ {
		candle := series.At(i)
		setFloat(candle, spec.ID+"_macd", macdLine[i])
		setFloat(candle, spec.ID+"_signal", signalLine[i])
		setFloat(candle, spec.ID+"_hist", macdLine[i]-signalLine[i])
	}

	return nil
}
