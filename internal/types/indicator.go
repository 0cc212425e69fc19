package types

import "math"

// IndicatorType identifies an indicator kind as submitted by the client.
type IndicatorType string

const (
	IndicatorTypeEMA         IndicatorType = "EMA"
	IndicatorTypeRSI         IndicatorType = "RSI"
	IndicatorTypeVWAP        IndicatorType = "VWAP"
	IndicatorTypeMACD        IndicatorType = "MACD"
	IndicatorTypeBB          IndicatorType = "BB"
	IndicatorTypeATR         IndicatorType = "ATR"
	IndicatorTypeFVG         IndicatorType = "FVG"
	IndicatorTypeDailyLevels IndicatorType = "DAILY_LEVELS"
	IndicatorTypeVP          IndicatorType = "VP"
)

// IndicatorSpec is one indicator request: a client-chosen id unique within the
// batch, the indicator kind, and numeric parameters.
type IndicatorSpec struct {
	ID     string             `json:"id" validate:"required"`
	Kind   IndicatorType      `json:"type" validate:"required"`
	Params map[string]float64 `json:"params"`
}

// IntParam returns the named parameter truncated to int, or def when the
// parameter is absent or not finite.
func (s IndicatorSpec) IntParam(name string, def int) int {
	value, ok := s.Params[name]
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return def
	}

	return int(value)
}

// FloatParam returns the named parameter, or def when absent or not finite.
func (s IndicatorSpec) FloatParam(name string, def float64) float64 {
	value, ok := s.Params[name]
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return def
	}

	return value
}
