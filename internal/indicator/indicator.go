package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// Indicator computes one indicator kind over a full price series, writing its
// output fields onto every candle. Computation always spans the whole series,
// independent of any visible-window truncation applied later.
type Indicator interface {
	// Name returns the indicator kind this implementation handles.
	Name() types.IndicatorType
	// Fields returns every output key the indicator emits for the given spec.
	// The pipeline pre-nulls these keys on every candle before Apply runs.
	Fields(spec types.IndicatorSpec) []string
	// Apply computes the indicator and writes its fields in place.
	Apply(series *types.PriceSeries, spec types.IndicatorSpec) error
}

// setFloat stores value under key, mapping NaN/Inf to an explicit null.
func setFloat(candle *types.Candle, key string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		candle.SetField(key, nil)

		return
	}

	candle.SetField(key, value)
}

// session is a run of consecutive candles sharing one calendar day.
type session struct {
	start int // first candle index, inclusive
	end   int // last candle index, exclusive
}

// daySessions splits the series into consecutive calendar-day runs.
func daySessions(series *types.PriceSeries) []session {
	sessions := make([]session, 0)

	for i := 0; i < series.Len(); i++ {
		day := types.DayKey(series.At(i).Time)
		if len(sessions) == 0 || day != types.DayKey(series.At(sessions[len(sessions)-1].start).Time) {
			sessions = append(sessions, session{start: i, end: i + 1})

			continue
		}

		sessions[len(sessions)-1].end = i + 1
	}

	return sessions
}
