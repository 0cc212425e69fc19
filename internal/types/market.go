package types

import (
	"encoding/json"
	"sort"
)

// SecondsPerDay is the length of a calendar day, used for session bucketing.
const SecondsPerDay int64 = 86400

// Timeframe is the bar granularity of a price series.
type Timeframe string

const (
	Timeframe1Min  Timeframe = "1m"
	Timeframe5Min  Timeframe = "5m"
	Timeframe1Hour Timeframe = "1h"
	Timeframe1Day  Timeframe = "1D"
)

// Valid reports whether the timeframe is one of the supported granularities.
func (t Timeframe) Valid() bool {
	switch t {
	case Timeframe1Min, Timeframe5Min, Timeframe1Hour, Timeframe1Day:
		return true
	default:
		return false
	}
}

// IsIntraday reports whether bars are finer than one calendar day.
// Session-scoped indicators (VWAP, daily levels, volume profile) reset
// per day only on intraday granularities.
func (t Timeframe) IsIntraday() bool {
	return t != Timeframe1Day
}

// Seconds returns the nominal bar duration in seconds.
func (t Timeframe) Seconds() int64 {
	switch t {
	case Timeframe1Min:
		return 60
	case Timeframe5Min:
		return 300
	case Timeframe1Hour:
		return 3600
	default:
		return SecondsPerDay
	}
}

// DayKey buckets a unix timestamp (seconds, UTC) into a calendar day ordinal.
func DayKey(t int64) int64 {
	if t < 0 && t%SecondsPerDay != 0 {
		return t/SecondsPerDay - 1
	}

	return t / SecondsPerDay
}

// Candle is a single OHLCV bar plus the indicator fields derived from it.
// Fields maps an indicator output key (spec id plus optional suffix) to a
// float64, bool, string, or nil. A nil value is an explicit null: the key is
// present on every candle of an enriched series even where the indicator has
// no defined value.
type Candle struct {
	Time   int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Fields map[string]any
}

// SetField records an indicator output on the candle. A nil value marks the
// field as explicitly null.
func (c *Candle) SetField(key string, value any) {
	if c.Fields == nil {
		c.Fields = make(map[string]any)
	}

	c.Fields[key] = value
}

// Field returns the indicator output stored under key.
func (c *Candle) Field(key string) (any, bool) {
	value, ok := c.Fields[key]

	return value, ok
}

// TypicalPrice is (high + low + close) / 3, the price VWAP weights volume by.
func (c *Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// MarshalJSON flattens indicator fields next to the OHLCV keys, matching the
// record shape the chart client consumes.
func (c Candle) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 6+len(c.Fields))
	out["time"] = c.Time
	out["open"] = c.Open
	out["high"] = c.High
	out["low"] = c.Low
	out["close"] = c.Close
	out["volume"] = c.Volume

	for key, value := range c.Fields {
		out[key] = value
	}

	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON: reserved OHLCV keys populate
// the struct fields, everything else lands in Fields.
func (c *Candle) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	readFloat := func(key string) float64 {
		value, _ := raw[key].(float64)
		delete(raw, key)

		return value
	}

	c.Time = int64(readFloat("time"))
	c.Open = readFloat("open")
	c.High = readFloat("high")
	c.Low = readFloat("low")
	c.Close = readFloat("close")
	c.Volume = readFloat("volume")

	if len(raw) > 0 {
		c.Fields = raw
	}

	return nil
}

// SymbolMatch is a single symbol search result.
type SymbolMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// PriceSeries is an ordered sequence of candles with strictly increasing
// times. It is immutable once enriched; replay sessions and backtest runs
// hold shared read-only references to it.
type PriceSeries struct {
	Symbol    string
	Timeframe Timeframe
	Candles   []Candle
}

// NewPriceSeries builds a series from candles, dropping any candle whose time
// does not strictly increase over its predecessor.
func NewPriceSeries(symbol string, timeframe Timeframe, candles []Candle) *PriceSeries {
	ordered := make([]Candle, 0, len(candles))

	for _, candle := range candles {
		if len(ordered) > 0 && candle.Time <= ordered[len(ordered)-1].Time {
			continue
		}

		ordered = append(ordered, candle)
	}

	return &PriceSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   ordered,
	}
}

// Len returns the number of candles in the series.
func (s *PriceSeries) Len() int {
	return len(s.Candles)
}

// At returns the candle at index i for in-place field writes during
// enrichment.
func (s *PriceSeries) At(i int) *Candle {
	return &s.Candles[i]
}

// IndexAtOrAfter returns the index of the first candle whose time is >= t.
// The second return value is false when no such candle exists.
func (s *PriceSeries) IndexAtOrAfter(t int64) (int, bool) {
	idx := sort.Search(len(s.Candles), func(i int) bool {
		return s.Candles[i].Time >= t
	})

	if idx >= len(s.Candles) {
		return 0, false
	}

	return idx, true
}

// Closes returns the close column of the series.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, candle := range s.Candles {
		closes[i] = candle.Close
	}

	return closes
}
