package replay

import "github.com/rxtech-lab/argo-replay/internal/types"

// Command actions accepted from the client side of a replay session.
const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionSeek  = "seek"
)

// Event types emitted to the client side of a replay session.
const (
	EventCandle = "candle"
	EventSync   = "sync"
)

// Command is one inbound control message. Speed applies to play; Time and
// Index apply to seek, with Time taking precedence when both are set.
type Command struct {
	Action string   `json:"action"`
	Speed  float64  `json:"speed,omitempty"`
	Time   *float64 `json:"time,omitempty"`
	Index  *int     `json:"index,omitempty"`
}

// Event is one outbound message. Data is a single candle for "candle" events
// and a slice of candles for "sync" events.
type Event struct {
	Type         string `json:"type"`
	Data         any    `json:"data"`
	CurrentIndex int    `json:"currentIndex"`
}

// NewCandleEvent wraps the candle emitted by a playback tick.
func NewCandleEvent(candle types.Candle, cursor int) Event {
	return Event{
		Type:         EventCandle,
		Data:         candle,
		CurrentIndex: cursor,
	}
}

// NewSyncEvent wraps the full prefix of candles visible after a seek.
func NewSyncEvent(candles []types.Candle, cursor int) Event {
	return Event{
		Type:         EventSync,
		Data:         candles,
		CurrentIndex: cursor,
	}
}
