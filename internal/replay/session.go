// Package replay implements the per-connection playback controller that steps
// a client through an immutable price series at a configurable speed.
package replay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

const (
	// DefaultSpeed is the playback rate used when play carries no speed.
	DefaultSpeed = 1.0
	// minSpeed floors the playback rate so the tick period stays finite.
	minSpeed = 0.001
)

// Sink receives the session's outbound events. The session loop is the only
// caller, so implementations never see concurrent Send calls.
type Sink interface {
	Send(event Event) error
}

// Session is a single-goroutine controller over one read-only series. All
// state transitions happen inside Run; the session never emits an event while
// a command is being handled.
type Session struct {
	series *types.PriceSeries
	sink   Sink
	log    *logger.Logger

	cursor  int
	playing bool
	speed   float64
}

// NewSession creates a paused session positioned at startIndex, clamped to
// the series bounds.
func NewSession(series *types.PriceSeries, sink Sink, startIndex int, log *logger.Logger) *Session {
	return &Session{
		series: series,
		sink:   sink,
		log:    log,
		cursor: clampIndex(startIndex, series.Len()),
		speed:  DefaultSpeed,
	}
}

// Cursor returns the session's current position.
func (s *Session) Cursor() int {
	return s.cursor
}

// Run drives the session until ctx is cancelled, the command channel closes,
// or the sink fails. While playing it waits on whichever fires first, the
// next command or the tick timer; while paused it waits on commands alone.
func (s *Session) Run(ctx context.Context, commands <-chan Command) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	timerArmed := false
	defer timer.Stop()

	for {
		if s.playing && !timerArmed {
			timer.Reset(s.tickPeriod())
			timerArmed = true
		}

		var tick <-chan time.Time
		if s.playing {
			tick = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd, ok := <-commands:
			if !ok {
				return nil
			}

			if timerArmed && !timer.Stop() {
				<-timer.C
			}
			timerArmed = false

			if err := s.handle(cmd); err != nil {
				return err
			}

		case <-tick:
			timerArmed = false

			if err := s.emitTick(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handle(cmd Command) error {
	switch cmd.Action {
	case ActionPlay:
		speed := cmd.Speed
		if speed <= 0 {
			speed = DefaultSpeed
		}
		s.speed = speed

		if s.cursor < s.series.Len() {
			s.playing = true
		}

		return nil

	case ActionPause:
		s.playing = false
		return nil

	case ActionSeek:
		return s.seek(cmd)

	default:
		s.log.Debug("Ignoring unknown replay command", zap.String("action", cmd.Action))
		return nil
	}
}

// seek pauses, repositions the cursor, and emits a sync carrying every candle
// up to and including the cursor.
func (s *Session) seek(cmd Command) error {
	s.playing = false

	switch {
	case cmd.Time != nil:
		// First candle at or after the target. An out-of-range target
		// leaves the cursor where it was.
		if idx, ok := s.series.IndexAtOrAfter(int64(*cmd.Time)); ok {
			s.cursor = idx
		}
	case cmd.Index != nil:
		s.cursor = clampIndex(*cmd.Index, s.series.Len())
	}

	visible := []types.Candle{}
	if s.series.Len() > 0 {
		visible = s.series.Candles[:s.cursor+1]
	}

	return s.sink.Send(NewSyncEvent(visible, s.cursor))
}

// emitTick sends the candle at the cursor and advances. Passing the final
// candle pauses the session; there is no wraparound.
func (s *Session) emitTick() error {
	if s.cursor >= s.series.Len() {
		s.playing = false
		return nil
	}

	if err := s.sink.Send(NewCandleEvent(*s.series.At(s.cursor), s.cursor)); err != nil {
		return err
	}

	s.cursor++
	if s.cursor >= s.series.Len() {
		s.playing = false
	}

	return nil
}

func (s *Session) tickPeriod() time.Duration {
	speed := s.speed
	if speed < minSpeed {
		speed = minSpeed
	}

	return time.Duration(float64(time.Second) / speed)
}

func clampIndex(idx, length int) int {
	if idx < 0 {
		return 0
	}

	if length > 0 && idx > length-1 {
		return length - 1
	}

	if length == 0 {
		return 0
	}

	return idx
}
