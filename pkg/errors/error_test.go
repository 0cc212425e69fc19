package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeSeriesNotFound, "series not found")
	assert.Equal(t, "[201] series not found", err.Error())

	cause := stderrors.New("connection refused")
	wrapped := Wrap(ErrCodeMarketDataFetchFailed, "fetch failed", cause)
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.Contains(t, wrapped.Error(), "[700]")
}

func TestUnwrapChain(t *testing.T) {
	cause := stderrors.New("root cause")
	wrapped := Wrap(ErrCodeUnknown, "context", cause)

	assert.True(t, stderrors.Is(wrapped, cause))

	// structured errors survive another fmt.Errorf wrap
	outer := fmt.Errorf("handler: %w", wrapped)

	var coded *Error
	require.True(t, As(outer, &coded))
	assert.Equal(t, ErrCodeUnknown, coded.Code)
}

func TestGetCode(t *testing.T) {
	err := Newf(ErrCodeStrategyNoEntryPoint, "missing entry point: %s", "on_candle")
	assert.Equal(t, ErrCodeStrategyNoEntryPoint, GetCode(err))

	assert.Equal(t, ErrCodeUnknown, GetCode(stderrors.New("plain")))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCodeReplayProtocol, "bad message"))

	assert.True(t, HasCode(err, ErrCodeReplayProtocol))
	assert.False(t, HasCode(err, ErrCodeSeriesNotFound))
	assert.False(t, HasCode(nil, ErrCodeReplayProtocol))
}
