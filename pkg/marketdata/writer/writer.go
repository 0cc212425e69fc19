// Package writer persists fetched candle series into local storage.
package writer

import (
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// SeriesWriter writes one series at a time to a destination.
type SeriesWriter interface {
	// Initialize sets up the destination, creating tables or files.
	Initialize() error
	// Write persists a single candle for the given symbol and timeframe.
	Write(symbol string, timeframe types.Timeframe, candle types.Candle) error
	// Finalize completes the writing process and returns the output path.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
}
