// Package runtime defines the execution surface a trading strategy sees
// during a backtest run. A strategy never touches anything beyond the candle
// it is handed and the ledger operations buy/sell/totalValue.
package runtime

import (
	"github.com/rxtech-lab/argo-replay/internal/portfolio"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

// StrategyAPIVersion is the version of the host API exposed to strategies.
// Strategies may declare the version they were built against; major and
// minor must match.
const StrategyAPIVersion = "1.0.0"

// StrategyRuntime executes user strategy logic one candle at a time.
type StrategyRuntime interface {
	// Initialize passes the strategy its configuration before the run starts.
	Initialize(config string) error
	// ProcessCandle invokes the strategy's per-candle entry point. The ledger
	// is already marked to the candle's close price and time.
	ProcessCandle(candle types.Candle, ledger *portfolio.Portfolio) error
	// Name returns the name of the strategy.
	Name() string
	// Close releases any resources held by the runtime.
	Close() error
}
