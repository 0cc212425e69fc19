// Package backtest replays a price series through user strategy logic against
// a portfolio ledger and reports the outcome.
package backtest

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/portfolio"
	"github.com/rxtech-lab/argo-replay/internal/runtime"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// Report is the result of a completed run. A run either completes for every
// candle or reports nothing: a half-executed strategy run has no well-defined
// value.
type Report struct {
	Success    bool          `json:"success"`
	PnL        float64       `json:"pnl"`
	FinalValue float64       `json:"final_value"`
	Trades     []types.Trade `json:"trades"`
}

// Engine drives one strategy over one series. It is a synchronous,
// deterministic transform with no internal concurrency; each Run owns its
// ledger exclusively.
type Engine struct {
	config    Config
	rawConfig string
	validate  *validator.Validate
	log       *logger.Logger
}

// NewEngine creates an engine with the default configuration.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		config:   EmptyConfig(),
		validate: validator.New(),
		log:      log,
	}
}

// Initialize parses and validates the YAML run configuration.
func (e *Engine) Initialize(config string) error {
	cfg := EmptyConfig()
	if err := yaml.Unmarshal([]byte(config), &cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse backtest config", err)
	}

	if err := e.validate.Struct(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	e.config = cfg
	e.rawConfig = config
	e.log.Debug("Backtest engine initialized",
		zap.Float64("initial_capital", cfg.InitialCapital),
	)

	return nil
}

// SetInitialCapital overrides the configured starting cash.
func (e *Engine) SetInitialCapital(capital float64) error {
	if capital < 0 {
		return errors.Newf(errors.ErrCodeLedgerInvalidCapital, "initial capital must not be negative, got %v", capital)
	}

	e.config.InitialCapital = capital

	return nil
}

// Run initializes the strategy with the raw run configuration, then marks the
// ledger to each candle's close in chronological order and invokes the
// strategy's per-candle entry point. Any fault aborts the whole run with no
// partial report.
func (e *Engine) Run(ctx context.Context, strategy runtime.StrategyRuntime, series *types.PriceSeries) (Report, error) {
	if strategy == nil {
		return Report{}, errors.New(errors.ErrCodeStrategyNoEntryPoint, "no strategy loaded")
	}

	if err := strategy.Initialize(e.rawConfig); err != nil {
		return Report{}, errors.Wrap(errors.ErrCodeStrategyConfigInvalid, "strategy initialization failed", err)
	}

	ledger := portfolio.NewPortfolio(e.config.InitialCapital)

	e.log.Debug("Running strategy",
		zap.String("strategy", strategy.Name()),
		zap.String("symbol", series.Symbol),
		zap.Int("candles", series.Len()),
	)

	for i := 0; i < series.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return Report{}, errors.Wrap(errors.ErrCodeStrategyRuntimeFault, "backtest cancelled", err)
		}

		candle := *series.At(i)
		if !e.inWindow(candle.Time) {
			continue
		}

		ledger.SetMark(candle.Close, candle.Time)

		if err := strategy.ProcessCandle(candle, ledger); err != nil {
			e.log.Warn("Strategy faulted, aborting run",
				zap.String("strategy", strategy.Name()),
				zap.Int64("candle_time", candle.Time),
				zap.Error(err),
			)

			return Report{}, err
		}
	}

	finalValue := ledger.TotalValue()

	return Report{
		Success:    true,
		PnL:        finalValue - e.config.InitialCapital,
		FinalValue: finalValue,
		Trades:     ledger.Trades(),
	}, nil
}

// inWindow reports whether the candle time falls within the configured
// optional start/end restriction.
func (e *Engine) inWindow(t int64) bool {
	if e.config.StartTime.IsSome() {
		if start := e.config.StartTime.Unwrap(); time.Unix(t, 0).Before(start) {
			return false
		}
	}

	if e.config.EndTime.IsSome() {
		if end := e.config.EndTime.Unwrap(); time.Unix(t, 0).After(end) {
			return false
		}
	}

	return true
}
