// Package wasm runs a submitted strategy as a WebAssembly module under
// wazero. The module sees a deliberately narrow host surface: buy, sell,
// total_value, position and cash. No filesystem, no network, no ambient
// authority beyond WASI stdio.
package wasm

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/rxtech-lab/argo-replay/internal/portfolio"
	"github.com/rxtech-lab/argo-replay/internal/runtime"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/internal/version"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// entryPoint is the exported function every strategy must define:
// on_candle(i64 time, f64 open, f64 high, f64 low, f64 close, f64 volume).
const entryPoint = "on_candle"

// DefaultCandleTimeout bounds a single on_candle invocation. The runtime is
// built with CloseOnContextDone, so a strategy spinning past the deadline is
// torn down rather than wedging the engine.
const DefaultCandleTimeout = 5 * time.Second

// StrategyWasmRuntime is a runtime for a strategy compiled to WebAssembly.
type StrategyWasmRuntime struct {
	wazeroRuntime wazero.Runtime
	module        api.Module
	onCandle      api.Function
	timeout       time.Duration

	// ledger is only non-nil for the duration of one ProcessCandle call;
	// host functions reach the portfolio through it.
	ledger *portfolio.Portfolio
}

// NewStrategyWasmRuntime compiles and instantiates wasmBytes as a strategy.
// A module without the on_candle export is rejected before any simulation
// can start.
func NewStrategyWasmRuntime(wasmBytes []byte, timeout time.Duration) (runtime.StrategyRuntime, error) {
	if timeout <= 0 {
		timeout = DefaultCandleTimeout
	}

	ctx := context.Background()
	wazeroRuntime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true))

	wasi_snapshot_preview1.MustInstantiate(ctx, wazeroRuntime)

	s := &StrategyWasmRuntime{
		wazeroRuntime: wazeroRuntime,
		module:        nil,
		onCandle:      nil,
		timeout:       timeout,
		ledger:        nil,
	}

	_, err := wazeroRuntime.NewHostModuleBuilder("env").
		NewFunctionBuilder().WithFunc(s.hostBuy).Export("buy").
		NewFunctionBuilder().WithFunc(s.hostSell).Export("sell").
		NewFunctionBuilder().WithFunc(s.hostTotalValue).Export("total_value").
		NewFunctionBuilder().WithFunc(s.hostPosition).Export("position").
		NewFunctionBuilder().WithFunc(s.hostCash).Export("cash").
		Instantiate(ctx)
	if err != nil {
		wazeroRuntime.Close(ctx)

		return nil, errors.Wrap(errors.ErrCodeStrategyLoadFailed, "failed to instantiate host module", err)
	}

	// the module is a reactor, not a command: skip _start
	module, err := wazeroRuntime.InstantiateWithConfig(ctx, wasmBytes, wazero.NewModuleConfig().
		WithName("strategy").
		WithStartFunctions())
	if err != nil {
		wazeroRuntime.Close(ctx)

		return nil, errors.Wrap(errors.ErrCodeStrategyLoadFailed, "failed to instantiate strategy module", err)
	}

	onCandle := module.ExportedFunction(entryPoint)
	if onCandle == nil {
		wazeroRuntime.Close(ctx)

		return nil, errors.Newf(errors.ErrCodeStrategyNoEntryPoint,
			"missing entry point: strategy must export %s(time, open, high, low, close, volume)", entryPoint)
	}

	s.module = module
	s.onCandle = onCandle

	if err := s.checkAPIVersion(ctx); err != nil {
		wazeroRuntime.Close(ctx)

		return nil, err
	}

	return s, nil
}

// checkAPIVersion verifies the optional api_version export: a function
// returning ptr<<32|len of a semver string inside the module's memory.
// Modules without the export skip the check.
func (s *StrategyWasmRuntime) checkAPIVersion(ctx context.Context) error {
	fn := s.module.ExportedFunction("api_version")
	if fn == nil {
		return nil
	}

	results, err := fn.Call(ctx)
	if err != nil || len(results) != 1 {
		return errors.Wrap(errors.ErrCodeStrategyVersion, "api_version export failed", err)
	}

	ptr := uint32(results[0] >> 32)
	length := uint32(results[0])

	declared, ok := s.module.Memory().Read(ptr, length)
	if !ok {
		return errors.New(errors.ErrCodeStrategyVersion, "api_version points outside module memory")
	}

	if err := version.CheckVersionCompatibility(runtime.StrategyAPIVersion, string(declared)); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyVersion, "incompatible strategy API version", err)
	}

	return nil
}

// Initialize calls the strategy's optional initialize export.
func (s *StrategyWasmRuntime) Initialize(config string) error {
	fn := s.module.ExportedFunction("initialize")
	if fn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := fn.Call(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigInvalid, "strategy initialize faulted", err)
	}

	return nil
}

// ProcessCandle implements runtime.StrategyRuntime.
func (s *StrategyWasmRuntime) ProcessCandle(candle types.Candle, ledger *portfolio.Portfolio) error {
	s.ledger = ledger
	defer func() { s.ledger = nil }()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.onCandle.Call(ctx,
		api.EncodeI64(candle.Time),
		api.EncodeF64(candle.Open),
		api.EncodeF64(candle.High),
		api.EncodeF64(candle.Low),
		api.EncodeF64(candle.Close),
		api.EncodeF64(candle.Volume),
	)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyRuntimeFault, err, "strategy %s faulted", entryPoint)
	}

	return nil
}

// Name implements runtime.StrategyRuntime.
func (s *StrategyWasmRuntime) Name() string {
	if s.module != nil && s.module.Name() != "" {
		return s.module.Name()
	}

	return "wasm-strategy"
}

// Close releases the wazero runtime and everything instantiated under it.
func (s *StrategyWasmRuntime) Close() error {
	return s.wazeroRuntime.Close(context.Background())
}

func (s *StrategyWasmRuntime) hostBuy(qty float64) {
	if s.ledger != nil {
		s.ledger.Buy(qty)
	}
}

func (s *StrategyWasmRuntime) hostSell(qty float64) {
	if s.ledger != nil {
		s.ledger.Sell(qty)
	}
}

func (s *StrategyWasmRuntime) hostTotalValue() float64 {
	if s.ledger == nil {
		return 0
	}

	return s.ledger.TotalValue()
}

func (s *StrategyWasmRuntime) hostPosition() float64 {
	if s.ledger == nil {
		return 0
	}

	return s.ledger.Position()
}

func (s *StrategyWasmRuntime) hostCash() float64 {
	if s.ledger == nil {
		return 0
	}

	return s.ledger.Cash()
}
