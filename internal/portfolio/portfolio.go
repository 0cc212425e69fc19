// Package portfolio implements the cash/position/trade ledger a strategy run
// trades against. A Portfolio is owned by exactly one backtest run and is
// never shared across goroutines.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// Portfolio tracks cash, the open position, and every executed trade.
// Cash and position can never go negative: an order the ledger cannot cover
// is silently rejected, which is a strategy-authoring concern rather than a
// system fault.
type Portfolio struct {
	cash      float64
	position  float64
	trades    []types.Trade
	markPrice float64
	markTime  int64
}

// NewPortfolio creates a ledger holding initialCapital in cash. A negative
// initial capital is clamped to zero.
func NewPortfolio(initialCapital float64) *Portfolio {
	if initialCapital < 0 {
		initialCapital = 0
	}

	return &Portfolio{
		cash:      initialCapital,
		position:  0,
		trades:    nil,
		markPrice: 0,
		markTime:  0,
	}
}

// SetMark updates the valuation context. Fills and TotalValue use the most
// recent mark.
func (p *Portfolio) SetMark(price float64, time int64) {
	p.markPrice = price
	p.markTime = time
}

// Buy debits qty*markPrice from cash and credits qty to the position,
// recording a BUY trade at the current mark. It reports false and changes
// nothing when cash cannot cover the cost or qty is not positive.
func (p *Portfolio) Buy(qty float64) bool {
	if qty <= 0 {
		return false
	}

	cost := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(p.markPrice))
	cash := decimal.NewFromFloat(p.cash)

	if cash.LessThan(cost) {
		return false
	}

	p.cash, _ = cash.Sub(cost).Float64()
	p.position += qty
	p.trades = append(p.trades, types.Trade{
		Time:  p.markTime,
		Type:  types.TradeTypeBuy,
		Price: p.markPrice,
		Qty:   qty,
	})

	return true
}

// Sell credits qty*markPrice to cash and debits qty from the position,
// recording a SELL trade at the current mark. It reports false and changes
// nothing when the position cannot cover qty or qty is not positive.
func (p *Portfolio) Sell(qty float64) bool {
	if qty <= 0 || p.position < qty {
		return false
	}

	revenue := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(p.markPrice))

	p.cash, _ = decimal.NewFromFloat(p.cash).Add(revenue).Float64()
	p.position -= qty
	p.trades = append(p.trades, types.Trade{
		Time:  p.markTime,
		Type:  types.TradeTypeSell,
		Price: p.markPrice,
		Qty:   qty,
	})

	return true
}

// TotalValue returns cash plus the position valued at the current mark.
func (p *Portfolio) TotalValue() float64 {
	positionValue := decimal.NewFromFloat(p.position).Mul(decimal.NewFromFloat(p.markPrice))
	total, _ := decimal.NewFromFloat(p.cash).Add(positionValue).Float64()

	return total
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 {
	return p.cash
}

// Position returns the currently held quantity.
func (p *Portfolio) Position() float64 {
	return p.position
}

// Trades returns the executed trades in fill order. The returned slice is a
// copy; the ledger's own log stays immutable.
func (p *Portfolio) Trades() []types.Trade {
	trades := make([]types.Trade, len(p.trades))
	copy(trades, p.trades)

	return trades
}
