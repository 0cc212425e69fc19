package types

// TradeType is the side of an executed trade.
type TradeType string

const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// Trade is an executed fill recorded by the portfolio ledger. Immutable once
// appended.
type Trade struct {
	Time  int64     `json:"time"`
	Type  TradeType `json:"type"`
	Price float64   `json:"price"`
	Qty   float64   `json:"qty"`
}
